package handler

import (
	"net/http"

	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/middleware"
	"github.com/gabrielle-jeco/personal-performance-app/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary User login
// @Description Authenticates a user. Store managers must also send the location_id of the site they are standing in.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Logout
// @Description Invalidates the presented token only. Other sessions of the same user stay valid.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)
	resp, err := h.svc.Me(c.Request.Context(), *actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
