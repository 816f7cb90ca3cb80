package handler

import (
	"net/http"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/middleware"
	"github.com/gabrielle-jeco/personal-performance-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// ManagerSupervisors godoc
// @Summary      Manager dashboard
// @Description  Lists the manager's visible supervisors with computed performance metrics. Regional managers may filter by location.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        location_id query string false "Location UUID filter (regional managers only)"
// @Success      200 {object} dto.ManagerDashboardResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/manager/supervisors [get]
func (h *DashboardHandler) ManagerSupervisors(c *gin.Context) {
	var locationFilter *uuid.UUID
	if raw := c.Query("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid location_id"))
			return
		}
		locationFilter = &id
	}

	resp, err := h.svc.ManagerSupervisors(c.Request.Context(), *middleware.GetActor(c), locationFilter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SupervisorCrews godoc
// @Summary      Supervisor dashboard
// @Description  Lists the supervisor's crew members at their own location with computed metrics.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SupervisorDashboardResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/supervisor/crews [get]
func (h *DashboardHandler) SupervisorCrews(c *gin.Context) {
	resp, err := h.svc.SupervisorCrews(c.Request.Context(), *middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SupervisorStats godoc
// @Summary      Supervisor performance card
// @Description  The caller's own averages plus today's attendance from the external provider.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SupervisorStatsResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/supervisor/stats [get]
func (h *DashboardHandler) SupervisorStats(c *gin.Context) {
	resp, err := h.svc.SupervisorStats(c.Request.Context(), *middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
