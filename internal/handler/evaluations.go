package handler

import (
	"net/http"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/middleware"
	"github.com/gabrielle-jeco/personal-performance-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EvaluationsHandler struct{ svc service.EvaluationService }

func NewEvaluationsHandler(svc service.EvaluationService) *EvaluationsHandler {
	return &EvaluationsHandler{svc: svc}
}

// Submit godoc
// @Summary      Submit a monthly evaluation
// @Description  Upserts the subject's evaluation for the month of the given date. A second submission in the same month replaces the first.
// @Tags         evaluations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SubmitEvaluationRequest true "Per-criterion scores"
// @Success      200 {object} dto.EvaluationResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/evaluations [post]
func (h *EvaluationsHandler) Submit(c *gin.Context) {
	var req dto.SubmitEvaluationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Submit(c.Request.Context(), *middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CheckPeriod godoc
// @Summary      Check if a subject is already evaluated this month
// @Description  The server decides the evaluation window, not the client. Used to gate the evaluation form.
// @Tags         evaluations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string true  "Subject UUID"
// @Param        date query string false "Reference date YYYY-MM-DD (default today)"
// @Success      200 {object} dto.CheckPeriodResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/evaluations/check/{id} [get]
func (h *EvaluationsHandler) CheckPeriod(c *gin.Context) {
	subjectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid subject ID"))
		return
	}

	refDate := time.Now()
	if raw := c.Query("date"); raw != "" {
		refDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid date, expected YYYY-MM-DD"))
			return
		}
	}

	resp, err := h.svc.CheckPeriod(c.Request.Context(), *middleware.GetActor(c), subjectID, refDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
