package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/infra"
	"github.com/gabrielle-jeco/personal-performance-app/internal/middleware"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"
	"github.com/gabrielle-jeco/personal-performance-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TasksHandler struct {
	svc      service.TaskService
	evidence infra.EvidenceStore
}

func NewTasksHandler(svc service.TaskService, evidence infra.EvidenceStore) *TasksHandler {
	return &TasksHandler{svc: svc, evidence: evidence}
}

// List godoc
// @Summary      List tasks for an assignee
// @Description  Returns the assignee's tasks ordered by due date, optionally filtered to a single day.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string true  "Assignee UUID"
// @Param        due_on query string false "Day filter YYYY-MM-DD"
// @Success      200 {array}  dto.TaskResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/users/{id}/tasks [get]
func (h *TasksHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)

	assigneeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid user ID"))
		return
	}

	var dueOn *time.Time
	if raw := c.Query("due_on"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid due_on, expected YYYY-MM-DD"))
			return
		}
		dueOn = &day
	}

	resp, err := h.svc.List(c.Request.Context(), *actor, assigneeID, dueOn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Assign a task
// @Description  Creates a pending task for a subordinate within the caller's scope.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateTaskRequest true "Task details"
// @Success      201 {object} dto.TaskResponse
// @Failure      403 {object} apierror.APIError
// @Router       /v1/tasks [post]
func (h *TasksHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), *middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateStatus godoc
// @Summary      Update task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Task UUID"
// @Param        body body dto.UpdateTaskStatusRequest true "New status"
// @Success      200 {object} dto.TaskResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/tasks/{id}/status [patch]
func (h *TasksHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid task ID"))
		return
	}
	var req dto.UpdateTaskStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), *middleware.GetActor(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a task
// @Description  Hard-deletes a task regardless of status. The assignee loses it from their list immediately.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Task UUID"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/tasks/{id} [delete]
func (h *TasksHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid task ID"))
		return
	}
	if err := h.svc.Delete(c.Request.Context(), *middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AttachEvidence godoc
// @Summary      Upload task evidence
// @Description  Attaches a before/after photo. When both slots are filled the task auto-submits for review.
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path     string true "Task UUID"
// @Param        type  formData string true "before | after"
// @Param        image formData file   true "Evidence image (jpeg, png, webp)"
// @Success      200 {object} dto.TaskResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/tasks/{id}/evidence [post]
func (h *TasksHandler) AttachEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid task ID"))
		return
	}

	var slot repository.EvidenceSlot
	switch c.PostForm("type") {
	case "before":
		slot = repository.SlotBefore
	case "after":
		slot = repository.SlotAfter
	default:
		c.JSON(http.StatusBadRequest, apierror.New("type must be before or after"))
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("image file required"))
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("unable to read uploaded file"))
		return
	}
	defer file.Close()

	resp, err := h.svc.AttachEvidence(c.Request.Context(), *middleware.GetActor(c), id, slot, file, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveEvidence godoc
// @Summary      Remove task evidence
// @Description  Clears one evidence slot. The task status is left untouched.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Task UUID"
// @Param        body body dto.RemoveEvidenceRequest true "Slot to clear"
// @Success      200 {object} dto.TaskResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/tasks/{id}/evidence [delete]
func (h *TasksHandler) RemoveEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid task ID"))
		return
	}
	var req dto.RemoveEvidenceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RemoveEvidence(c.Request.Context(), *middleware.GetActor(c), id, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadEvidence godoc
// @Summary      Download an evidence image
// @Tags         tasks
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        key path string true "Evidence storage key"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Router       /v1/evidence/{key} [get]
func (h *TasksHandler) DownloadEvidence(c *gin.Context) {
	rc, err := h.evidence.Open(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Evidence not found"))
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", "inline")
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		_ = c.Error(err)
	}
}
