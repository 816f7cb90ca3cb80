package service

import (
	"context"
	"io"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/infra"
	"github.com/gabrielle-jeco/personal-performance-app/internal/model"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// evidenceExt maps accepted upload content types to stored file extensions.
var evidenceExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// TaskService owns the task state machine and its authorization rules.
//
// Status transitions: Pending → Submitted fires automatically when both
// evidence slots fill; every other transition is an explicit UpdateStatus and
// the machine deliberately allows any of the four values in any order.
type TaskService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateTaskRequest) (*dto.TaskResponse, error)
	// List returns the assignee's tasks ordered by due date, optionally only
	// those due on one calendar day.
	List(ctx context.Context, actor Actor, assigneeID uuid.UUID, dueOn *time.Time) ([]dto.TaskResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, taskID uuid.UUID, status string) (*dto.TaskResponse, error)
	// Delete is a hard delete; evidence blobs are left for external GC.
	Delete(ctx context.Context, actor Actor, taskID uuid.UUID) error
	// AttachEvidence stores the upload and fills one slot. Only the task's own
	// assignee may upload — supervisors and crew alike self-serve their tasks.
	AttachEvidence(ctx context.Context, actor Actor, taskID uuid.UUID, slot repository.EvidenceSlot, file io.Reader, size int64, contentType string) (*dto.TaskResponse, error)
	// RemoveEvidence clears a slot ("before", "after", or legacy "proof").
	// Status is intentionally not rolled back.
	RemoveEvidence(ctx context.Context, actor Actor, taskID uuid.UUID, slotName string) (*dto.TaskResponse, error)
}

type taskService struct {
	repo     repository.TaskRepository
	scope    *ScopeResolver
	evidence infra.EvidenceStore
	maxBytes int64
}

func NewTaskService(repo repository.TaskRepository, scope *ScopeResolver, evidence infra.EvidenceStore, maxSizeMB int) TaskService {
	return &taskService{
		repo:     repo,
		scope:    scope,
		evidence: evidence,
		maxBytes: int64(maxSizeMB) * 1024 * 1024,
	}
}

func (s *taskService) Create(ctx context.Context, actor Actor, req dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	assigneeID, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid assignee id")
	}
	if err := s.scope.CanActOn(ctx, actor, assigneeID); err != nil {
		return nil, err
	}

	task := &model.Task{
		AssigneeID: assigneeID,
		CreatorID:  actor.ID,
		Title:      req.Title,
		Note:       req.Note,
		// Stored verbatim: no timezone normalization on due dates.
		DueAt:  req.DueAt,
		Status: model.TaskPending,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	return taskResponse(task), nil
}

func (s *taskService) List(ctx context.Context, actor Actor, assigneeID uuid.UUID, dueOn *time.Time) ([]dto.TaskResponse, error) {
	if err := s.scope.CanActOn(ctx, actor, assigneeID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByAssignee(ctx, assigneeID, dueOn)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = *taskResponse(&tasks[i])
	}
	return resp, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, actor Actor, taskID uuid.UUID, status string) (*dto.TaskResponse, error) {
	if !model.ValidTaskStatus(status) {
		return nil, apierror.E(apierror.KindValidation, "invalid task status")
	}
	task, err := s.authorizedTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, taskID, status); err != nil {
		return nil, err
	}
	task.Status = status
	return taskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, actor Actor, taskID uuid.UUID) error {
	if _, err := s.authorizedTask(ctx, actor, taskID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, taskID)
}

func (s *taskService) AttachEvidence(ctx context.Context, actor Actor, taskID uuid.UUID, slot repository.EvidenceSlot, file io.Reader, size int64, contentType string) (*dto.TaskResponse, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apierror.E(apierror.KindNotFound, "task not found")
	}
	if task.AssigneeID != actor.ID {
		return nil, apierror.E(apierror.KindForbidden, "only the task assignee may upload evidence")
	}

	ext, ok := evidenceExt[contentType]
	if !ok {
		return nil, apierror.E(apierror.KindValidation, "unsupported image type")
	}
	if size > s.maxBytes {
		return nil, apierror.E(apierror.KindValidation, "image exceeds maximum size")
	}

	key, err := s.evidence.Put(io.LimitReader(file, s.maxBytes), ext)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetEvidenceSlot(ctx, taskID, slot, &key); err != nil {
		// Failed writes must leave prior state untouched — drop the orphan blob.
		if derr := s.evidence.Delete(key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("orphan evidence cleanup failed")
		}
		return nil, err
	}

	// The submitted-check runs against current persisted state, not the values
	// this call happened to see: two near-simultaneous before/after uploads
	// both re-evaluate it and exactly one flips the status.
	if _, err := s.repo.AutoSubmitIfComplete(ctx, taskID); err != nil {
		return nil, err
	}

	task, err = s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apierror.E(apierror.KindNotFound, "task not found")
	}
	return taskResponse(task), nil
}

func (s *taskService) RemoveEvidence(ctx context.Context, actor Actor, taskID uuid.UUID, slotName string) (*dto.TaskResponse, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apierror.E(apierror.KindNotFound, "task not found")
	}
	if task.AssigneeID != actor.ID {
		return nil, apierror.E(apierror.KindForbidden, "only the task assignee may remove evidence")
	}

	var ref *string
	switch slotName {
	case "before":
		ref = task.BeforeImage
		err = s.repo.SetEvidenceSlot(ctx, taskID, repository.SlotBefore, nil)
	case "after":
		ref = task.AfterImage
		err = s.repo.SetEvidenceSlot(ctx, taskID, repository.SlotAfter, nil)
	case "proof":
		ref = task.ProofImage
		err = s.repo.ClearProofImage(ctx, taskID)
	default:
		return nil, apierror.E(apierror.KindValidation, "invalid evidence slot")
	}
	if err != nil {
		return nil, err
	}

	// Best-effort blob cleanup; the slot reference is already gone.
	if ref != nil {
		if derr := s.evidence.Delete(*ref); derr != nil {
			log.Warn().Err(derr).Str("key", *ref).Msg("evidence blob delete failed")
		}
	}

	task, err = s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apierror.E(apierror.KindNotFound, "task not found")
	}
	return taskResponse(task), nil
}

// authorizedTask loads the task and checks the actor's scope over its
// assignee. Unknown task ⇒ NotFound; out-of-scope assignee ⇒ Forbidden.
func (s *taskService) authorizedTask(ctx context.Context, actor Actor, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apierror.E(apierror.KindNotFound, "task not found")
	}
	if err := s.scope.CanActOn(ctx, actor, task.AssigneeID); err != nil {
		return nil, err
	}
	return task, nil
}

func taskResponse(t *model.Task) *dto.TaskResponse {
	return &dto.TaskResponse{
		ID:          t.ID.String(),
		AssigneeID:  t.AssigneeID.String(),
		CreatorID:   t.CreatorID.String(),
		Title:       t.Title,
		Note:        t.Note,
		DueAt:       t.DueAt,
		Status:      t.Status,
		ProofImage:  t.ProofImage,
		BeforeImage: t.BeforeImage,
		AfterImage:  t.AfterImage,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
