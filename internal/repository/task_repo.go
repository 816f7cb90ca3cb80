package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvidenceSlot names one of the two evidence columns on a task.
type EvidenceSlot string

const (
	SlotBefore EvidenceSlot = "before"
	SlotAfter  EvidenceSlot = "after"
)

// column maps a slot to its SQL column. Slots are a closed set; anything else
// is a programming error.
func (s EvidenceSlot) column() (string, error) {
	switch s {
	case SlotBefore:
		return "before_image", nil
	case SlotAfter:
		return "after_image", nil
	}
	return "", fmt.Errorf("unknown evidence slot %q", s)
}

type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	// ListByAssignee returns the assignee's tasks ordered by due_at ascending,
	// optionally only those due on a given calendar day.
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID, dueOn *time.Time) ([]model.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// SetEvidenceSlot writes one slot reference (nil clears it).
	SetEvidenceSlot(ctx context.Context, id uuid.UUID, slot EvidenceSlot, ref *string) error
	ClearProofImage(ctx context.Context, id uuid.UUID) error
	// AutoSubmitIfComplete advances a pending task to submitted iff both
	// evidence slots are non-null *in the database right now*. The guarded
	// UPDATE reads persisted state, so two racing slot uploads cannot both
	// observe a stale half-filled row. Returns whether the transition fired.
	AutoSubmitIfComplete(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// StatusCounts returns (approved, total) among the assignee's tasks due
	// since the given time. Used by the dashboard aggregates.
	StatusCounts(ctx context.Context, assigneeID uuid.UUID, since time.Time) (approved, total int64, err error)
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepository(db *gorm.DB) TaskRepository { return &taskRepo{db: db} }

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taskRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var t model.Task
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *taskRepo) ListByAssignee(ctx context.Context, assigneeID uuid.UUID, dueOn *time.Time) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).Where("assignee_id = ?", assigneeID)
	if dueOn != nil {
		q = q.Where("due_at >= ? AND due_at < ?", dueOn.Truncate(24*time.Hour), dueOn.Truncate(24*time.Hour).Add(24*time.Hour))
	}
	err := q.Order("due_at asc").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Update("status", status).Error
}

func (r *taskRepo) SetEvidenceSlot(ctx context.Context, id uuid.UUID, slot EvidenceSlot, ref *string) error {
	col, err := slot.column()
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Update(col, ref).Error
}

func (r *taskRepo) ClearProofImage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).
		Update("proof_image", nil).Error
}

func (r *taskRepo) AutoSubmitIfComplete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE tasks SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
		  AND before_image IS NOT NULL AND after_image IS NOT NULL`,
		model.TaskSubmitted, id, model.TaskPending)
	return res.RowsAffected > 0, res.Error
}

func (r *taskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Task{}, id).Error
}

func (r *taskRepo) StatusCounts(ctx context.Context, assigneeID uuid.UUID, since time.Time) (int64, int64, error) {
	var row struct {
		Approved int64
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("COUNT(*) FILTER (WHERE status = ?) AS approved, COUNT(*) AS total", model.TaskApproved).
		Where("assignee_id = ? AND due_at >= ?", assigneeID, since).
		Scan(&row).Error
	return row.Approved, row.Total, err
}
