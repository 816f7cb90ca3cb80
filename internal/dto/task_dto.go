package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateTaskRequest struct {
	AssigneeID string    `json:"assignee_id" validate:"required,uuid"`
	Title      string    `json:"title"       validate:"required,min=1,max=200"`
	DueAt      time.Time `json:"due_at"      validate:"required"`
	Note       *string   `json:"note"        validate:"omitempty,max=2000"`
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending submitted approved rejected"`
}

// RemoveEvidenceRequest names the slot to clear; "proof" is the legacy
// single-image slot.
type RemoveEvidenceRequest struct {
	Type string `json:"type" validate:"required,oneof=before after proof"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TaskResponse struct {
	ID          string    `json:"id"`
	AssigneeID  string    `json:"assignee_id"`
	CreatorID   string    `json:"creator_id"`
	Title       string    `json:"title"`
	Note        *string   `json:"note"`
	DueAt       time.Time `json:"due_at"`
	Status      string    `json:"status"`
	ProofImage  *string   `json:"proof_image"`
	BeforeImage *string   `json:"before_image"`
	AfterImage  *string   `json:"after_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
