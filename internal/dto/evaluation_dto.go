package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SubmitEvaluationRequest carries the raw per-criterion scores; the total is
// always derived server-side, never trusted from the client.
type SubmitEvaluationRequest struct {
	SubjectID string         `json:"subject_id" validate:"required,uuid"`
	Date      string         `json:"date"       validate:"required,datetime=2006-01-02"`
	Scores    map[string]int `json:"scores"     validate:"required,min=1"`
	Notes     *string        `json:"notes"      validate:"omitempty,max=2000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EvaluationResponse struct {
	ID          string          `json:"id"`
	SubjectID   string          `json:"subject_id"`
	EvaluatorID string          `json:"evaluator_id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Scores      map[string]int  `json:"scores"`
	TotalScore  decimal.Decimal `json:"total_score"`
	Notes       *string         `json:"notes"`
}

// CheckPeriodResponse gates the evaluation form: Evaluated reports whether the
// subject already has an evaluation in the month of the reference date.
type CheckPeriodResponse struct {
	Evaluated bool                `json:"evaluated"`
	Data      *EvaluationResponse `json:"data"`
}
