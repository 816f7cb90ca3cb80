package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScoreMap maps criterion key → score (1–5), stored as JSONB.
type ScoreMap map[string]int

func (m ScoreMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *ScoreMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("scores: unsupported scan type %T", value)
	}
}

// Evaluation is one periodic assessment of a subject by an evaluator.
// The date column records the day the evaluation was submitted, but the
// uniqueness the application relies on is monthly: a partial expression index
// on (subject_id, date_trunc('month', date)) guarantees at most one row per
// subject per calendar month (see infra.applySchemaPatches), and writes for an
// already-evaluated month overwrite in place.
type Evaluation struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubjectID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_evaluations_subject_date"`
	EvaluatorID uuid.UUID       `gorm:"type:uuid;not null"`
	Date        time.Time       `gorm:"type:date;not null;index:idx_evaluations_subject_date"`
	Scores      ScoreMap        `gorm:"type:jsonb;not null"`
	TotalScore  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Notes       *string

	Subject   *User `gorm:"foreignKey:SubjectID"`
	Evaluator *User `gorm:"foreignKey:EvaluatorID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
