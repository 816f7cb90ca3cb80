package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationRepository interface {
	// Upsert atomically inserts the evaluation or, when a row for the same
	// (subject, calendar month) already exists, overwrites its payload in
	// place (last write wins). Relies on the unique expression index
	// uni_evaluations_subject_month; see infra.applySchemaPatches.
	// The evaluation is reloaded with the persisted row on return.
	Upsert(ctx context.Context, e *model.Evaluation) error
	// FindBySubjectMonth returns the subject's evaluation for the month
	// containing day, or nil when none exists.
	FindBySubjectMonth(ctx context.Context, subjectID uuid.UUID, day time.Time) (*model.Evaluation, error)
	// LatestBySubject returns the most recent evaluation, or nil.
	LatestBySubject(ctx context.Context, subjectID uuid.UUID) (*model.Evaluation, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.Evaluation, error)
}

type evaluationRepo struct{ db *gorm.DB }

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository { return &evaluationRepo{db: db} }

func (r *evaluationRepo) Upsert(ctx context.Context, e *model.Evaluation) error {
	// GORM's clause.OnConflict cannot target an expression index, so the
	// conflict arbiter is spelled out. EXCLUDED carries the new payload.
	return r.db.WithContext(ctx).Raw(`
		INSERT INTO evaluations (subject_id, evaluator_id, date, scores, total_score, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (subject_id, (date_trunc('month', date)))
		DO UPDATE SET
			evaluator_id = EXCLUDED.evaluator_id,
			date         = EXCLUDED.date,
			scores       = EXCLUDED.scores,
			total_score  = EXCLUDED.total_score,
			notes        = EXCLUDED.notes,
			updated_at   = NOW()
		RETURNING *`,
		e.SubjectID, e.EvaluatorID, e.Date, e.Scores, e.TotalScore, e.Notes,
	).Scan(e).Error
}

func (r *evaluationRepo) FindBySubjectMonth(ctx context.Context, subjectID uuid.UUID, day time.Time) (*model.Evaluation, error) {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var e model.Evaluation
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND date >= ? AND date < ?", subjectID, start, end).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *evaluationRepo) LatestBySubject(ctx context.Context, subjectID uuid.UUID) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("date desc").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *evaluationRepo) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]model.Evaluation, error) {
	var evals []model.Evaluation
	err := r.db.WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("date desc").
		Find(&evals).Error
	return evals, err
}
