package service

import (
	"context"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/model"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CriteriaVersion identifies the evaluation criteria set below. The set is
// fixed: changing it rescales every stored total and must ship as a schema
// migration, not a runtime parameter.
const CriteriaVersion = 1

const (
	evaluationMinScore = 1
	evaluationMaxScore = 5
)

// evaluationCriteria is criteria set v1.
var evaluationCriteria = []string{
	"self_development",
	"teamwork",
}

// EvaluationService is the period guard: at most one evaluation exists per
// subject per calendar month, and repeated submissions within a month converge
// by overwriting in place rather than erroring.
type EvaluationService interface {
	// Submit validates the scores against the fixed criteria set, derives the
	// total, and upserts on (subject, month of date).
	Submit(ctx context.Context, actor Actor, req dto.SubmitEvaluationRequest) (*dto.EvaluationResponse, error)
	// CheckPeriod reports whether the subject is already evaluated in the
	// month containing refDate, with the record when present. The server is
	// the source of truth for this gate, never the client.
	CheckPeriod(ctx context.Context, actor Actor, subjectID uuid.UUID, refDate time.Time) (*dto.CheckPeriodResponse, error)
}

type evaluationService struct {
	repo  repository.EvaluationRepository
	scope *ScopeResolver
}

func NewEvaluationService(repo repository.EvaluationRepository, scope *ScopeResolver) EvaluationService {
	return &evaluationService{repo: repo, scope: scope}
}

func (s *evaluationService) Submit(ctx context.Context, actor Actor, req dto.SubmitEvaluationRequest) (*dto.EvaluationResponse, error) {
	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid subject id")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apierror.E(apierror.KindValidation, "invalid date")
	}
	if err := s.scope.CanActOn(ctx, actor, subjectID); err != nil {
		return nil, err
	}

	total, err := TotalScore(req.Scores)
	if err != nil {
		return nil, err
	}

	eval := &model.Evaluation{
		SubjectID:   subjectID,
		EvaluatorID: actor.ID,
		Date:        date,
		Scores:      model.ScoreMap(req.Scores),
		TotalScore:  total,
		Notes:       req.Notes,
	}
	if err := s.repo.Upsert(ctx, eval); err != nil {
		return nil, err
	}
	return evaluationResponse(eval), nil
}

func (s *evaluationService) CheckPeriod(ctx context.Context, actor Actor, subjectID uuid.UUID, refDate time.Time) (*dto.CheckPeriodResponse, error) {
	if err := s.scope.CanActOn(ctx, actor, subjectID); err != nil {
		return nil, err
	}
	eval, err := s.repo.FindBySubjectMonth(ctx, subjectID, refDate)
	if err != nil {
		return nil, err
	}
	resp := &dto.CheckPeriodResponse{Evaluated: eval != nil}
	if eval != nil {
		resp.Data = evaluationResponse(eval)
	}
	return resp, nil
}

// TotalScore derives the 0–100 total from the per-criterion scores. The keys
// must match the criteria set exactly; each value must be between 1 and 5.
// total = sum / (N · max) · 100, so all-fives ⇒ 100 and all-ones ⇒ 20.
func TotalScore(scores map[string]int) (decimal.Decimal, error) {
	if len(scores) != len(evaluationCriteria) {
		return decimal.Zero, apierror.E(apierror.KindValidation, "scores must cover every criterion")
	}
	sum := 0
	for _, key := range evaluationCriteria {
		v, ok := scores[key]
		if !ok {
			return decimal.Zero, apierror.E(apierror.KindValidation, "missing score for criterion "+key)
		}
		if v < evaluationMinScore || v > evaluationMaxScore {
			return decimal.Zero, apierror.E(apierror.KindValidation, "score out of range for criterion "+key)
		}
		sum += v
	}
	max := len(evaluationCriteria) * evaluationMaxScore
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(max))).
		Mul(decimal.NewFromInt(100)).
		Round(2), nil
}

func evaluationResponse(e *model.Evaluation) *dto.EvaluationResponse {
	return &dto.EvaluationResponse{
		ID:          e.ID.String(),
		SubjectID:   e.SubjectID.String(),
		EvaluatorID: e.EvaluatorID.String(),
		Date:        e.Date.Format("2006-01-02"),
		Scores:      map[string]int(e.Scores),
		TotalScore:  e.TotalScore,
		Notes:       e.Notes,
	}
}
