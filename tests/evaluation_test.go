package tests

import (
	"context"
	"testing"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type evaluationFixture struct {
	*scopeFixture
	evals *stubEvaluationRepo
	svc   service.EvaluationService
}

func newEvaluationFixture(t *testing.T) *evaluationFixture {
	t.Helper()
	f := &evaluationFixture{
		scopeFixture: newScopeFixture(t),
		evals:        newStubEvaluationRepo(),
	}
	f.svc = service.NewEvaluationService(f.evals, f.resolver)
	return f
}

func scoreSet(selfDev, teamwork int) map[string]int {
	return map[string]int{"self_development": selfDev, "teamwork": teamwork}
}

// ── Tests: TotalScore ─────────────────────────────────────────────────────────

func TestTotalScore_AllFives(t *testing.T) {
	total, err := service.TotalScore(scoreSet(5, 5))
	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(100)), "got %s", total)
}

func TestTotalScore_AllOnes(t *testing.T) {
	total, err := service.TotalScore(scoreSet(1, 1))
	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(20)), "got %s", total)
}

func TestTotalScore_Mixed(t *testing.T) {
	// (4+3) / 10 · 100 = 70
	total, err := service.TotalScore(scoreSet(4, 3))
	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(70)), "got %s", total)
}

func TestTotalScore_MissingCriterion(t *testing.T) {
	_, err := service.TotalScore(map[string]int{"self_development": 3})
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestTotalScore_UnknownCriterion(t *testing.T) {
	_, err := service.TotalScore(map[string]int{"self_development": 3, "punctuality": 4})
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestTotalScore_OutOfRange(t *testing.T) {
	_, err := service.TotalScore(scoreSet(0, 3))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
	_, err = service.TotalScore(scoreSet(3, 6))
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

// ── Tests: Submit ─────────────────────────────────────────────────────────────

func TestSubmit_CreatesEvaluation(t *testing.T) {
	f := newEvaluationFixture(t)

	resp, err := f.svc.Submit(context.Background(), actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewA.ID.String(),
		Date:      "2026-02-03",
		Scores:    scoreSet(4, 5),
	})
	assert.NoError(t, err)
	assert.Equal(t, "2026-02-03", resp.Date)
	assert.True(t, resp.TotalScore.Equal(decimal.NewFromInt(90)), "got %s", resp.TotalScore)
	assert.Equal(t, 1, f.evals.count())
}

func TestSubmit_SameMonthOverwritesInPlace(t *testing.T) {
	// Two submissions in one calendar month converge to a single row with the
	// later payload; there is never a duplicate and never an error.
	f := newEvaluationFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewA.ID.String(),
		Date:      "2026-02-03",
		Scores:    scoreSet(3, 3),
	})
	assert.NoError(t, err)

	second, err := f.svc.Submit(ctx, actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewA.ID.String(),
		Date:      "2026-02-20",
		Scores:    scoreSet(5, 5),
		Notes:     strptr("much improved"),
	})
	assert.NoError(t, err)

	assert.Equal(t, 1, f.evals.count())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "2026-02-20", second.Date)
	assert.True(t, second.TotalScore.Equal(decimal.NewFromInt(100)))
}

func TestSubmit_DifferentMonths_SeparateRows(t *testing.T) {
	f := newEvaluationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewA.ID.String(), Date: "2026-01-15", Scores: scoreSet(3, 3),
	})
	assert.NoError(t, err)
	_, err = f.svc.Submit(ctx, actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewA.ID.String(), Date: "2026-02-15", Scores: scoreSet(4, 4),
	})
	assert.NoError(t, err)

	assert.Equal(t, 2, f.evals.count())
}

func TestSubmit_OutOfScope_Forbidden(t *testing.T) {
	f := newEvaluationFixture(t)

	_, err := f.svc.Submit(context.Background(), actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewGrand.ID.String(),
		Date:      "2026-02-03",
		Scores:    scoreSet(4, 4),
	})
	assert.True(t, apierror.Is(err, apierror.KindForbidden))
	assert.Equal(t, 0, f.evals.count())
}

func TestSubmit_ManagerEvaluatesSupervisor(t *testing.T) {
	f := newEvaluationFixture(t)

	resp, err := f.svc.Submit(context.Background(), actorFor(f.rm), dto.SubmitEvaluationRequest{
		SubjectID: f.spvCentral.ID.String(),
		Date:      "2026-03-01",
		Scores:    scoreSet(5, 4),
	})
	assert.NoError(t, err)
	assert.Equal(t, f.rm.ID.String(), resp.EvaluatorID)
}

// ── Tests: CheckPeriod ────────────────────────────────────────────────────────

func TestCheckPeriod_NotEvaluated(t *testing.T) {
	f := newEvaluationFixture(t)

	resp, err := f.svc.CheckPeriod(context.Background(), actorFor(f.spvCentral), f.crewA.ID,
		time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.False(t, resp.Evaluated)
	assert.Nil(t, resp.Data)
}

func TestCheckPeriod_EvaluatedThisMonth(t *testing.T) {
	f := newEvaluationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewA.ID.String(), Date: "2026-02-03", Scores: scoreSet(4, 4),
	})
	assert.NoError(t, err)

	resp, err := f.svc.CheckPeriod(ctx, actorFor(f.spvCentral), f.crewA.ID,
		time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.True(t, resp.Evaluated)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, "2026-02-03", resp.Data.Date)

	// The next month opens a fresh window.
	resp, err = f.svc.CheckPeriod(ctx, actorFor(f.spvCentral), f.crewA.ID,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.False(t, resp.Evaluated)
}

func TestCheckPeriod_CrewChecksOwnRecord(t *testing.T) {
	// Crew may always read their own evaluation state; the route carries no
	// role gate for this reason.
	f := newEvaluationFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, actorFor(f.spvCentral), dto.SubmitEvaluationRequest{
		SubjectID: f.crewA.ID.String(), Date: "2026-02-03", Scores: scoreSet(4, 4),
	})
	assert.NoError(t, err)

	resp, err := f.svc.CheckPeriod(ctx, actorFor(f.crewA), f.crewA.ID,
		time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.True(t, resp.Evaluated)

	// Their own record only: a peer's is still out of scope.
	_, err = f.svc.CheckPeriod(ctx, actorFor(f.crewA), f.crewB.ID, time.Now())
	assert.True(t, apierror.Is(err, apierror.KindForbidden))
}

func TestCheckPeriod_OutOfScope_Forbidden(t *testing.T) {
	f := newEvaluationFixture(t)

	_, err := f.svc.CheckPeriod(context.Background(), actorFor(f.spvCentral), f.crewGrand.ID, time.Now())
	assert.True(t, apierror.Is(err, apierror.KindForbidden))
}
