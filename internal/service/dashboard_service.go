package service

import (
	"context"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/infra"
	"github.com/gabrielle-jeco/personal-performance-app/internal/model"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// taskProgressWindow is the look-back used for the task completion metric.
const taskProgressWindow = 30 * 24 * time.Hour

// topPerformerThreshold marks the score above which a subordinate gets the
// top-performer flag on dashboards.
var topPerformerThreshold = decimal.NewFromInt(95)

// DashboardService produces the subordinate lists with computed performance
// metrics. Scores come from evaluation history and task approval ratios —
// there is no sampled demo data anywhere in these numbers.
type DashboardService interface {
	// ManagerSupervisors lists the manager's visible supervisors with metrics,
	// the location dropdown, and group averages.
	ManagerSupervisors(ctx context.Context, actor Actor, locationFilter *uuid.UUID) (*dto.ManagerDashboardResponse, error)
	// SupervisorCrews lists the supervisor's crew with the same metric shape.
	SupervisorCrews(ctx context.Context, actor Actor) (*dto.SupervisorDashboardResponse, error)
	// SupervisorStats is the supervisor's own performance card, including
	// today's attendance from the external provider (opaque, possibly mock).
	SupervisorStats(ctx context.Context, actor Actor) (*dto.SupervisorStatsResponse, error)
}

type dashboardService struct {
	users       repository.UserRepository
	locations   repository.LocationRepository
	tasks       repository.TaskRepository
	evaluations repository.EvaluationRepository
	scope       *ScopeResolver
	external    infra.ExternalDataProvider
}

func NewDashboardService(
	users repository.UserRepository,
	locations repository.LocationRepository,
	tasks repository.TaskRepository,
	evaluations repository.EvaluationRepository,
	scope *ScopeResolver,
	external infra.ExternalDataProvider,
) DashboardService {
	return &dashboardService{
		users:       users,
		locations:   locations,
		tasks:       tasks,
		evaluations: evaluations,
		scope:       scope,
		external:    external,
	}
}

func (s *dashboardService) ManagerSupervisors(ctx context.Context, actor Actor, locationFilter *uuid.UUID) (*dto.ManagerDashboardResponse, error) {
	if actor.Role != model.RoleManager {
		return nil, apierror.E(apierror.KindForbidden, "manager role required")
	}
	manager, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, apierror.E(apierror.KindNotFound, "user not found")
	}

	supervisors, err := s.scope.VisibleUsers(ctx, actor, locationFilter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ManagerDashboardResponse{
		Manager: dto.ManagerInfo{
			Name: manager.FullName,
			Role: managerRoleLabel(manager),
			Type: derefOr(manager.ManagerType, ""),
		},
		LocationName: "All Locations",
	}

	// Location dropdown: an SM only ever sees their own site; an RM gets the
	// full list to filter by.
	var scopedLocation *uuid.UUID
	if actor.IsStoreManager() {
		if manager.Location != nil {
			resp.LocationName = manager.Location.Name
			resp.Locations = []dto.LocationOption{{ID: manager.Location.ID.String(), Name: manager.Location.Name}}
			scopedLocation = &manager.Location.ID
		}
	} else {
		all, err := s.locations.List(ctx)
		if err != nil {
			return nil, err
		}
		resp.Locations = make([]dto.LocationOption, len(all))
		for i, l := range all {
			resp.Locations[i] = dto.LocationOption{ID: l.ID.String(), Name: l.Name}
			if locationFilter != nil && l.ID == *locationFilter {
				resp.LocationName = l.Name
			}
		}
		scopedLocation = locationFilter
	}

	// Store figures only make sense for a single site. Display-only, so a
	// dead provider must not break the dashboard.
	if scopedLocation != nil {
		if metrics, err := s.external.LocationMetrics(ctx, *scopedLocation); err != nil {
			log.Warn().Err(err).Msg("location metrics provider unavailable")
		} else {
			resp.StoreMetrics = &dto.StoreMetricsInfo{Sales: metrics.Sales, CustomerCount: metrics.CustomerCount}
		}
	}

	resp.Supervisors, resp.LocationAvgProgress, err = s.subordinateMetrics(ctx, supervisors, "Supervisor")
	return resp, err
}

func (s *dashboardService) SupervisorCrews(ctx context.Context, actor Actor) (*dto.SupervisorDashboardResponse, error) {
	if actor.Role != model.RoleSupervisor {
		return nil, apierror.E(apierror.KindForbidden, "supervisor role required")
	}
	supervisor, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if supervisor == nil {
		return nil, apierror.E(apierror.KindNotFound, "user not found")
	}

	crews, err := s.scope.VisibleUsers(ctx, actor, nil)
	if err != nil {
		return nil, err
	}

	locationName := "Unknown"
	if supervisor.Location != nil {
		locationName = supervisor.Location.Name
	}
	resp := &dto.SupervisorDashboardResponse{
		Supervisor: dto.SupervisorInfo{
			ID:       supervisor.ID.String(),
			Name:     supervisor.FullName,
			Role:     "Supervisor",
			Location: locationName,
		},
		LocationName: locationName,
	}
	resp.Crews, resp.LocationAvgProgress, err = s.subordinateMetrics(ctx, crews, "Crew")
	return resp, err
}

func (s *dashboardService) SupervisorStats(ctx context.Context, actor Actor) (*dto.SupervisorStatsResponse, error) {
	if actor.Role != model.RoleSupervisor {
		return nil, apierror.E(apierror.KindForbidden, "supervisor role required")
	}

	evals, err := s.evaluations.ListBySubject(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	myAvg := decimal.Zero
	if len(evals) > 0 {
		sum := decimal.Zero
		for _, e := range evals {
			sum = sum.Add(e.TotalScore)
		}
		myAvg = sum.Div(decimal.NewFromInt(int64(len(evals)))).Round(1)
	}

	approved, total, err := s.tasks.StatusCounts(ctx, actor.ID, time.Now().Add(-taskProgressWindow))
	if err != nil {
		return nil, err
	}

	crews, err := s.scope.VisibleUsers(ctx, actor, nil)
	if err != nil {
		return nil, err
	}
	crewAvg := decimal.Zero
	if len(crews) > 0 {
		sum := decimal.Zero
		for i := range crews {
			score, err := s.currentScore(ctx, crews[i].ID)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(score)
		}
		crewAvg = sum.Div(decimal.NewFromInt(int64(len(crews)))).Round(1)
	}

	resp := &dto.SupervisorStatsResponse{
		MyAvgPoint:    myAvg,
		TasksApproved: approved,
		TasksTotal:    total,
		CompletionPct: percentage(approved, total),
		CrewCount:     len(crews),
		CrewAvgPoint:  crewAvg,
	}

	// Attendance is display-only; a dead provider must not break the card.
	if att, err := s.external.Attendance(ctx, actor.ID, time.Now()); err != nil {
		log.Warn().Err(err).Msg("attendance provider unavailable")
	} else {
		resp.Attendance = &dto.AttendanceInfo{TimeIn: att.TimeIn, TimeOut: att.TimeOut, Status: att.Status}
	}
	return resp, nil
}

// subordinateMetrics computes one metrics row per user plus the group's
// average task progress.
func (s *dashboardService) subordinateMetrics(ctx context.Context, users []model.User, roleLabel string) ([]dto.SubordinateMetrics, decimal.Decimal, error) {
	rows := make([]dto.SubordinateMetrics, len(users))
	progressSum := decimal.Zero

	for i := range users {
		u := &users[i]

		score, err := s.currentScore(ctx, u.ID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		approved, total, err := s.tasks.StatusCounts(ctx, u.ID, time.Now().Add(-taskProgressWindow))
		if err != nil {
			return nil, decimal.Zero, err
		}
		progress := percentage(approved, total)
		progressSum = progressSum.Add(progress)

		status := "inactive"
		if u.Active {
			status = "active"
		}
		locationName := "N/A"
		if u.Location != nil {
			locationName = u.Location.Name
		}
		rows[i] = dto.SubordinateMetrics{
			ID:                 u.ID.String(),
			Name:               u.FullName,
			Role:               roleLabel,
			Location:           locationName,
			Status:             status,
			Score:              score,
			ActivityPercentage: score,
			TaskProgress:       progress,
			IsTopPerformer:     score.GreaterThanOrEqual(topPerformerThreshold),
		}
	}

	avg := decimal.Zero
	if len(rows) > 0 {
		avg = progressSum.Div(decimal.NewFromInt(int64(len(rows)))).Round(1)
	}
	return rows, avg, nil
}

// currentScore is the subject's evaluation total for the current month,
// falling back to the latest evaluation on record, then zero.
func (s *dashboardService) currentScore(ctx context.Context, subjectID uuid.UUID) (decimal.Decimal, error) {
	eval, err := s.evaluations.FindBySubjectMonth(ctx, subjectID, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	if eval == nil {
		eval, err = s.evaluations.LatestBySubject(ctx, subjectID)
		if err != nil {
			return decimal.Zero, err
		}
	}
	if eval == nil {
		return decimal.Zero, nil
	}
	return eval.TotalScore, nil
}

func percentage(part, whole int64) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).
		Div(decimal.NewFromInt(whole)).
		Mul(decimal.NewFromInt(100)).
		Round(1)
}

func managerRoleLabel(u *model.User) string {
	if u.IsStoreManager() {
		return "Store Manager"
	}
	if u.IsRegionalManager() {
		return "Regional Manager"
	}
	return "Manager"
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
