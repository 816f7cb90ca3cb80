package service

import (
	"context"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/model"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"

	"github.com/google/uuid"
)

// Actor is the resolved identity + role + location context of an
// authenticated caller. Every core operation is scoped through it; the core
// itself keeps no per-session state.
type Actor struct {
	ID          uuid.UUID
	Role        string
	ManagerType *string
	LocationID  *uuid.UUID
}

// IsStoreManager reports whether the actor is a location-locked store manager.
func (a Actor) IsStoreManager() bool {
	return a.Role == model.RoleManager && a.ManagerType != nil && *a.ManagerType == model.ManagerTypeStore
}

// ScopeResolver computes which users an actor may see and act on.
//
// Scope rules:
//   - regional manager: all active supervisors; an explicit location filter
//     narrows the set (an unknown location yields an empty set, not an error);
//   - store manager: active supervisors at the manager's own location only; a
//     differing explicit filter is rejected, never silently broadened;
//   - supervisor: active employees at the supervisor's own location;
//   - employee: self only.
type ScopeResolver struct {
	users     repository.UserRepository
	locations repository.LocationRepository
}

func NewScopeResolver(users repository.UserRepository, locations repository.LocationRepository) *ScopeResolver {
	return &ScopeResolver{users: users, locations: locations}
}

// VisibleUsers materializes the actor's visible set, optionally narrowed by an
// explicit location filter.
func (r *ScopeResolver) VisibleUsers(ctx context.Context, actor Actor, locationFilter *uuid.UUID) ([]model.User, error) {
	switch actor.Role {
	case model.RoleManager:
		if actor.IsStoreManager() {
			if actor.LocationID == nil {
				return nil, apierror.E(apierror.KindConfiguration, "store manager has no assigned location")
			}
			// The manager's own location is the only allowed scope.
			if locationFilter != nil && *locationFilter != *actor.LocationID {
				return nil, apierror.E(apierror.KindForbidden, "you are locked to your assigned location")
			}
			return r.users.ListSupervisors(ctx, actor.LocationID)
		}
		// Regional manager: all supervisors, or one location when filtered.
		if locationFilter != nil {
			known, err := r.locations.Exists(ctx, *locationFilter)
			if err != nil {
				return nil, err
			}
			if !known {
				return []model.User{}, nil
			}
		}
		return r.users.ListSupervisors(ctx, locationFilter)

	case model.RoleSupervisor:
		if actor.LocationID == nil {
			return []model.User{}, nil
		}
		return r.users.ListEmployeesByLocation(ctx, *actor.LocationID)

	case model.RoleEmployee:
		self, err := r.users.FindByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if self == nil {
			return []model.User{}, nil
		}
		return []model.User{*self}, nil
	}

	return nil, apierror.E(apierror.KindForbidden, "unknown role")
}

// CanActOn checks whether the actor may read or mutate records belonging to
// the subject. Self-access is always allowed (own tasks, own evaluations);
// anything outside the visible set fails Forbidden, deliberately not NotFound,
// so callers can tell a scope violation from missing data.
func (r *ScopeResolver) CanActOn(ctx context.Context, actor Actor, subjectID uuid.UUID) error {
	if actor.ID == subjectID {
		return nil
	}

	subject, err := r.users.FindByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject == nil {
		return apierror.E(apierror.KindNotFound, "user not found")
	}

	switch actor.Role {
	case model.RoleManager:
		if subject.Role != model.RoleSupervisor || !subject.Active {
			return apierror.E(apierror.KindForbidden, "user is outside your scope")
		}
		if actor.IsStoreManager() {
			if actor.LocationID == nil {
				return apierror.E(apierror.KindConfiguration, "store manager has no assigned location")
			}
			if subject.LocationID == nil || *subject.LocationID != *actor.LocationID {
				return apierror.E(apierror.KindForbidden, "user is outside your scope")
			}
		}
		return nil

	case model.RoleSupervisor:
		if subject.Role != model.RoleEmployee || !subject.Active {
			return apierror.E(apierror.KindForbidden, "user is outside your scope")
		}
		if actor.LocationID == nil || subject.LocationID == nil || *subject.LocationID != *actor.LocationID {
			return apierror.E(apierror.KindForbidden, "user is outside your scope")
		}
		return nil
	}

	// Employees only ever act on themselves, handled above.
	return apierror.E(apierror.KindForbidden, "user is outside your scope")
}
