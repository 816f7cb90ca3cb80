package repository

import (
	"context"
	"errors"

	"github.com/gabrielle-jeco/personal-performance-app/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	// FindByUsername returns the user regardless of active state; the session
	// issuer needs to distinguish inactive accounts from bad credentials.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// ListSupervisors returns active supervisors, optionally restricted to one
	// location. A nil filter means all locations.
	ListSupervisors(ctx context.Context, locationID *uuid.UUID) ([]model.User, error)
	// ListEmployeesByLocation returns active crew members at a location.
	ListEmployeesByLocation(ctx context.Context, locationID uuid.UUID) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	// Accept login by username OR email (case-insensitive email match)
	err := r.db.WithContext(ctx).
		Where("username = ? OR LOWER(email::text) = LOWER(?)", username, username).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Preload("Location").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepo) ListSupervisors(ctx context.Context, locationID *uuid.UUID) ([]model.User, error) {
	var users []model.User
	q := r.db.WithContext(ctx).Preload("Location").
		Where("role = ? AND active = true", model.RoleSupervisor)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	err := q.Order("full_name asc").Find(&users).Error
	return users, err
}

func (r *userRepo) ListEmployeesByLocation(ctx context.Context, locationID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Preload("Location").
		Where("role = ? AND location_id = ? AND active = true", model.RoleEmployee, locationID).
		Order("full_name asc").
		Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}
