package repository

import (
	"context"
	"errors"

	"github.com/gabrielle-jeco/personal-performance-app/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationRepository interface {
	Create(ctx context.Context, l *model.Location) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]model.Location, error)
}

type locationRepo struct{ db *gorm.DB }

func NewLocationRepository(db *gorm.DB) LocationRepository { return &locationRepo{db: db} }

func (r *locationRepo) Create(ctx context.Context, l *model.Location) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *locationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var l model.Location
	err := r.db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &l, err
}

func (r *locationRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Location{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *locationRepo) List(ctx context.Context) ([]model.Location, error) {
	var locs []model.Location
	err := r.db.WithContext(ctx).Order("name asc").Find(&locs).Error
	return locs, err
}
