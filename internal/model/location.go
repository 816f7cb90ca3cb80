package model

import (
	"time"

	"github.com/google/uuid"
)

// Location is a physical store site. IsLocked is reserved for future
// geofencing; today the location lock is enforced by the session issuer.
type Location struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"uniqueIndex;not null"`
	Address  string
	IsLocked bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
