package model

import (
	"time"

	"github.com/google/uuid"
)

// Role: "employee" | "supervisor" | "manager"
const (
	RoleEmployee   = "employee"
	RoleSupervisor = "supervisor"
	RoleManager    = "manager"
)

// ManagerType: "SM" (store manager) | "RM" (regional manager).
// Only populated when Role == RoleManager.
const (
	ManagerTypeStore    = "SM"
	ManagerTypeRegional = "RM"
)

// User stores all staff accounts across the hierarchy: crew (employee),
// supervisors, and store/regional managers.
//
// Invariants:
//   - an SM must have a non-nil LocationID (checked again at login as a
//     configuration guard);
//   - an RM with nil LocationID oversees all locations;
//   - employees and supervisors belong to the location they work at.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string     `gorm:"uniqueIndex;not null"`
	FullName     string     `gorm:"not null"`
	Email        *string    `gorm:"uniqueIndex"`
	PasswordHash string     `gorm:"not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	ManagerType  *string    `gorm:"type:varchar(2)"`
	LocationID   *uuid.UUID `gorm:"type:uuid;index;constraint:OnDelete:SET NULL"`
	Active       bool       `gorm:"not null;default:true"`

	Location *Location `gorm:"foreignKey:LocationID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsStoreManager reports whether the user is a location-locked store manager.
func (u *User) IsStoreManager() bool {
	return u.Role == RoleManager && u.ManagerType != nil && *u.ManagerType == ManagerTypeStore
}

// IsRegionalManager reports whether the user is an RM (no location lock).
func (u *User) IsRegionalManager() bool {
	return u.Role == RoleManager && u.ManagerType != nil && *u.ManagerType == ManagerTypeRegional
}
