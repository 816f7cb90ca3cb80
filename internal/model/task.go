package model

import (
	"time"

	"github.com/google/uuid"
)

// Task status: "pending" | "submitted" | "approved" | "rejected".
// Pending → Submitted happens automatically when both evidence slots fill;
// every other transition is an explicit status update and the machine is
// deliberately permissive about direction.
const (
	TaskPending   = "pending"
	TaskSubmitted = "submitted"
	TaskApproved  = "approved"
	TaskRejected  = "rejected"
)

// TaskStatuses enumerates the valid status values for input checking.
var TaskStatuses = []string{TaskPending, TaskSubmitted, TaskApproved, TaskRejected}

// Task is a unit of work assigned down the hierarchy (manager → supervisor,
// supervisor → crew). Evidence slots hold opaque Evidence Store keys.
type Task struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AssigneeID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatorID  uuid.UUID `gorm:"type:uuid;not null"`
	Title      string    `gorm:"not null"`
	Note       *string
	DueAt      time.Time `gorm:"not null;index"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`

	// ProofImage is the legacy single-evidence slot kept for old rows;
	// new uploads go to the before/after pair.
	ProofImage  *string
	BeforeImage *string
	AfterImage  *string

	Assignee *User `gorm:"foreignKey:AssigneeID"`
	Creator  *User `gorm:"foreignKey:CreatorID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidTaskStatus reports whether s is one of the four enumerated values.
func ValidTaskStatus(s string) bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}
