package models

import (
	"time"

	"github.com/google/uuid"
)

// ArchiveProject is the immutable historical variant of a project record.
// Field names differ from Project on purpose: archives were imported from the
// legacy works register (workValue instead of estimatedCost, progress instead
// of physicalProgress) and are never rewritten to the live schema. The
// analytics unifier maps both shapes onto one canonical field set.
type ArchiveProject struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID string    `gorm:"type:varchar(64);index;not null" json:"project_id" validate:"required"`

	Name     string          `gorm:"not null" json:"name" validate:"required"`
	Category ProjectCategory `gorm:"type:varchar(32);index" json:"category"`

	District   string `gorm:"type:varchar(100);index" json:"district"`
	Contractor string `gorm:"type:varchar(200);index" json:"contractor"`

	// WorkValue is the sanctioned value of the archived work; the legacy
	// register has no separate allocation/utilization split and no fund head.
	WorkValue float64 `json:"work_value" validate:"gte=0"`
	Progress  float64 `json:"progress" validate:"gte=0,lte=100"`

	CompletionDate *time.Time `gorm:"index" json:"completion_date,omitempty"`
	ArchivedAt     time.Time  `gorm:"index;not null" json:"archived_at"`

	CreatedAt time.Time `json:"created_at"`
}
