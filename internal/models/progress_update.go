package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressUpdate is a timestamped progress report filed against a project.
type ProgressUpdate struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectRef uuid.UUID `gorm:"type:uuid;index;not null" json:"project_ref"`

	PhysicalProgress  float64  `json:"physical_progress" validate:"gte=0,lte=100"`
	FinancialProgress *float64 `json:"financial_progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	Note              string   `gorm:"type:text" json:"note"`

	ReportedBy uuid.UUID `gorm:"type:uuid;index" json:"reported_by"`
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
