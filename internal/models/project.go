package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle status of an active project.
// Transitions run Draft -> Approved -> Ongoing -> Completed.
type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusApproved  ProjectStatus = "approved"
	StatusOngoing   ProjectStatus = "ongoing"
	StatusCompleted ProjectStatus = "completed"
)

// ProjectStatuses lists every lifecycle status in order.
var ProjectStatuses = []ProjectStatus{StatusDraft, StatusApproved, StatusOngoing, StatusCompleted}

// ProjectCategory classifies the kind of infrastructure work.
type ProjectCategory string

const (
	CategoryRoad        ProjectCategory = "road"
	CategoryBridge      ProjectCategory = "bridge"
	CategoryBuilding    ProjectCategory = "building"
	CategoryWaterSupply ProjectCategory = "water_supply"
	CategoryIrrigation  ProjectCategory = "irrigation"
	CategoryElectrical  ProjectCategory = "electrical"
)

// ProjectCategories lists every category.
var ProjectCategories = []ProjectCategory{
	CategoryRoad, CategoryBridge, CategoryBuilding,
	CategoryWaterSupply, CategoryIrrigation, CategoryElectrical,
}

// Project represents a live construction project under execution.
// It is the mutable ("active") variant of the project record; completed
// historical works live in ArchiveProject.
type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"project_id" validate:"required"`

	Name        string          `gorm:"not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Category    ProjectCategory `gorm:"type:varchar(32);index;not null" json:"category" validate:"required,oneof=road bridge building water_supply irrigation electrical"`
	Status      ProjectStatus   `gorm:"type:varchar(32);index;not null;default:'draft'" json:"status" validate:"required,oneof=draft approved ongoing completed"`

	District   string `gorm:"type:varchar(100);index" json:"district"`
	Fund       string `gorm:"type:varchar(200);index" json:"fund"`
	Contractor string `gorm:"type:varchar(200);index" json:"contractor"`

	EstimatedCost     float64  `json:"estimated_cost" validate:"gte=0"`
	BudgetAllocated   float64  `json:"budget_allocated" validate:"gte=0"`
	BudgetUtilized    float64  `json:"budget_utilized" validate:"gte=0"`
	PhysicalProgress  float64  `json:"physical_progress" validate:"gte=0,lte=100"`
	FinancialProgress *float64 `json:"financial_progress,omitempty" validate:"omitempty,gte=0,lte=100"`

	StartDate       *time.Time `json:"start_date,omitempty"`
	ExpectedEndDate *time.Time `json:"expected_end_date,omitempty"`

	CreatedBy uuid.UUID `gorm:"type:uuid;index;not null" json:"created_by"`

	Queries         []Query          `gorm:"foreignKey:ProjectRef" json:"queries,omitempty"`
	ProgressUpdates []ProgressUpdate `gorm:"foreignKey:ProjectRef" json:"progress_updates,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// OverBudget reports whether spend has exceeded the allocation.
func (p *Project) OverBudget() bool {
	return p.BudgetAllocated > 0 && p.BudgetUtilized > p.BudgetAllocated
}

// UtilizationRate returns budget utilization as a fraction of allocation,
// zero when nothing is allocated.
func (p *Project) UtilizationRate() float64 {
	if p.BudgetAllocated == 0 {
		return 0
	}
	return p.BudgetUtilized / p.BudgetAllocated * 100
}
