package models

import (
	"time"

	"github.com/google/uuid"
)

// QueryStatus is the workflow status of a raised query.
type QueryStatus string

const (
	QueryOpen        QueryStatus = "open"
	QueryInProgress  QueryStatus = "in_progress"
	QueryUnderReview QueryStatus = "under_review"
	QueryResolved    QueryStatus = "resolved"
	QueryClosed      QueryStatus = "closed"
	QueryEscalated   QueryStatus = "escalated"
)

// QueryStatuses lists every query status.
var QueryStatuses = []QueryStatus{
	QueryOpen, QueryInProgress, QueryUnderReview,
	QueryResolved, QueryClosed, QueryEscalated,
}

// QueryPriority ranks how pressing a query is.
type QueryPriority string

const (
	PriorityLow    QueryPriority = "low"
	PriorityMedium QueryPriority = "medium"
	PriorityHigh   QueryPriority = "high"
	PriorityUrgent QueryPriority = "urgent"
)

// QueryPriorities lists every priority.
var QueryPriorities = []QueryPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// QueryCategory classifies what a query concerns.
type QueryCategory string

const (
	QueryCategoryTechnical      QueryCategory = "technical"
	QueryCategoryFinancial      QueryCategory = "financial"
	QueryCategoryAdministrative QueryCategory = "administrative"
	QueryCategoryLegal          QueryCategory = "legal"
	QueryCategorySafety         QueryCategory = "safety"
	QueryCategoryQuality        QueryCategory = "quality"
)

// QueryCategories lists every query category.
var QueryCategories = []QueryCategory{
	QueryCategoryTechnical, QueryCategoryFinancial, QueryCategoryAdministrative,
	QueryCategoryLegal, QueryCategorySafety, QueryCategoryQuality,
}

// Query is an issue raised against an active project that needs resolution,
// possibly escalated through higher authorities. Soft-deleted queries keep
// their row with IsActive=false and are excluded from every KPI.
type Query struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectRef uuid.UUID `gorm:"type:uuid;index;not null" json:"project_ref"`

	Subject  string        `gorm:"not null" json:"subject" validate:"required"`
	Status   QueryStatus   `gorm:"type:varchar(32);index;not null;default:'open'" json:"status" validate:"required,oneof=open in_progress under_review resolved closed escalated"`
	Priority QueryPriority `gorm:"type:varchar(16);index;not null;default:'medium'" json:"priority" validate:"required,oneof=low medium high urgent"`
	Category QueryCategory `gorm:"type:varchar(32);index;not null" json:"category" validate:"required,oneof=technical financial administrative legal safety quality"`

	EscalationLevel int `gorm:"not null;default:0" json:"escalation_level" validate:"gte=0"`

	RaisedDate             time.Time  `gorm:"index;not null" json:"raised_date"`
	ExpectedResolutionDate time.Time  `gorm:"not null" json:"expected_resolution_date"`
	ActualResolutionDate   *time.Time `json:"actual_resolution_date,omitempty"`

	RaisedBy uuid.UUID `gorm:"type:uuid;index" json:"raised_by"`
	IsActive bool      `gorm:"not null;default:true;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resolved reports whether the query reached a terminal resolved/closed state.
func (q *Query) Resolved() bool {
	return q.Status == QueryResolved || q.Status == QueryClosed
}

// Overdue reports whether the query missed its expected resolution date as of
// now. Resolved queries compare their actual resolution date against the
// expectation; open ones compare the supplied clock. A nil actual date is
// never treated as "now".
func (q *Query) Overdue(now time.Time) bool {
	if q.ActualResolutionDate != nil {
		return q.ActualResolutionDate.After(q.ExpectedResolutionDate)
	}
	if q.Resolved() {
		return false
	}
	return now.After(q.ExpectedResolutionDate)
}

// DaysOverdue returns whole days past the expected resolution date, zero when
// not overdue.
func (q *Query) DaysOverdue(now time.Time) int {
	if !q.Overdue(now) {
		return 0
	}
	ref := now
	if q.ActualResolutionDate != nil {
		ref = *q.ActualResolutionDate
	}
	d := int(ref.Sub(q.ExpectedResolutionDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
