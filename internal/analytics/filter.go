package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/infratrack/engine/internal/models"
)

// Window clamps, role-independent. Out-of-range requests clamp silently
// instead of erroring so stale dashboard links keep working.
const (
	MaxQueryWindowDays   = 365
	MaxArchiveWindowDays = 1095

	DefaultQueryWindowDays   = 30
	DefaultArchiveWindowDays = 365
)

// SortDirection is the resolved ordering for ranked results.
type SortDirection int

const (
	SortAsc  SortDirection = 1
	SortDesc SortDirection = -1
)

// ParseSortDirection accepts a signed integer or "asc"/"desc" (any case).
// Unparseable values resolve to descending; sort direction never errors.
func ParseSortDirection(v any) SortDirection {
	switch d := v.(type) {
	case int:
		if d > 0 {
			return SortAsc
		}
		return SortDesc
	case int64:
		if d > 0 {
			return SortAsc
		}
		return SortDesc
	case float64:
		if d > 0 {
			return SortAsc
		}
		return SortDesc
	case string:
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "asc", "ascending":
			return SortAsc
		case "desc", "descending":
			return SortDesc
		}
		if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil && n > 0 {
			return SortAsc
		}
		return SortDesc
	default:
		return SortDesc
	}
}

// ClampWindowDays bounds a requested window to [1, max], substituting def for
// zero or negative input.
func ClampWindowDays(days, def, max int) int {
	if days <= 0 {
		return def
	}
	if days > max {
		return max
	}
	return days
}

// FilterParams are the caller-supplied constraints, already syntactically
// validated by the API layer.
type FilterParams struct {
	TimeRangeDays int
	District      string
	Fund          string
	Contractor    string
	Category      models.ProjectCategory
	Status        models.ProjectStatus
	Priority      models.QueryPriority
	MinValue      *float64
	MaxValue      *float64
	GroupBy       string
	SortBy        string
	SortDir       any
}

// FilterDescriptor is the normalized constraint set consumed by aggregation:
// the role restriction ANDed with every explicit parameter filter. There are
// no OR semantics across independent filters.
type FilterDescriptor struct {
	Role models.Role

	// CreatedBy carries the role restriction. Once set it is never widened
	// or cleared by parameters.
	CreatedBy *uuid.UUID

	WindowStart time.Time
	WindowEnd   time.Time

	District   string
	Fund       string
	Contractor string
	Category   models.ProjectCategory
	Status     models.ProjectStatus
	Priority   models.QueryPriority
	MinValue   *float64
	MaxValue   *float64

	GroupBy string
	SortBy  string
	SortDir SortDirection
}

// BuildFilter normalizes role and parameters into a FilterDescriptor. The
// role restriction is applied first: a junior engineer only ever sees its own
// creations regardless of what the parameters ask for. The window is clamped
// to maxWindowDays and anchored at now.
func BuildFilter(role models.Role, userID uuid.UUID, p FilterParams, now time.Time, defWindowDays, maxWindowDays int) FilterDescriptor {
	d := FilterDescriptor{
		Role:       role,
		District:   p.District,
		Fund:       p.Fund,
		Contractor: p.Contractor,
		Category:   p.Category,
		Status:     p.Status,
		Priority:   p.Priority,
		MinValue:   p.MinValue,
		MaxValue:   p.MaxValue,
		GroupBy:    p.GroupBy,
		SortBy:     p.SortBy,
		SortDir:    ParseSortDirection(p.SortDir),
	}

	if role == models.RoleJuniorEngineer {
		uid := userID
		d.CreatedBy = &uid
	}

	days := ClampWindowDays(p.TimeRangeDays, defWindowDays, maxWindowDays)
	d.WindowEnd = now
	d.WindowStart = now.AddDate(0, 0, -days)

	return d
}

// WindowDays returns the resolved window length in whole days.
func (f FilterDescriptor) WindowDays() int {
	return int(f.WindowEnd.Sub(f.WindowStart).Hours() / 24)
}

// Apply pushes the descriptor onto a live-project query. Column names follow
// the active variant's schema.
func (f FilterDescriptor) Apply(tx *gorm.DB) *gorm.DB {
	if f.CreatedBy != nil {
		tx = tx.Where("created_by = ?", *f.CreatedBy)
	}
	if f.District != "" {
		tx = tx.Where("district = ?", f.District)
	}
	if f.Fund != "" {
		tx = tx.Where("fund = ?", f.Fund)
	}
	if f.Contractor != "" {
		tx = tx.Where("contractor = ?", f.Contractor)
	}
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.MinValue != nil {
		tx = tx.Where("estimated_cost >= ?", *f.MinValue)
	}
	if f.MaxValue != nil {
		tx = tx.Where("estimated_cost <= ?", *f.MaxValue)
	}
	return tx.Where("created_at BETWEEN ? AND ?", f.WindowStart, f.WindowEnd)
}

// ApplyArchive pushes the descriptor onto an archived-project query using the
// archive schema's column names. Archives carry no fund head and no creator,
// so those filters do not narrow the archived set.
func (f FilterDescriptor) ApplyArchive(tx *gorm.DB) *gorm.DB {
	if f.District != "" {
		tx = tx.Where("district = ?", f.District)
	}
	if f.Contractor != "" {
		tx = tx.Where("contractor = ?", f.Contractor)
	}
	if f.Category != "" {
		tx = tx.Where("category = ?", f.Category)
	}
	if f.MinValue != nil {
		tx = tx.Where("work_value >= ?", *f.MinValue)
	}
	if f.MaxValue != nil {
		tx = tx.Where("work_value <= ?", *f.MaxValue)
	}
	return tx.Where("archived_at BETWEEN ? AND ?", f.WindowStart, f.WindowEnd)
}

// sortColumns whitelists the orderable live-project columns. Sort fields are
// caller-supplied free text; anything outside this map never reaches SQL.
var sortColumns = map[string]string{
	"createdAt":        "created_at",
	"estimatedCost":    "estimated_cost",
	"physicalProgress": "physical_progress",
	"district":         "district",
	"status":           "status",
}

// OrderClause resolves the descriptor's sort into a SQL order expression.
// Unknown sort fields fall back to creation time.
func (f FilterDescriptor) OrderClause() string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	if f.SortDir == SortAsc {
		return col + " ASC"
	}
	return col + " DESC"
}

// MatchQuery evaluates the descriptor's sub-record constraints against an
// embedded query. Soft-deleted queries never match.
func (f FilterDescriptor) MatchQuery(q models.Query) bool {
	if !q.IsActive {
		return false
	}
	if f.Priority != "" && q.Priority != f.Priority {
		return false
	}
	if q.RaisedDate.Before(f.WindowStart) || q.RaisedDate.After(f.WindowEnd) {
		return false
	}
	return true
}
