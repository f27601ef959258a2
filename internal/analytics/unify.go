// Package analytics implements the aggregation core of the dashboard:
// record unification across the live and archived project sets, filter
// construction, grouped accumulation, metric derivation, and time-series
// bucketing. Everything here is pure and read-only; repositories load the
// records and handlers render the results.
package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/infratrack/engine/internal/models"
)

// Variant discriminates the two project record shapes.
type Variant string

const (
	VariantActive   Variant = "active"
	VariantArchived Variant = "archived"
)

// ProjectRecord is a tagged union over the two record shapes. Exactly one of
// Active/Archived is set, matching the Variant tag.
type ProjectRecord struct {
	Variant  Variant
	Active   *models.Project
	Archived *models.ArchiveProject
}

// ActiveRecord wraps a live project.
func ActiveRecord(p *models.Project) ProjectRecord {
	return ProjectRecord{Variant: VariantActive, Active: p}
}

// ArchivedRecord wraps an archived project.
func ArchivedRecord(a *models.ArchiveProject) ProjectRecord {
	return ProjectRecord{Variant: VariantArchived, Archived: a}
}

// CanonicalProject is the unified view over both record variants. Fields a
// variant does not carry stay nil; they are never filled with zero business
// values (a missing financial progress is not 0%).
type CanonicalProject struct {
	Variant   Variant `json:"variant"`
	ProjectID string  `json:"projectId"`
	Name      string  `json:"name"`

	Category   *models.ProjectCategory `json:"category,omitempty"`
	Status     *models.ProjectStatus   `json:"status,omitempty"`
	District   *string                 `json:"district,omitempty"`
	Fund       *string                 `json:"fund,omitempty"`
	Contractor *string                 `json:"contractor,omitempty"`

	EstimatedCost     *float64 `json:"estimatedCost,omitempty"`
	BudgetAllocated   *float64 `json:"budgetAllocated,omitempty"`
	BudgetUtilized    *float64 `json:"budgetUtilized,omitempty"`
	PhysicalProgress  *float64 `json:"physicalProgress,omitempty"`
	FinancialProgress *float64 `json:"financialProgress,omitempty"`

	StartDate      *time.Time `json:"startDate,omitempty"`
	CompletionDate *time.Time `json:"completionDate,omitempty"`
	CreatedBy      *uuid.UUID `json:"createdBy,omitempty"`
}

// CanonicalField names one unified attribute. The set below is the complete
// canonical field list; fieldMappings must cover all of them for every
// variant.
type CanonicalField string

const (
	FieldProjectID         CanonicalField = "projectId"
	FieldName              CanonicalField = "name"
	FieldCategory          CanonicalField = "category"
	FieldStatus            CanonicalField = "status"
	FieldDistrict          CanonicalField = "district"
	FieldFund              CanonicalField = "fund"
	FieldContractor        CanonicalField = "contractor"
	FieldEstimatedCost     CanonicalField = "estimatedCost"
	FieldBudgetAllocated   CanonicalField = "budgetAllocated"
	FieldBudgetUtilized    CanonicalField = "budgetUtilized"
	FieldPhysicalProgress  CanonicalField = "physicalProgress"
	FieldFinancialProgress CanonicalField = "financialProgress"
	FieldStartDate         CanonicalField = "startDate"
	FieldCompletionDate    CanonicalField = "completionDate"
	FieldCreatedBy         CanonicalField = "createdBy"
)

// CanonicalFields is the exhaustive list of unified attributes.
var CanonicalFields = []CanonicalField{
	FieldProjectID, FieldName, FieldCategory, FieldStatus, FieldDistrict,
	FieldFund, FieldContractor, FieldEstimatedCost, FieldBudgetAllocated,
	FieldBudgetUtilized, FieldPhysicalProgress, FieldFinancialProgress,
	FieldStartDate, FieldCompletionDate, FieldCreatedBy,
}

// fieldMappings records, per variant, which source column backs each
// canonical field. An empty string means the variant has no such attribute
// and the canonical field stays nil. Every canonical field must appear under
// both variants; unify_test enforces completeness.
var fieldMappings = map[Variant]map[CanonicalField]string{
	VariantActive: {
		FieldProjectID:         "project_id",
		FieldName:              "name",
		FieldCategory:          "category",
		FieldStatus:            "status",
		FieldDistrict:          "district",
		FieldFund:              "fund",
		FieldContractor:        "contractor",
		FieldEstimatedCost:     "estimated_cost",
		FieldBudgetAllocated:   "budget_allocated",
		FieldBudgetUtilized:    "budget_utilized",
		FieldPhysicalProgress:  "physical_progress",
		FieldFinancialProgress: "financial_progress",
		FieldStartDate:         "start_date",
		FieldCompletionDate:    "",
		FieldCreatedBy:         "created_by",
	},
	VariantArchived: {
		FieldProjectID:         "project_id",
		FieldName:              "name",
		FieldCategory:          "category",
		FieldStatus:            "",
		FieldDistrict:          "district",
		FieldFund:              "",
		FieldContractor:        "contractor",
		FieldEstimatedCost:     "work_value",
		FieldBudgetAllocated:   "",
		FieldBudgetUtilized:    "",
		FieldPhysicalProgress:  "progress",
		FieldFinancialProgress: "",
		FieldStartDate:         "",
		FieldCompletionDate:    "completion_date",
		FieldCreatedBy:         "",
	},
}

// SourceColumn returns the source column backing a canonical field for a
// variant, or "" when the variant has no such attribute.
func SourceColumn(v Variant, f CanonicalField) string {
	return fieldMappings[v][f]
}

// Unify maps a project record of either variant onto the canonical field
// set. It is total: a record with a nil payload unifies to an empty canonical
// project carrying only the variant tag, and variant-absent fields stay nil.
func Unify(rec ProjectRecord) CanonicalProject {
	switch rec.Variant {
	case VariantActive:
		p := rec.Active
		if p == nil {
			return CanonicalProject{Variant: VariantActive}
		}
		return CanonicalProject{
			Variant:           VariantActive,
			ProjectID:         p.ProjectID,
			Name:              p.Name,
			Category:          ptr(p.Category),
			Status:            ptr(p.Status),
			District:          strPtr(p.District),
			Fund:              strPtr(p.Fund),
			Contractor:        strPtr(p.Contractor),
			EstimatedCost:     ptr(p.EstimatedCost),
			BudgetAllocated:   ptr(p.BudgetAllocated),
			BudgetUtilized:    ptr(p.BudgetUtilized),
			PhysicalProgress:  ptr(p.PhysicalProgress),
			FinancialProgress: p.FinancialProgress,
			StartDate:         p.StartDate,
			CreatedBy:         ptr(p.CreatedBy),
		}
	case VariantArchived:
		a := rec.Archived
		if a == nil {
			return CanonicalProject{Variant: VariantArchived}
		}
		c := CanonicalProject{
			Variant:          VariantArchived,
			ProjectID:        a.ProjectID,
			Name:             a.Name,
			District:         strPtr(a.District),
			Contractor:       strPtr(a.Contractor),
			EstimatedCost:    ptr(a.WorkValue),
			PhysicalProgress: ptr(a.Progress),
			CompletionDate:   a.CompletionDate,
		}
		if a.Category != "" {
			c.Category = ptr(a.Category)
		}
		return c
	default:
		return CanonicalProject{Variant: rec.Variant}
	}
}

func ptr[T any](v T) *T { return &v }

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
