package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/infratrack/engine/internal/models"
)

func TestFieldMappingsCompleteness(t *testing.T) {
	for _, variant := range []Variant{VariantActive, VariantArchived} {
		mapping, ok := fieldMappings[variant]
		require.True(t, ok, "variant %s has no mapping table", variant)
		require.Len(t, mapping, len(CanonicalFields), "variant %s mapping size", variant)
		for _, f := range CanonicalFields {
			_, ok := mapping[f]
			require.True(t, ok, "variant %s missing entry for canonical field %s", variant, f)
		}
	}
}

func TestUnifyActive(t *testing.T) {
	fin := 42.5
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	creator := uuid.New()
	p := &models.Project{
		ProjectID:         "PRJ-001",
		Name:              "Ring Road Phase II",
		Category:          models.CategoryRoad,
		Status:            models.StatusOngoing,
		District:          "North",
		Fund:              "State Infrastructure Fund",
		Contractor:        "Apex Constructions",
		EstimatedCost:     1500000,
		BudgetAllocated:   1200000,
		BudgetUtilized:    800000,
		PhysicalProgress:  55,
		FinancialProgress: &fin,
		StartDate:         &start,
		CreatedBy:         creator,
	}

	c := Unify(ActiveRecord(p))
	require.Equal(t, VariantActive, c.Variant)
	require.Equal(t, "PRJ-001", c.ProjectID)
	require.NotNil(t, c.Fund)
	require.Equal(t, "State Infrastructure Fund", *c.Fund)
	require.NotNil(t, c.EstimatedCost)
	require.Equal(t, 1500000.0, *c.EstimatedCost)
	require.NotNil(t, c.FinancialProgress)
	require.Equal(t, 42.5, *c.FinancialProgress)
	require.NotNil(t, c.CreatedBy)
	require.Equal(t, creator, *c.CreatedBy)
	// Active records have no completion date.
	require.Nil(t, c.CompletionDate)
}

func TestUnifyArchivedMapsLegacyNames(t *testing.T) {
	done := time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC)
	a := &models.ArchiveProject{
		ProjectID:      "PRJ-A-099",
		Name:           "Old Bypass",
		Category:       models.CategoryRoad,
		District:       "South",
		Contractor:     "Legacy Builders",
		WorkValue:      900000,
		Progress:       100,
		CompletionDate: &done,
	}

	c := Unify(ArchivedRecord(a))
	require.Equal(t, VariantArchived, c.Variant)
	// workValue maps onto estimatedCost, progress onto physicalProgress.
	require.NotNil(t, c.EstimatedCost)
	require.Equal(t, 900000.0, *c.EstimatedCost)
	require.NotNil(t, c.PhysicalProgress)
	require.Equal(t, 100.0, *c.PhysicalProgress)
	require.Equal(t, &done, c.CompletionDate)
}

func TestUnifyArchivedAbsentFieldsStayNil(t *testing.T) {
	c := Unify(ArchivedRecord(&models.ArchiveProject{ProjectID: "PRJ-A-001", Name: "x"}))
	require.Nil(t, c.Fund)
	require.Nil(t, c.Status)
	require.Nil(t, c.BudgetAllocated)
	require.Nil(t, c.BudgetUtilized)
	require.Nil(t, c.FinancialProgress)
	require.Nil(t, c.StartDate)
	require.Nil(t, c.CreatedBy)
}

func TestUnifyMissingFinancialProgressIsNotZero(t *testing.T) {
	c := Unify(ActiveRecord(&models.Project{ProjectID: "PRJ-002", Name: "y"}))
	// A project that never reported financial progress must unify to an
	// absent value, not 0%.
	require.Nil(t, c.FinancialProgress)
}

func TestUnifyTotality(t *testing.T) {
	cases := []ProjectRecord{
		ActiveRecord(nil),
		ArchivedRecord(nil),
		ActiveRecord(&models.Project{}),
		ArchivedRecord(&models.ArchiveProject{}),
		{Variant: Variant("unknown")},
		{},
	}
	for _, rec := range cases {
		require.NotPanics(t, func() { Unify(rec) })
	}
}

func TestSourceColumn(t *testing.T) {
	require.Equal(t, "work_value", SourceColumn(VariantArchived, FieldEstimatedCost))
	require.Equal(t, "estimated_cost", SourceColumn(VariantActive, FieldEstimatedCost))
	require.Equal(t, "", SourceColumn(VariantArchived, FieldFund))
}
