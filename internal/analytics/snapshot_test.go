package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/infratrack/engine/internal/models"
)

func TestBuildDashboardEmptySet(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	snap := BuildDashboard(nil, now)

	require.Zero(t, snap.Overview.TotalProjects)
	require.Zero(t, snap.Financial.UtilizationRate)
	require.Zero(t, snap.Queries.ResolutionRate)
	require.Zero(t, snap.Progress.ScheduleRate)
	require.Empty(t, snap.StatusDistribution)
	require.Equal(t, []string{"No projects match the selected filters."}, snap.Insights)
}

func TestBuildDashboardResolutionRate(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 7)

	// 40 active queries, 30 resolved: resolution rate 75.
	queries := make([]models.Query, 0, 40)
	for i := 0; i < 30; i++ {
		queries = append(queries, models.Query{
			IsActive: true, Status: models.QueryResolved,
			RaisedDate: now.AddDate(0, 0, -10), ExpectedResolutionDate: due,
		})
	}
	for i := 0; i < 10; i++ {
		queries = append(queries, models.Query{
			IsActive: true, Status: models.QueryOpen,
			RaisedDate: now.AddDate(0, 0, -5), ExpectedResolutionDate: due,
		})
	}
	// Soft-deleted queries never count.
	queries = append(queries, models.Query{IsActive: false, Status: models.QueryOpen, ExpectedResolutionDate: due})

	snap := BuildDashboard([]models.Project{{
		ProjectID: "PRJ-1", Status: models.StatusOngoing, Queries: queries,
	}}, now)

	require.EqualValues(t, 40, snap.Queries.TotalQueries)
	require.EqualValues(t, 30, snap.Queries.ResolvedQueries)
	require.EqualValues(t, 10, snap.Queries.OpenQueries)
	require.Equal(t, 75, snap.Queries.ResolutionRate)
}

func TestBuildDashboardOverviewAndFinancial(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	projects := []models.Project{
		{
			ProjectID: "PRJ-1", Status: models.StatusOngoing, Category: models.CategoryRoad,
			District: "North", Contractor: "Apex",
			EstimatedCost: 1000, BudgetAllocated: 800, BudgetUtilized: 900, // over budget
			PhysicalProgress: 40,
		},
		{
			ProjectID: "PRJ-2", Status: models.StatusCompleted, Category: models.CategoryBridge,
			District: "South", Contractor: "Apex",
			EstimatedCost: 3000, BudgetAllocated: 1200, BudgetUtilized: 1100,
			PhysicalProgress: 100,
		},
	}

	snap := BuildDashboard(projects, now)

	require.EqualValues(t, 2, snap.Overview.TotalProjects)
	require.EqualValues(t, 1, snap.Overview.OngoingProjects)
	require.EqualValues(t, 1, snap.Overview.CompletedProjects)
	require.Equal(t, 4000.0, snap.Overview.TotalEstimatedCost)
	require.Equal(t, 70.0, snap.Overview.AvgPhysicalProgress)
	require.Equal(t, 2, snap.Overview.Districts)
	require.Equal(t, 1, snap.Overview.Contractors)

	require.Equal(t, map[string]int64{"ongoing": 1, "completed": 1}, snap.StatusDistribution)
	require.Equal(t, map[string]int64{"road": 1, "bridge": 1}, snap.CategoryDistribution)

	require.Equal(t, 2000.0, snap.Financial.BudgetAllocated)
	require.Equal(t, 2000.0, snap.Financial.BudgetUtilized)
	require.Equal(t, 100, snap.Financial.UtilizationRate)
	require.Equal(t, 1, snap.Financial.OverBudgetProjects)
	// 100 - 10 (over budget) - 20 (utilization above 90) = 70.
	require.Equal(t, 70, snap.Financial.HealthScore)
}

func TestBuildDashboardStaleReporting(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	fresh := models.Project{
		ProjectID: "PRJ-1", Status: models.StatusOngoing, CreatedAt: now.AddDate(0, -6, 0),
		ProgressUpdates: []models.ProgressUpdate{
			{IsActive: true, CreatedAt: now.AddDate(0, 0, -5)},
		},
	}
	stale := models.Project{
		ProjectID: "PRJ-2", Status: models.StatusOngoing, CreatedAt: now.AddDate(0, -6, 0),
		ProgressUpdates: []models.ProgressUpdate{
			{IsActive: true, CreatedAt: now.AddDate(0, 0, -45)},
			// A soft-deleted update does not refresh the clock.
			{IsActive: false, CreatedAt: now.AddDate(0, 0, -1)},
		},
	}
	neverReported := models.Project{
		ProjectID: "PRJ-3", Status: models.StatusOngoing, CreatedAt: now.AddDate(0, 0, -60),
	}
	completed := models.Project{
		ProjectID: "PRJ-4", Status: models.StatusCompleted, CreatedAt: now.AddDate(0, -12, 0),
	}

	snap := BuildDashboard([]models.Project{fresh, stale, neverReported, completed}, now)
	require.EqualValues(t, 2, snap.Progress.StaleProjects)
}

func TestBuildQueryKPIs(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, 7)
	missedDue := now.AddDate(0, 0, -2)
	doneAt := now.AddDate(0, 0, -4)

	queries := []models.Query{
		{
			IsActive: true, Status: models.QueryResolved, Priority: models.PriorityHigh,
			Category: models.QueryCategoryTechnical, EscalationLevel: 2,
			RaisedDate: now.AddDate(0, 0, -6), ExpectedResolutionDate: due,
			ActualResolutionDate: &doneAt,
		},
		{
			IsActive: true, Status: models.QueryOpen, Priority: models.PriorityLow,
			Category: models.QueryCategoryFinancial,
			RaisedDate: now.AddDate(0, 0, -5), ExpectedResolutionDate: missedDue,
		},
		{
			IsActive: false, Status: models.QueryOpen, Priority: models.PriorityUrgent,
			Category: models.QueryCategorySafety,
			RaisedDate: now.AddDate(0, 0, -5), ExpectedResolutionDate: due,
		},
	}

	kpis := BuildQueryKPIs(queries, now)

	require.EqualValues(t, 2, kpis.TotalQueries)
	require.Equal(t, map[string]int64{"resolved": 1, "open": 1}, kpis.StatusDistribution)
	require.Equal(t, map[string]int64{"high": 1, "low": 1}, kpis.PriorityDistribution)
	require.Equal(t, map[string]int64{"technical": 1, "financial": 1}, kpis.CategoryDistribution)

	require.Equal(t, 48.0, kpis.TimeMetrics.AvgResolutionHours)
	require.EqualValues(t, 1, kpis.TimeMetrics.OverdueQueries)
	require.Equal(t, 50, kpis.TimeMetrics.ResolutionRate)

	require.EqualValues(t, 1, kpis.EscalationMetrics.EscalatedQueries)
	require.Equal(t, 2, kpis.EscalationMetrics.MaxEscalationLevel)
	require.Equal(t, 1.0, kpis.EscalationMetrics.AvgEscalationLevel)
}

func TestBuildQueryKPIsEmptySet(t *testing.T) {
	kpis := BuildQueryKPIs(nil, time.Now())
	require.Zero(t, kpis.TotalQueries)
	require.Zero(t, kpis.TimeMetrics.ResolutionRate)
	require.Equal(t, []string{"No queries were raised in the selected window."}, kpis.Insights)
}

func TestBuildArchiveComparison(t *testing.T) {
	fp := 60.0
	active := []models.Project{
		{ProjectID: "PRJ-1", District: "North", EstimatedCost: 2000, PhysicalProgress: 50, FinancialProgress: &fp},
		{ProjectID: "PRJ-2", District: "East", EstimatedCost: 4000, PhysicalProgress: 70},
	}
	archived := []models.ArchiveProject{
		{ProjectID: "PRJ-A-1", District: "North", WorkValue: 1000, Progress: 100},
		{ProjectID: "PRJ-A-2", District: "West", WorkValue: 2000, Progress: 100},
	}

	cmp := BuildArchiveComparison(active, archived)

	require.EqualValues(t, 2, cmp.Active.Projects)
	require.Equal(t, 6000.0, cmp.Active.TotalValue)
	require.Equal(t, 3000.0, cmp.Active.AvgValue)
	require.Equal(t, 60.0, cmp.Active.AvgProgress)
	require.Equal(t, []string{"East", "North"}, cmp.Active.Districts)

	require.EqualValues(t, 2, cmp.Archived.Projects)
	require.Equal(t, 1500.0, cmp.Archived.AvgValue)
	require.Equal(t, 100.0, cmp.Archived.AvgProgress)

	require.Equal(t, -40.0, cmp.ProgressGapPts)
	require.Equal(t, 2.0, cmp.ValueRatio)
	require.Equal(t, []string{"North"}, cmp.SharedDistricts)
}

func TestBuildArchiveComparisonEmptyArchive(t *testing.T) {
	cmp := BuildArchiveComparison([]models.Project{{ProjectID: "PRJ-1", EstimatedCost: 100}}, nil)
	require.Zero(t, cmp.Archived.Projects)
	// No archived value means no ratio rather than a division error.
	require.Zero(t, cmp.ValueRatio)
	require.Empty(t, cmp.SharedDistricts)
}

func TestBuildGroupedCounts(t *testing.T) {
	creatorA := uuid.New()
	creatorB := uuid.New()
	projects := []models.Project{
		{ProjectID: "PRJ-1", District: "North", Fund: "state", CreatedBy: creatorA},
		{ProjectID: "PRJ-2", District: "North", Fund: "central", CreatedBy: creatorB},
		{ProjectID: "PRJ-3", District: "South", Fund: "state", CreatedBy: creatorA},
	}

	byDistrict := BuildGroupedCounts(projects, "district")
	require.NotNil(t, byDistrict)
	require.Equal(t, "district", byDistrict.Dimension)
	require.Equal(t, map[string]int64{"North": 2, "South": 1}, byDistrict.Counts)

	byUser := BuildGroupedCounts(projects, "user")
	require.NotNil(t, byUser)
	require.Equal(t, map[string]int64{creatorA.String(): 2, creatorB.String(): 1}, byUser.Counts)
	// Each dimension keys its own distribution.
	require.NotEqual(t, byDistrict.Counts, byUser.Counts)

	byFund := BuildGroupedCounts(projects, "fund")
	require.NotNil(t, byFund)
	require.Equal(t, map[string]int64{"state": 2, "central": 1}, byFund.Counts)

	require.Nil(t, BuildGroupedCounts(projects, "severity"))
}
