package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/infratrack/engine/internal/models"
)

func TestParseSortDirection(t *testing.T) {
	cases := []struct {
		in   any
		want SortDirection
	}{
		{1, SortAsc},
		{-1, SortDesc},
		{0, SortDesc},
		{int64(5), SortAsc},
		{float64(-2), SortDesc},
		{"asc", SortAsc},
		{"ASC", SortAsc},
		{"descending", SortDesc},
		{" desc ", SortDesc},
		{"1", SortAsc},
		{"-1", SortDesc},
		{"sideways", SortDesc},
		{"", SortDesc},
		{nil, SortDesc},
		{struct{}{}, SortDesc},
	}
	for _, c := range cases {
		require.Equal(t, c.want, ParseSortDirection(c.in), "input %v", c.in)
	}
}

func TestClampWindowDays(t *testing.T) {
	// Archive example from the dashboard contract: timeRange=9000 clamps to
	// 1095, it does not error.
	require.Equal(t, 1095, ClampWindowDays(9000, DefaultArchiveWindowDays, MaxArchiveWindowDays))
	require.Equal(t, 365, ClampWindowDays(9000, DefaultQueryWindowDays, MaxQueryWindowDays))
	require.Equal(t, 30, ClampWindowDays(0, DefaultQueryWindowDays, MaxQueryWindowDays))
	require.Equal(t, 30, ClampWindowDays(-5, DefaultQueryWindowDays, MaxQueryWindowDays))
	require.Equal(t, 90, ClampWindowDays(90, DefaultQueryWindowDays, MaxQueryWindowDays))
}

func TestBuildFilterRoleRestriction(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	uid := uuid.New()

	je := BuildFilter(models.RoleJuniorEngineer, uid, FilterParams{}, now,
		DefaultQueryWindowDays, MaxQueryWindowDays)
	require.NotNil(t, je.CreatedBy)
	require.Equal(t, uid, *je.CreatedBy)

	// No parameter combination widens the restriction.
	je2 := BuildFilter(models.RoleJuniorEngineer, uid, FilterParams{
		District: "North", TimeRangeDays: 9999, SortDir: "asc",
	}, now, DefaultQueryWindowDays, MaxQueryWindowDays)
	require.NotNil(t, je2.CreatedBy)
	require.Equal(t, uid, *je2.CreatedBy)

	admin := BuildFilter(models.RoleAdmin, uid, FilterParams{}, now,
		DefaultQueryWindowDays, MaxQueryWindowDays)
	require.Nil(t, admin.CreatedBy)
}

func TestBuildFilterWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := BuildFilter(models.RoleAdmin, uuid.Nil, FilterParams{TimeRangeDays: 9000}, now,
		DefaultArchiveWindowDays, MaxArchiveWindowDays)
	require.Equal(t, now, f.WindowEnd)
	require.Equal(t, now.AddDate(0, 0, -1095), f.WindowStart)
	require.Equal(t, 1095, f.WindowDays())
}

func TestMatchQuery(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := BuildFilter(models.RoleAdmin, uuid.Nil, FilterParams{Priority: models.PriorityHigh}, now,
		DefaultQueryWindowDays, MaxQueryWindowDays)

	in := models.Query{IsActive: true, Priority: models.PriorityHigh, RaisedDate: now.AddDate(0, 0, -3)}
	require.True(t, f.MatchQuery(in))

	softDeleted := in
	softDeleted.IsActive = false
	require.False(t, f.MatchQuery(softDeleted))

	wrongPriority := in
	wrongPriority.Priority = models.PriorityLow
	require.False(t, f.MatchQuery(wrongPriority))

	tooOld := in
	tooOld.RaisedDate = now.AddDate(0, 0, -40)
	require.False(t, f.MatchQuery(tooOld))
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		name   string
		sortBy string
		dir    any
		want   string
	}{
		{"default", "", nil, "created_at DESC"},
		{"known column asc", "estimatedCost", "asc", "estimated_cost ASC"},
		{"known column desc", "physicalProgress", "desc", "physical_progress DESC"},
		{"unknown column falls back", "secretColumn", "asc", "created_at ASC"},
		{"injection-shaped input falls back", "1; DROP TABLE projects", "asc", "created_at ASC"},
	}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := BuildFilter(models.RoleAdmin, uuid.Nil, FilterParams{SortBy: c.sortBy, SortDir: c.dir}, now,
				DefaultQueryWindowDays, MaxQueryWindowDays)
			require.Equal(t, c.want, f.OrderClause())
		})
	}
}

func TestBuildFilterCarriesGroupBy(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f := BuildFilter(models.RoleAdmin, uuid.Nil, FilterParams{GroupBy: "district"}, now,
		DefaultQueryWindowDays, MaxQueryWindowDays)
	require.Equal(t, "district", f.GroupBy)
}
