package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/infratrack/engine/internal/models"
)

func raisedQuery(raised time.Time, resolvedAfter time.Duration) models.Query {
	q := models.Query{
		IsActive:   true,
		Status:     models.QueryOpen,
		RaisedDate: raised,
	}
	if resolvedAfter > 0 {
		done := raised.Add(resolvedAfter)
		q.Status = models.QueryResolved
		q.ActualResolutionDate = &done
	}
	return q
}

func TestBucketTrendsWeekly(t *testing.T) {
	// Two queries in ISO week 10 of 2024, one in week 11.
	w10a := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	w10b := time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)
	w11 := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	queries := []models.Query{
		raisedQuery(w10a, 24*time.Hour),
		raisedQuery(w10b, 0),
		raisedQuery(w11, 48*time.Hour),
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	points := BucketTrends(queries, PeriodWeekly, start, end)

	require.Len(t, points, 2)
	require.Equal(t, "2024-W10", points[0].Period)
	require.Equal(t, 2, points[0].Raised)
	require.Equal(t, 1, points[0].Resolved)
	require.Equal(t, 24.0, points[0].AvgResolutionHours)
	require.Equal(t, 50, points[0].ResolutionRate)

	require.Equal(t, "2024-W11", points[1].Period)
	require.Equal(t, 1, points[1].Raised)
	require.Equal(t, 1, points[1].Resolved)
	require.Equal(t, 48.0, points[1].AvgResolutionHours)
	require.Equal(t, 100, points[1].ResolutionRate)
}

func TestBucketTrendsExcludesOutsideWindowAndInactive(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	inside := raisedQuery(start.AddDate(0, 0, 5), 0)
	before := raisedQuery(start.AddDate(0, 0, -5), 0)
	after := raisedQuery(end.AddDate(0, 0, 5), 0)
	deleted := raisedQuery(start.AddDate(0, 0, 5), 0)
	deleted.IsActive = false

	points := BucketTrends([]models.Query{inside, before, after, deleted},
		PeriodWeekly, start, end)
	require.Len(t, points, 1)
	require.Equal(t, 1, points[0].Raised)
}

func TestBucketTrendsWeeklyYearBoundary(t *testing.T) {
	// 2024-12-30 falls in ISO week 1 of 2025; it must sort after week 52 of
	// 2024 even though its calendar year is earlier than its ISO year.
	w52 := time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC)
	w1 := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)

	points := BucketTrends([]models.Query{raisedQuery(w1, 0), raisedQuery(w52, 0)},
		PeriodWeekly,
		time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

	require.Len(t, points, 2)
	require.Equal(t, "2024-W52", points[0].Period)
	require.Equal(t, "2025-W01", points[1].Period)
}

func TestClassifyTrend(t *testing.T) {
	pts := func(rates ...int) []TrendPoint {
		out := make([]TrendPoint, len(rates))
		for i, r := range rates {
			out[i] = TrendPoint{ResolutionRate: r}
		}
		return out
	}

	dir, change := ClassifyTrend(pts(40, 40, 60, 60))
	require.Equal(t, TrendUp, dir)
	require.Equal(t, 20.0, change)

	dir, change = ClassifyTrend(pts(60, 60, 40, 40))
	require.Equal(t, TrendDown, dir)
	require.Equal(t, -20.0, change)

	// Identical halves are stable with zero change.
	dir, change = ClassifyTrend(pts(50, 50, 50, 50))
	require.Equal(t, TrendStable, dir)
	require.Zero(t, change)

	// Movement inside the threshold band counts as stable.
	dir, change = ClassifyTrend(pts(50, 50, 51, 51))
	require.Equal(t, TrendStable, dir)
	require.Equal(t, 1.0, change)

	// Fewer than two buckets never classifies as movement.
	dir, change = ClassifyTrend(pts(80))
	require.Equal(t, TrendStable, dir)
	require.Zero(t, change)
	dir, change = ClassifyTrend(nil)
	require.Equal(t, TrendStable, dir)
	require.Zero(t, change)
}

func TestClassifyTrendOddRemainderGoesToSecondHalf(t *testing.T) {
	// Five points split 2/3: first half mean 40, second half mean 60.
	dir, change := ClassifyTrend([]TrendPoint{
		{ResolutionRate: 40}, {ResolutionRate: 40},
		{ResolutionRate: 60}, {ResolutionRate: 60}, {ResolutionRate: 60},
	})
	require.Equal(t, TrendUp, dir)
	require.Equal(t, 20.0, change)
}

func TestOverallAvgResolutionHoursIsAverageOfBucketAverages(t *testing.T) {
	// Buckets are weighted equally regardless of how many resolutions each
	// holds. Pinned so a change to resolved-count weighting is deliberate.
	points := []TrendPoint{
		{Resolved: 10, AvgResolutionHours: 10},
		{Resolved: 1, AvgResolutionHours: 100},
		{Resolved: 0},
	}
	require.Equal(t, 55.0, OverallAvgResolutionHours(points))
	require.Zero(t, OverallAvgResolutionHours(nil))
}

func TestBuildTrendReport(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	queries := []models.Query{
		raisedQuery(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), 0),
		raisedQuery(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), 12*time.Hour),
	}

	report := BuildTrendReport(queries, PeriodWeekly, start, end)
	require.Equal(t, PeriodWeekly, report.Period)
	require.Len(t, report.Points, 2)
	require.Equal(t, TrendUp, report.Direction)
	require.Equal(t, 100.0, report.ChangePts)
	require.Equal(t, 12.0, report.AvgResolutionHours)
}

func TestPeriodValid(t *testing.T) {
	require.True(t, PeriodDaily.Valid())
	require.True(t, PeriodWeekly.Valid())
	require.True(t, PeriodMonthly.Valid())
	require.False(t, Period("hourly").Valid())
	require.False(t, Period("").Valid())
}
