package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/infratrack/engine/internal/models"
)

func TestRate(t *testing.T) {
	require.Equal(t, 75, Rate(30, 40))
	require.Equal(t, 0, Rate(10, 0))
	require.Equal(t, 0, Rate(0, 0))
	require.Equal(t, 100, Rate(40, 40))
	require.Equal(t, 33, Rate(1, 3))
	require.Equal(t, 67, Rate(2, 3))
}

func TestLetterGradeBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{100, "A"}, {90, "A"}, {89.99, "B"}, {80, "B"},
		{79.99, "C"}, {70, "C"}, {69.99, "D"}, {60, "D"},
		{59.99, "F"}, {0, "F"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, LetterGrade(c.score), "score %v", c.score)
	}
}

func TestPerformanceWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range PerformanceWeights {
		sum += w
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestPerformanceGrade(t *testing.T) {
	score, grade := PerformanceGrade(map[string]int{
		"physicalProgress":  100,
		"financialProgress": 100,
		"queryResolution":   100,
		"schedule":          100,
	})
	require.Equal(t, 100.0, score)
	require.Equal(t, "A", grade)

	// A missing component scores as zero rather than being skipped.
	score, grade = PerformanceGrade(map[string]int{
		"physicalProgress":  100,
		"financialProgress": 100,
		"queryResolution":   100,
	})
	require.Equal(t, 85.0, score)
	require.Equal(t, "B", grade)
}

func TestFinancialHealthScore(t *testing.T) {
	// Worked example: 2 over budget, 1 under-utilized, utilization 95% gives
	// 100 - 20 - 5 - 20 = 55.
	require.Equal(t, 55, FinancialHealthScore(2, 1, 95))

	require.Equal(t, 100, FinancialHealthScore(0, 0, 50))
	require.Equal(t, 70, FinancialHealthScore(0, 0, 10))
	require.Equal(t, 0, FinancialHealthScore(12, 0, 10))
}

func TestUrgencyScore(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	q := models.Query{
		IsActive:               true,
		Priority:               models.PriorityUrgent,
		EscalationLevel:        2,
		RaisedDate:             now.AddDate(0, 0, -10),
		ExpectedResolutionDate: now.AddDate(0, 0, -3),
	}
	// 100 priority + 2*20 escalation + 3*10 overdue days.
	require.Equal(t, 170, UrgencyScore(q, now))

	q.Priority = models.PriorityLow
	q.EscalationLevel = 0
	q.ExpectedResolutionDate = now.AddDate(0, 0, 7)
	require.Equal(t, 0, UrgencyScore(q, now))
}

func TestRankByUrgencyOrderingAndTieBreak(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	earlier := now.AddDate(0, 0, -8)
	later := now.AddDate(0, 0, -2)
	due := now.AddDate(0, 0, 7)
	resolvedAt := now.AddDate(0, 0, -1)

	queries := []models.Query{
		{Subject: "medium", IsActive: true, Priority: models.PriorityMedium, RaisedDate: later, ExpectedResolutionDate: due},
		{Subject: "urgent-late", IsActive: true, Priority: models.PriorityUrgent, RaisedDate: later, ExpectedResolutionDate: due},
		{Subject: "urgent-early", IsActive: true, Priority: models.PriorityUrgent, RaisedDate: earlier, ExpectedResolutionDate: due},
		{Subject: "resolved", IsActive: true, Priority: models.PriorityUrgent, Status: models.QueryResolved, ActualResolutionDate: &resolvedAt, RaisedDate: earlier, ExpectedResolutionDate: due},
		{Subject: "soft-deleted", IsActive: false, Priority: models.PriorityUrgent, RaisedDate: earlier, ExpectedResolutionDate: due},
	}

	ranked := RankByUrgency(queries, now, 0)
	require.Len(t, ranked, 3)
	// Equal scores break ties toward the earlier raised date.
	require.Equal(t, "urgent-early", ranked[0].Query.Subject)
	require.Equal(t, "urgent-late", ranked[1].Query.Subject)
	require.Equal(t, "medium", ranked[2].Query.Subject)

	limited := RankByUrgency(queries, now, 2)
	require.Len(t, limited, 2)
	require.Equal(t, "urgent-early", limited[0].Query.Subject)
}
