package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/infratrack/engine/internal/models"
)

// Rate converts a numerator/denominator pair into a whole percentage. A zero
// denominator resolves to 0 — this is an invariant of every derived rate, not
// a recoverable error.
func Rate(num, den float64) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(num / den * 100))
}

// LetterGrade buckets a 0-100 score into grade bands. Bands are closed-open;
// a boundary score takes the higher grade.
func LetterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// PerformanceWeights is the declared weight table for the project
// performance grade. Weights sum to 1.0.
var PerformanceWeights = map[string]float64{
	"physicalProgress":  0.35,
	"financialProgress": 0.25,
	"queryResolution":   0.25,
	"schedule":          0.15,
}

// WeightedScore combines named rates via a weight table. Rates missing from
// the table contribute nothing; weights without a rate score that component
// as zero.
func WeightedScore(rates map[string]int, weights map[string]float64) float64 {
	var score float64
	for name, w := range weights {
		score += float64(rates[name]) * w
	}
	return score
}

// PerformanceGrade derives the weighted performance score and its letter
// grade from the standard rate set.
func PerformanceGrade(rates map[string]int) (float64, string) {
	score := WeightedScore(rates, PerformanceWeights)
	return score, LetterGrade(score)
}

// Financial health penalties. The score starts at 100 and loses a fixed
// amount per adverse condition, clamped to [0, 100].
const (
	penaltyOverBudget      = 10
	penaltyUnderUtilized   = 5
	penaltyHighUtilization = 20
	penaltyLowUtilization  = 30

	highUtilizationPct = 90
	lowUtilizationPct  = 30
)

// FinancialHealthScore scores budget discipline across a project set.
// utilizationRate is a 0-100 percentage of allocation spent.
func FinancialHealthScore(overBudget, underUtilized int, utilizationRate float64) int {
	score := 100
	score -= overBudget * penaltyOverBudget
	score -= underUtilized * penaltyUnderUtilized
	if utilizationRate > highUtilizationPct {
		score -= penaltyHighUtilization
	}
	if utilizationRate < lowUtilizationPct {
		score -= penaltyLowUtilization
	}
	return clampScore(score)
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Urgency score weights. The score ranks queries needing attention; it is
// not a probability, just a stable ordering key.
const (
	urgencyUrgentPriority = 100
	urgencyHighPriority   = 50
	urgencyMediumPriority = 25
	urgencyPerEscalation  = 20
	urgencyPerOverdueDay  = 10
)

// UrgencyScore computes the attention-ranking score for a query as of now.
func UrgencyScore(q models.Query, now time.Time) int {
	score := 0
	switch q.Priority {
	case models.PriorityUrgent:
		score += urgencyUrgentPriority
	case models.PriorityHigh:
		score += urgencyHighPriority
	case models.PriorityMedium:
		score += urgencyMediumPriority
	}
	score += q.EscalationLevel * urgencyPerEscalation
	score += q.DaysOverdue(now) * urgencyPerOverdueDay
	return score
}

// RankedQuery pairs a query with its urgency score.
type RankedQuery struct {
	Query models.Query `json:"query"`
	Score int          `json:"score"`
}

// RankByUrgency sorts active, unresolved queries by urgency score descending,
// tie-broken by earliest raised date, and truncates to limit (limit <= 0
// keeps everything).
func RankByUrgency(queries []models.Query, now time.Time, limit int) []RankedQuery {
	ranked := make([]RankedQuery, 0, len(queries))
	for _, q := range queries {
		if !q.IsActive || q.Resolved() {
			continue
		}
		ranked = append(ranked, RankedQuery{Query: q, Score: UrgencyScore(q, now)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Query.RaisedDate.Before(ranked[j].Query.RaisedDate)
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
