package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/infratrack/engine/internal/models"
)

// Period is a trend bucketing granularity.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Valid reports whether the period is a known granularity.
func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// TrendPoint is one periodic bucket of query activity. Sequences are sparse:
// periods with no records simply do not appear.
type TrendPoint struct {
	Period string `json:"period"`
	Year   int    `json:"-"`
	Index  int    `json:"-"`

	Raised             int     `json:"raised"`
	Resolved           int     `json:"resolved"`
	AvgResolutionHours float64 `json:"avgResolutionHours"`
	ResolutionRate     int     `json:"resolutionRate"`
}

// TrendDirection classifies movement across a bucket sequence.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// directionThreshold is the hysteresis band, in percentage points, below
// which movement counts as stable. It keeps small noisy samples from
// flapping between up and down.
const directionThreshold = 2.0

// bucketKey truncates a timestamp to its period boundary. Weekly buckets use
// ISO week-of-year semantics, so the year component is the ISO year, which
// can differ from the calendar year at year boundaries.
func bucketKey(t time.Time, p Period) (year, index int, label string) {
	switch p {
	case PeriodDaily:
		return t.Year(), t.YearDay(), t.Format("2006-01-02")
	case PeriodWeekly:
		y, w := t.ISOWeek()
		return y, w, fmt.Sprintf("%04d-W%02d", y, w)
	default: // monthly
		return t.Year(), int(t.Month()), t.Format("2006-01")
	}
}

// BucketTrends groups active queries raised inside [windowStart, windowEnd]
// into periodic buckets, ordered ascending by (year, sub-period index).
// Resolution counts and times come from each query's actual resolution date;
// unresolved queries contribute to the raised count only.
func BucketTrends(queries []models.Query, p Period, windowStart, windowEnd time.Time) []TrendPoint {
	type bucketAcc struct {
		point       TrendPoint
		resolvedHrs float64
	}
	buckets := map[string]*bucketAcc{}

	for _, q := range queries {
		if !q.IsActive {
			continue
		}
		if q.RaisedDate.Before(windowStart) || q.RaisedDate.After(windowEnd) {
			continue
		}
		year, index, label := bucketKey(q.RaisedDate, p)
		b, ok := buckets[label]
		if !ok {
			b = &bucketAcc{point: TrendPoint{Period: label, Year: year, Index: index}}
			buckets[label] = b
		}
		b.point.Raised++
		if q.ActualResolutionDate != nil {
			b.point.Resolved++
			b.resolvedHrs += q.ActualResolutionDate.Sub(q.RaisedDate).Hours()
		}
	}

	points := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		if b.point.Resolved > 0 {
			b.point.AvgResolutionHours = b.resolvedHrs / float64(b.point.Resolved)
		}
		b.point.ResolutionRate = Rate(float64(b.point.Resolved), float64(b.point.Raised))
		points = append(points, b.point)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Index < points[j].Index
	})
	return points
}

// ClassifyTrend splits the sequence into halves (an odd remainder goes to the
// second half), compares mean resolution rates, and classifies the movement.
// Change is second-half mean minus first-half mean in percentage points; a
// magnitude within the threshold band is stable. Fewer than two buckets is
// always stable with change 0.
func ClassifyTrend(points []TrendPoint) (TrendDirection, float64) {
	if len(points) < 2 {
		return TrendStable, 0
	}
	mid := len(points) / 2
	first := meanResolutionRate(points[:mid])
	second := meanResolutionRate(points[mid:])
	change := second - first
	switch {
	case change > directionThreshold:
		return TrendUp, change
	case change < -directionThreshold:
		return TrendDown, change
	default:
		return TrendStable, change
	}
}

func meanResolutionRate(points []TrendPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, pt := range points {
		sum += float64(pt.ResolutionRate)
	}
	return sum / float64(len(points))
}

// TrendReport is the composed time-series payload for one window.
type TrendReport struct {
	Period             Period         `json:"period"`
	Points             []TrendPoint   `json:"points"`
	Direction          TrendDirection `json:"direction"`
	ChangePts          float64        `json:"changePts"`
	AvgResolutionHours float64        `json:"avgResolutionHours"`
}

// BuildTrendReport buckets the queries and classifies the movement across
// the resulting sequence.
func BuildTrendReport(queries []models.Query, p Period, windowStart, windowEnd time.Time) TrendReport {
	points := BucketTrends(queries, p, windowStart, windowEnd)
	dir, change := ClassifyTrend(points)
	return TrendReport{
		Period:             p,
		Points:             points,
		Direction:          dir,
		ChangePts:          change,
		AvgResolutionHours: OverallAvgResolutionHours(points),
	}
}

// OverallAvgResolutionHours averages the per-bucket averages rather than
// weighting by each bucket's resolved count. This matches the dashboard's
// historical behavior; trend_test pins it so a change is deliberate.
func OverallAvgResolutionHours(points []TrendPoint) float64 {
	withData := 0
	var sum float64
	for _, pt := range points {
		if pt.Resolved > 0 {
			sum += pt.AvgResolutionHours
			withData++
		}
	}
	if withData == 0 {
		return 0
	}
	return sum / float64(withData)
}
