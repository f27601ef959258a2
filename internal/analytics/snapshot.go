package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/infratrack/engine/internal/models"
)

// OverviewMetrics are the headline counts of the dashboard.
type OverviewMetrics struct {
	TotalProjects       int64   `json:"totalProjects"`
	OngoingProjects     int64   `json:"ongoingProjects"`
	CompletedProjects   int64   `json:"completedProjects"`
	TotalEstimatedCost  float64 `json:"totalEstimatedCost"`
	AvgPhysicalProgress float64 `json:"avgPhysicalProgress"`
	Districts           int     `json:"districts"`
	Contractors         int     `json:"contractors"`
}

// FinancialMetrics summarize budget discipline across the filtered set.
type FinancialMetrics struct {
	BudgetAllocated       float64 `json:"budgetAllocated"`
	BudgetUtilized        float64 `json:"budgetUtilized"`
	UtilizationRate       int     `json:"utilizationRate"`
	OverBudgetProjects    int     `json:"overBudgetProjects"`
	UnderUtilizedProjects int     `json:"underUtilizedProjects"`
	HealthScore           int     `json:"healthScore"`
}

// ProgressMetrics carry physical/financial progress and the weighted
// performance grade.
type ProgressMetrics struct {
	AvgPhysicalProgress  float64 `json:"avgPhysicalProgress"`
	AvgFinancialProgress float64 `json:"avgFinancialProgress"`
	OnScheduleProjects   int64   `json:"onScheduleProjects"`
	ScheduleRate         int     `json:"scheduleRate"`
	StaleProjects        int64   `json:"staleProjects"`
	PerformanceScore     float64 `json:"performanceScore"`
	PerformanceGrade     string  `json:"performanceGrade"`
}

// staleReportingDays is how long an unfinished project may go without a
// progress update before the dashboard flags it.
const staleReportingDays = 30

// QuerySummary is the dashboard's condensed view of query activity.
type QuerySummary struct {
	TotalQueries    int64 `json:"totalQueries"`
	OpenQueries     int64 `json:"openQueries"`
	ResolvedQueries int64 `json:"resolvedQueries"`
	ClosedQueries   int64 `json:"closedQueries"`
	OverdueQueries  int64 `json:"overdueQueries"`
	ResolutionRate  int   `json:"resolutionRate"`
}

// KPISnapshot is a point-in-time aggregate scoped to one filter and window.
// It is ephemeral: recomputed per request (or restored whole from cache),
// never persisted.
type KPISnapshot struct {
	Overview             OverviewMetrics  `json:"overview"`
	StatusDistribution   map[string]int64 `json:"statusDistribution"`
	CategoryDistribution map[string]int64 `json:"categoryDistribution"`
	Financial            FinancialMetrics `json:"financial"`
	Progress             ProgressMetrics  `json:"progress"`
	Queries              QuerySummary     `json:"queries"`
	Grouped              *GroupedCounts   `json:"grouped,omitempty"`
	Archive              *VariantSummary  `json:"archive,omitempty"`
	Insights             []string         `json:"insights"`
}

// GroupedCounts is an on-demand project count distribution keyed by a
// caller-chosen dimension.
type GroupedCounts struct {
	Dimension string           `json:"dimension"`
	Counts    map[string]int64 `json:"counts"`
}

// BuildGroupedCounts counts the filtered projects along the requested
// dimension. An unrecognized dimension yields nil and the dashboard omits the
// section.
func BuildGroupedCounts(projects []models.Project, dimension string) *GroupedCounts {
	key := groupKeyFor(dimension)
	if key == nil {
		return nil
	}
	agg := Aggregate(projects, key, []Accumulator[models.Project]{{Name: "count", Kind: AccCount}})
	return &GroupedCounts{Dimension: dimension, Counts: agg.Counts("count")}
}

func groupKeyFor(dimension string) func(models.Project) string {
	switch dimension {
	case "user":
		return func(p models.Project) string { return p.CreatedBy.String() }
	case "district":
		return func(p models.Project) string { return p.District }
	case "status":
		return func(p models.Project) string { return string(p.Status) }
	case "fund":
		return func(p models.Project) string { return p.Fund }
	case "contractor":
		return func(p models.Project) string { return p.Contractor }
	default:
		return nil
	}
}

// BuildDashboard composes the dashboard snapshot from the filtered live
// project set (queries preloaded). All percentage-shaped values go through
// Rate so empty sets produce well-formed zero results.
func BuildDashboard(projects []models.Project, now time.Time) KPISnapshot {
	overviewAgg := Aggregate(projects, nil, []Accumulator[models.Project]{
		{Name: "count", Kind: AccCount},
		{Name: "estimatedCost", Kind: AccSum, Value: func(p models.Project) (float64, bool) { return p.EstimatedCost, true }},
		{Name: "physicalProgress", Kind: AccAvg, Value: func(p models.Project) (float64, bool) { return p.PhysicalProgress, true }},
		{Name: "districts", Kind: AccDistinct, Label: func(p models.Project) (string, bool) { return p.District, p.District != "" }},
		{Name: "contractors", Kind: AccDistinct, Label: func(p models.Project) (string, bool) { return p.Contractor, p.Contractor != "" }},
	})

	statusAgg := Aggregate(projects,
		func(p models.Project) string { return string(p.Status) },
		[]Accumulator[models.Project]{{Name: "count", Kind: AccCount}})
	categoryAgg := Aggregate(projects,
		func(p models.Project) string { return string(p.Category) },
		[]Accumulator[models.Project]{{Name: "count", Kind: AccCount}})

	snap := KPISnapshot{
		Overview: OverviewMetrics{
			TotalProjects:       overviewAgg.Value("", "count").Count,
			OngoingProjects:     statusAgg.Value(string(models.StatusOngoing), "count").Count,
			CompletedProjects:   statusAgg.Value(string(models.StatusCompleted), "count").Count,
			TotalEstimatedCost:  overviewAgg.Value("", "estimatedCost").Sum,
			AvgPhysicalProgress: round2(overviewAgg.Value("", "physicalProgress").Avg),
			Districts:           len(overviewAgg.Value("", "districts").Distinct),
			Contractors:         len(overviewAgg.Value("", "contractors").Distinct),
		},
		StatusDistribution:   statusAgg.Counts("count"),
		CategoryDistribution: categoryAgg.Counts("count"),
	}

	snap.Financial = buildFinancial(projects)
	snap.Queries = buildQuerySummary(projects, now)
	snap.Progress = buildProgress(projects, snap.Queries, now)
	snap.Insights = dashboardInsights(snap)
	return snap
}

func buildFinancial(projects []models.Project) FinancialMetrics {
	agg := Aggregate(projects, nil, []Accumulator[models.Project]{
		{Name: "allocated", Kind: AccSum, Value: func(p models.Project) (float64, bool) { return p.BudgetAllocated, true }},
		{Name: "utilized", Kind: AccSum, Value: func(p models.Project) (float64, bool) { return p.BudgetUtilized, true }},
		{Name: "overBudget", Kind: AccCount, Value: func(p models.Project) (float64, bool) { return 1, p.OverBudget() }},
		{Name: "underUtilized", Kind: AccCount, Value: func(p models.Project) (float64, bool) {
			return 1, p.BudgetAllocated > 0 && p.UtilizationRate() < lowUtilizationPct
		}},
	})

	allocated := agg.Value("", "allocated").Sum
	utilized := agg.Value("", "utilized").Sum
	overBudget := int(agg.Value("", "overBudget").Count)
	underUtilized := int(agg.Value("", "underUtilized").Count)
	utilization := Rate(utilized, allocated)

	return FinancialMetrics{
		BudgetAllocated:       allocated,
		BudgetUtilized:        utilized,
		UtilizationRate:       utilization,
		OverBudgetProjects:    overBudget,
		UnderUtilizedProjects: underUtilized,
		HealthScore:           FinancialHealthScore(overBudget, underUtilized, float64(utilization)),
	}
}

func buildQuerySummary(projects []models.Project, now time.Time) QuerySummary {
	rows := FanOut(projects, func(p models.Project) []models.Query { return p.Queries })
	agg := Aggregate(rows, nil, []Accumulator[ParentChild[models.Project, models.Query]]{
		{Name: "total", Kind: AccCount, Value: func(r ParentChild[models.Project, models.Query]) (float64, bool) {
			return 1, r.Sub != nil && r.Sub.IsActive
		}},
		{Name: "open", Kind: AccCount, Value: func(r ParentChild[models.Project, models.Query]) (float64, bool) {
			return 1, r.Sub != nil && r.Sub.IsActive && !r.Sub.Resolved()
		}},
		{Name: "resolved", Kind: AccCount, Value: func(r ParentChild[models.Project, models.Query]) (float64, bool) {
			return 1, r.Sub != nil && r.Sub.IsActive && r.Sub.Status == models.QueryResolved
		}},
		{Name: "closed", Kind: AccCount, Value: func(r ParentChild[models.Project, models.Query]) (float64, bool) {
			return 1, r.Sub != nil && r.Sub.IsActive && r.Sub.Status == models.QueryClosed
		}},
		{Name: "overdue", Kind: AccCount, Value: func(r ParentChild[models.Project, models.Query]) (float64, bool) {
			return 1, r.Sub != nil && r.Sub.IsActive && r.Sub.Overdue(now)
		}},
	})

	s := QuerySummary{
		TotalQueries:    agg.Value("", "total").Count,
		OpenQueries:     agg.Value("", "open").Count,
		ResolvedQueries: agg.Value("", "resolved").Count,
		ClosedQueries:   agg.Value("", "closed").Count,
		OverdueQueries:  agg.Value("", "overdue").Count,
	}
	s.ResolutionRate = Rate(float64(s.ResolvedQueries+s.ClosedQueries), float64(s.TotalQueries))
	return s
}

func buildProgress(projects []models.Project, queries QuerySummary, now time.Time) ProgressMetrics {
	agg := Aggregate(projects, nil, []Accumulator[models.Project]{
		{Name: "physical", Kind: AccAvg, Value: func(p models.Project) (float64, bool) { return p.PhysicalProgress, true }},
		{Name: "financial", Kind: AccAvg, Value: func(p models.Project) (float64, bool) {
			if p.FinancialProgress == nil {
				return 0, false
			}
			return *p.FinancialProgress, true
		}},
		{Name: "onSchedule", Kind: AccCount, Value: func(p models.Project) (float64, bool) {
			if p.Status == models.StatusCompleted {
				return 1, true
			}
			return 1, p.ExpectedEndDate == nil || !now.After(*p.ExpectedEndDate)
		}},
		{Name: "stale", Kind: AccCount, Value: func(p models.Project) (float64, bool) {
			return 1, staleReporting(p, now)
		}},
	})

	physical := agg.Value("", "physical").Avg
	financial := agg.Value("", "financial").Avg
	onSchedule := agg.Value("", "onSchedule").Count
	scheduleRate := Rate(float64(onSchedule), float64(len(projects)))

	rates := map[string]int{
		"physicalProgress":  int(math.Round(physical)),
		"financialProgress": int(math.Round(financial)),
		"queryResolution":   queries.ResolutionRate,
		"schedule":          scheduleRate,
	}
	score, grade := PerformanceGrade(rates)

	return ProgressMetrics{
		AvgPhysicalProgress:  round2(physical),
		AvgFinancialProgress: round2(financial),
		OnScheduleProjects:   onSchedule,
		ScheduleRate:         scheduleRate,
		StaleProjects:        agg.Value("", "stale").Count,
		PerformanceScore:     round2(score),
		PerformanceGrade:     grade,
	}
}

// staleReporting reports whether an unfinished project has gone without an
// active progress update for longer than the reporting window. Projects that
// never filed an update are measured from their creation date.
func staleReporting(p models.Project, now time.Time) bool {
	if p.Status == models.StatusCompleted || p.Status == models.StatusDraft {
		return false
	}
	latest := p.CreatedAt
	for _, u := range p.ProgressUpdates {
		if u.IsActive && u.CreatedAt.After(latest) {
			latest = u.CreatedAt
		}
	}
	return now.Sub(latest) > staleReportingDays*24*time.Hour
}

func dashboardInsights(s KPISnapshot) []string {
	insights := []string{}
	if s.Overview.TotalProjects == 0 {
		return append(insights, "No projects match the selected filters.")
	}
	if s.Financial.OverBudgetProjects > 0 {
		insights = append(insights, fmt.Sprintf("%d project(s) have exceeded their budget allocation.", s.Financial.OverBudgetProjects))
	}
	if s.Financial.UtilizationRate > highUtilizationPct {
		insights = append(insights, fmt.Sprintf("Budget utilization is at %d%%; remaining headroom is thin.", s.Financial.UtilizationRate))
	}
	if s.Financial.UtilizationRate < lowUtilizationPct {
		insights = append(insights, fmt.Sprintf("Budget utilization is only %d%%; funds may be idle.", s.Financial.UtilizationRate))
	}
	if s.Progress.StaleProjects > 0 {
		insights = append(insights, fmt.Sprintf("%d project(s) have not reported progress in over %d days.", s.Progress.StaleProjects, staleReportingDays))
	}
	if s.Queries.OverdueQueries > 0 {
		insights = append(insights, fmt.Sprintf("%d query(ies) are past their expected resolution date.", s.Queries.OverdueQueries))
	}
	if s.Queries.TotalQueries > 0 && s.Queries.ResolutionRate < 50 {
		insights = append(insights, fmt.Sprintf("Query resolution rate is %d%%, below the 50%% benchmark.", s.Queries.ResolutionRate))
	}
	if len(insights) == 0 {
		insights = append(insights, "All tracked indicators are within normal ranges.")
	}
	return insights
}

// QueryTimeMetrics aggregate resolution timing over a query set.
type QueryTimeMetrics struct {
	AvgResolutionHours float64 `json:"avgResolutionHours"`
	OverdueQueries     int64   `json:"overdueQueries"`
	ResolutionRate     int     `json:"resolutionRate"`
}

// EscalationMetrics summarize how far queries have climbed the authority
// chain.
type EscalationMetrics struct {
	EscalatedQueries   int64   `json:"escalatedQueries"`
	MaxEscalationLevel int     `json:"maxEscalationLevel"`
	AvgEscalationLevel float64 `json:"avgEscalationLevel"`
}

// QueryKPIs is the full query-analytics payload.
type QueryKPIs struct {
	TotalQueries         int64             `json:"totalQueries"`
	StatusDistribution   map[string]int64  `json:"statusDistribution"`
	PriorityDistribution map[string]int64  `json:"priorityDistribution"`
	CategoryDistribution map[string]int64  `json:"categoryDistribution"`
	TimeMetrics          QueryTimeMetrics  `json:"timeMetrics"`
	EscalationMetrics    EscalationMetrics `json:"escalationMetrics"`
	Insights             []string          `json:"insights"`
}

// BuildQueryKPIs composes query analytics from the filtered query set. Only
// active queries count; soft-deleted rows are dropped before any arithmetic.
func BuildQueryKPIs(queries []models.Query, now time.Time) QueryKPIs {
	active := make([]models.Query, 0, len(queries))
	for _, q := range queries {
		if q.IsActive {
			active = append(active, q)
		}
	}

	statusAgg := Aggregate(active,
		func(q models.Query) string { return string(q.Status) },
		[]Accumulator[models.Query]{{Name: "count", Kind: AccCount}})
	priorityAgg := Aggregate(active,
		func(q models.Query) string { return string(q.Priority) },
		[]Accumulator[models.Query]{{Name: "count", Kind: AccCount}})
	categoryAgg := Aggregate(active,
		func(q models.Query) string { return string(q.Category) },
		[]Accumulator[models.Query]{{Name: "count", Kind: AccCount}})

	timing := Aggregate(active, nil, []Accumulator[models.Query]{
		{Name: "resolutionHours", Kind: AccAvg, Value: func(q models.Query) (float64, bool) {
			if q.ActualResolutionDate == nil {
				return 0, false
			}
			return q.ActualResolutionDate.Sub(q.RaisedDate).Hours(), true
		}},
		{Name: "overdue", Kind: AccCount, Value: func(q models.Query) (float64, bool) { return 1, q.Overdue(now) }},
		{Name: "escalation", Kind: AccMax, Value: func(q models.Query) (float64, bool) {
			return float64(q.EscalationLevel), true
		}},
		{Name: "escalated", Kind: AccCount, Value: func(q models.Query) (float64, bool) { return 1, q.EscalationLevel > 0 }},
	})

	resolved := statusAgg.Value(string(models.QueryResolved), "count").Count
	closed := statusAgg.Value(string(models.QueryClosed), "count").Count
	total := int64(len(active))

	kpis := QueryKPIs{
		TotalQueries:         total,
		StatusDistribution:   statusAgg.Counts("count"),
		PriorityDistribution: priorityAgg.Counts("count"),
		CategoryDistribution: categoryAgg.Counts("count"),
		TimeMetrics: QueryTimeMetrics{
			AvgResolutionHours: round2(timing.Value("", "resolutionHours").Avg),
			OverdueQueries:     timing.Value("", "overdue").Count,
			ResolutionRate:     Rate(float64(resolved+closed), float64(total)),
		},
	}

	esc := timing.Value("", "escalation")
	kpis.EscalationMetrics.EscalatedQueries = timing.Value("", "escalated").Count
	if esc.Max != nil {
		kpis.EscalationMetrics.MaxEscalationLevel = int(*esc.Max)
	}
	kpis.EscalationMetrics.AvgEscalationLevel = round2(esc.Avg)

	kpis.Insights = queryInsights(kpis)
	return kpis
}

func queryInsights(k QueryKPIs) []string {
	insights := []string{}
	if k.TotalQueries == 0 {
		return append(insights, "No queries were raised in the selected window.")
	}
	if k.TimeMetrics.OverdueQueries > 0 {
		insights = append(insights, fmt.Sprintf("%d of %d queries are overdue.", k.TimeMetrics.OverdueQueries, k.TotalQueries))
	}
	if k.EscalationMetrics.MaxEscalationLevel >= 2 {
		insights = append(insights, fmt.Sprintf("At least one query has been escalated %d levels.", k.EscalationMetrics.MaxEscalationLevel))
	}
	if k.TimeMetrics.ResolutionRate >= 75 {
		insights = append(insights, fmt.Sprintf("Resolution rate of %d%% is on target.", k.TimeMetrics.ResolutionRate))
	}
	if len(insights) == 0 {
		insights = append(insights, "Query handling is within normal ranges.")
	}
	return insights
}

// VariantSummary is one side of the active/archived comparison, computed from
// the unified canonical view.
type VariantSummary struct {
	Projects    int64    `json:"projects"`
	TotalValue  float64  `json:"totalValue"`
	AvgValue    float64  `json:"avgValue"`
	AvgProgress float64  `json:"avgProgress"`
	Districts   []string `json:"districts"`
}

// ArchiveComparison sets the live project set against the archived register.
type ArchiveComparison struct {
	Active          VariantSummary `json:"active"`
	Archived        VariantSummary `json:"archived"`
	ProgressGapPts  float64        `json:"progressGapPts"`
	ValueRatio      float64        `json:"valueRatio"`
	SharedDistricts []string       `json:"sharedDistricts"`
}

// BuildArchiveComparison runs two independent per-variant aggregations over
// the unified canonical view and composes them. The sets are never merged
// into one grouped pass; their group keys come from differently named source
// fields.
func BuildArchiveComparison(active []models.Project, archived []models.ArchiveProject) ArchiveComparison {
	activeCanon := make([]CanonicalProject, len(active))
	for i := range active {
		activeCanon[i] = Unify(ActiveRecord(&active[i]))
	}
	archivedCanon := make([]CanonicalProject, len(archived))
	for i := range archived {
		archivedCanon[i] = Unify(ArchivedRecord(&archived[i]))
	}

	cmp := ArchiveComparison{
		Active:   summarizeVariant(activeCanon),
		Archived: summarizeVariant(archivedCanon),
	}
	cmp.ProgressGapPts = round2(cmp.Active.AvgProgress - cmp.Archived.AvgProgress)
	if cmp.Archived.AvgValue > 0 {
		cmp.ValueRatio = round2(cmp.Active.AvgValue / cmp.Archived.AvgValue)
	}
	cmp.SharedDistricts = intersect(cmp.Active.Districts, cmp.Archived.Districts)
	return cmp
}

func summarizeVariant(canon []CanonicalProject) VariantSummary {
	agg := Aggregate(canon, nil, []Accumulator[CanonicalProject]{
		{Name: "count", Kind: AccCount},
		{Name: "value", Kind: AccAvg, Value: func(c CanonicalProject) (float64, bool) {
			if c.EstimatedCost == nil {
				return 0, false
			}
			return *c.EstimatedCost, true
		}},
		{Name: "progress", Kind: AccAvg, Value: func(c CanonicalProject) (float64, bool) {
			if c.PhysicalProgress == nil {
				return 0, false
			}
			return *c.PhysicalProgress, true
		}},
		{Name: "districts", Kind: AccDistinct, Label: func(c CanonicalProject) (string, bool) {
			if c.District == nil {
				return "", false
			}
			return *c.District, true
		}},
	})

	return VariantSummary{
		Projects:    agg.Value("", "count").Count,
		TotalValue:  agg.Value("", "value").Sum,
		AvgValue:    round2(agg.Value("", "value").Avg),
		AvgProgress: round2(agg.Value("", "progress").Avg),
		Districts:   agg.Value("", "districts").Distinct,
	}
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	out := []string{}
	for _, s := range b {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
