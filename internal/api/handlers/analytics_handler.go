package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/api/middleware"
	"github.com/infratrack/engine/internal/api/types"
	"github.com/infratrack/engine/internal/api/validators"
	"github.com/infratrack/engine/internal/models"
	"github.com/infratrack/engine/internal/services"
)

// AnalyticsHandler exposes the aggregation core over HTTP. It validates
// parameters, resolves the caller's principal, and renders the service's
// structured results; all computation lives below it.
type AnalyticsHandler struct {
	svc            services.AnalyticsService
	validate       interface{ Struct(any) error }
	includeDetails bool
}

func NewAnalyticsHandler(svc services.AnalyticsService, v interface{ Struct(any) error }, includeDetails bool) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, validate: v, includeDetails: includeDetails}
}

func principal(r *http.Request) services.Principal {
	uid, _ := uuid.Parse(middleware.GetUserID(r.Context()))
	return services.Principal{UserID: uid, Role: middleware.GetRole(r.Context())}
}

// parseQuery reads the shared analytics parameters. Malformed numerics are
// collected as field errors; every violated constraint is reported, not just
// the first.
func (h *AnalyticsHandler) parseQuery(r *http.Request) (types.AnalyticsQuery, []types.FieldError) {
	q := r.URL.Query()
	var errs []types.FieldError

	parsed := types.AnalyticsQuery{
		Period:     q.Get("period"),
		GroupBy:    q.Get("groupBy"),
		Category:   q.Get("category"),
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		District:   q.Get("district"),
		Fund:       q.Get("fund"),
		Contractor: q.Get("contractor"),
		MinValue:   q.Get("minValue"),
		MaxValue:   q.Get("maxValue"),
		SortBy:     q.Get("sortBy"),
		SortDir:    q.Get("sortDir"),
	}

	for name, dst := range map[string]*int{
		"timeRange": &parsed.TimeRange,
		"periods":   &parsed.Periods,
		"months":    &parsed.Months,
		"limit":     &parsed.Limit,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, types.FieldError{Field: name, Message: "must be an integer", Value: raw})
			continue
		}
		*dst = n
	}

	if raw := q.Get("includeArchive"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, types.FieldError{Field: "includeArchive", Message: "must be a boolean", Value: raw})
		} else {
			parsed.IncludeArchive = b
		}
	}

	if err := h.validate.Struct(parsed); err != nil {
		errs = append(errs, validators.FieldErrors(err)...)
	}
	return parsed, errs
}

func filterParams(q types.AnalyticsQuery) analytics.FilterParams {
	p := analytics.FilterParams{
		TimeRangeDays: q.TimeRange,
		District:      q.District,
		Fund:          q.Fund,
		Contractor:    q.Contractor,
		Category:      models.ProjectCategory(q.Category),
		Status:        models.ProjectStatus(q.Status),
		Priority:      models.QueryPriority(q.Priority),
		GroupBy:       q.GroupBy,
		SortBy:        q.SortBy,
	}
	if q.SortDir != "" {
		p.SortDir = q.SortDir
	}
	if q.MinValue != "" {
		if v, err := strconv.ParseFloat(q.MinValue, 64); err == nil {
			p.MinValue = &v
		}
	}
	if q.MaxValue != "" {
		if v, err := strconv.ParseFloat(q.MaxValue, 64); err == nil {
			p.MaxValue = &v
		}
	}
	return p
}

func analyticsMeta(r *http.Request, f analytics.FilterDescriptor) *types.Meta {
	now := time.Now().UTC()
	start, end := f.WindowStart, f.WindowEnd
	return &types.Meta{
		RequestID:   middleware.GetRequestID(r.Context()),
		Role:        string(f.Role),
		WindowStart: &start,
		WindowEnd:   &end,
		GeneratedAt: &now,
	}
}

// Dashboard serves GET /analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q, errs := h.parseQuery(r)
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}
	snap, f, err := h.svc.DashboardKPIs(r.Context(), principal(r), filterParams(q), q.IncludeArchive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, h.includeDetails)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: snap, Meta: analyticsMeta(r, f)})
}

// QueryKPIs serves GET /analytics/queries/kpis.
func (h *AnalyticsHandler) QueryKPIs(w http.ResponseWriter, r *http.Request) {
	q, errs := h.parseQuery(r)
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}
	kpis, f, err := h.svc.QueryKPIs(r.Context(), principal(r), filterParams(q))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, h.includeDetails)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: kpis, Meta: analyticsMeta(r, f)})
}

// QueryTrends serves GET /analytics/queries/trends.
func (h *AnalyticsHandler) QueryTrends(w http.ResponseWriter, r *http.Request) {
	q, errs := h.parseQuery(r)
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}
	period := analytics.Period(q.Period)
	if period == "" {
		period = analytics.PeriodMonthly
	}
	params := filterParams(q)
	// months is the legacy alias for the bucket count; periods wins when both
	// are sent.
	buckets := q.Periods
	if buckets == 0 {
		buckets = q.Months
	}
	if buckets > 0 {
		params.TimeRangeDays = periodsToDays(period, buckets)
	}
	report, f, err := h.svc.QueryTrends(r.Context(), principal(r), period, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, h.includeDetails)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: report, Meta: analyticsMeta(r, f)})
}

// periodsToDays resolves a requested bucket count into a day window; the
// filter builder still clamps the result to the query maximum.
func periodsToDays(p analytics.Period, n int) int {
	switch p {
	case analytics.PeriodDaily:
		return n
	case analytics.PeriodWeekly:
		return n * 7
	default:
		return n * 30
	}
}

// Attention serves GET /analytics/queries/attention.
func (h *AnalyticsHandler) Attention(w http.ResponseWriter, r *http.Request) {
	q, errs := h.parseQuery(r)
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	ranked, f, err := h.svc.AttentionQueries(r.Context(), principal(r), filterParams(q), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, h.includeDetails)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: ranked, Meta: analyticsMeta(r, f)})
}

// ArchiveComparison serves GET /analytics/archive/comparison.
func (h *AnalyticsHandler) ArchiveComparison(w http.ResponseWriter, r *http.Request) {
	q, errs := h.parseQuery(r)
	if len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}
	cmp, f, err := h.svc.ArchiveComparison(r.Context(), principal(r), filterParams(q))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, h.includeDetails)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: cmp, Meta: analyticsMeta(r, f)})
}

// InvalidateCache serves POST /analytics/cache/invalidate. It drops only the
// caller's dashboard entry.
func (h *AnalyticsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	pr := principal(r)
	if err := h.svc.InvalidateDashboard(r.Context(), pr.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, err, h.includeDetails)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
