package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/models"
	"github.com/infratrack/engine/internal/repository"
	appErr "github.com/infratrack/engine/pkg/errors"
	"github.com/infratrack/engine/pkg/logger"
)

// Principal identifies the caller for role-restricted analytics.
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

// AnalyticsService orchestrates the analytics core: it builds filter
// descriptors, fans out the independent sub-aggregations, and composes the
// ephemeral results. It never mutates persistent state.
type AnalyticsService interface {
	DashboardKPIs(ctx context.Context, pr Principal, params analytics.FilterParams, includeArchive bool) (*analytics.KPISnapshot, analytics.FilterDescriptor, error)
	QueryKPIs(ctx context.Context, pr Principal, params analytics.FilterParams) (*analytics.QueryKPIs, analytics.FilterDescriptor, error)
	QueryTrends(ctx context.Context, pr Principal, period analytics.Period, params analytics.FilterParams) (*analytics.TrendReport, analytics.FilterDescriptor, error)
	AttentionQueries(ctx context.Context, pr Principal, params analytics.FilterParams, limit int) ([]analytics.RankedQuery, analytics.FilterDescriptor, error)
	ArchiveComparison(ctx context.Context, pr Principal, params analytics.FilterParams) (*analytics.ArchiveComparison, analytics.FilterDescriptor, error)
	InvalidateDashboard(ctx context.Context, userID uuid.UUID) error
}

type analyticsService struct {
	projects repository.ProjectRepository
	archives repository.ArchiveRepository
	queries  repository.QueryRepository
	cache    *DashboardCache
	now      func() time.Time
}

// NewAnalyticsService wires the analytics orchestrator. cache may be nil when
// no redis is configured; results are then always recomputed.
func NewAnalyticsService(projects repository.ProjectRepository, archives repository.ArchiveRepository, queries repository.QueryRepository, cache *DashboardCache) AnalyticsService {
	return &analyticsService{
		projects: projects,
		archives: archives,
		queries:  queries,
		cache:    cache,
		now:      time.Now,
	}
}

// DashboardKPIs computes the dashboard snapshot. The project and archive
// scans are independent sub-aggregations: they run concurrently and the
// result is only composed after both complete. Any sub-aggregation error
// aborts the whole request; a partially-correct dashboard is never surfaced.
func (s *analyticsService) DashboardKPIs(ctx context.Context, pr Principal, params analytics.FilterParams, includeArchive bool) (*analytics.KPISnapshot, analytics.FilterDescriptor, error) {
	now := s.now()
	f := analytics.BuildFilter(pr.Role, pr.UserID, params, now,
		analytics.DefaultArchiveWindowDays, analytics.MaxArchiveWindowDays)

	cacheable := s.cache != nil && params == (analytics.FilterParams{}) && !includeArchive
	if cacheable {
		if snap, ok := s.cache.Get(ctx, pr.UserID); ok {
			return snap, f, nil
		}
	}

	var (
		projects []models.Project
		archived []models.ArchiveProject
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.projects.ListFiltered(gctx, f)
		return err
	})
	if includeArchive {
		g.Go(func() error {
			var err error
			archived, err = s.archives.ListFiltered(gctx, f)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, f, appErr.Wrap(err, appErr.CodeInternal, "dashboard aggregation failed")
	}

	snap := analytics.BuildDashboard(projects, now)
	if f.GroupBy != "" {
		snap.Grouped = analytics.BuildGroupedCounts(projects, f.GroupBy)
	}
	if includeArchive {
		cmp := analytics.BuildArchiveComparison(projects, archived)
		snap.Archive = &cmp.Archived
	}

	if cacheable {
		if err := s.cache.Set(ctx, pr.UserID, &snap); err != nil {
			logger.L().Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return &snap, f, nil
}

func (s *analyticsService) QueryKPIs(ctx context.Context, pr Principal, params analytics.FilterParams) (*analytics.QueryKPIs, analytics.FilterDescriptor, error) {
	now := s.now()
	f := analytics.BuildFilter(pr.Role, pr.UserID, params, now,
		analytics.DefaultQueryWindowDays, analytics.MaxQueryWindowDays)

	queries, err := s.queries.ListFiltered(ctx, f)
	if err != nil {
		return nil, f, err
	}
	kpis := analytics.BuildQueryKPIs(queries, now)
	return &kpis, f, nil
}

func (s *analyticsService) QueryTrends(ctx context.Context, pr Principal, period analytics.Period, params analytics.FilterParams) (*analytics.TrendReport, analytics.FilterDescriptor, error) {
	now := s.now()
	f := analytics.BuildFilter(pr.Role, pr.UserID, params, now,
		analytics.DefaultQueryWindowDays, analytics.MaxQueryWindowDays)

	queries, err := s.queries.ListFiltered(ctx, f)
	if err != nil {
		return nil, f, err
	}
	report := analytics.BuildTrendReport(queries, period, f.WindowStart, f.WindowEnd)
	return &report, f, nil
}

func (s *analyticsService) AttentionQueries(ctx context.Context, pr Principal, params analytics.FilterParams, limit int) ([]analytics.RankedQuery, analytics.FilterDescriptor, error) {
	now := s.now()
	f := analytics.BuildFilter(pr.Role, pr.UserID, params, now,
		analytics.DefaultQueryWindowDays, analytics.MaxQueryWindowDays)

	queries, err := s.queries.ListFiltered(ctx, f)
	if err != nil {
		return nil, f, err
	}
	return analytics.RankByUrgency(queries, now, limit), f, nil
}

// ArchiveComparison runs one aggregation per record variant. The two scans
// are independent (group keys differ by variant field names) and compose
// after the join barrier.
func (s *analyticsService) ArchiveComparison(ctx context.Context, pr Principal, params analytics.FilterParams) (*analytics.ArchiveComparison, analytics.FilterDescriptor, error) {
	now := s.now()
	f := analytics.BuildFilter(pr.Role, pr.UserID, params, now,
		analytics.DefaultArchiveWindowDays, analytics.MaxArchiveWindowDays)

	var (
		active   []models.Project
		archived []models.ArchiveProject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		active, err = s.projects.ListFiltered(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		archived, err = s.archives.ListFiltered(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, f, appErr.Wrap(err, appErr.CodeInternal, "archive comparison aggregation failed")
	}

	cmp := analytics.BuildArchiveComparison(active, archived)
	return &cmp, f, nil
}

func (s *analyticsService) InvalidateDashboard(ctx context.Context, userID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, userID)
}
