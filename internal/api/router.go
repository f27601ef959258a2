package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/infratrack/engine/internal/api/handlers"
	mw "github.com/infratrack/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret       []byte
	RateLimiter      *mw.UserRateLimiter
	AuthHandler      *handlers.AuthHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	ProjectsHandler  *handlers.ProjectsHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)
		})

		// Protected routes. The rate limiter sits inside the auth group so
		// buckets key on the authenticated user rather than the client IP.
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))
			protected.Use(mw.RateLimit(dep.RateLimiter))

			protected.Route("/analytics", func(an chi.Router) {
				an.Get("/dashboard", dep.AnalyticsHandler.Dashboard)
				an.Get("/queries/kpis", dep.AnalyticsHandler.QueryKPIs)
				an.Get("/queries/trends", dep.AnalyticsHandler.QueryTrends)
				an.Get("/queries/attention", dep.AnalyticsHandler.Attention)
				an.Get("/archive/comparison", dep.AnalyticsHandler.ArchiveComparison)
				an.Post("/cache/invalidate", dep.AnalyticsHandler.InvalidateCache)
			})

			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Get("/{projectId}", dep.ProjectsHandler.Get)
			})
		})
	})

	return r
}
