package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/infratrack/engine/internal/api"
	"github.com/infratrack/engine/internal/api/handlers"
	"github.com/infratrack/engine/internal/api/middleware"
	"github.com/infratrack/engine/internal/api/validators"
	"github.com/infratrack/engine/internal/repository"
	"github.com/infratrack/engine/internal/services"
	"github.com/infratrack/engine/pkg/config"
	"github.com/infratrack/engine/pkg/database"
	"github.com/infratrack/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting infratrack analytics engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	// Redis backs the dashboard cache; the API stays up without it.
	var cache *services.DashboardCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			cache = services.NewDashboardCache(rdb, cfg.DashboardCacheTTL)
		}
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)
	queryRepo := repository.NewQueryRepository(db)

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	analyticsSvc := services.NewAnalyticsService(projectRepo, archiveRepo, queryRepo, cache)
	authSvc := services.NewAuthService(userRepo, jwtSecret)

	includeDetails := cfg.AppEnv != "production"
	router := api.NewRouter(api.Dependencies{
		HMACSecret:       jwtSecret,
		RateLimiter:      middleware.NewUserRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		AuthHandler:      handlers.NewAuthHandler(authSvc, includeDetails),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc, validators.New(), includeDetails),
		ProjectsHandler:  handlers.NewProjectsHandler(projectRepo, includeDetails),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
