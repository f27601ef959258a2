package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/models"
	"github.com/infratrack/engine/internal/repository"
	"github.com/infratrack/engine/internal/services"
	"github.com/infratrack/engine/pkg/logger"
)

// Task type names registered on the asynq mux.
const (
	TypeDashboardWarm = "dashboard:warm"
)

// DashboardWarmPayload asks the worker to precompute one user's dashboard
// snapshot so the next page load hits the cache.
type DashboardWarmPayload struct {
	UserID string `json:"user_id"`
}

// NewDashboardWarmTask builds the enqueueable task.
func NewDashboardWarmTask(userID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(DashboardWarmPayload{UserID: userID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDashboardWarm, payload), nil
}

// DashboardTaskHandler recomputes and caches dashboard snapshots off the
// request path.
type DashboardTaskHandler struct {
	analytics services.AnalyticsService
	users     repository.UserRepository
}

func NewDashboardTaskHandler(svc services.AnalyticsService, users repository.UserRepository) *DashboardTaskHandler {
	return &DashboardTaskHandler{analytics: svc, users: users}
}

// HandleWarm computes the default-parameter dashboard for the payload's user.
// The analytics service writes the cache entry itself; the worker only
// triggers the computation.
func (h *DashboardTaskHandler) HandleWarm(ctx context.Context, t *asynq.Task) error {
	var p DashboardWarmPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid dashboard warm payload", zap.Error(err))
		return err
	}
	uid, err := uuid.Parse(p.UserID)
	if err != nil {
		logger.L().Error("invalid user id in dashboard warm task", zap.Error(err))
		return err
	}

	var user models.User
	if err := h.users.GetByID(ctx, uid, &user); err != nil {
		logger.L().Error("load user for dashboard warm failed", zap.Error(err))
		return err
	}
	principal := services.Principal{UserID: user.ID, Role: user.Role}

	if _, _, err := h.analytics.DashboardKPIs(ctx, principal, analytics.FilterParams{}, false); err != nil {
		logger.L().Error("dashboard warm failed", zap.String("user_id", uid.String()), zap.Error(err))
		return err
	}
	logger.L().Info("dashboard warmed", zap.String("user_id", uid.String()))
	return nil
}
