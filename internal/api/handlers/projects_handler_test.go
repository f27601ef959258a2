package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/models"
	"github.com/infratrack/engine/internal/repository"
	appErr "github.com/infratrack/engine/pkg/errors"
)

// stubProjectRepo overrides only the methods a test exercises; calling
// anything else panics on the nil embedded interface.
type stubProjectRepo struct {
	repository.ProjectRepository
	listFiltered    func(analytics.FilterDescriptor) ([]models.Project, error)
	getByExternalID func(string, *models.Project) error
}

func (s *stubProjectRepo) ListFiltered(_ context.Context, f analytics.FilterDescriptor) ([]models.Project, error) {
	return s.listFiltered(f)
}

func (s *stubProjectRepo) GetByExternalID(_ context.Context, projectID string, dest *models.Project) error {
	return s.getByExternalID(projectID, dest)
}

func getRequest(projectID string, userID uuid.UUID, role models.Role) *http.Request {
	r := authedRequest(http.MethodGet, "/api/v1/projects/"+projectID, userID, role)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("projectId", projectID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestProjectsHandler_GetStatusByErrorCode(t *testing.T) {
	t.Run("missing project is a 404", func(t *testing.T) {
		repo := &stubProjectRepo{getByExternalID: func(string, *models.Project) error {
			return appErr.New(appErr.CodeNotFound, "project not found")
		}}
		rec := httptest.NewRecorder()
		NewProjectsHandler(repo, true).Get(rec, getRequest("PRJ-404", uuid.New(), models.RoleAdmin))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("backend failure is a 500, not a 404", func(t *testing.T) {
		repo := &stubProjectRepo{getByExternalID: func(string, *models.Project) error {
			return appErr.New(appErr.CodeInternal, "connection refused")
		}}
		rec := httptest.NewRecorder()
		NewProjectsHandler(repo, false).Get(rec, getRequest("PRJ-1", uuid.New(), models.RoleAdmin))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestProjectsHandler_ListSortParams(t *testing.T) {
	var seen analytics.FilterDescriptor
	repo := &stubProjectRepo{listFiltered: func(f analytics.FilterDescriptor) ([]models.Project, error) {
		seen = f
		return []models.Project{}, nil
	}}
	h := NewProjectsHandler(repo, true)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet,
		"/api/v1/projects?sortBy=estimatedCost&sortDir=asc", uuid.New(), models.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "estimatedCost", seen.SortBy)
	require.Equal(t, analytics.SortAsc, seen.SortDir)
	require.Equal(t, "estimated_cost ASC", seen.OrderClause())
}
