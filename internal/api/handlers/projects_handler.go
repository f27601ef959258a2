package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/api/types"
	"github.com/infratrack/engine/internal/models"
	"github.com/infratrack/engine/internal/repository"
	appErr "github.com/infratrack/engine/pkg/errors"
)

// ProjectsHandler is a thin read surface over project records. Mutation and
// upload flows live in the departmental CRUD service; the analytics engine
// only needs these endpoints for drill-down from dashboard tiles.
type ProjectsHandler struct {
	repo           repository.ProjectRepository
	includeDetails bool
}

func NewProjectsHandler(repo repository.ProjectRepository, includeDetails bool) *ProjectsHandler {
	return &ProjectsHandler{repo: repo, includeDetails: includeDetails}
}

// List returns the caller's visible projects. The filter builder applies the
// same role restriction the analytics endpoints use, so a junior engineer
// cannot drill into projects the dashboard would never have shown them.
// sortBy/sortDir follow the analytics parameter rules: unknown fields and
// directions fall back rather than error.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	pr := principal(r)
	q := r.URL.Query()
	f := analytics.BuildFilter(pr.Role, pr.UserID, analytics.FilterParams{
		SortBy:  q.Get("sortBy"),
		SortDir: q.Get("sortDir"),
	}, time.Now(), analytics.DefaultArchiveWindowDays, analytics.MaxArchiveWindowDays)

	items, err := h.repo.ListFiltered(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, h.includeDetails)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items[start:end],
		Meta:    &types.Meta{Page: page, PageSize: size, Total: int64(len(items))},
	})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	var p models.Project
	if err := h.repo.GetByExternalID(r.Context(), projectID, &p); err != nil {
		status := http.StatusInternalServerError
		if appErr.IsCode(err, appErr.CodeNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err, h.includeDetails)
		return
	}
	pr := principal(r)
	if pr.Role == models.RoleJuniorEngineer && p.CreatedBy != pr.UserID {
		writeErrorStr(w, http.StatusForbidden, "project belongs to another engineer")
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}
