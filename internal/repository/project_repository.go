package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/models"
	appErr "github.com/infratrack/engine/pkg/errors"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	ListFiltered(ctx context.Context, f analytics.FilterDescriptor) ([]models.Project, error)
	GetByExternalID(ctx context.Context, projectID string, dest *models.Project) error
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

// ListFiltered loads the live projects matched by a filter descriptor with
// their embedded queries and progress updates preloaded, so the analytics
// core can fan them out without further round trips. Rows come back in the
// descriptor's resolved sort order.
func (r *projectRepository) ListFiltered(ctx context.Context, f analytics.FilterDescriptor) ([]models.Project, error) {
	var out []models.Project
	tx := f.Apply(r.db.WithContext(ctx).Model(&models.Project{})).
		Order(f.OrderClause()).
		Preload("Queries").
		Preload("ProgressUpdates")
	if err := tx.Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list filtered projects failed")
	}
	return out, nil
}

func (r *projectRepository) GetByExternalID(ctx context.Context, projectID string, dest *models.Project) error {
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Preload("Queries").Preload("ProgressUpdates").First(dest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "project not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get project by external id failed")
	}
	return nil
}
