package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/models"
	appErr "github.com/infratrack/engine/pkg/errors"
)

type ArchiveRepository interface {
	BaseRepository[models.ArchiveProject]
	ListFiltered(ctx context.Context, f analytics.FilterDescriptor) ([]models.ArchiveProject, error)
}

type archiveRepository struct {
	BaseRepository[models.ArchiveProject]
	db *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepository{BaseRepository: NewBaseRepository[models.ArchiveProject](db), db: db}
}

// ListFiltered loads archived projects under the descriptor using the archive
// schema's column names (work_value, archived_at).
func (r *archiveRepository) ListFiltered(ctx context.Context, f analytics.FilterDescriptor) ([]models.ArchiveProject, error) {
	var out []models.ArchiveProject
	tx := f.ApplyArchive(r.db.WithContext(ctx).Model(&models.ArchiveProject{}))
	if err := tx.Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list filtered archive projects failed")
	}
	return out, nil
}
