package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/infratrack/engine/internal/analytics"
	"github.com/infratrack/engine/internal/models"
	appErr "github.com/infratrack/engine/pkg/errors"
)

type QueryRepository interface {
	BaseRepository[models.Query]
	ListFiltered(ctx context.Context, f analytics.FilterDescriptor) ([]models.Query, error)
}

type queryRepository struct {
	BaseRepository[models.Query]
	db *gorm.DB
}

func NewQueryRepository(db *gorm.DB) QueryRepository {
	return &queryRepository{BaseRepository: NewBaseRepository[models.Query](db), db: db}
}

// ListFiltered loads active queries inside the descriptor's window, joined
// through their parent projects so project-level constraints (including the
// creator restriction for junior engineers) also narrow the query set.
func (r *queryRepository) ListFiltered(ctx context.Context, f analytics.FilterDescriptor) ([]models.Query, error) {
	tx := r.db.WithContext(ctx).Model(&models.Query{}).
		Joins("JOIN projects ON projects.id = queries.project_ref AND projects.deleted_at IS NULL").
		Where("queries.is_active = ?", true).
		Where("queries.raised_date BETWEEN ? AND ?", f.WindowStart, f.WindowEnd)

	if f.CreatedBy != nil {
		tx = tx.Where("projects.created_by = ?", *f.CreatedBy)
	}
	if f.District != "" {
		tx = tx.Where("projects.district = ?", f.District)
	}
	if f.Fund != "" {
		tx = tx.Where("projects.fund = ?", f.Fund)
	}
	if f.Contractor != "" {
		tx = tx.Where("projects.contractor = ?", f.Contractor)
	}
	if f.Category != "" {
		tx = tx.Where("projects.category = ?", f.Category)
	}
	if f.Priority != "" {
		tx = tx.Where("queries.priority = ?", f.Priority)
	}

	var out []models.Query
	if err := tx.Order("queries.raised_date ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list filtered queries failed")
	}
	return out, nil
}
