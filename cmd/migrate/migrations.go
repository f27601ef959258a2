package main

import (
	"gorm.io/gorm"

	"github.com/infratrack/engine/internal/models"
)

// registerModels returns all models that need migration.
func registerModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.ArchiveProject{},
		&models.Query{},
		&models.ProgressUpdate{},
	}
}

// runMigrations executes all database migrations.
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(registerModels()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle.
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		enableUUIDExtension,
		addQueryAnalyticsIndexes,
	}
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}
	return nil
}

// enableUUIDExtension ensures UUID generation is available.
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addQueryAnalyticsIndexes adds composite indexes backing the hot analytics
// scans: active queries by raised date, and projects by creator inside a
// window.
func addQueryAnalyticsIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_queries_active_raised
		ON queries(raised_date)
		WHERE is_active = true
	`).Error; err != nil {
		return err
	}
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_projects_creator_created
		ON projects(created_by, created_at)
		WHERE deleted_at IS NULL
	`).Error
}
