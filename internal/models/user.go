package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a user designation. Designations form a closed set; analytics
// filtering depends on them (junior engineers only see their own projects).
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleChiefEngineer     Role = "chief_engineer"
	RoleExecutiveEngineer Role = "executive_engineer"
	RoleJuniorEngineer    Role = "junior_engineer"
	RoleViewer            Role = "viewer"
)

// Valid reports whether the role is one of the known designations.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleChiefEngineer, RoleExecutiveEngineer, RoleJuniorEngineer, RoleViewer:
		return true
	}
	return false
}

// User represents a platform user.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name" validate:"required"`
	Role         Role           `gorm:"type:varchar(32);index;not null;default:'viewer'" json:"role" validate:"required,oneof=admin chief_engineer executive_engineer junior_engineer viewer"`
	District     string         `gorm:"type:varchar(100);index" json:"district"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
