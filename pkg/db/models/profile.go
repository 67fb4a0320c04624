package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tmarowa/zimcart-backend/pkg/enums"
)

// Profile represents the canonical identity entity, covering registered
// customers, vendors, and system-created guest accounts.
type Profile struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	FullName     string         `gorm:"column:full_name;not null"`
	Phone        *string        `gorm:"column:phone"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	IsGuest      bool           `gorm:"column:is_guest;not null;default:false"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the collection name consumed by the query layer.
func (Profile) TableName() string {
	return "profiles"
}
