package entities

import (
	"time"

	"gorm.io/gorm"
)

type Teacher struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email          string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash   string         `gorm:"size:100" json:"-"`
	TokenHash      string         `gorm:"index;size:64" json:"-"` // sha256 of the API token
	TokenCreatedAt *time.Time     `json:"-"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
