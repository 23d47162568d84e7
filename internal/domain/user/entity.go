// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role represents a user's access level
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleBaseCommander    Role = "base_commander"
	RoleLogisticsOfficer Role = "logistics_officer"
)

// User represents an operator of the tracking system
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"uniqueIndex;not null;size:50" json:"username"`
	Email          string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password       string         `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	FirstName      string         `gorm:"size:50" json:"first_name"`
	LastName       string         `gorm:"size:50" json:"last_name"`
	Rank           string         `gorm:"size:50" json:"rank"`
	Role           Role           `gorm:"not null;size:30;default:'logistics_officer'" json:"role"`
	AssignedBaseID *uint          `gorm:"index" json:"assigned_base_id"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt    *time.Time     `json:"last_login_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to normalize identity fields
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	u.Username = strings.ToLower(u.Username)
	return nil
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the user has administrative access
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether r is a known role
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleBaseCommander, RoleLogisticsOfficer:
		return true
	}
	return false
}
