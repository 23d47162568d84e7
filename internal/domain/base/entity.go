// internal/domain/base/entity.go
package base

import (
	"time"

	"gorm.io/gorm"
)

// BaseStatus represents the operational status of a base
type BaseStatus string

const (
	BaseStatusActive      BaseStatus = "active"
	BaseStatusInactive    BaseStatus = "inactive"
	BaseStatusMaintenance BaseStatus = "maintenance"
)

// Location represents a base's physical location (embedded in Base)
type Location struct {
	Address   string  `gorm:"size:255" json:"address"`
	City      string  `gorm:"size:100" json:"city"`
	State     string  `gorm:"size:100" json:"state"`
	Country   string  `gorm:"size:100;default:'USA'" json:"country"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Base represents a military installation holding inventory.
// Reference data, same lifecycle class as Asset.
type Base struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Code            string         `gorm:"uniqueIndex;not null;size:10" json:"code"`
	Location        Location       `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	CommanderID     *uint          `gorm:"index" json:"commander_id"`
	EstablishedDate time.Time      `json:"established_date"`
	Status          BaseStatus     `gorm:"not null;size:20;default:'active'" json:"status"`
	Description     string         `gorm:"size:500" json:"description"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Base
func (Base) TableName() string {
	return "bases"
}

// IsOperational reports whether the base can receive or ship stock
func (b *Base) IsOperational() bool {
	return b.Status == BaseStatusActive
}
