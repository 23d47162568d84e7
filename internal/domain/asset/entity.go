// internal/domain/asset/entity.go
package asset

import (
	"time"

	"gorm.io/gorm"
)

// AssetType represents the class of equipment an asset belongs to
type AssetType string

const (
	AssetTypeVehicle    AssetType = "vehicle"
	AssetTypeWeapon     AssetType = "weapon"
	AssetTypeAmmunition AssetType = "ammunition"
	AssetTypeEquipment  AssetType = "equipment"
	AssetTypeSupplies   AssetType = "supplies"
)

// UnitOfMeasure represents how an asset's quantity is counted
type UnitOfMeasure string

const (
	UnitPiece UnitOfMeasure = "piece"
	UnitKg    UnitOfMeasure = "kg"
	UnitLiter UnitOfMeasure = "liter"
	UnitMeter UnitOfMeasure = "meter"
	UnitBox   UnitOfMeasure = "box"
	UnitCrate UnitOfMeasure = "crate"
	UnitRound UnitOfMeasure = "round"
)

// Asset represents a catalog entry for trackable military equipment.
// Reference data: created by an administrator, rarely mutated, never deleted
// while referenced by ledger records.
type Asset struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null;size:100;index" json:"name"`
	Type          AssetType      `gorm:"not null;size:20;index" json:"type"`
	Category      string         `gorm:"not null;size:100" json:"category"`
	Model         string         `gorm:"size:100" json:"model"`
	SerialNumber  string         `gorm:"uniqueIndex;size:100" json:"serial_number,omitempty"`
	Manufacturer  string         `gorm:"size:100" json:"manufacturer"`
	UnitOfMeasure UnitOfMeasure  `gorm:"not null;size:20;default:'piece'" json:"unit_of_measure"`
	CostPerUnit   int64          `gorm:"not null" json:"cost_per_unit"` // In cents
	MinimumStock  int            `gorm:"default:0" json:"minimum_stock"`
	Description   string         `gorm:"size:500" json:"description"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Asset
func (Asset) TableName() string {
	return "assets"
}

// ValidType reports whether t is a known asset type
func ValidType(t AssetType) bool {
	switch t {
	case AssetTypeVehicle, AssetTypeWeapon, AssetTypeAmmunition, AssetTypeEquipment, AssetTypeSupplies:
		return true
	}
	return false
}

// ValidUnit reports whether u is a known unit of measure
func ValidUnit(u UnitOfMeasure) bool {
	switch u {
	case UnitPiece, UnitKg, UnitLiter, UnitMeter, UnitBox, UnitCrate, UnitRound:
		return true
	}
	return false
}
