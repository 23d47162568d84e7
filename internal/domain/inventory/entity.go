// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"gorm.io/gorm"
)

// MovementKind represents the type of ledger mutation
type MovementKind string

const (
	MovementPurchased      MovementKind = "purchased"
	MovementTransferredIn  MovementKind = "transferred_in"
	MovementTransferredOut MovementKind = "transferred_out"
	MovementAssigned       MovementKind = "assigned"
	MovementExpended       MovementKind = "expended"
	// MovementAssignmentReturned is the reversal of an assigned movement:
	// it decrements total_assigned instead of incrementing a counter.
	MovementAssignmentReturned MovementKind = "assignment_returned"
)

// Inbound reports whether the kind adds to current stock
func (k MovementKind) Inbound() bool {
	return k == MovementPurchased || k == MovementTransferredIn
}

// Outbound reports whether the kind subtracts from current stock
func (k MovementKind) Outbound() bool {
	return k == MovementTransferredOut || k == MovementAssigned || k == MovementExpended
}

// InventoryRecord is the running-balance ledger row, unique per (asset, base).
//
// current_stock must equal opening_balance + net movement - total_assigned -
// total_expended at all times; every mutation updates the stock and the
// matching cumulative counter in the same transaction.
type InventoryRecord struct {
	ID             uint  `gorm:"primaryKey" json:"id"`
	AssetID        uint  `gorm:"not null;uniqueIndex:idx_inventory_asset_base" json:"asset_id"`
	BaseID         uint  `gorm:"not null;uniqueIndex:idx_inventory_asset_base" json:"base_id"`
	OpeningBalance int   `gorm:"not null;default:0" json:"opening_balance"`
	CurrentStock   int   `gorm:"not null;default:0" json:"current_stock"`
	ReservedStock  int   `gorm:"not null;default:0" json:"reserved_stock"`
	AvailableStock int   `gorm:"not null;default:0" json:"available_stock"`

	// Cumulative counters since opening
	TotalPurchased      int `gorm:"not null;default:0" json:"total_purchased"`
	TotalTransferredIn  int `gorm:"not null;default:0" json:"total_transferred_in"`
	TotalTransferredOut int `gorm:"not null;default:0" json:"total_transferred_out"`
	TotalAssigned       int `gorm:"not null;default:0" json:"total_assigned"`
	TotalExpended       int `gorm:"not null;default:0" json:"total_expended"`

	// Derived on read, never persisted
	NetMovement    int `gorm:"-" json:"net_movement"`
	ClosingBalance int `gorm:"-" json:"closing_balance"`

	LastCountDate *time.Time `json:"last_count_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName overrides the table name for InventoryRecord
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

func (r *InventoryRecord) recalc() {
	r.AvailableStock = r.CurrentStock - r.ReservedStock
	r.NetMovement = r.TotalPurchased + r.TotalTransferredIn - r.TotalTransferredOut
	r.ClosingBalance = r.OpeningBalance + r.NetMovement - r.TotalAssigned - r.TotalExpended
}

// BeforeSave hook to keep available stock in sync on every write
func (r *InventoryRecord) BeforeSave(tx *gorm.DB) error {
	r.recalc()
	return nil
}

// AfterFind hook to populate the derived balance fields on reads
func (r *InventoryRecord) AfterFind(tx *gorm.DB) error {
	r.recalc()
	return nil
}

// ComputedNetMovement returns purchased + transferred in - transferred out
func (r *InventoryRecord) ComputedNetMovement() int {
	return r.TotalPurchased + r.TotalTransferredIn - r.TotalTransferredOut
}

// ComputedClosingBalance returns the balance implied by the counters. The
// ledger invariant is that this always equals CurrentStock.
func (r *InventoryRecord) ComputedClosingBalance() int {
	return r.OpeningBalance + r.ComputedNetMovement() - r.TotalAssigned - r.TotalExpended
}

// InventoryMovement is an append-only audit row recorded for every ledger
// mutation. The ledger counters are a fold over these rows, which makes the
// record reconcilable after the fact.
type InventoryMovement struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	InventoryRecordID uint         `gorm:"not null;index" json:"inventory_record_id"`
	Kind              MovementKind `gorm:"not null;size:30" json:"kind"`
	Quantity          int          `gorm:"not null" json:"quantity"`
	PreviousStock     int          `gorm:"not null" json:"previous_stock"`
	NewStock          int          `gorm:"not null" json:"new_stock"`
	ReferenceType     string       `gorm:"size:30" json:"reference_type"` // "purchase", "transfer", "assignment", "adjustment"
	ReferenceID       uint         `json:"reference_id"`
	Notes             string       `gorm:"size:500" json:"notes"`
	CreatedBy         uint         `gorm:"index" json:"created_by"`
	CreatedAt         time.Time    `json:"created_at"`
}

// TableName overrides the table name for InventoryMovement
func (InventoryMovement) TableName() string {
	return "inventory_movements"
}

// StockAlert represents a persisted low-stock alert
type StockAlert struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	InventoryRecordID uint       `gorm:"not null;index" json:"inventory_record_id"`
	AlertType         string     `gorm:"not null;size:30" json:"alert_type"` // "low_stock", "out_of_stock"
	Message           string     `gorm:"size:500" json:"message"`
	IsResolved        bool       `gorm:"default:false" json:"is_resolved"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName overrides the table name for StockAlert
func (StockAlert) TableName() string {
	return "stock_alerts"
}
