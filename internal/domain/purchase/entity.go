// internal/domain/purchase/entity.go
package purchase

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PurchaseStatus represents the purchase lifecycle status
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusOrdered   PurchaseStatus = "ordered"
	PurchaseStatusDelivered PurchaseStatus = "delivered"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// Purchase represents a procurement order for a quantity of one asset
// destined for one base. Only delivery touches the inventory ledger.
type Purchase struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PurchaseNumber string         `gorm:"uniqueIndex;not null;size:50" json:"purchase_number"`
	AssetID        uint           `gorm:"not null;index" json:"asset_id"`
	BaseID         uint           `gorm:"not null;index" json:"base_id"`
	Quantity       int            `gorm:"not null" json:"quantity"`
	UnitCost       int64          `gorm:"not null" json:"unit_cost"` // In cents
	TotalCost      int64          `gorm:"not null" json:"total_cost"`
	Status         PurchaseStatus `gorm:"not null;default:'pending';index" json:"status"`

	// Supplier Information
	SupplierName    string `gorm:"size:255" json:"supplier_name"`
	SupplierContact string `gorm:"size:255" json:"supplier_contact"`

	Notes string `gorm:"type:text" json:"notes"`

	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`

	// Lifecycle Timestamps
	ApprovedBy  *uint      `json:"approved_by"`
	ApprovedAt  *time.Time `json:"approved_at"`
	OrderedAt   *time.Time `json:"ordered_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedBy uint           `gorm:"not null" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for Purchase model
func (Purchase) TableName() string {
	return "purchases"
}

// BeforeSave keeps the total cost consistent with quantity and unit cost
func (p *Purchase) BeforeSave(tx *gorm.DB) error {
	p.TotalCost = int64(p.Quantity) * p.UnitCost
	return nil
}

// IsTerminal returns true when no further transitions are allowed
func (p *Purchase) IsTerminal() bool {
	return p.Status == PurchaseStatusDelivered || p.Status == PurchaseStatusCancelled
}

// GeneratePurchaseNumber generates a unique purchase order number
func (p *Purchase) GeneratePurchaseNumber() string {
	return fmt.Sprintf("PO-%s-%05d", time.Now().Format("20060102"), p.ID)
}
