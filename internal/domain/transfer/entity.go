// internal/domain/transfer/entity.go
package transfer

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TransferStatus represents the transfer lifecycle status
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusApproved  TransferStatus = "approved"
	TransferStatusRejected  TransferStatus = "rejected"
	TransferStatusShipped   TransferStatus = "shipped"
	TransferStatusReceived  TransferStatus = "received"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// TransferPriority represents how urgently a transfer is needed
type TransferPriority string

const (
	PriorityLow    TransferPriority = "low"
	PriorityMedium TransferPriority = "medium"
	PriorityHigh   TransferPriority = "high"
	PriorityUrgent TransferPriority = "urgent"
)

// TransportMethod represents how the assets move between bases
type TransportMethod string

const (
	TransportGround TransportMethod = "ground"
	TransportAir    TransportMethod = "air"
	TransportSea    TransportMethod = "sea"
	TransportRail   TransportMethod = "rail"
)

// Transfer represents a movement of one asset between two distinct bases.
// Shipping debits the source ledger; receiving credits the destination. A
// transfer shipped but not yet received is in transit and counted in neither.
type Transfer struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	TransferNumber string           `gorm:"uniqueIndex;not null;size:50" json:"transfer_number"`
	AssetID        uint             `gorm:"not null;index" json:"asset_id"`
	FromBaseID     uint             `gorm:"not null;index" json:"from_base_id"`
	ToBaseID       uint             `gorm:"not null;index" json:"to_base_id"`
	Quantity       int              `gorm:"not null" json:"quantity"`
	Status         TransferStatus   `gorm:"not null;default:'pending';index" json:"status"`
	Priority       TransferPriority `gorm:"not null;default:'medium'" json:"priority"`
	Transport      TransportMethod  `gorm:"not null;default:'ground'" json:"transport_method"`

	Reason         string `gorm:"size:500;not null" json:"reason"`
	TrackingNumber string `gorm:"size:100" json:"tracking_number"`
	Notes          string `gorm:"type:text" json:"notes"`

	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`

	// Lifecycle Timestamps
	RequestedBy uint       `gorm:"not null" json:"requested_by"`
	ApprovedBy  *uint      `json:"approved_by"`
	ApprovedAt  *time.Time `json:"approved_at"`
	RejectedAt  *time.Time `json:"rejected_at"`
	ShippedAt   *time.Time `json:"shipped_at"`
	ReceivedAt  *time.Time `json:"received_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName returns the table name for Transfer model
func (Transfer) TableName() string {
	return "transfers"
}

// IsTerminal returns true when no further transitions are allowed
func (t *Transfer) IsTerminal() bool {
	switch t.Status {
	case TransferStatusReceived, TransferStatusRejected, TransferStatusCancelled:
		return true
	}
	return false
}

// InTransit reports whether stock left the source but has not arrived yet
func (t *Transfer) InTransit() bool {
	return t.Status == TransferStatusShipped
}

// GenerateTransferNumber generates a unique transfer number
func (t *Transfer) GenerateTransferNumber() string {
	return fmt.Sprintf("TRF-%s-%05d", time.Now().Format("20060102"), t.ID)
}

// ValidPriority checks if the priority is recognized
func ValidPriority(p TransferPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidTransport checks if the transport method is recognized
func ValidTransport(m TransportMethod) bool {
	switch m {
	case TransportGround, TransportAir, TransportSea, TransportRail:
		return true
	}
	return false
}
