// internal/domain/transfer/service.go
package transfer

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/inventory"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
	"gorm.io/gorm"
)

// Service handles transfer lifecycle business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	inventory *inventory.Service
}

// NewService creates a new transfer service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		inventory: inventory.NewService(db, cfg),
	}
}

// CreateTransferRequest represents data for requesting a transfer
type CreateTransferRequest struct {
	AssetID              uint             `json:"asset_id" binding:"required"`
	FromBaseID           uint             `json:"from_base_id" binding:"required"`
	ToBaseID             uint             `json:"to_base_id" binding:"required"`
	Quantity             int              `json:"quantity" binding:"required"`
	Priority             TransferPriority `json:"priority"`
	Transport            TransportMethod  `json:"transport_method"`
	Reason               string           `json:"reason" binding:"required"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	Notes                string           `json:"notes"`
}

// ShipTransferRequest carries shipping details
type ShipTransferRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

// ListTransfersRequest represents transfer list query parameters
type ListTransfersRequest struct {
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=20"`
	Status  string `form:"status"`
	BaseID  uint   `form:"base_id"`
	AssetID uint   `form:"asset_id"`
}

// Create records a new transfer request in pending status
func (s *Service) Create(req *CreateTransferRequest, userID uint, sc scope.Scope) (*Transfer, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.FromBaseID == req.ToBaseID {
		return nil, fmt.Errorf("%w: source and destination base must differ", apperrors.ErrValidation)
	}
	if !sc.Allows(req.FromBaseID) && !sc.Allows(req.ToBaseID) {
		return nil, fmt.Errorf("%w: neither base is within your assigned scope", apperrors.ErrAccessDenied)
	}

	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !ValidPriority(req.Priority) {
		return nil, fmt.Errorf("%w: invalid priority '%s'", apperrors.ErrValidation, req.Priority)
	}
	if req.Transport == "" {
		req.Transport = TransportGround
	}
	if !ValidTransport(req.Transport) {
		return nil, fmt.Errorf("%w: invalid transport method '%s'", apperrors.ErrValidation, req.Transport)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	t := &Transfer{
		AssetID:              req.AssetID,
		FromBaseID:           req.FromBaseID,
		ToBaseID:             req.ToBaseID,
		Quantity:             req.Quantity,
		Status:               TransferStatusPending,
		Priority:             req.Priority,
		Transport:            req.Transport,
		Reason:               req.Reason,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		RequestedBy:          userID,
	}
	if err := tx.Create(t).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	t.TransferNumber = t.GenerateTransferNumber()
	if err := tx.Model(t).Update("transfer_number", t.TransferNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to assign transfer number: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transfer creation: %w", err)
	}
	return t, nil
}

// Get retrieves a transfer by ID. Visible when either endpoint is in scope.
func (s *Service) Get(id uint, sc scope.Scope) (*Transfer, error) {
	var t Transfer
	if err := s.db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transfer %d not found", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to retrieve transfer: %w", err)
	}
	if !sc.Allows(t.FromBaseID) && !sc.Allows(t.ToBaseID) {
		return nil, fmt.Errorf("%w: transfer %d involves no base in your assigned scope", apperrors.ErrAccessDenied, id)
	}
	return &t, nil
}

// List retrieves transfers visible to the caller with filtering and pagination
func (s *Service) List(req *ListTransfersRequest, sc scope.Scope) ([]Transfer, int64, error) {
	var transfers []Transfer
	var total int64

	query := s.db.Model(&Transfer{})
	if sc.BaseID != nil {
		query = query.Where("from_base_id = ? OR to_base_id = ?", *sc.BaseID, *sc.BaseID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.BaseID > 0 {
		query = query.Where("from_base_id = ? OR to_base_id = ?", req.BaseID, req.BaseID)
	}
	if req.AssetID > 0 {
		query = query.Where("asset_id = ?", req.AssetID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&transfers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transfers: %w", err)
	}

	return transfers, total, nil
}

// Approve moves a pending transfer to approved
func (s *Service) Approve(id uint, userID uint, sc scope.Scope) (*Transfer, error) {
	t, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(t.Status, TransferStatusApproved); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.transition(s.db, t, TransferStatusApproved, map[string]interface{}{
		"approved_by": userID,
		"approved_at": now,
	}); err != nil {
		return nil, err
	}
	t.ApprovedBy = &userID
	t.ApprovedAt = &now
	return t, nil
}

// Reject moves a pending transfer to rejected
func (s *Service) Reject(id uint, sc scope.Scope) (*Transfer, error) {
	t, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(t.Status, TransferStatusRejected); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.transition(s.db, t, TransferStatusRejected, map[string]interface{}{
		"rejected_at": now,
	}); err != nil {
		return nil, err
	}
	t.RejectedAt = &now
	return t, nil
}

// Ship marks an approved transfer as shipped and debits the source base's
// ledger. Requires scope over the source base. Fails with insufficient stock
// rather than driving the source negative.
func (s *Service) Ship(id uint, req *ShipTransferRequest, userID uint, sc scope.Scope) (*Transfer, error) {
	t, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if !sc.Allows(t.FromBaseID) {
		return nil, fmt.Errorf("%w: shipping requires authority over the source base", apperrors.ErrAccessDenied)
	}
	if err := s.checkTransition(t.Status, TransferStatusShipped); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	tracking := t.TrackingNumber
	if req != nil && req.TrackingNumber != "" {
		tracking = req.TrackingNumber
	}
	if err := s.transition(tx, t, TransferStatusShipped, map[string]interface{}{
		"shipped_at":      now,
		"tracking_number": tracking,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}
	t.ShippedAt = &now
	t.TrackingNumber = tracking

	rec, err := s.inventory.GetOrCreate(tx, t.AssetID, t.FromBaseID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	ref := inventory.MovementRef{
		ReferenceType: "transfer",
		ReferenceID:   t.ID,
		Notes:         fmt.Sprintf("Shipment of %s", t.TransferNumber),
		CreatedBy:     userID,
	}
	if err := s.inventory.ApplyMovement(tx, rec, inventory.MovementTransferredOut, t.Quantity, ref); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit shipment: %w", err)
	}
	s.inventory.NotifyMovement(rec.ID, inventory.MovementTransferredOut)
	return t, nil
}

// Receive marks a shipped transfer as received and credits the destination
// base's ledger. Requires scope over the destination base.
func (s *Service) Receive(id uint, userID uint, sc scope.Scope) (*Transfer, error) {
	t, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if !sc.Allows(t.ToBaseID) {
		return nil, fmt.Errorf("%w: receiving requires authority over the destination base", apperrors.ErrAccessDenied)
	}
	if err := s.checkTransition(t.Status, TransferStatusReceived); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	if err := s.transition(tx, t, TransferStatusReceived, map[string]interface{}{
		"received_at": now,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}
	t.ReceivedAt = &now

	rec, err := s.inventory.GetOrCreate(tx, t.AssetID, t.ToBaseID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	ref := inventory.MovementRef{
		ReferenceType: "transfer",
		ReferenceID:   t.ID,
		Notes:         fmt.Sprintf("Receipt of %s", t.TransferNumber),
		CreatedBy:     userID,
	}
	if err := s.inventory.ApplyMovement(tx, rec, inventory.MovementTransferredIn, t.Quantity, ref); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit receipt: %w", err)
	}
	return t, nil
}

// Cancel cancels a transfer that has not shipped
func (s *Service) Cancel(id uint, sc scope.Scope) (*Transfer, error) {
	t, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(t.Status, TransferStatusCancelled); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.transition(s.db, t, TransferStatusCancelled, map[string]interface{}{
		"cancelled_at": now,
	}); err != nil {
		return nil, err
	}
	t.CancelledAt = &now
	return t, nil
}

// transition moves the transfer to a new status with a compare-and-set on the
// row, so a concurrent transition observed between the read and this write
// matches zero rows instead of overwriting it. This keeps ship and receive to
// exactly one ledger mutation each.
func (s *Service) transition(db *gorm.DB, t *Transfer, to TransferStatus, updates map[string]interface{}) error {
	updates["status"] = to
	res := db.Model(&Transfer{}).Where("id = ? AND status = ?", t.ID, t.Status).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update transfer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: transfer %d was modified concurrently", apperrors.ErrInvalidStateTransition, t.ID)
	}
	t.Status = to
	return nil
}

func (s *Service) checkTransition(from, to TransferStatus) error {
	if s.isValidStatusTransition(from, to) {
		return nil
	}
	return fmt.Errorf("%w: cannot move transfer from %s to %s", apperrors.ErrInvalidStateTransition, from, to)
}

func (s *Service) isValidStatusTransition(from, to TransferStatus) bool {
	validTransitions := map[TransferStatus][]TransferStatus{
		TransferStatusPending: {
			TransferStatusApproved,
			TransferStatusRejected,
			TransferStatusCancelled,
		},
		TransferStatusApproved: {
			TransferStatusShipped,
			TransferStatusCancelled,
		},
		TransferStatusShipped: {
			TransferStatusReceived,
		},
	}

	allowedStatuses, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, status := range allowedStatuses {
		if status == to {
			return true
		}
	}
	return false
}
