// internal/domain/purchase/service.go
package purchase

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

// Service handles purchase lifecycle business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	inventory *inventory.Service
}

// NewService creates a new purchase service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		inventory: inventory.NewService(db, cfg),
	}
}

// CreatePurchaseRequest represents data for creating a purchase order
type CreatePurchaseRequest struct {
	AssetID              uint       `json:"asset_id" binding:"required"`
	BaseID               uint       `json:"base_id" binding:"required"`
	Quantity             int        `json:"quantity" binding:"required"`
	UnitCost             int64      `json:"unit_cost"`
	SupplierName         string     `json:"supplier_name"`
	SupplierContact      string     `json:"supplier_contact"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	Notes                string     `json:"notes"`
}

// ListPurchasesRequest represents purchase list query parameters
type ListPurchasesRequest struct {
	Page    int    `form:"page,default=1"`
	Limit   int    `form:"limit,default=20"`
	Status  string `form:"status"`
	BaseID  uint   `form:"base_id"`
	AssetID uint   `form:"asset_id"`
}

// Create records a new purchase order in pending status. The ledger is not
// touched until delivery.
func (s *Service) Create(req *CreatePurchaseRequest, userID uint, sc scope.Scope) (*Purchase, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperrors.ErrValidation)
	}
	if req.UnitCost < 0 {
		return nil, fmt.Errorf("%w: unit cost cannot be negative", apperrors.ErrValidation)
	}
	if !sc.Allows(req.BaseID) {
		return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	p := &Purchase{
		AssetID:              req.AssetID,
		BaseID:               req.BaseID,
		Quantity:             req.Quantity,
		UnitCost:             req.UnitCost,
		Status:               PurchaseStatusPending,
		SupplierName:         req.SupplierName,
		SupplierContact:      req.SupplierContact,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Notes:                req.Notes,
		CreatedBy:            userID,
	}
	if err := tx.Create(p).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	p.PurchaseNumber = p.GeneratePurchaseNumber()
	if err := tx.Model(p).Update("purchase_number", p.PurchaseNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to assign purchase number: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit purchase creation: %w", err)
	}
	return p, nil
}

// Get retrieves a purchase by ID, honoring the caller's scope
func (s *Service) Get(id uint, sc scope.Scope) (*Purchase, error) {
	var p Purchase
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: purchase %d not found", apperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to retrieve purchase: %w", err)
	}
	if !sc.Allows(p.BaseID) {
		return nil, fmt.Errorf("%w: purchase %d belongs to a base outside your assigned scope", apperrors.ErrAccessDenied, id)
	}
	return &p, nil
}

// List retrieves purchases visible to the caller with filtering and pagination
func (s *Service) List(req *ListPurchasesRequest, sc scope.Scope) ([]Purchase, int64, error) {
	var purchases []Purchase
	var total int64

	query := sc.Apply(s.db.Model(&Purchase{}), "purchases.base_id")
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.BaseID > 0 {
		if !sc.Allows(req.BaseID) {
			return nil, 0, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
		}
		query = query.Where("base_id = ?", req.BaseID)
	}
	if req.AssetID > 0 {
		query = query.Where("asset_id = ?", req.AssetID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count purchases: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at desc").Offset(offset).Limit(req.Limit).Find(&purchases).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve purchases: %w", err)
	}

	return purchases, total, nil
}

// Approve moves a pending purchase to approved
func (s *Service) Approve(id uint, userID uint, sc scope.Scope) (*Purchase, error) {
	p, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(p.Status, PurchaseStatusApproved); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.transition(s.db, p, PurchaseStatusApproved, map[string]interface{}{
		"approved_by": userID,
		"approved_at": now,
	}); err != nil {
		return nil, err
	}
	p.ApprovedBy = &userID
	p.ApprovedAt = &now
	return p, nil
}

// MarkOrdered moves an approved purchase to ordered
func (s *Service) MarkOrdered(id uint, sc scope.Scope) (*Purchase, error) {
	p, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(p.Status, PurchaseStatusOrdered); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.transition(s.db, p, PurchaseStatusOrdered, map[string]interface{}{
		"ordered_at": now,
	}); err != nil {
		return nil, err
	}
	p.OrderedAt = &now
	return p, nil
}

// Deliver marks an ordered purchase as delivered and books the quantity into
// the destination base's ledger. Status change and ledger mutation commit
// atomically: a second delivery of the same purchase fails the transition
// check and cannot double-book stock.
func (s *Service) Deliver(id uint, userID uint, sc scope.Scope) (*Purchase, error) {
	p, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(p.Status, PurchaseStatusDelivered); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()
	if err := s.transition(tx, p, PurchaseStatusDelivered, map[string]interface{}{
		"delivered_at": now,
	}); err != nil {
		tx.Rollback()
		return nil, err
	}
	p.DeliveredAt = &now

	rec, err := s.inventory.GetOrCreate(tx, p.AssetID, p.BaseID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	ref := inventory.MovementRef{
		ReferenceType: "purchase",
		ReferenceID:   p.ID,
		Notes:         fmt.Sprintf("Delivery of %s", p.PurchaseNumber),
		CreatedBy:     userID,
	}
	if err := s.inventory.ApplyMovement(tx, rec, inventory.MovementPurchased, p.Quantity, ref); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit delivery: %w", err)
	}
	return p, nil
}

// Cancel cancels a purchase that has not been delivered
func (s *Service) Cancel(id uint, sc scope.Scope) (*Purchase, error) {
	p, err := s.Get(id, sc)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(p.Status, PurchaseStatusCancelled); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.transition(s.db, p, PurchaseStatusCancelled, map[string]interface{}{
		"cancelled_at": now,
	}); err != nil {
		return nil, err
	}
	p.CancelledAt = &now
	return p, nil
}

// transition moves the purchase to a new status with a compare-and-set on the
// row: the UPDATE matches only while the purchase still holds the status the
// caller observed. A concurrent transition in the window between the read and
// this write makes the update touch zero rows instead of overwriting it, so
// each purchase books at most one delivery regardless of interleaving.
func (s *Service) transition(db *gorm.DB, p *Purchase, to PurchaseStatus, updates map[string]interface{}) error {
	updates["status"] = to
	res := db.Model(&Purchase{}).Where("id = ? AND status = ?", p.ID, p.Status).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update purchase: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: purchase %d was modified concurrently", apperrors.ErrInvalidStateTransition, p.ID)
	}
	p.Status = to
	return nil
}

func (s *Service) checkTransition(from, to PurchaseStatus) error {
	if s.isValidStatusTransition(from, to) {
		return nil
	}
	return fmt.Errorf("%w: cannot move purchase from %s to %s", apperrors.ErrInvalidStateTransition, from, to)
}

func (s *Service) isValidStatusTransition(from, to PurchaseStatus) bool {
	validTransitions := map[PurchaseStatus][]PurchaseStatus{
		PurchaseStatusPending: {
			PurchaseStatusApproved,
			PurchaseStatusCancelled,
		},
		PurchaseStatusApproved: {
			PurchaseStatusOrdered,
			PurchaseStatusCancelled,
		},
		PurchaseStatusOrdered: {
			PurchaseStatusDelivered,
			PurchaseStatusCancelled,
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
