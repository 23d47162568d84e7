// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/email"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles the inventory ledger business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	mailer *email.Service
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
		mailer: email.NewService(cfg),
	}
}

// MovementRef links a ledger mutation back to the event that caused it
type MovementRef struct {
	ReferenceType string
	ReferenceID   uint
	Notes         string
	CreatedBy     uint
}

// OpenRecordRequest represents data for opening a new ledger record
type OpenRecordRequest struct {
	AssetID        uint `json:"asset_id" binding:"required"`
	BaseID         uint `json:"base_id" binding:"required"`
	OpeningBalance int  `json:"opening_balance"`
}

// ExpenditureRequest represents a direct stock expenditure
type ExpenditureRequest struct {
	AssetID  uint   `json:"asset_id" binding:"required"`
	BaseID   uint   `json:"base_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Notes    string `json:"notes"`
}

// ListRequest represents ledger list query parameters
type ListRequest struct {
	Page    int  `form:"page,default=1"`
	Limit   int  `form:"limit,default=20"`
	BaseID  uint `form:"base_id"`
	AssetID uint `form:"asset_id"`
}

// GetOrCreate returns the ledger record for (asset, base), creating a zeroed
// record if none exists. The insert uses ON CONFLICT DO NOTHING against the
// unique index on (asset_id, base_id): a unique violation would abort the
// caller's transaction outright, so the losing insert has to be a no-op
// rather than an error to recover from.
func (s *Service) GetOrCreate(db *gorm.DB, assetID, baseID uint) (*InventoryRecord, error) {
	rec := InventoryRecord{
		AssetID: assetID,
		BaseID:  baseID,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// The record already exists, fetch it
		if err := db.Where("asset_id = ? AND base_id = ?", assetID, baseID).First(&rec).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch inventory record: %w", err)
		}
	}
	return &rec, nil
}

// ApplyMovement applies a single quantity movement to a ledger record inside
// the caller's transaction. The matching cumulative counter and current stock
// are updated together, an audit row is written, and everything commits or
// rolls back as one unit with the caller's event-status change.
func (s *Service) ApplyMovement(tx *gorm.DB, rec *InventoryRecord, kind MovementKind, quantity int, ref MovementRef) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: movement quantity must be positive", apperrors.ErrValidation)
	}

	previous := rec.CurrentStock

	switch kind {
	case MovementPurchased:
		rec.TotalPurchased += quantity
		rec.CurrentStock += quantity
	case MovementTransferredIn:
		rec.TotalTransferredIn += quantity
		rec.CurrentStock += quantity
	case MovementTransferredOut:
		rec.TotalTransferredOut += quantity
		rec.CurrentStock -= quantity
	case MovementAssigned:
		rec.TotalAssigned += quantity
		rec.CurrentStock -= quantity
	case MovementExpended:
		rec.TotalExpended += quantity
		rec.CurrentStock -= quantity
	default:
		return fmt.Errorf("%w: unknown movement kind '%s'", apperrors.ErrValidation, kind)
	}

	if rec.CurrentStock < 0 {
		if s.config.Inventory.NegativeStockPolicy == config.NegativeStockClamp {
			rec.CurrentStock = 0
		} else {
			return fmt.Errorf("%w: %d on hand, %d requested", apperrors.ErrInsufficientStock, previous, quantity)
		}
	}

	if err := tx.Save(rec).Error; err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}

	movement := &InventoryMovement{
		InventoryRecordID: rec.ID,
		Kind:              kind,
		Quantity:          quantity,
		PreviousStock:     previous,
		NewStock:          rec.CurrentStock,
		ReferenceType:     ref.ReferenceType,
		ReferenceID:       ref.ReferenceID,
		Notes:             ref.Notes,
		CreatedBy:         ref.CreatedBy,
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record inventory movement: %w", err)
	}

	return nil
}

// NotifyMovement kicks off the stock alert check for an outbound movement.
// Callers invoke it after their transaction has committed: the check reads
// committed state, so firing it earlier could miss the threshold crossing
// that triggered it, or raise an alert for a rolled-back movement.
func (s *Service) NotifyMovement(recordID uint, kind MovementKind) {
	if !kind.Outbound() {
		return
	}
	go s.checkAndCreateAlerts(recordID)
}

// ReleaseAssignment reverses a previously booked assignment: total_assigned is
// decremented and the quantity returns to current stock.
func (s *Service) ReleaseAssignment(tx *gorm.DB, rec *InventoryRecord, quantity int, ref MovementRef) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: release quantity must be positive", apperrors.ErrValidation)
	}
	if quantity > rec.TotalAssigned {
		return fmt.Errorf("%w: cannot release %d, only %d assigned", apperrors.ErrValidation, quantity, rec.TotalAssigned)
	}

	previous := rec.CurrentStock
	rec.TotalAssigned -= quantity
	rec.CurrentStock += quantity

	if err := tx.Save(rec).Error; err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}

	movement := &InventoryMovement{
		InventoryRecordID: rec.ID,
		Kind:              MovementAssignmentReturned,
		Quantity:          quantity,
		PreviousStock:     previous,
		NewStock:          rec.CurrentStock,
		ReferenceType:     ref.ReferenceType,
		ReferenceID:       ref.ReferenceID,
		Notes:             ref.Notes,
		CreatedBy:         ref.CreatedBy,
	}
	if err := tx.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to record inventory movement: %w", err)
	}

	return nil
}

// Open creates a new ledger record with an opening balance. Fails if a record
// for the (asset, base) pair already exists.
func (s *Service) Open(req *OpenRecordRequest) (*InventoryRecord, error) {
	if req.OpeningBalance < 0 {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}

	var existing InventoryRecord
	if err := s.db.Where("asset_id = ? AND base_id = ?", req.AssetID, req.BaseID).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: ledger record already exists for this asset and base", apperrors.ErrValidation)
	}

	rec := &InventoryRecord{
		AssetID:        req.AssetID,
		BaseID:         req.BaseID,
		OpeningBalance: req.OpeningBalance,
		CurrentStock:   req.OpeningBalance,
	}
	if err := s.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}
	return rec, nil
}

// Get retrieves the ledger record for (asset, base), honoring the caller's scope
func (s *Service) Get(assetID, baseID uint, sc scope.Scope) (*InventoryRecord, error) {
	if !sc.Allows(baseID) {
		return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, baseID)
	}

	var rec InventoryRecord
	if err := s.db.Where("asset_id = ? AND base_id = ?", assetID, baseID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no inventory record for asset %d at base %d", apperrors.ErrNotFound, assetID, baseID)
		}
		return nil, fmt.Errorf("failed to retrieve inventory record: %w", err)
	}
	return &rec, nil
}

// List retrieves ledger records visible to the caller with pagination
func (s *Service) List(req *ListRequest, sc scope.Scope) ([]InventoryRecord, int64, error) {
	var records []InventoryRecord
	var total int64

	query := sc.Apply(s.db.Model(&InventoryRecord{}), "inventory_records.base_id")
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
		return nil, 0, fmt.Errorf("failed to count inventory records: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("base_id asc, asset_id asc").Offset(offset).Limit(req.Limit).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve inventory records: %w", err)
	}

	return records, total, nil
}

// RecordExpenditure books a direct stock expenditure against the ledger in
// its own transaction.
func (s *Service) RecordExpenditure(req *ExpenditureRequest, userID uint, sc scope.Scope) (*InventoryRecord, error) {
	if !sc.Allows(req.BaseID) {
		return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
	}

	var rec *InventoryRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row InventoryRecord
		if err := tx.Where("asset_id = ? AND base_id = ?", req.AssetID, req.BaseID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no inventory record for asset %d at base %d", apperrors.ErrNotFound, req.AssetID, req.BaseID)
			}
			return fmt.Errorf("failed to retrieve inventory record: %w", err)
		}
		rec = &row
		return s.ApplyMovement(tx, rec, MovementExpended, req.Quantity, MovementRef{
			ReferenceType: "adjustment",
			Notes:         req.Notes,
			CreatedBy:     userID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.NotifyMovement(rec.ID, MovementExpended)
	return rec, nil
}

// LowStockItem is a ledger record at or below its asset's minimum stock
type LowStockItem struct {
	InventoryRecordID uint    `json:"inventory_record_id"`
	AssetID           uint    `json:"asset_id"`
	AssetName         string  `json:"asset_name"`
	AssetType         string  `json:"asset_type"`
	BaseID            uint    `json:"base_id"`
	BaseName          string  `json:"base_name"`
	BaseCode          string  `json:"base_code"`
	CurrentStock      int     `json:"current_stock"`
	MinimumStock      int     `json:"minimum_stock"`
	Severity          float64 `json:"severity"` // current/minimum, lower is worse
}

// ListLowStock returns records where current stock is at or below the asset's
// minimum stock threshold (boundary inclusive), worst first.
func (s *Service) ListLowStock(sc scope.Scope, limit int) ([]LowStockItem, error) {
	if limit <= 0 {
		limit = 10
	}

	severityExpr := "CASE WHEN assets.minimum_stock = 0 THEN 0.0 ELSE (inventory_records.current_stock * 1.0) / assets.minimum_stock END"

	query := s.db.Model(&InventoryRecord{}).
		Select(strings.Join([]string{
			"inventory_records.id AS inventory_record_id",
			"inventory_records.asset_id",
			"assets.name AS asset_name",
			"assets.type AS asset_type",
			"inventory_records.base_id",
			"bases.name AS base_name",
			"bases.code AS base_code",
			"inventory_records.current_stock",
			"assets.minimum_stock",
			severityExpr + " AS severity",
		}, ", ")).
		Joins("JOIN assets ON assets.id = inventory_records.asset_id").
		Joins("JOIN bases ON bases.id = inventory_records.base_id").
		Where("inventory_records.current_stock <= assets.minimum_stock")

	query = sc.Apply(query, "inventory_records.base_id")

	var items []LowStockItem
	if err := query.Order("severity asc").Limit(limit).Scan(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock records: %w", err)
	}
	return items, nil
}

// ListAlerts returns unresolved stock alerts visible to the caller
func (s *Service) ListAlerts(sc scope.Scope) ([]StockAlert, error) {
	query := s.db.Model(&StockAlert{}).
		Joins("JOIN inventory_records ON inventory_records.id = stock_alerts.inventory_record_id").
		Where("stock_alerts.is_resolved = ?", false)
	query = sc.Apply(query, "inventory_records.base_id")

	var alerts []StockAlert
	if err := query.Order("stock_alerts.created_at desc").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve stock alerts: %w", err)
	}
	return alerts, nil
}

// ReconcileReport compares stored ledger counters with a fold over the
// movement log.
type ReconcileReport struct {
	InventoryRecordID uint `json:"inventory_record_id"`
	Consistent        bool `json:"consistent"`

	StoredCurrentStock   int `json:"stored_current_stock"`
	ComputedCurrentStock int `json:"computed_current_stock"`

	StoredClosingBalance int `json:"stored_closing_balance"`

	ComputedPurchased      int `json:"computed_purchased"`
	ComputedTransferredIn  int `json:"computed_transferred_in"`
	ComputedTransferredOut int `json:"computed_transferred_out"`
	ComputedAssigned       int `json:"computed_assigned"`
	ComputedExpended       int `json:"computed_expended"`
}

// Reconcile rebuilds the counters for one record from its movement log and
// reports whether they match the stored values. The ledger is a materialized
// view over the movements, so any mismatch indicates corruption.
func (s *Service) Reconcile(assetID, baseID uint, sc scope.Scope) (*ReconcileReport, error) {
	rec, err := s.Get(assetID, baseID, sc)
	if err != nil {
		return nil, err
	}

	var movements []InventoryMovement
	if err := s.db.Where("inventory_record_id = ?", rec.ID).Order("id asc").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to load movement log: %w", err)
	}

	report := &ReconcileReport{
		InventoryRecordID:    rec.ID,
		StoredCurrentStock:   rec.CurrentStock,
		StoredClosingBalance: rec.ComputedClosingBalance(),
	}

	for _, m := range movements {
		switch m.Kind {
		case MovementPurchased:
			report.ComputedPurchased += m.Quantity
		case MovementTransferredIn:
			report.ComputedTransferredIn += m.Quantity
		case MovementTransferredOut:
			report.ComputedTransferredOut += m.Quantity
		case MovementAssigned:
			report.ComputedAssigned += m.Quantity
		case MovementAssignmentReturned:
			report.ComputedAssigned -= m.Quantity
		case MovementExpended:
			report.ComputedExpended += m.Quantity
		}
	}

	netMovement := report.ComputedPurchased + report.ComputedTransferredIn - report.ComputedTransferredOut
	report.ComputedCurrentStock = rec.OpeningBalance + netMovement - report.ComputedAssigned - report.ComputedExpended

	report.Consistent = report.ComputedCurrentStock == rec.CurrentStock &&
		report.ComputedPurchased == rec.TotalPurchased &&
		report.ComputedTransferredIn == rec.TotalTransferredIn &&
		report.ComputedTransferredOut == rec.TotalTransferredOut &&
		report.ComputedAssigned == rec.TotalAssigned &&
		report.ComputedExpended == rec.TotalExpended &&
		rec.CurrentStock == report.StoredClosingBalance

	return report, nil
}

// checkAndCreateAlerts checks a record against its asset's minimum stock and
// creates an alert row the first time it crosses the threshold.
func (s *Service) checkAndCreateAlerts(recordID uint) {
	var rec InventoryRecord
	if err := s.db.Where("id = ?", recordID).First(&rec).Error; err != nil {
		return
	}

	var minStock int
	if err := s.db.Table("assets").Select("minimum_stock").Where("id = ?", rec.AssetID).Scan(&minStock).Error; err != nil {
		return
	}

	if rec.CurrentStock > minStock {
		return
	}

	// Skip if an unresolved alert already covers this record
	var existing StockAlert
	hasExisting := s.db.Where("inventory_record_id = ? AND is_resolved = ?", recordID, false).First(&existing).Error == nil
	if hasExisting {
		return
	}

	alertType := "low_stock"
	if rec.CurrentStock <= 0 {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		InventoryRecordID: recordID,
		AlertType:         alertType,
		Message:           fmt.Sprintf("Asset %d at base %d is at %d (minimum %d)", rec.AssetID, rec.BaseID, rec.CurrentStock, minStock),
	}
	s.db.Create(&alert)

	if s.config.Email.Enabled {
		s.mailer.SendLowStockAlert(alert.Message)
	}
}
