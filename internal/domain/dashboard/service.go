// internal/domain/dashboard/service.go
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/inventory"
	"github.com/your-org/asset-tracker/internal/domain/purchase"
	"github.com/your-org/asset-tracker/internal/domain/transfer"
	"github.com/your-org/asset-tracker/internal/infrastructure/database/redis"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
	"gorm.io/gorm"
)

// Service handles command dashboard aggregation
type Service struct {
	db        *gorm.DB
	config    *config.Config
	cache     *redis.Client
	inventory *inventory.Service
}

// NewService creates a new dashboard service. The cache client may be nil,
// in which case every request recomputes the aggregates.
func NewService(db *gorm.DB, cfg *config.Config, cache *redis.Client) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		cache:     cache,
		inventory: inventory.NewService(db, cfg),
	}
}

// MetricsRequest represents dashboard filter parameters. The date range
// narrows the activity and detail lists; the balance aggregates always
// reflect the full ledger, which is cumulative by construction.
type MetricsRequest struct {
	BaseID    uint       `form:"base_id"`
	AssetType string     `form:"asset_type"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// Metrics represents the aggregated dashboard view
type Metrics struct {
	TotalBases  int64 `json:"total_bases"`
	TotalAssets int64 `json:"total_assets"`

	// Ledger aggregates
	OpeningBalance      int `json:"opening_balance"`
	ClosingBalance      int `json:"closing_balance"`
	NetMovement         int `json:"net_movement"`
	TotalPurchased      int `json:"total_purchased"`
	TotalTransferredIn  int `json:"total_transferred_in"`
	TotalTransferredOut int `json:"total_transferred_out"`
	TotalAssigned       int `json:"total_assigned"`
	TotalExpended       int `json:"total_expended"`
	CurrentStock        int `json:"current_stock"`

	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`

	LowStock         []inventory.LowStockItem `json:"low_stock"`
	RecentActivities []Activity               `json:"recent_activities"`
}

// Activity is one row of the recent movement feed
type Activity struct {
	ID            uint      `json:"id"`
	Kind          string    `json:"kind"`
	Quantity      int       `json:"quantity"`
	AssetID       uint      `json:"asset_id"`
	AssetName     string    `json:"asset_name"`
	BaseID        uint      `json:"base_id"`
	BaseName      string    `json:"base_name"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   uint      `json:"reference_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementDetails breaks net movement into its three components
type MovementDetails struct {
	Purchases    []purchase.Purchase `json:"purchases"`
	TransfersIn  []transfer.Transfer `json:"transfers_in"`
	TransfersOut []transfer.Transfer `json:"transfers_out"`
}

type ledgerSums struct {
	OpeningBalance      int
	CurrentStock        int
	TotalPurchased      int
	TotalTransferredIn  int
	TotalTransferredOut int
	TotalAssigned       int
	TotalExpended       int
}

// Metrics computes the aggregated dashboard for the caller's scope. Results
// are cached briefly per scope and filter combination.
func (s *Service) Metrics(ctx context.Context, req *MetricsRequest, sc scope.Scope) (*Metrics, error) {
	if req.BaseID > 0 && !sc.Allows(req.BaseID) {
		return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
	}

	cacheKey := s.cacheKey(req, sc)
	if s.cache != nil {
		var cached Metrics
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	metrics := &Metrics{}

	if err := s.db.Table("bases").Where("deleted_at IS NULL").Count(&metrics.TotalBases).Error; err != nil {
		return nil, fmt.Errorf("failed to count bases: %w", err)
	}
	if err := s.db.Table("assets").Where("is_active = ? AND deleted_at IS NULL", true).Count(&metrics.TotalAssets).Error; err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	sums, err := s.sumLedger(req, sc)
	if err != nil {
		return nil, err
	}
	metrics.OpeningBalance = sums.OpeningBalance
	metrics.CurrentStock = sums.CurrentStock
	metrics.TotalPurchased = sums.TotalPurchased
	metrics.TotalTransferredIn = sums.TotalTransferredIn
	metrics.TotalTransferredOut = sums.TotalTransferredOut
	metrics.TotalAssigned = sums.TotalAssigned
	metrics.TotalExpended = sums.TotalExpended
	metrics.NetMovement = sums.TotalPurchased + sums.TotalTransferredIn - sums.TotalTransferredOut
	metrics.ClosingBalance = sums.OpeningBalance + metrics.NetMovement - sums.TotalAssigned - sums.TotalExpended

	lowQuery := s.ledgerQuery(req, sc).
		Joins("JOIN assets ON assets.id = inventory_records.asset_id").
		Where("inventory_records.current_stock <= assets.minimum_stock")
	if err := lowQuery.Count(&metrics.LowStockCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock records: %w", err)
	}

	outQuery := s.ledgerQuery(req, sc).Where("inventory_records.current_stock <= 0")
	if err := outQuery.Count(&metrics.OutOfStockCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count out of stock records: %w", err)
	}

	lowScope := sc
	if req.BaseID > 0 {
		narrowed, ok := sc.Narrow(req.BaseID)
		if !ok {
			return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
		}
		lowScope = narrowed
	}
	metrics.LowStock, err = s.inventory.ListLowStock(lowScope, 10)
	if err != nil {
		return nil, err
	}

	metrics.RecentActivities, err = s.recentActivities(req, sc, 5)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, metrics, s.config.Inventory.DashboardCacheTTL); err != nil {
			logrus.WithError(err).Debug("Failed to cache dashboard metrics")
		}
	}

	return metrics, nil
}

// NetMovementDetails returns the delivered purchases and completed transfers
// behind the net movement figure, most recent first.
func (s *Service) NetMovementDetails(req *MetricsRequest, sc scope.Scope) (*MovementDetails, error) {
	if req.BaseID > 0 && !sc.Allows(req.BaseID) {
		return nil, fmt.Errorf("%w: base %d is outside your assigned scope", apperrors.ErrAccessDenied, req.BaseID)
	}

	details := &MovementDetails{}

	pq := sc.Apply(s.db.Model(&purchase.Purchase{}), "purchases.base_id").
		Where("status = ?", purchase.PurchaseStatusDelivered)
	if req.BaseID > 0 {
		pq = pq.Where("base_id = ?", req.BaseID)
	}
	pq = s.applyAssetType(pq, req, "purchases.asset_id")
	pq = applyDateRange(pq, req, "purchases.delivered_at")
	if err := pq.Order("delivered_at desc").Limit(50).Find(&details.Purchases).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve delivered purchases: %w", err)
	}

	inQuery := s.db.Model(&transfer.Transfer{}).Where("status = ?", transfer.TransferStatusReceived)
	if sc.BaseID != nil {
		inQuery = inQuery.Where("to_base_id = ?", *sc.BaseID)
	}
	if req.BaseID > 0 {
		inQuery = inQuery.Where("to_base_id = ?", req.BaseID)
	}
	inQuery = s.applyAssetType(inQuery, req, "transfers.asset_id")
	inQuery = applyDateRange(inQuery, req, "transfers.received_at")
	if err := inQuery.Order("received_at desc").Limit(50).Find(&details.TransfersIn).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve inbound transfers: %w", err)
	}

	outQuery := s.db.Model(&transfer.Transfer{}).
		Where("status IN ?", []transfer.TransferStatus{transfer.TransferStatusShipped, transfer.TransferStatusReceived})
	if sc.BaseID != nil {
		outQuery = outQuery.Where("from_base_id = ?", *sc.BaseID)
	}
	if req.BaseID > 0 {
		outQuery = outQuery.Where("from_base_id = ?", req.BaseID)
	}
	outQuery = s.applyAssetType(outQuery, req, "transfers.asset_id")
	outQuery = applyDateRange(outQuery, req, "transfers.shipped_at")
	if err := outQuery.Order("shipped_at desc").Limit(50).Find(&details.TransfersOut).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve outbound transfers: %w", err)
	}

	return details, nil
}

func (s *Service) sumLedger(req *MetricsRequest, sc scope.Scope) (*ledgerSums, error) {
	var sums ledgerSums
	query := s.ledgerQuery(req, sc).Select(
		"COALESCE(SUM(inventory_records.opening_balance), 0) AS opening_balance, " +
			"COALESCE(SUM(inventory_records.current_stock), 0) AS current_stock, " +
			"COALESCE(SUM(inventory_records.total_purchased), 0) AS total_purchased, " +
			"COALESCE(SUM(inventory_records.total_transferred_in), 0) AS total_transferred_in, " +
			"COALESCE(SUM(inventory_records.total_transferred_out), 0) AS total_transferred_out, " +
			"COALESCE(SUM(inventory_records.total_assigned), 0) AS total_assigned, " +
			"COALESCE(SUM(inventory_records.total_expended), 0) AS total_expended")
	if err := query.Scan(&sums).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger: %w", err)
	}
	return &sums, nil
}

func (s *Service) ledgerQuery(req *MetricsRequest, sc scope.Scope) *gorm.DB {
	query := sc.Apply(s.db.Model(&inventory.InventoryRecord{}), "inventory_records.base_id")
	if req.BaseID > 0 {
		query = query.Where("inventory_records.base_id = ?", req.BaseID)
	}
	query = s.applyAssetType(query, req, "inventory_records.asset_id")
	return query
}

func (s *Service) applyAssetType(query *gorm.DB, req *MetricsRequest, column string) *gorm.DB {
	if req.AssetType == "" {
		return query
	}
	return query.Where(column+" IN (?)",
		s.db.Table("assets").Select("id").Where("type = ?", req.AssetType))
}

func applyDateRange(query *gorm.DB, req *MetricsRequest, column string) *gorm.DB {
	if req.StartDate != nil {
		query = query.Where(column+" >= ?", *req.StartDate)
	}
	if req.EndDate != nil {
		query = query.Where(column+" < ?", req.EndDate.AddDate(0, 0, 1))
	}
	return query
}

func (s *Service) recentActivities(req *MetricsRequest, sc scope.Scope, limit int) ([]Activity, error) {
	query := s.db.Model(&inventory.InventoryMovement{}).
		Select("inventory_movements.id, inventory_movements.kind, inventory_movements.quantity, " +
			"inventory_records.asset_id, assets.name AS asset_name, " +
			"inventory_records.base_id, bases.name AS base_name, " +
			"inventory_movements.reference_type, inventory_movements.reference_id, inventory_movements.created_at").
		Joins("JOIN inventory_records ON inventory_records.id = inventory_movements.inventory_record_id").
		Joins("JOIN assets ON assets.id = inventory_records.asset_id").
		Joins("JOIN bases ON bases.id = inventory_records.base_id")
	query = sc.Apply(query, "inventory_records.base_id")
	if req.BaseID > 0 {
		query = query.Where("inventory_records.base_id = ?", req.BaseID)
	}
	if req.AssetType != "" {
		query = query.Where("assets.type = ?", req.AssetType)
	}
	query = applyDateRange(query, req, "inventory_movements.created_at")

	var activities []Activity
	if err := query.Order("inventory_movements.created_at desc").Limit(limit).Scan(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve recent activities: %w", err)
	}
	return activities, nil
}

func (s *Service) cacheKey(req *MetricsRequest, sc scope.Scope) string {
	scopePart := "all"
	if sc.BaseID != nil {
		scopePart = fmt.Sprintf("base:%d", *sc.BaseID)
	}
	start, end := "", ""
	if req.StartDate != nil {
		start = req.StartDate.Format("2006-01-02")
	}
	if req.EndDate != nil {
		end = req.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("dashboard:metrics:%s:%d:%s:%s:%s", scopePart, req.BaseID, req.AssetType, start, end)
}
