package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/inventory"
	"github.com/your-org/asset-tracker/internal/domain/purchase"
	"github.com/your-org/asset-tracker/internal/domain/transfer"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
)

type assetRow struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:255"`
	Type         string `gorm:"size:20"`
	MinimumStock int
	IsActive     bool
	DeletedAt    gorm.DeletedAt
}

func (assetRow) TableName() string { return "assets" }

type baseRow struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100"`
	Code      string `gorm:"size:10"`
	DeletedAt gorm.DeletedAt
}

func (baseRow) TableName() string { return "bases" }

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&assetRow{}, &baseRow{},
		&inventory.InventoryRecord{}, &inventory.InventoryMovement{},
		&purchase.Purchase{}, &transfer.Transfer{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Inventory: config.InventoryConfig{
			NegativeStockPolicy: config.NegativeStockReject,
		},
	}
}

func seedLedger(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []interface{}{
		&baseRow{ID: 1, Name: "Fort Douglas", Code: "FTDG"},
		&baseRow{ID: 2, Name: "Camp Meridian", Code: "CPMD"},
		&assetRow{ID: 1, Name: "M4 Carbine", Type: "weapon", MinimumStock: 20, IsActive: true},
		&assetRow{ID: 2, Name: "5.56mm NATO", Type: "ammunition", MinimumStock: 60, IsActive: true},
		// opening 100 + 20 purchased - 10 out - 5 assigned - 5 expended = 100
		&inventory.InventoryRecord{
			AssetID: 1, BaseID: 1,
			OpeningBalance: 100, CurrentStock: 100,
			TotalPurchased: 20, TotalTransferredOut: 10,
			TotalAssigned: 5, TotalExpended: 5,
		},
		// opening 50 + 10 in = 60, at the minimum threshold
		&inventory.InventoryRecord{
			AssetID: 2, BaseID: 2,
			OpeningBalance: 50, CurrentStock: 60,
			TotalTransferredIn: 10,
		},
	}
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}
}

func TestMetrics_AggregatesLedger(t *testing.T) {
	db := testDB(t)
	seedLedger(t, db)
	s := NewService(db, testConfig(), nil)

	m, err := s.Metrics(context.Background(), &MetricsRequest{}, scope.Unrestricted())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}

	if m.TotalBases != 2 || m.TotalAssets != 2 {
		t.Errorf("counts: bases %d assets %d, want 2 and 2", m.TotalBases, m.TotalAssets)
	}
	if m.OpeningBalance != 150 || m.CurrentStock != 160 {
		t.Errorf("balances: opening %d current %d, want 150 and 160", m.OpeningBalance, m.CurrentStock)
	}
	if m.NetMovement != 20 {
		t.Errorf("NetMovement = %d, want 20 (20 purchased + 10 in - 10 out)", m.NetMovement)
	}
	if m.ClosingBalance != m.CurrentStock {
		t.Errorf("ClosingBalance %d != CurrentStock %d", m.ClosingBalance, m.CurrentStock)
	}
	if m.LowStockCount != 1 || m.OutOfStockCount != 0 {
		t.Errorf("stock alerts: low %d out %d, want 1 and 0", m.LowStockCount, m.OutOfStockCount)
	}
	if len(m.LowStock) != 1 || m.LowStock[0].AssetName != "5.56mm NATO" {
		t.Errorf("low stock list: %+v", m.LowStock)
	}
}

func TestMetrics_ScopedToBase(t *testing.T) {
	db := testDB(t)
	seedLedger(t, db)
	s := NewService(db, testConfig(), nil)

	m, err := s.Metrics(context.Background(), &MetricsRequest{}, scope.ForBase(1))
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.OpeningBalance != 100 || m.CurrentStock != 100 {
		t.Errorf("base 1 balances: opening %d current %d, want 100 and 100", m.OpeningBalance, m.CurrentStock)
	}
	if m.NetMovement != 10 {
		t.Errorf("base 1 NetMovement = %d, want 10", m.NetMovement)
	}
	if m.LowStockCount != 0 {
		t.Errorf("base 1 LowStockCount = %d, want 0", m.LowStockCount)
	}
}

func TestMetrics_AssetTypeFilter(t *testing.T) {
	db := testDB(t)
	seedLedger(t, db)
	s := NewService(db, testConfig(), nil)

	m, err := s.Metrics(context.Background(), &MetricsRequest{AssetType: "ammunition"}, scope.Unrestricted())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.OpeningBalance != 50 || m.CurrentStock != 60 || m.TotalTransferredIn != 10 {
		t.Errorf("ammunition only: opening %d current %d in %d", m.OpeningBalance, m.CurrentStock, m.TotalTransferredIn)
	}
}

func TestMetrics_BaseOutsideScope(t *testing.T) {
	db := testDB(t)
	seedLedger(t, db)
	s := NewService(db, testConfig(), nil)

	_, err := s.Metrics(context.Background(), &MetricsRequest{BaseID: 2}, scope.ForBase(1))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("expected access denied, got %v", err)
	}
}

func TestMetrics_RecentActivityLimit(t *testing.T) {
	db := testDB(t)
	seedLedger(t, db)
	s := NewService(db, testConfig(), nil)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		mv := &inventory.InventoryMovement{
			InventoryRecordID: 1,
			Kind:              inventory.MovementPurchased,
			Quantity:          i + 1,
			ReferenceType:     "purchase",
			ReferenceID:       uint(i + 1),
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(mv).Error; err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}

	m, err := s.Metrics(context.Background(), &MetricsRequest{}, scope.Unrestricted())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(m.RecentActivities) != 5 {
		t.Fatalf("RecentActivities len = %d, want 5", len(m.RecentActivities))
	}
	// Newest first: the last seeded movement has quantity 7
	if m.RecentActivities[0].Quantity != 7 {
		t.Errorf("newest activity quantity = %d, want 7", m.RecentActivities[0].Quantity)
	}
	if m.RecentActivities[0].AssetName != "M4 Carbine" || m.RecentActivities[0].BaseName != "Fort Douglas" {
		t.Errorf("activity join: asset %q base %q", m.RecentActivities[0].AssetName, m.RecentActivities[0].BaseName)
	}
}

func TestNetMovementDetails(t *testing.T) {
	db := testDB(t)
	seedLedger(t, db)
	s := NewService(db, testConfig(), nil)

	now := time.Now()
	seed := []interface{}{
		&purchase.Purchase{
			PurchaseNumber: "PO-1", AssetID: 1, BaseID: 1, Quantity: 20,
			Status: purchase.PurchaseStatusDelivered, DeliveredAt: &now, CreatedBy: 1,
		},
		&purchase.Purchase{
			PurchaseNumber: "PO-2", AssetID: 1, BaseID: 1, Quantity: 10,
			Status: purchase.PurchaseStatusPending, CreatedBy: 1,
		},
		&transfer.Transfer{
			TransferNumber: "TRF-1", AssetID: 1, FromBaseID: 2, ToBaseID: 1, Quantity: 5,
			Status: transfer.TransferStatusReceived, Reason: "Resupply",
			ShippedAt: &now, ReceivedAt: &now, RequestedBy: 1,
		},
		&transfer.Transfer{
			TransferNumber: "TRF-2", AssetID: 1, FromBaseID: 1, ToBaseID: 2, Quantity: 10,
			Status: transfer.TransferStatusShipped, Reason: "Resupply",
			ShippedAt: &now, RequestedBy: 1,
		},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	details, err := s.NetMovementDetails(&MetricsRequest{}, scope.ForBase(1))
	if err != nil {
		t.Fatalf("NetMovementDetails: %v", err)
	}
	if len(details.Purchases) != 1 || details.Purchases[0].PurchaseNumber != "PO-1" {
		t.Errorf("purchases: %+v, want only the delivered one", details.Purchases)
	}
	if len(details.TransfersIn) != 1 || details.TransfersIn[0].TransferNumber != "TRF-1" {
		t.Errorf("transfers in: %+v, want only TRF-1", details.TransfersIn)
	}
	if len(details.TransfersOut) != 1 || details.TransfersOut[0].TransferNumber != "TRF-2" {
		t.Errorf("transfers out: %+v, want only TRF-2", details.TransfersOut)
	}

	// Date window in the future excludes everything
	start := now.AddDate(0, 0, 2)
	empty, err := s.NetMovementDetails(&MetricsRequest{StartDate: &start}, scope.ForBase(1))
	if err != nil {
		t.Fatalf("NetMovementDetails future window: %v", err)
	}
	if len(empty.Purchases) != 0 || len(empty.TransfersIn) != 0 || len(empty.TransfersOut) != 0 {
		t.Errorf("future window should be empty: %+v", empty)
	}
}
