package purchase

import (
	"errors"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/inventory"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
)

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
	if err := db.AutoMigrate(&Purchase{}, &inventory.InventoryRecord{}, &inventory.InventoryMovement{}, &inventory.StockAlert{}); err != nil {
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

func createPurchase(t *testing.T, s *Service, baseID uint) *Purchase {
	t.Helper()
	p, err := s.Create(&CreatePurchaseRequest{
		AssetID:  1,
		BaseID:   baseID,
		Quantity: 40,
		UnitCost: 1500,
	}, 1, scope.Unrestricted())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return p
}

func TestCreate_Defaults(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	p := createPurchase(t, s, 1)
	if p.Status != PurchaseStatusPending {
		t.Errorf("Status = %s, want pending", p.Status)
	}
	if !strings.HasPrefix(p.PurchaseNumber, "PO-") {
		t.Errorf("PurchaseNumber = %q, want PO- prefix", p.PurchaseNumber)
	}
	if p.TotalCost != 60000 {
		t.Errorf("TotalCost = %d, want 60000", p.TotalCost)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	_, err := s.Create(&CreatePurchaseRequest{AssetID: 1, BaseID: 1, Quantity: 0}, 1, scope.Unrestricted())
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("zero quantity: expected validation error, got %v", err)
	}

	_, err = s.Create(&CreatePurchaseRequest{AssetID: 1, BaseID: 2, Quantity: 5}, 1, scope.ForBase(1))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("out-of-scope base: expected access denied, got %v", err)
	}
}

func TestLifecycle_DeliveryBooksLedger(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	p := createPurchase(t, s, 1)

	if _, err := s.Approve(p.ID, 2, sc); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := s.MarkOrdered(p.ID, sc); err != nil {
		t.Fatalf("MarkOrdered: %v", err)
	}
	delivered, err := s.Deliver(p.ID, 2, sc)
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if delivered.Status != PurchaseStatusDelivered {
		t.Errorf("Status = %s, want delivered", delivered.Status)
	}
	if delivered.DeliveredAt == nil {
		t.Error("DeliveredAt not set")
	}

	inv := inventory.NewService(db, cfg)
	rec, err := inv.Get(1, 1, sc)
	if err != nil {
		t.Fatalf("ledger record: %v", err)
	}
	if rec.CurrentStock != 40 || rec.TotalPurchased != 40 {
		t.Errorf("ledger stock %d purchased %d, want 40 and 40", rec.CurrentStock, rec.TotalPurchased)
	}
}

func TestDeliver_TwiceDoesNotDoubleBook(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	p := createPurchase(t, s, 1)
	s.Approve(p.ID, 2, sc)
	s.MarkOrdered(p.ID, sc)
	if _, err := s.Deliver(p.ID, 2, sc); err != nil {
		t.Fatalf("first Deliver: %v", err)
	}

	_, err := s.Deliver(p.ID, 2, sc)
	if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("second Deliver: expected invalid transition, got %v", err)
	}

	inv := inventory.NewService(db, cfg)
	rec, _ := inv.Get(1, 1, sc)
	if rec.CurrentStock != 40 {
		t.Errorf("stock = %d after double delivery attempt, want 40", rec.CurrentStock)
	}
}

func TestIllegalTransitions(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())
	sc := scope.Unrestricted()

	p := createPurchase(t, s, 1)

	// Cannot deliver or order straight from pending
	if _, err := s.Deliver(p.ID, 1, sc); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("pending->delivered: got %v", err)
	}
	if _, err := s.MarkOrdered(p.ID, sc); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("pending->ordered: got %v", err)
	}

	// Cancelled is terminal
	if _, err := s.Cancel(p.ID, sc); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := s.Approve(p.ID, 1, sc); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("cancelled->approved: got %v", err)
	}
}

func TestList_ScopeAndStatusFilter(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	createPurchase(t, s, 1)
	createPurchase(t, s, 2)
	p3 := createPurchase(t, s, 2)
	s.Approve(p3.ID, 1, scope.Unrestricted())

	purchases, total, err := s.List(&ListPurchasesRequest{Page: 1, Limit: 20}, scope.ForBase(2))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(purchases) != 2 {
		t.Fatalf("scoped list: total %d len %d, want 2 and 2", total, len(purchases))
	}

	approved, total, err := s.List(&ListPurchasesRequest{Page: 1, Limit: 20, Status: "approved"}, scope.ForBase(2))
	if err != nil {
		t.Fatalf("List approved: %v", err)
	}
	if total != 1 || approved[0].ID != p3.ID {
		t.Errorf("status filter: total %d, want 1 approved purchase", total)
	}
}

func TestGet_ScopeDenied(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	p := createPurchase(t, s, 2)
	_, err := s.Get(p.ID, scope.ForBase(1))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("expected access denied, got %v", err)
	}
}

func TestTransition_StaleObservationRejected(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())
	sc := scope.Unrestricted()

	p := createPurchase(t, s, 1)
	if _, err := s.Approve(p.ID, 2, sc); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// One caller reads the row, another moves it on before the first writes
	stale, err := s.Get(p.ID, sc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := s.MarkOrdered(p.ID, sc); err != nil {
		t.Fatalf("MarkOrdered: %v", err)
	}

	err = s.transition(db, stale, PurchaseStatusCancelled, map[string]interface{}{})
	if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("stale write: expected invalid transition, got %v", err)
	}

	got, _ := s.Get(p.ID, sc)
	if got.Status != PurchaseStatusOrdered {
		t.Errorf("status = %s after rejected stale write, want ordered", got.Status)
	}
}
