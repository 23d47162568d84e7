package transfer

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
	if err := db.AutoMigrate(&Transfer{}, &inventory.InventoryRecord{}, &inventory.InventoryMovement{}, &inventory.StockAlert{}); err != nil {
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

func seedStock(t *testing.T, db *gorm.DB, cfg *config.Config, assetID, baseID uint, balance int) {
	t.Helper()
	inv := inventory.NewService(db, cfg)
	if _, err := inv.Open(&inventory.OpenRecordRequest{AssetID: assetID, BaseID: baseID, OpeningBalance: balance}); err != nil {
		t.Fatalf("open inventory record: %v", err)
	}
}

func createTransfer(t *testing.T, s *Service, qty int) *Transfer {
	t.Helper()
	tr, err := s.Create(&CreateTransferRequest{
		AssetID:    1,
		FromBaseID: 1,
		ToBaseID:   2,
		Quantity:   qty,
		Reason:     "Resupply",
	}, 1, scope.Unrestricted())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return tr
}

func TestCreate_Defaults(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	tr := createTransfer(t, s, 30)
	if tr.Status != TransferStatusPending {
		t.Errorf("Status = %s, want pending", tr.Status)
	}
	if !strings.HasPrefix(tr.TransferNumber, "TRF-") {
		t.Errorf("TransferNumber = %q, want TRF- prefix", tr.TransferNumber)
	}
	if tr.Priority != PriorityMedium {
		t.Errorf("Priority = %s, want medium", tr.Priority)
	}
	if tr.Transport != TransportGround {
		t.Errorf("Transport = %s, want ground", tr.Transport)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	_, err := s.Create(&CreateTransferRequest{
		AssetID: 1, FromBaseID: 1, ToBaseID: 1, Quantity: 10, Reason: "Resupply",
	}, 1, scope.Unrestricted())
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("same source and destination: expected validation error, got %v", err)
	}

	_, err = s.Create(&CreateTransferRequest{
		AssetID: 1, FromBaseID: 1, ToBaseID: 2, Quantity: 10, Reason: "Resupply",
	}, 1, scope.ForBase(3))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("neither endpoint in scope: expected access denied, got %v", err)
	}
}

func TestShipAndReceive_MovesStock(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	seedStock(t, db, cfg, 1, 1, 100)
	tr := createTransfer(t, s, 30)

	if _, err := s.Approve(tr.ID, 2, sc); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	shipped, err := s.Ship(tr.ID, &ShipTransferRequest{TrackingNumber: "TRK-9"}, 2, sc)
	if err != nil {
		t.Fatalf("Ship: %v", err)
	}
	if shipped.Status != TransferStatusShipped || shipped.TrackingNumber != "TRK-9" {
		t.Errorf("Ship result: status %s tracking %q", shipped.Status, shipped.TrackingNumber)
	}

	inv := inventory.NewService(db, cfg)
	src, _ := inv.Get(1, 1, sc)
	if src.CurrentStock != 70 || src.TotalTransferredOut != 30 {
		t.Errorf("source after ship: stock %d out %d, want 70 and 30", src.CurrentStock, src.TotalTransferredOut)
	}

	received, err := s.Receive(tr.ID, 3, sc)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if received.Status != TransferStatusReceived || received.ReceivedAt == nil {
		t.Errorf("Receive result: status %s", received.Status)
	}

	dst, err := inv.Get(1, 2, sc)
	if err != nil {
		t.Fatalf("destination record: %v", err)
	}
	if dst.CurrentStock != 30 || dst.TotalTransferredIn != 30 {
		t.Errorf("destination after receive: stock %d in %d, want 30 and 30", dst.CurrentStock, dst.TotalTransferredIn)
	}
}

func TestShip_InsufficientStock(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	seedStock(t, db, cfg, 1, 1, 10)
	tr := createTransfer(t, s, 30)
	s.Approve(tr.ID, 2, sc)

	_, err := s.Ship(tr.ID, nil, 2, sc)
	if !errors.Is(err, apperrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Rolled back: transfer still approved, ledger untouched
	got, _ := s.Get(tr.ID, sc)
	if got.Status != TransferStatusApproved {
		t.Errorf("status after failed ship = %s, want approved", got.Status)
	}
	inv := inventory.NewService(db, cfg)
	rec, _ := inv.Get(1, 1, sc)
	if rec.CurrentStock != 10 || rec.TotalTransferredOut != 0 {
		t.Errorf("ledger after failed ship: stock %d out %d, want 10 and 0", rec.CurrentStock, rec.TotalTransferredOut)
	}
}

func TestShip_RequiresSourceScope(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)

	seedStock(t, db, cfg, 1, 1, 100)
	tr := createTransfer(t, s, 10)
	s.Approve(tr.ID, 2, scope.Unrestricted())

	// Destination commander can see the transfer but cannot ship it
	_, err := s.Ship(tr.ID, nil, 2, scope.ForBase(2))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("ship from destination scope: expected access denied, got %v", err)
	}
}

func TestReceive_RequiresDestinationScope(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)

	seedStock(t, db, cfg, 1, 1, 100)
	tr := createTransfer(t, s, 10)
	s.Approve(tr.ID, 2, scope.Unrestricted())
	if _, err := s.Ship(tr.ID, nil, 2, scope.Unrestricted()); err != nil {
		t.Fatalf("Ship: %v", err)
	}

	_, err := s.Receive(tr.ID, 3, scope.ForBase(1))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("receive from source scope: expected access denied, got %v", err)
	}
}

func TestIllegalTransitions(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	seedStock(t, db, cfg, 1, 1, 100)
	tr := createTransfer(t, s, 10)

	if _, err := s.Ship(tr.ID, nil, 1, sc); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("pending->shipped: got %v", err)
	}
	if _, err := s.Receive(tr.ID, 1, sc); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("pending->received: got %v", err)
	}

	if _, err := s.Reject(tr.ID, sc); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if _, err := s.Approve(tr.ID, 1, sc); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("rejected->approved: got %v", err)
	}
}

func TestList_EitherEndpointVisible(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())
	sc := scope.Unrestricted()

	// base 1 -> 2, base 2 -> 3, base 3 -> 4
	for _, pair := range [][2]uint{{1, 2}, {2, 3}, {3, 4}} {
		if _, err := s.Create(&CreateTransferRequest{
			AssetID: 1, FromBaseID: pair[0], ToBaseID: pair[1], Quantity: 5, Reason: "Resupply",
		}, 1, sc); err != nil {
			t.Fatalf("Create %v: %v", pair, err)
		}
	}

	transfers, total, err := s.List(&ListTransfersRequest{Page: 1, Limit: 20}, scope.ForBase(2))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(transfers) != 2 {
		t.Fatalf("base 2 sees %d transfers, want 2 (inbound and outbound)", total)
	}

	_, total, err = s.List(&ListTransfersRequest{Page: 1, Limit: 20}, scope.ForBase(4))
	if err != nil {
		t.Fatalf("List base 4: %v", err)
	}
	if total != 1 {
		t.Errorf("base 4 sees %d transfers, want 1", total)
	}
}

func TestGet_ScopeDenied(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	tr := createTransfer(t, s, 5)
	_, err := s.Get(tr.ID, scope.ForBase(3))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("expected access denied, got %v", err)
	}
}

func TestTransition_StaleObservationRejected(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	seedStock(t, db, cfg, 1, 1, 100)
	tr := createTransfer(t, s, 10)

	// One caller reads pending, another approves before the first writes
	stale, err := s.Get(tr.ID, sc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := s.Approve(tr.ID, 2, sc); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	err = s.transition(db, stale, TransferStatusCancelled, map[string]interface{}{})
	if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("stale write: expected invalid transition, got %v", err)
	}

	got, _ := s.Get(tr.ID, sc)
	if got.Status != TransferStatusApproved {
		t.Errorf("status = %s after rejected stale write, want approved", got.Status)
	}
}
