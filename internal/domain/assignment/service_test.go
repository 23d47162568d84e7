package assignment

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
	if err := db.AutoMigrate(&Assignment{}, &inventory.InventoryRecord{}, &inventory.InventoryMovement{}, &inventory.StockAlert{}); err != nil {
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

func seedStock(t *testing.T, db *gorm.DB, cfg *config.Config, balance int) *inventory.Service {
	t.Helper()
	inv := inventory.NewService(db, cfg)
	if _, err := inv.Open(&inventory.OpenRecordRequest{AssetID: 1, BaseID: 1, OpeningBalance: balance}); err != nil {
		t.Fatalf("open inventory record: %v", err)
	}
	return inv
}

func issue(t *testing.T, s *Service, qty int) *Assignment {
	t.Helper()
	a, err := s.Create(&CreateAssignmentRequest{
		AssetID:  1,
		BaseID:   1,
		Quantity: qty,
		AssignedTo: Personnel{
			PersonnelID: "SM-1001",
			Name:        "J. Ramirez",
			Rank:        "SGT",
			Unit:        "2nd Battalion",
		},
		Purpose: "Field exercise",
	}, 1, scope.Unrestricted())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func TestCreate_DebitsLedger(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	inv := seedStock(t, db, cfg, 50)
	s := NewService(db, cfg)

	a := issue(t, s, 10)
	if a.Status != AssignmentStatusAssigned {
		t.Errorf("Status = %s, want assigned", a.Status)
	}
	if !strings.HasPrefix(a.AssignmentNumber, "ASG-") {
		t.Errorf("AssignmentNumber = %q, want ASG- prefix", a.AssignmentNumber)
	}
	if a.ConditionAtIssue != ConditionGood {
		t.Errorf("ConditionAtIssue = %s, want good default", a.ConditionAtIssue)
	}

	rec, err := inv.Get(1, 1, scope.Unrestricted())
	if err != nil {
		t.Fatalf("ledger record: %v", err)
	}
	if rec.CurrentStock != 40 || rec.TotalAssigned != 10 {
		t.Errorf("ledger: stock %d assigned %d, want 40 and 10", rec.CurrentStock, rec.TotalAssigned)
	}
}

func TestCreate_InsufficientStockRollsBack(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	seedStock(t, db, cfg, 5)
	s := NewService(db, cfg)

	_, err := s.Create(&CreateAssignmentRequest{
		AssetID:    1,
		BaseID:     1,
		Quantity:   10,
		AssignedTo: Personnel{PersonnelID: "SM-1", Name: "A. Okafor"},
		Purpose:    "Field exercise",
	}, 1, scope.Unrestricted())
	if !errors.Is(err, apperrors.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var count int64
	db.Model(&Assignment{}).Count(&count)
	if count != 0 {
		t.Errorf("assignment rows after rollback = %d, want 0", count)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testDB(t)
	s := NewService(db, testConfig())

	_, err := s.Create(&CreateAssignmentRequest{
		AssetID: 1, BaseID: 1, Quantity: 5, Purpose: "Training",
		AssignedTo: Personnel{PersonnelID: "", Name: ""},
	}, 1, scope.Unrestricted())
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("missing personnel: expected validation error, got %v", err)
	}

	_, err = s.Create(&CreateAssignmentRequest{
		AssetID: 1, BaseID: 2, Quantity: 5, Purpose: "Training",
		AssignedTo: Personnel{PersonnelID: "SM-2", Name: "B. Chen"},
	}, 1, scope.ForBase(1))
	if !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Errorf("out-of-scope base: expected access denied, got %v", err)
	}
}

func TestReturn_RestoresStock(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	inv := seedStock(t, db, cfg, 50)
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	a := issue(t, s, 10)
	returned, err := s.Return(a.ID, &ReturnAssignmentRequest{ConditionAtReturn: ConditionFair}, 2, sc)
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if returned.Status != AssignmentStatusReturned || returned.ReturnedAt == nil || returned.ClosedAt == nil {
		t.Errorf("return state: status %s", returned.Status)
	}
	if returned.ConditionAtReturn != ConditionFair {
		t.Errorf("ConditionAtReturn = %s, want fair", returned.ConditionAtReturn)
	}

	rec, _ := inv.Get(1, 1, sc)
	if rec.CurrentStock != 50 || rec.TotalAssigned != 0 {
		t.Errorf("ledger after return: stock %d assigned %d, want 50 and 0", rec.CurrentStock, rec.TotalAssigned)
	}
}

func TestReturn_TwiceRejected(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	inv := seedStock(t, db, cfg, 50)
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	a := issue(t, s, 10)
	if _, err := s.Return(a.ID, nil, 2, sc); err != nil {
		t.Fatalf("first Return: %v", err)
	}
	_, err := s.Return(a.ID, nil, 2, sc)
	if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("second Return: expected invalid transition, got %v", err)
	}

	rec, _ := inv.Get(1, 1, sc)
	if rec.CurrentStock != 50 {
		t.Errorf("stock after double return attempt = %d, want 50", rec.CurrentStock)
	}
}

func TestMarkLost_StatusOnly(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	inv := seedStock(t, db, cfg, 50)
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	a := issue(t, s, 10)
	lost, err := s.MarkLost(a.ID, sc)
	if err != nil {
		t.Fatalf("MarkLost: %v", err)
	}
	if lost.Status != AssignmentStatusLost || lost.ClosedAt == nil {
		t.Errorf("lost state: status %s", lost.Status)
	}

	// Units stay booked: no stock comes back for lost equipment
	rec, _ := inv.Get(1, 1, sc)
	if rec.CurrentStock != 40 || rec.TotalAssigned != 10 {
		t.Errorf("ledger after lost: stock %d assigned %d, want 40 and 10", rec.CurrentStock, rec.TotalAssigned)
	}

	if _, err := s.Return(a.ID, nil, 1, sc); !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Errorf("return after lost: expected invalid transition, got %v", err)
	}
}

func TestMarkExpended_StatusOnly(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	inv := seedStock(t, db, cfg, 50)
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	a := issue(t, s, 8)
	expended, err := s.MarkExpended(a.ID, sc)
	if err != nil {
		t.Fatalf("MarkExpended: %v", err)
	}
	if expended.Status != AssignmentStatusExpended {
		t.Errorf("Status = %s, want expended", expended.Status)
	}

	rec, _ := inv.Get(1, 1, sc)
	if rec.CurrentStock != 42 || rec.TotalAssigned != 8 {
		t.Errorf("ledger after expended: stock %d assigned %d, want 42 and 8", rec.CurrentStock, rec.TotalAssigned)
	}
}

func TestList_PersonnelFilter(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	seedStock(t, db, cfg, 100)
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	issue(t, s, 5)
	issue(t, s, 5)
	if _, err := s.Create(&CreateAssignmentRequest{
		AssetID: 1, BaseID: 1, Quantity: 5, Purpose: "Patrol",
		AssignedTo: Personnel{PersonnelID: "SM-2002", Name: "K. Novak"},
	}, 1, sc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	assignments, total, err := s.List(&ListAssignmentsRequest{Page: 1, Limit: 20, PersonnelID: "SM-1001"}, sc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(assignments) != 2 {
		t.Fatalf("personnel filter: total %d, want 2", total)
	}
	for _, a := range assignments {
		if a.AssignedTo.PersonnelID != "SM-1001" {
			t.Errorf("unexpected personnel %s in filtered list", a.AssignedTo.PersonnelID)
		}
	}
}

func TestTransition_StaleObservationRejected(t *testing.T) {
	db := testDB(t)
	cfg := testConfig()
	inv := seedStock(t, db, cfg, 50)
	s := NewService(db, cfg)
	sc := scope.Unrestricted()

	a := issue(t, s, 10)

	// One caller reads the active assignment, another closes it first
	stale, err := s.Get(a.ID, sc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := s.MarkLost(a.ID, sc); err != nil {
		t.Fatalf("MarkLost: %v", err)
	}

	err = s.transition(db, stale, AssignmentStatusReturned, map[string]interface{}{})
	if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		t.Fatalf("stale write: expected invalid transition, got %v", err)
	}

	got, _ := s.Get(a.ID, sc)
	if got.Status != AssignmentStatusLost {
		t.Errorf("status = %s after rejected stale write, want lost", got.Status)
	}

	// The ledger still reflects the single issue, nothing was released
	rec, _ := inv.Get(1, 1, sc)
	if rec.CurrentStock != 40 || rec.TotalAssigned != 10 {
		t.Errorf("ledger: stock %d assigned %d, want 40 and 10", rec.CurrentStock, rec.TotalAssigned)
	}
}
