// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/asset-tracker/internal/domain/asset"
	"github.com/your-org/asset-tracker/internal/domain/assignment"
	"github.com/your-org/asset-tracker/internal/domain/base"
	"github.com/your-org/asset-tracker/internal/domain/inventory"
	"github.com/your-org/asset-tracker/internal/domain/purchase"
	"github.com/your-org/asset-tracker/internal/domain/transfer"
	"github.com/your-org/asset-tracker/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&base.Base{},
		&user.User{},
		&asset.Asset{},

		&inventory.InventoryRecord{},
		&inventory.InventoryMovement{},
		&inventory.StockAlert{},

		&purchase.Purchase{},
		&transfer.Transfer{},
		&assignment.Assignment{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_username_active ON users(username, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_base ON users(role, assigned_base_id)",

		// Asset indexes
		"CREATE INDEX IF NOT EXISTS idx_assets_type_active ON assets(type, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_assets_category ON assets(category)",

		// Ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_inventory_records_base ON inventory_records(base_id)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_records_asset ON inventory_records(asset_id)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_record ON inventory_movements(inventory_record_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_reference ON inventory_movements(reference_type, reference_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_alerts_unresolved ON stock_alerts(inventory_record_id, is_resolved)",

		// Purchase indexes
		"CREATE INDEX IF NOT EXISTS idx_purchases_base_created ON purchases(base_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_purchases_status_created ON purchases(status, created_at DESC)",

		// Transfer indexes
		"CREATE INDEX IF NOT EXISTS idx_transfers_from_base_created ON transfers(from_base_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_to_base_created ON transfers(to_base_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_transfers_status_created ON transfers(status, created_at DESC)",

		// Assignment indexes
		"CREATE INDEX IF NOT EXISTS idx_assignments_base_created ON assignments(base_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_assignments_personnel ON assignments(assigned_to_personnel_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_assignments_status_created ON assignments(status, created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	if err := m.seedBases(); err != nil {
		return fmt.Errorf("failed to seed bases: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedAssets(); err != nil {
		return fmt.Errorf("failed to seed assets: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedBases creates a pair of development bases
func (m *Migration) seedBases() error {
	log.Println("🏷️ Seeding bases...")

	bases := []base.Base{
		{
			Name:   "Fort Douglas",
			Code:   "FTDG",
			Status: base.BaseStatusActive,
			Location: base.Location{
				City:    "Salt Lake City",
				State:   "UT",
				Country: "USA",
			},
		},
		{
			Name:   "Camp Meridian",
			Code:   "CPMD",
			Status: base.BaseStatusActive,
			Location: base.Location{
				City:    "Meridian",
				State:   "MS",
				Country: "USA",
			},
		},
	}

	for _, b := range bases {
		var existing base.Base
		if err := m.db.Where("code = ?", b.Code).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := m.db.Create(&b).Error; err != nil {
				return err
			}
			log.Printf("Created base: %s", b.Code)
		}
	}

	return nil
}

// seedAdminUser creates the default admin account
func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	if err := m.db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123!A"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := user.User{
		Username:  "admin",
		Email:     "admin@example.com",
		Password:  string(hash),
		FirstName: "System",
		LastName:  "Administrator",
		Role:      user.RoleAdmin,
		IsActive:  true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Created admin user (username: admin)")
	return nil
}

// seedAssets creates a few development assets
func (m *Migration) seedAssets() error {
	log.Println("📦 Seeding assets...")

	assets := []asset.Asset{
		{
			Name:          "M4 Carbine",
			Type:          asset.AssetTypeWeapon,
			Category:      "small-arms",
			SerialNumber:  "WPN-M4-0001",
			UnitOfMeasure: asset.UnitPiece,
			CostPerUnit:   74900,
			MinimumStock:  20,
			IsActive:      true,
		},
		{
			Name:          "5.56mm NATO",
			Type:          asset.AssetTypeAmmunition,
			Category:      "small-arms-ammo",
			SerialNumber:  "AMM-556-0001",
			UnitOfMeasure: asset.UnitRound,
			CostPerUnit:   40,
			MinimumStock:  5000,
			IsActive:      true,
		},
		{
			Name:          "HMMWV Utility Vehicle",
			Type:          asset.AssetTypeVehicle,
			Category:      "light-vehicle",
			SerialNumber:  "VEH-HMV-0001",
			UnitOfMeasure: asset.UnitPiece,
			CostPerUnit:   22000000,
			MinimumStock:  2,
			IsActive:      true,
		},
	}

	for _, a := range assets {
		var existing asset.Asset
		if err := m.db.Where("serial_number = ?", a.SerialNumber).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := m.db.Create(&a).Error; err != nil {
				return err
			}
			log.Printf("Created asset: %s", a.SerialNumber)
		}
	}

	return nil
}

// GetTableInfo logs row counts for the main tables
func (m *Migration) GetTableInfo() {
	tables := []string{
		"users", "bases", "assets",
		"inventory_records", "inventory_movements", "stock_alerts",
		"purchases", "transfers", "assignments",
	}

	log.Println("📊 Table info:")
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err == nil {
			log.Printf("  %s: %d rows", table, count)
		}
	}
}
