// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/user"
	"github.com/your-org/asset-tracker/internal/infrastructure/database/redis"
	"github.com/your-org/asset-tracker/internal/interfaces/http/handlers"
	"github.com/your-org/asset-tracker/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, cache *redis.Client, cfg *config.Config) {
	setupAuthRoutes(rg, db, cfg)
	setupAssetRoutes(rg, db, cfg)
	setupBaseRoutes(rg, db, cfg)
	setupInventoryRoutes(rg, db, cfg)
	setupPurchaseRoutes(rg, db, cfg)
	setupTransferRoutes(rg, db, cfg)
	setupAssignmentRoutes(rg, db, cfg)
	setupDashboardRoutes(rg, db, cache, cfg)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/me", authHandler.Me)
		}

		// Only admins can create accounts
		admin := auth.Group("")
		admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
		{
			admin.POST("/register", authHandler.Register)
		}
	}
}

// setupAssetRoutes sets up asset catalog routes
func setupAssetRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	assetHandler := handlers.NewAssetHandler(db, cfg)

	assets := rg.Group("/assets")
	assets.Use(middleware.AuthMiddleware(cfg))
	{
		assets.GET("", assetHandler.List)
		assets.GET("/:id", assetHandler.Get)
		assets.POST("", middleware.AdminMiddleware(), assetHandler.Create)
	}
}

// setupBaseRoutes sets up base registry routes
func setupBaseRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	baseHandler := handlers.NewBaseHandler(db, cfg)

	bases := rg.Group("/bases")
	bases.Use(middleware.AuthMiddleware(cfg))
	{
		bases.GET("", baseHandler.List)
		bases.GET("/:id", baseHandler.Get)
		bases.POST("", middleware.AdminMiddleware(), baseHandler.Create)
	}
}

// setupInventoryRoutes sets up ledger routes
func setupInventoryRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)

	inv := rg.Group("/inventory")
	inv.Use(middleware.AuthMiddleware(cfg))
	{
		inv.GET("", inventoryHandler.List)
		inv.GET("/low-stock", inventoryHandler.LowStock)
		inv.GET("/alerts", inventoryHandler.Alerts)
		inv.GET("/:assetId/:baseId", inventoryHandler.Get)
		inv.GET("/:assetId/:baseId/reconcile", inventoryHandler.Reconcile)

		admin := inv.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", inventoryHandler.Open)
			admin.POST("/expenditures", inventoryHandler.RecordExpenditure)
		}
	}
}

// setupPurchaseRoutes sets up purchase lifecycle routes
func setupPurchaseRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	purchaseHandler := handlers.NewPurchaseHandler(db, cfg)

	purchases := rg.Group("/purchases")
	purchases.Use(middleware.AuthMiddleware(cfg))
	{
		purchases.GET("", purchaseHandler.List)
		purchases.GET("/:id", purchaseHandler.Get)
		purchases.GET("/:id/document", purchaseHandler.Document)
		purchases.POST("", purchaseHandler.Create)
		purchases.PUT("/:id/order", purchaseHandler.MarkOrdered)
		purchases.PUT("/:id/deliver", purchaseHandler.Deliver)
		purchases.PUT("/:id/cancel", purchaseHandler.Cancel)

		// Approval is reserved for command roles
		purchases.PUT("/:id/approve",
			middleware.RequireRoles(user.RoleAdmin, user.RoleBaseCommander),
			purchaseHandler.Approve)
	}
}

// setupTransferRoutes sets up transfer lifecycle routes
func setupTransferRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	transferHandler := handlers.NewTransferHandler(db, cfg)

	transfers := rg.Group("/transfers")
	transfers.Use(middleware.AuthMiddleware(cfg))
	{
		transfers.GET("", transferHandler.List)
		transfers.GET("/:id", transferHandler.Get)
		transfers.POST("", transferHandler.Create)
		transfers.PUT("/:id/ship", transferHandler.Ship)
		transfers.PUT("/:id/receive", transferHandler.Receive)
		transfers.PUT("/:id/cancel", transferHandler.Cancel)

		command := transfers.Group("")
		command.Use(middleware.RequireRoles(user.RoleAdmin, user.RoleBaseCommander))
		{
			command.PUT("/:id/approve", transferHandler.Approve)
			command.PUT("/:id/reject", transferHandler.Reject)
		}
	}
}

// setupAssignmentRoutes sets up assignment lifecycle routes
func setupAssignmentRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	assignmentHandler := handlers.NewAssignmentHandler(db, cfg)

	assignments := rg.Group("/assignments")
	assignments.Use(middleware.AuthMiddleware(cfg))
	{
		assignments.GET("", assignmentHandler.List)
		assignments.GET("/:id", assignmentHandler.Get)
		assignments.POST("", assignmentHandler.Create)
		assignments.PUT("/:id/return", assignmentHandler.Return)
		assignments.PUT("/:id/lost", assignmentHandler.MarkLost)
		assignments.PUT("/:id/damaged", assignmentHandler.MarkDamaged)
		assignments.PUT("/:id/expended", assignmentHandler.MarkExpended)
	}
}

// setupDashboardRoutes sets up dashboard routes
func setupDashboardRoutes(rg *gin.RouterGroup, db *gorm.DB, cache *redis.Client, cfg *config.Config) {
	dashboardHandler := handlers.NewDashboardHandler(db, cfg, cache)

	dash := rg.Group("/dashboard")
	dash.Use(middleware.AuthMiddleware(cfg))
	{
		dash.GET("", dashboardHandler.Metrics)
		dash.GET("/net-movement", dashboardHandler.NetMovementDetails)
	}
}
