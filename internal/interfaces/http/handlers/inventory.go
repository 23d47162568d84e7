// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/inventory"
	"github.com/your-org/asset-tracker/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// InventoryHandler handles inventory ledger endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventory.NewService(db, cfg),
		config:           cfg,
	}
}

// Open handles POST /inventory
func (h *InventoryHandler) Open(c *gin.Context) {
	var req inventory.OpenRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	rec, err := h.inventoryService.Open(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Inventory record opened successfully",
		"data":    rec,
	})
}

// Get handles GET /inventory/:assetId/:baseId
func (h *InventoryHandler) Get(c *gin.Context) {
	assetID, ok := parseUintParam(c, "assetId")
	if !ok {
		return
	}
	baseID, ok := parseUintParam(c, "baseId")
	if !ok {
		return
	}

	rec, err := h.inventoryService.Get(assetID, baseID, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory record retrieved successfully",
		"data":    rec,
	})
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	var req inventory.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	records, total, err := h.inventoryService.List(&req, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Inventory records retrieved successfully",
		"data":       records,
		"pagination": paginationMeta(req.Page, req.Limit, total),
	})
}

// RecordExpenditure handles POST /inventory/expenditures
func (h *InventoryHandler) RecordExpenditure(c *gin.Context) {
	var req inventory.ExpenditureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	rec, err := h.inventoryService.RecordExpenditure(&req, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Expenditure recorded successfully",
		"data":    rec,
	})
}

// LowStock handles GET /inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventoryService.ListLowStock(middleware.GetScope(c), 50)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock records retrieved successfully",
		"data":    items,
	})
}

// Alerts handles GET /inventory/alerts
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.inventoryService.ListAlerts(middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock alerts retrieved successfully",
		"data":    alerts,
	})
}

// Reconcile handles GET /inventory/:assetId/:baseId/reconcile
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	assetID, ok := parseUintParam(c, "assetId")
	if !ok {
		return
	}
	baseID, ok := parseUintParam(c, "baseId")
	if !ok {
		return
	}

	report, err := h.inventoryService.Reconcile(assetID, baseID, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reconciliation completed",
		"data":    report,
	})
}
