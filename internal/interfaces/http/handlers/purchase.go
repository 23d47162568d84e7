// internal/interfaces/http/handlers/purchase.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/asset"
	"github.com/your-org/asset-tracker/internal/domain/base"
	"github.com/your-org/asset-tracker/internal/domain/purchase"
	"github.com/your-org/asset-tracker/internal/interfaces/http/middleware"
	"github.com/your-org/asset-tracker/internal/pkg/pdf"
	"gorm.io/gorm"
)

// PurchaseHandler handles purchase lifecycle endpoints
type PurchaseHandler struct {
	purchaseService *purchase.Service
	assetService    *asset.Service
	baseService     *base.Service
	pdfService      *pdf.Service
	config          *config.Config
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(db *gorm.DB, cfg *config.Config) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchase.NewService(db, cfg),
		assetService:    asset.NewService(db, cfg),
		baseService:     base.NewService(db, cfg),
		pdfService:      pdf.NewService(cfg),
		config:          cfg,
	}
}

// Create handles POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req purchase.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.purchaseService.Create(&req, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Purchase created successfully",
		"data":    p,
	})
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	p, err := h.purchaseService.Get(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase retrieved successfully",
		"data":    p,
	})
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var req purchase.ListPurchasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	purchases, total, err := h.purchaseService.List(&req, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Purchases retrieved successfully",
		"data":       purchases,
		"pagination": paginationMeta(req.Page, req.Limit, total),
	})
}

// Approve handles PUT /purchases/:id/approve
func (h *PurchaseHandler) Approve(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	p, err := h.purchaseService.Approve(id, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase approved successfully",
		"data":    p,
	})
}

// MarkOrdered handles PUT /purchases/:id/order
func (h *PurchaseHandler) MarkOrdered(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	p, err := h.purchaseService.MarkOrdered(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase marked as ordered",
		"data":    p,
	})
}

// Deliver handles PUT /purchases/:id/deliver
func (h *PurchaseHandler) Deliver(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	p, err := h.purchaseService.Deliver(id, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase delivered and stock booked",
		"data":    p,
	})
}

// Cancel handles PUT /purchases/:id/cancel
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	p, err := h.purchaseService.Cancel(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Purchase cancelled successfully",
		"data":    p,
	})
}

// Document handles GET /purchases/:id/document
func (h *PurchaseHandler) Document(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	sc := middleware.GetScope(c)
	p, err := h.purchaseService.Get(id, sc)
	if err != nil {
		respondError(c, err)
		return
	}

	a, err := h.assetService.Get(p.AssetID)
	if err != nil {
		respondError(c, err)
		return
	}

	b, err := h.baseService.Get(p.BaseID, sc)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdfService.GeneratePurchaseOrder(p, a, b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate document",
		})
		return
	}

	filename := fmt.Sprintf("%s.pdf", p.PurchaseNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
