// internal/interfaces/http/handlers/transfer.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/transfer"
	"github.com/your-org/asset-tracker/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// TransferHandler handles transfer lifecycle endpoints
type TransferHandler struct {
	transferService *transfer.Service
	config          *config.Config
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(db *gorm.DB, cfg *config.Config) *TransferHandler {
	return &TransferHandler{
		transferService: transfer.NewService(db, cfg),
		config:          cfg,
	}
}

// Create handles POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	var req transfer.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	t, err := h.transferService.Create(&req, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Transfer requested successfully",
		"data":    t,
	})
}

// Get handles GET /transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	t, err := h.transferService.Get(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer retrieved successfully",
		"data":    t,
	})
}

// List handles GET /transfers
func (h *TransferHandler) List(c *gin.Context) {
	var req transfer.ListTransfersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	transfers, total, err := h.transferService.List(&req, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Transfers retrieved successfully",
		"data":       transfers,
		"pagination": paginationMeta(req.Page, req.Limit, total),
	})
}

// Approve handles PUT /transfers/:id/approve
func (h *TransferHandler) Approve(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	t, err := h.transferService.Approve(id, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer approved successfully",
		"data":    t,
	})
}

// Reject handles PUT /transfers/:id/reject
func (h *TransferHandler) Reject(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	t, err := h.transferService.Reject(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer rejected",
		"data":    t,
	})
}

// Ship handles PUT /transfers/:id/ship
func (h *TransferHandler) Ship(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req transfer.ShipTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	t, err := h.transferService.Ship(id, &req, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer shipped and source stock debited",
		"data":    t,
	})
}

// Receive handles PUT /transfers/:id/receive
func (h *TransferHandler) Receive(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	t, err := h.transferService.Receive(id, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer received and destination stock credited",
		"data":    t,
	})
}

// Cancel handles PUT /transfers/:id/cancel
func (h *TransferHandler) Cancel(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	t, err := h.transferService.Cancel(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer cancelled successfully",
		"data":    t,
	})
}
