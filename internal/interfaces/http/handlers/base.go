// internal/interfaces/http/handlers/base.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/base"
	"github.com/your-org/asset-tracker/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// BaseHandler handles base registry endpoints
type BaseHandler struct {
	baseService *base.Service
	config      *config.Config
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(db *gorm.DB, cfg *config.Config) *BaseHandler {
	return &BaseHandler{
		baseService: base.NewService(db, cfg),
		config:      cfg,
	}
}

// Create handles POST /bases
func (h *BaseHandler) Create(c *gin.Context) {
	var req base.CreateBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	b, err := h.baseService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Base created successfully",
		"data":    b,
	})
}

// Get handles GET /bases/:id
func (h *BaseHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	b, err := h.baseService.Get(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Base retrieved successfully",
		"data":    b,
	})
}

// List handles GET /bases
func (h *BaseHandler) List(c *gin.Context) {
	bases, err := h.baseService.List(middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bases retrieved successfully",
		"data":    bases,
	})
}
