// internal/interfaces/http/handlers/asset.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/asset"
	"gorm.io/gorm"
)

// AssetHandler handles asset catalog endpoints
type AssetHandler struct {
	assetService *asset.Service
	config       *config.Config
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(db *gorm.DB, cfg *config.Config) *AssetHandler {
	return &AssetHandler{
		assetService: asset.NewService(db, cfg),
		config:       cfg,
	}
}

// Create handles POST /assets
func (h *AssetHandler) Create(c *gin.Context) {
	var req asset.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	a, err := h.assetService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Asset created successfully",
		"data":    a,
	})
}

// Get handles GET /assets/:id
func (h *AssetHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	a, err := h.assetService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Asset retrieved successfully",
		"data":    a,
	})
}

// List handles GET /assets
func (h *AssetHandler) List(c *gin.Context) {
	var req asset.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	assets, total, err := h.assetService.List(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Assets retrieved successfully",
		"data":       assets,
		"pagination": paginationMeta(req.Page, req.Limit, total),
	})
}
