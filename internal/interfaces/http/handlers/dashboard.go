// internal/interfaces/http/handlers/dashboard.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/dashboard"
	"github.com/your-org/asset-tracker/internal/infrastructure/database/redis"
	"github.com/your-org/asset-tracker/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// DashboardHandler handles command dashboard endpoints
type DashboardHandler struct {
	dashboardService *dashboard.Service
	config           *config.Config
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *gorm.DB, cfg *config.Config, cache *redis.Client) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboard.NewService(db, cfg, cache),
		config:           cfg,
	}
}

// Metrics handles GET /dashboard
func (h *DashboardHandler) Metrics(c *gin.Context) {
	var req dashboard.MetricsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	metrics, err := h.dashboardService.Metrics(c.Request.Context(), &req, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard metrics retrieved successfully",
		"data":    metrics,
	})
}

// NetMovementDetails handles GET /dashboard/net-movement
func (h *DashboardHandler) NetMovementDetails(c *gin.Context) {
	var req dashboard.MetricsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	details, err := h.dashboardService.NetMovementDetails(&req, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Net movement details retrieved successfully",
		"data":    details,
	})
}
