// internal/interfaces/http/handlers/assignment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/assignment"
	"github.com/your-org/asset-tracker/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// AssignmentHandler handles assignment lifecycle endpoints
type AssignmentHandler struct {
	assignmentService *assignment.Service
	config            *config.Config
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(db *gorm.DB, cfg *config.Config) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignment.NewService(db, cfg),
		config:            cfg,
	}
}

// Create handles POST /assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req assignment.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	a, err := h.assignmentService.Create(&req, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Equipment assigned and stock debited",
		"data":    a,
	})
}

// Get handles GET /assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	a, err := h.assignmentService.Get(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Assignment retrieved successfully",
		"data":    a,
	})
}

// List handles GET /assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	var req assignment.ListAssignmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	assignments, total, err := h.assignmentService.List(&req, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Assignments retrieved successfully",
		"data":       assignments,
		"pagination": paginationMeta(req.Page, req.Limit, total),
	})
}

// Return handles PUT /assignments/:id/return
func (h *AssignmentHandler) Return(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req assignment.ReturnAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	a, err := h.assignmentService.Return(id, &req, middleware.GetUserID(c), middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Assignment returned and stock restored",
		"data":    a,
	})
}

// MarkLost handles PUT /assignments/:id/lost
func (h *AssignmentHandler) MarkLost(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	a, err := h.assignmentService.MarkLost(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Assignment marked as lost",
		"data":    a,
	})
}

// MarkDamaged handles PUT /assignments/:id/damaged
func (h *AssignmentHandler) MarkDamaged(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	a, err := h.assignmentService.MarkDamaged(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Assignment marked as damaged",
		"data":    a,
	})
}

// MarkExpended handles PUT /assignments/:id/expended
func (h *AssignmentHandler) MarkExpended(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	a, err := h.assignmentService.MarkExpended(id, middleware.GetScope(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Assignment marked as expended",
		"data":    a,
	})
}
