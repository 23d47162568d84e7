// internal/interfaces/http/handlers/common.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/pkg/apperrors"
)

// respondError maps a service error to its HTTP status and writes the
// standard error envelope.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	body := gin.H{"error": err.Error()}
	if status == http.StatusInternalServerError {
		// Don't leak internals
		body = gin.H{"error": "Internal server error"}
	}
	c.JSON(status, body)
}

// parseUintParam parses a numeric path parameter
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(value), true
}

// paginationMeta builds the standard pagination envelope
func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return gin.H{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
	}
}
