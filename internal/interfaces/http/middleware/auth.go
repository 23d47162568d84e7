// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/user"
	"github.com/your-org/asset-tracker/internal/pkg/auth"
	"github.com/your-org/asset-tracker/internal/pkg/scope"
)

// AuthMiddleware creates JWT authentication middleware
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// Store user information in context
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Set("assigned_base_id", claims.AssignedBaseID)
		c.Set("scope", scope.ForUser(claims.Role, claims.AssignedBaseID))
		c.Set("token_claims", claims)

		c.Next()
	}
}

// RequireRoles ensures the authenticated user holds one of the given roles
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		current := user.Role(roleValue.(string))
		for _, role := range roles {
			if current == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error": "Insufficient role for this operation",
		})
		c.Abort()
	}
}

// AdminMiddleware ensures the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RequireRoles(user.RoleAdmin)
}

// GetScope returns the caller's base scope stored by AuthMiddleware
func GetScope(c *gin.Context) scope.Scope {
	if v, exists := c.Get("scope"); exists {
		if sc, ok := v.(scope.Scope); ok {
			return sc
		}
	}
	return scope.None()
}

// GetUserID returns the authenticated user's ID from the context
func GetUserID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
