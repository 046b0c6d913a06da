package middleware

import (
	"github.com/gin-gonic/gin"

	"library-backend/internal/shared"
	"library-backend/internal/shared/response"
)

// AdminMiddleware requires the admin role set by AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(shared.ContextRole)
		if !ok || role != shared.RoleAdmin {
			response.Forbidden(c, "Access denied: admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAdmin applies AdminMiddleware only when enabled is true.
func OptionalAdmin(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return AdminMiddleware()
}
