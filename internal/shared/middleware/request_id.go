package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/shared"
)

const HeaderRequestID = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID when it is a UUID, otherwise mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(shared.ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
