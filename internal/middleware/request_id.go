package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the Gin context key (and header name suffix) under which the
// per-request correlation ID is stored.
const RequestIDKey = "request_id"

// RequestID assigns a correlation ID to each request, honoring an incoming
// X-Request-ID header so upstream proxies can trace through.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
