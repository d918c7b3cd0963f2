package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Request ID plumbing: every request carries an ID for log correlation.
const (
	// RequestIDKey is the Gin context key the request ID is stored under.
	RequestIDKey = "requestID"
	// RequestIDHeader is the header the ID is read from and echoed to.
	RequestIDHeader = "X-Request-ID"
)

// RequestID returns middleware that adopts the caller-provided request ID or
// generates a fresh one, stores it in the context and echoes it in the
// response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)

		c.Next()
	}
}
