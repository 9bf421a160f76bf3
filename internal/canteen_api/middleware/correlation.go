package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader carries the request id between clients and services.
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey stores the id in the gin context.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID tags each request with an id for tracing a checkout across
// the API, the ledger, and the receipt feed. Caller-supplied ids are kept so
// a terminal can correlate its own retries.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

// GetCorrelationID returns the request's correlation id, or "" when the
// middleware did not run.
func GetCorrelationID(c *gin.Context) string {
	value, ok := c.Get(CorrelationIDKey)
	if !ok {
		return ""
	}
	id, _ := value.(string)
	return id
}
