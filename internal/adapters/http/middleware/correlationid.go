package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fennin3/tweet-image-bot/internal/platform/logging"
)

const (
	// A correlation ID spans a whole transaction, so a scheduler that
	// triggers a post can tie our logs to its own run.
	HeaderCorrelationID     = "X-Correlation-ID"
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID propagates the X-Correlation-ID header, minting a UUID
// v4 when this service is the transaction origin, and exposes it on the
// gin context, the response headers and the context logger.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName:      HeaderCorrelationID,
		contextKey:      ContextKeyCorrelationID,
		contextEnricher: logging.WithCorrelationID,
	})
}

// GetCorrelationID returns the correlation ID stored by CorrelationID,
// or "" when the middleware did not run.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}

// MustGetCorrelationID is GetCorrelationID with "unknown" as the
// fallback.
func MustGetCorrelationID(c *gin.Context) string {
	if id := GetCorrelationID(c); id != "" {
		return id
	}

	return "unknown"
}
