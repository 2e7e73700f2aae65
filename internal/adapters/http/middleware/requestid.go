// Package middleware holds the Gin middleware chain the post service
// mounts in front of its handlers: recovery, ID propagation, logging and
// request deadlines.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fennin3/tweet-image-bot/internal/platform/logging"
)

const (
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"
)

// RequestID takes the X-Request-ID header, minting a UUID v4 when the
// caller sent none, and makes it available on the gin context, the
// response headers and the context logger.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName:      HeaderRequestID,
		contextKey:      ContextKeyRequestID,
		contextEnricher: logging.WithRequestID,
	})
}

// GetRequestID returns the request ID stored by RequestID, or "" when
// the middleware did not run.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}

// MustGetRequestID is GetRequestID with "unknown" as the fallback.
func MustGetRequestID(c *gin.Context) string {
	if id := GetRequestID(c); id != "" {
		return id
	}

	return "unknown"
}
