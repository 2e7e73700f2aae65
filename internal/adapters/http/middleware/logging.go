package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fennin3/tweet-image-bot/internal/platform/logging"
)

// Logging returns middleware that writes a start and completion entry for
// every request, enriched with the request and correlation IDs from the
// context. Health endpoints under /-/ are skipped so liveness probes do
// not flood the logs.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/-/") {
			c.Next()
			return
		}

		logRequest(c)
	}
}

// LoggingWithSkipPaths is Logging with extra exact-match paths to skip on
// top of the /-/ prefix.
func LoggingWithSkipPaths(logger *slog.Logger, skipPaths []string) gin.HandlerFunc {
	skipMap := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skipMap[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if _, skip := skipMap[path]; skip {
			c.Next()
			return
		}

		if strings.HasPrefix(path, "/-/") {
			c.Next()
			return
		}

		logRequest(c)
	}
}

// logRequest runs the rest of the chain between a start and a completion
// log entry.
func logRequest(c *gin.Context) {
	start := time.Now()

	path := c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		path = path + "?" + c.Request.URL.RawQuery
	}

	ctxLogger := logging.FromContext(c.Request.Context())

	ctxLogger.Info("request started",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.String("client_ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
	)

	c.Next()

	latency := time.Since(start)
	status := c.Writer.Status()

	ctxLogger.Log(c.Request.Context(), levelForStatus(status), "request completed",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("latency", latency),
		slog.Int64("latency_ms", latency.Milliseconds()),
		slog.Int("bytes", c.Writer.Size()),
	)
}

// levelForStatus maps 5xx to error and 4xx to warn.
func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
