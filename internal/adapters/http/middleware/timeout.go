package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/fennin3/tweet-image-bot/internal/adapters/http/dto"
	"github.com/fennin3/tweet-image-bot/internal/platform/logging"
)

// Timeout enforces a per-request deadline. On expiry it cancels the
// request context, answers 503 with the standard error envelope, and logs
// a warning. A handler that ignores context cancellation keeps running in
// its goroutine; only the response is cut short.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		runWithDeadline(c, timeout)
	}
}

// TimeoutWithSkipPaths is Timeout with an exclusion list for endpoints
// that legitimately run long, like media uploads.
func TimeoutWithSkipPaths(timeout time.Duration, skipPaths []string) gin.HandlerFunc {
	skipMap := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skipMap[path] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, skip := skipMap[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		runWithDeadline(c, timeout)
	}
}

// runWithDeadline executes the rest of the chain under a deadline and
// answers for the handler when the deadline wins.
func runWithDeadline(c *gin.Context, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)

	done := make(chan struct{})

	go func() {
		c.Next()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			handleTimeout(c, timeout)
		}
	}
}

// handleTimeout logs the expiry and writes the 503 envelope if the
// handler has not written anything yet.
func handleTimeout(c *gin.Context, timeout time.Duration) {
	ctxLogger := logging.FromContext(c.Request.Context())

	var traceID string
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		traceID = span.SpanContext().TraceID().String()
	}

	ctxLogger.Warn("request timeout",
		slog.String("path", c.Request.URL.Path),
		slog.String("method", c.Request.Method),
		slog.Duration("timeout", timeout),
		slog.String("trace_id", traceID),
	)

	errResp := dto.NewErrorResponse(
		dto.ErrorCodeTimeout,
		"request timeout exceeded",
	)
	if traceID != "" {
		errResp.TraceID = traceID
	}

	if !c.Writer.Written() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errResp)
	} else {
		c.Abort()
	}
}

// SimpleTimeout only attaches a deadline to the request context and lets
// the handler react to ctx.Done() itself. Preferred for context-aware
// handlers since it never races the handler for the response writer.
func SimpleTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
