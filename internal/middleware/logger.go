package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/appointment-invites/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags the request context with method, path and a request id
// and logs one line per response. /health is not logged.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		ctx := c.Request.Context()
		ctx = logging.AppendCtx(ctx, slog.String("request_id", requestID))
		ctx = logging.AppendCtx(ctx, slog.String("method", c.Request.Method))
		ctx = logging.AppendCtx(ctx, slog.String("path", c.Request.URL.Path))
		ctx = logging.AppendCtx(ctx, slog.String("remote_addr", c.ClientIP()))
		c.Request = c.Request.WithContext(ctx)

		slog.DebugContext(ctx, "request received")
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		// c.Request may carry attributes added by later middleware.
		ctx = c.Request.Context()
		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request completed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request completed", attrs...)
		default:
			slog.InfoContext(ctx, "request completed", attrs...)
		}
	}
}
