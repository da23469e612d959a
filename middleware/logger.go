package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"mediahub/chat-center/utils"
)

// Logger logs every request with method, path, status and latency. When the
// RequestID middleware runs earlier in the chain, the entry is scoped to
// that request ID.
func Logger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		l := logger
		if requestID := c.GetString("requestID"); requestID != "" {
			l = logger.With("request_id", requestID)
		}

		l.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client", c.ClientIP(),
		)
	}
}
