package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docexplainer-backend/internal/shared/telemetry"
	"docexplainer-backend/internal/shared/util"
)

// Logging emits a structured log per request. Client addresses are hashed
// before they reach the log stream.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		reqID := RequestIDFromContext(c)

		sessionID, _ := c.Get("sessionId")
		provenance, _ := c.Get("provenance")

		telemetry.Info("request.complete", map[string]any{
			"request_id":  reqID,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"session_id":  sessionID,
			"provenance":  provenance,
			"origin":      util.HashOriginKey(c.ClientIP()),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
