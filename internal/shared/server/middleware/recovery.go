package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"docexplainer-backend/internal/shared/server/respond"
	"docexplainer-backend/internal/shared/telemetry"
)

// Recovery converts handler panics into a logged 500 carrying the
// standard error envelope. respond.Error aborts the chain, so nothing
// downstream runs after a panic.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"panic":      fmt.Sprintf("%v", rec),
				"stack":      string(debug.Stack()),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
		}()
		c.Next()
	}
}
