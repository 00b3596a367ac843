package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success responses carry the payload directly; only errors get the
// envelope from Error. Handlers go through these helpers so the
// conventions live in one place.

// JSON writes payload with an explicit status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes payload as a 200 JSON body.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// NoContent finishes a destructive call with an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
