package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/flc-events/backend/pkg/response"
)

// RequireStaffKey guards staff-only routes (pending-user management, reports,
// email logs) behind a shared X-Staff-Key header. An empty configured key
// disables the staff surface entirely rather than leaving it open.
func RequireStaffKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			response.Forbidden(c, "staff API is not enabled")
			c.Abort()
			return
		}
		provided := c.GetHeader("X-Staff-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			response.Forbidden(c, "invalid staff key")
			c.Abort()
			return
		}
		c.Next()
	}
}
