package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flc-events/backend/pkg/response"
)

const (
	// ContextEmail is the key for the grant's verified email in gin context.
	ContextEmail = "verified_email"
	// ContextSessionID is the key for the grant's session ID in gin context.
	ContextSessionID = "session_id"
)

// GrantChecker resolves a session ID to its verified email. Implemented by
// access.Manager.
type GrantChecker interface {
	Check(ctx context.Context, sessionID string) (string, error)
}

// RequireGrant returns the single enforcement point for grant-gated routes:
// it resolves the bearer session token to a verified email and aborts with
// 401 when no live grant exists. Handlers behind it read the email via
// VerifiedEmail and never re-implement the check.
func RequireGrant(grants GrantChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "access required, please request an access link")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		sessionID := parts[1]
		email, err := grants.Check(c.Request.Context(), sessionID)
		if err != nil {
			response.Unauthorized(c, "access required, please request an access link")
			c.Abort()
			return
		}
		c.Set(ContextEmail, email)
		c.Set(ContextSessionID, sessionID)
		c.Next()
	}
}

// VerifiedEmail returns the grant email set by RequireGrant, or "".
func VerifiedEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

// SessionID returns the session ID set by RequireGrant, or "".
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
