// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. RequireAuth validates an
// access JWT from the Authorization header and stashes the caller's identity
// in the Gin context ("userID", "userRole") for handlers and downstream
// middleware (rate limiting keys on the user ID when present).
//
// Role checks that matter (admin moderation) are re-verified against the
// database inside the services layer; the role claim here is advisory and only
// used to keep obvious non-admins out of admin routes early.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-swap-backend/internal/auth"
)

// Context keys for the authenticated identity. Exported indirectly through
// accessor helpers; handlers should use UserID / UserRole.
const (
	ctxKeyUserID   = "userID"
	ctxKeyUserRole = "userRole"
)

// UserID returns the authenticated user's ID from the Gin context, or "" when
// the request is unauthenticated.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// UserRole returns the authenticated user's role claim from the Gin context,
// or "" when the request is unauthenticated.
func UserRole(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireAuth returns a Gin middleware that authenticates requests via a
// Bearer access token.
//
// Behavior:
//   - Missing or malformed Authorization header: 401 with a compact JSON body.
//   - Invalid, expired, or wrong-kind token: 401.
//   - Valid token: sets "userID" and "userRole" in the context and proceeds.
func RequireAuth(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing bearer token")
			return
		}

		claims, err := issuer.Validate(token, auth.TokenAccess)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole returns a middleware that rejects authenticated callers whose
// role claim does not match. Install after RequireAuth. This is a cheap
// transport-level gate; authoritative admin checks happen in the services.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "forbidden",
				"message":    "insufficient privileges",
			})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
