package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"slicehub/api/internal/models"
	"slicehub/api/internal/security"
)

const principalKey = "principal"

// SessionChecker answers whether a token's signature is in the active set.
type SessionChecker interface {
	IsActive(ctx context.Context, token string) (bool, error)
}

// Authenticate resolves the bearer token into a request-scoped principal.
// It never rejects a request: a missing, revoked, or cryptographically
// invalid token just leaves the request unauthenticated, and route-level
// gates decide whether a principal is required. The revocation check runs
// before signature verification, and nothing caches in front of it, so a
// completed revoke is visible to the very next request.
func Authenticate(secret string, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		active, err := sessions.IsActive(c.Request.Context(), tokenStr)
		if err != nil || !active {
			c.Next()
			return
		}

		claims, err := security.ParseToken(tokenStr, secret)
		if err != nil {
			c.Next()
			return
		}

		c.Set(principalKey, models.Principal{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
			Roles: claims.Roles,
		})
		c.Set("token", tokenStr)
		c.Next()
	}
}

// PrincipalFrom returns the principal attached by Authenticate, if any.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := val.(models.Principal)
	return principal, ok
}

// TokenFrom returns the raw bearer token of the authenticated request.
func TokenFrom(c *gin.Context) string {
	val, exists := c.Get("token")
	if !exists {
		return ""
	}
	token, _ := val.(string)
	return token
}
