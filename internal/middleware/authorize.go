package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth is the authentication gate invoked by protected routes. It
// fails with 401 when Authenticate attached no principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		c.Next()
	}
}
