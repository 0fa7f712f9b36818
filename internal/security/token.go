package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"slicehub/api/internal/models"
)

// TokenClaims carries the principal data baked into an issued token. Tokens
// deliberately have no expiry: an issued token stays cryptographically valid
// until its signature is removed from the active-session table.
type TokenClaims struct {
	UserID string                  `json:"uid"`
	Name   string                  `json:"name"`
	Email  string                  `json:"email"`
	Roles  []models.RoleAssignment `json:"roles"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the user. Issuing does not activate
// the token; callers activate the signature separately so login and
// registration control exactly when a token becomes usable.
func IssueToken(secret string, user models.User) (string, error) {
	claims := TokenClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Subject:  user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the token signature and returns its claims.
func ParseToken(tokenStr string, secret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// TokenSignature returns the signature segment of a compact JWT, used as the
// revocation key. A token with fewer than three segments yields "" rather
// than an error; a malformed token is simply never active.
func TokenSignature(tokenStr string) string {
	parts := strings.Split(tokenStr, ".")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}
