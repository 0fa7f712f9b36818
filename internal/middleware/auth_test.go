package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicehub/api/internal/models"
	"slicehub/api/internal/security"
)

const testSecret = "middleware-test-secret"

type fakeSessions struct {
	active map[string]bool
	err    error
}

func (f *fakeSessions) IsActive(_ context.Context, token string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.active[security.TokenSignature(token)], nil
}

func issueActive(t *testing.T, sessions *fakeSessions, user models.User) string {
	t.Helper()
	token, err := security.IssueToken(testSecret, user)
	require.NoError(t, err)
	sessions.active[security.TokenSignature(token)] = true
	return token
}

func newRig(sessions *fakeSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Authenticate(testSecret, sessions))

	engine.GET("/open", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.GET("/protected", RequireAuth(), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})
	return engine
}

func doGet(engine *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_NoHeaderContinues(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	engine := newRig(sessions)

	rec := doGet(engine, "/open", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_AttachesPrincipal(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Authenticate(testSecret, sessions))

	var got models.Principal
	var attached bool
	engine.GET("/who", func(c *gin.Context) {
		got, attached = PrincipalFrom(c)
		c.Status(http.StatusOK)
	})

	token := issueActive(t, sessions, models.User{
		ID:    "u1",
		Name:  "Diner",
		Email: "d@test.com",
		Roles: []models.RoleAssignment{{Role: models.RoleAdmin}},
	})

	rec := doGet(engine, "/who", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, attached)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, got.HasRole(models.RoleAdmin))
}

func TestAuthenticate_InactiveTokenIsAnonymous(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	engine := newRig(sessions)

	token, err := security.IssueToken(testSecret, models.User{ID: "u1"})
	require.NoError(t, err)
	// never activated

	rec := doGet(engine, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())
}

func TestAuthenticate_BadSignatureIsAnonymous(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	engine := newRig(sessions)

	// Cryptographically invalid token whose signature is marked active:
	// activation alone must not grant a principal.
	token, err := security.IssueToken("some-other-secret", models.User{ID: "u1"})
	require.NoError(t, err)
	sessions.active[security.TokenSignature(token)] = true

	rec := doGet(engine, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MalformedTokenIsAnonymous(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	engine := newRig(sessions)

	rec := doGet(engine, "/protected", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_StoreErrorFailsClosed(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}, err: errors.New("db down")}
	engine := newRig(sessions)

	token, err := security.IssueToken(testSecret, models.User{ID: "u1"})
	require.NoError(t, err)

	rec := doGet(engine, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_AllowsAuthenticated(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	engine := newRig(sessions)

	token := issueActive(t, sessions, models.User{ID: "u9", Roles: []models.RoleAssignment{{Role: models.RoleDiner}}})

	rec := doGet(engine, "/protected", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u9")
}
