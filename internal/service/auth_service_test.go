package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicehub/api/internal/apperr"
	"slicehub/api/internal/config"
	"slicehub/api/internal/models"
	"slicehub/api/internal/repository"
	"slicehub/api/internal/security"
)

const testSecret = "service-test-secret"

type fakeUserStore struct {
	byID map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[string]models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) Update(_ context.Context, id string, name string, email string, passwordHash []byte) (models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if passwordHash != nil {
		user.PasswordHash = passwordHash
	}
	f.byID[id] = user
	return user, nil
}

// fakeSessionStore mirrors the credential store contract: one row per
// signature, insert-or-replace activation, idempotent revocation.
type fakeSessionStore struct {
	rows map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{rows: map[string]string{}}
}

func (f *fakeSessionStore) Activate(_ context.Context, userID string, token string) error {
	signature := security.TokenSignature(token)
	if signature == "" {
		return repository.ErrMalformedToken
	}
	f.rows[signature] = userID
	return nil
}

func (f *fakeSessionStore) Revoke(_ context.Context, token string) error {
	delete(f.rows, security.TokenSignature(token))
	return nil
}

func (f *fakeSessionStore) IsActive(_ context.Context, token string) (bool, error) {
	_, ok := f.rows[security.TokenSignature(token)]
	return ok, nil
}

func newAuthService() (*AuthService, *fakeUserStore, *fakeSessionStore) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	cfg := &config.AppConfig{Security: config.SecurityConfig{JWTSecret: testSecret}}
	return NewAuthService(users, sessions, cfg, zerolog.Nop()), users, sessions
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := newAuthService()

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"no name", RegisterInput{Email: "a@test.com", Password: "pw"}},
		{"no email", RegisterInput{Name: "A", Password: "pw"}},
		{"no password", RegisterInput{Name: "A", Email: "a@test.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, 400, apperr.From(err).Status())
			assert.Equal(t, "name, email, and password are required", apperr.From(err).Message)
		})
	}
}

func TestRegister_DefaultsToDinerRole(t *testing.T) {
	svc, _, sessions := newAuthService()

	result, err := svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@test.com", Password: "pw",
	})
	require.NoError(t, err)

	require.Len(t, result.User.Roles, 1)
	assert.Equal(t, models.RoleDiner, result.User.Roles[0].Role)

	active, err := sessions.IsActive(context.Background(), result.Token)
	require.NoError(t, err)
	assert.True(t, active, "registration must activate the issued token")
}

func TestRegister_ExplicitRolesHonored(t *testing.T) {
	svc, _, _ := newAuthService()

	result, err := svc.Register(context.Background(), RegisterInput{
		Name: "Root", Email: "root@test.com", Password: "pw",
		Roles: []models.RoleAssignment{{Role: models.RoleAdmin}},
	})
	require.NoError(t, err)
	assert.True(t, result.User.HasRole(models.RoleAdmin))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@test.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "B", Email: "a@test.com", Password: "pw2"})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.From(err).Status())
}

func TestLogin_ErrorCollapse(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@test.com", Password: "right"})
	require.NoError(t, err)

	_, unknownErr := svc.Login(context.Background(), "nobody@test.com", "whatever")
	_, mismatchErr := svc.Login(context.Background(), "a@test.com", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, mismatchErr)

	// Unknown email and password mismatch must be indistinguishable.
	assert.Equal(t, 404, apperr.From(unknownErr).Status())
	assert.Equal(t, 404, apperr.From(mismatchErr).Status())
	assert.Equal(t, apperr.From(unknownErr).Message, apperr.From(mismatchErr).Message)
	assert.Equal(t, "unknown user", apperr.From(unknownErr).Message)
}

func TestLogin_IssuesActiveToken(t *testing.T) {
	svc, _, sessions := newAuthService()

	reg, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@test.com", Password: "pw"})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), "a@test.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	active, err := sessions.IsActive(context.Background(), login.Token)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestActivation_Idempotent(t *testing.T) {
	svc, _, sessions := newAuthService()

	result, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@test.com", Password: "pw"})
	require.NoError(t, err)

	// Re-activating the same token must overwrite, not duplicate.
	require.NoError(t, sessions.Activate(context.Background(), result.User.ID, result.Token))
	assert.Len(t, sessions.rows, 1)

	active, err := sessions.IsActive(context.Background(), result.Token)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, sessions := newAuthService()

	result, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@test.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.Token))

	active, err := sessions.IsActive(context.Background(), result.Token)
	require.NoError(t, err)
	assert.False(t, active)

	// Revocation is idempotent.
	require.NoError(t, svc.Logout(context.Background(), result.Token))
}

func TestUpdateUser_ReissuesTokenWithNewClaims(t *testing.T) {
	svc, _, sessions := newAuthService()

	reg, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@test.com", Password: "pw"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(context.Background(), reg.User.ID, UpdateUserInput{Email: "new@test.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@test.com", updated.User.Email)

	claims, err := security.ParseToken(updated.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "new@test.com", claims.Email)

	active, err := sessions.IsActive(context.Background(), updated.Token)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestUpdateUser_Unknown(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.UpdateUser(context.Background(), "missing", UpdateUserInput{Name: "X"})
	require.Error(t, err)
	assert.Equal(t, 404, apperr.From(err).Status())
}
