package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"slicehub/api/internal/apperr"
	"slicehub/api/internal/config"
	"slicehub/api/internal/ids"
	"slicehub/api/internal/models"
	"slicehub/api/internal/repository"
	"slicehub/api/internal/security"
)

// UserStore is the persistence surface AuthService needs from the user
// repository.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, id string, name string, email string, passwordHash []byte) (models.User, error)
}

// SessionStore is the credential store surface for the token lifecycle.
// Activation is a separate write from issuing so the service controls exactly
// when a token becomes valid.
type SessionStore interface {
	Activate(ctx context.Context, userID string, token string) error
	Revoke(ctx context.Context, token string) error
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// Roles overrides the default diner role; used by startup seeding and
	// admin-created accounts.
	Roles []models.RoleAssignment
}

type AuthResult struct {
	User  models.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return AuthResult{}, apperr.BadRequest("name, email, and password are required")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, apperr.BadRequest("email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []models.RoleAssignment{{Role: models.RoleDiner}}
	}

	user := models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Roles:        roles,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	return s.establishSession(ctx, user)
}

// Login verifies the password and mints a fresh session. Unknown email and
// password mismatch collapse to the same 404 so a caller cannot probe which
// half failed.
func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.NotFound("unknown user")
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, apperr.NotFound("unknown user")
	}

	return s.establishSession(ctx, user)
}

// Logout revokes the token's signature. The token value is dead afterward;
// the user re-authenticates to mint a new session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

type UpdateUserInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateUser persists the changes and re-issues a token bound to the updated
// claims, so the caller's principal stays in sync with the stored identity.
func (s *AuthService) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (AuthResult, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, apperr.NotFound("unknown user")
		}
		return AuthResult{}, err
	}

	var passwordHash []byte
	if input.Password != "" {
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return AuthResult{}, err
		}
		passwordHash = hash
	}

	user, err := s.users.Update(ctx, id, input.Name, strings.TrimSpace(strings.ToLower(input.Email)), passwordHash)
	if err != nil {
		return AuthResult{}, err
	}

	return s.establishSession(ctx, user)
}

// establishSession issues a token and then activates its signature. The two
// steps stay separate: an issued token is worthless until its signature lands
// in the active-session table.
func (s *AuthService) establishSession(ctx context.Context, user models.User) (AuthResult, error) {
	token, err := security.IssueToken(s.cfg.Security.JWTSecret, user)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.sessions.Activate(ctx, user.ID, token); err != nil {
		return AuthResult{}, err
	}

	s.log.Debug().Str("user_id", user.ID).Msg("session established")
	return AuthResult{User: user, Token: token}, nil
}
