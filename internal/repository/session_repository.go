package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"slicehub/api/internal/security"
)

// SessionRepository is the credential store backing token revocation. A row
// maps a token signature to its owning user; a token authorizes requests only
// while its signature row exists.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Activate records the token signature as an active session. The upsert makes
// activation idempotent: re-issuing a token with the same signature overwrites
// the existing row instead of failing.
func (r *SessionRepository) Activate(ctx context.Context, userID string, token string) error {
	signature := security.TokenSignature(token)
	if signature == "" {
		return ErrMalformedToken
	}

	const query = `
		INSERT INTO auth_sessions (signature, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (signature)
		DO UPDATE SET user_id = EXCLUDED.user_id
	`
	_, err := r.pool.Exec(ctx, query, signature, userID)
	return err
}

// IsActive reports whether the token's signature is in the active set. A
// malformed token has no signature and is simply not active.
func (r *SessionRepository) IsActive(ctx context.Context, token string) (bool, error) {
	signature := security.TokenSignature(token)
	if signature == "" {
		return false, nil
	}

	const query = `SELECT EXISTS (SELECT 1 FROM auth_sessions WHERE signature = $1)`
	var active bool
	if err := r.pool.QueryRow(ctx, query, signature).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// Revoke deletes the signature row. Revoking an unknown or malformed token is
// not an error.
func (r *SessionRepository) Revoke(ctx context.Context, token string) error {
	signature := security.TokenSignature(token)
	if signature == "" {
		return nil
	}

	const query = `DELETE FROM auth_sessions WHERE signature = $1`
	_, err := r.pool.Exec(ctx, query, signature)
	return err
}

// PruneOrphans removes sessions whose owning user no longer exists. Sessions
// are never pruned by age; logout is the only time-independent invalidation.
func (r *SessionRepository) PruneOrphans(ctx context.Context) (int64, error) {
	const query = `
		DELETE FROM auth_sessions s
		WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.id = s.user_id)
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
