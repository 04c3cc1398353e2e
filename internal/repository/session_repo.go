package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepo persists session lifecycle rows. The engine works without
// a database: with a nil pool every call is a no-op. Writes are
// best-effort from the caller's perspective.
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// StartSession records a new session row.
func (r *SessionRepo) StartSession(ctx context.Context, sessionID string) error {
	if r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (session_id) VALUES ($1)
		ON CONFLICT (session_id) DO NOTHING`,
		sessionID)
	return err
}

// EndSession marks a session as ended, flagging abnormal termination.
func (r *SessionRepo) EndSession(ctx context.Context, sessionID string, abnormal bool) error {
	if r.pool == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE sessions SET ended_at = NOW(), abnormal = $2
		WHERE session_id = $1 AND ended_at IS NULL`,
		sessionID, abnormal)
	return err
}
