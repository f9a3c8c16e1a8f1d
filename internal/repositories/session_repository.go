package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/backend/internal/auth"
	"github.com/learnhub/backend/internal/db"
)

const (
	upsertSessionSQL = `
        INSERT INTO sessions (refresh_token, user_id, email, expires_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (refresh_token)
        DO UPDATE SET user_id = EXCLUDED.user_id, email = EXCLUDED.email, expires_at = EXCLUDED.expires_at`
	selectSessionSQL = `SELECT refresh_token, user_id, email, expires_at FROM sessions WHERE refresh_token = $1`
	deleteSessionSQL = `DELETE FROM sessions WHERE refresh_token = $1`
)

// PostgresSessionStore keeps refresh sessions in the sessions table. Rows
// disappear with their user through the foreign key cascade.
type PostgresSessionStore struct {
	pool db.Pool
}

func NewPostgresSessionStore(pool db.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

// Save writes session, replacing any row already holding its refresh token.
func (s *PostgresSessionStore) Save(ctx context.Context, session auth.Session) error {
	return s.withConn(ctx, func(conn *pgx.Conn) error {
		if _, err := conn.Exec(ctx, upsertSessionSQL,
			session.RefreshToken, session.UserID, session.Email, session.ExpiresAt.UTC()); err != nil {
			return fmt.Errorf("save session for %s: %w", session.UserID, err)
		}
		return nil
	})
}

// Find returns auth.ErrSessionNotFound for unknown tokens. Expiry is the
// caller's concern.
func (s *PostgresSessionStore) Find(ctx context.Context, refreshToken string) (auth.Session, error) {
	var session auth.Session
	err := s.withConn(ctx, func(conn *pgx.Conn) error {
		err := conn.QueryRow(ctx, selectSessionSQL, refreshToken).
			Scan(&session.RefreshToken, &session.UserID, &session.Email, &session.ExpiresAt)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return auth.ErrSessionNotFound
		case err != nil:
			return fmt.Errorf("load session: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.Session{}, err
	}
	session.ExpiresAt = session.ExpiresAt.UTC()
	return session, nil
}

// Delete revokes a refresh token.
func (s *PostgresSessionStore) Delete(ctx context.Context, refreshToken string) error {
	return s.withConn(ctx, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, deleteSessionSQL, refreshToken)
		if err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return auth.ErrSessionNotFound
		}
		return nil
	})
}

func (s *PostgresSessionStore) withConn(ctx context.Context, fn func(*pgx.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn.Conn())
}

var _ auth.SessionStore = (*PostgresSessionStore)(nil)
