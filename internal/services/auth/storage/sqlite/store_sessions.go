package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
)

// PutWebSession persists a durable web session.
func (s *Store) PutWebSession(ctx context.Context, session storage.WebSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	session.ID = strings.TrimSpace(session.ID)
	session.UserID = strings.TrimSpace(session.UserID)
	if session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if session.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	var revokedAt sql.NullInt64
	if session.RevokedAt != nil {
		revokedAt = sql.NullInt64{Int64: toMillis(*session.RevokedAt), Valid: true}
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO web_sessions (id, user_id, created_at, expires_at, revoked_at)
VALUES (?, ?, ?, ?, ?)
`,
		session.ID,
		session.UserID,
		toMillis(session.CreatedAt),
		toMillis(session.ExpiresAt),
		revokedAt,
	)
	if err != nil {
		return fmt.Errorf("put web session: %w", err)
	}
	return nil
}

// GetWebSession fetches a web session by ID.
func (s *Store) GetWebSession(ctx context.Context, sessionID string) (storage.WebSession, error) {
	if err := ctx.Err(); err != nil {
		return storage.WebSession{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.WebSession{}, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return storage.WebSession{}, fmt.Errorf("session id is required")
	}

	var session storage.WebSession
	var createdAt, expiresAt int64
	var revokedAt sql.NullInt64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, user_id, created_at, expires_at, revoked_at FROM web_sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.UserID, &createdAt, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.WebSession{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.WebSession{}, fmt.Errorf("get web session: %w", err)
	}
	session.CreatedAt = fromMillis(createdAt)
	session.ExpiresAt = fromMillis(expiresAt)
	if revokedAt.Valid {
		value := fromMillis(revokedAt.Int64)
		session.RevokedAt = &value
	}
	return session, nil
}

// RevokeWebSession marks a session revoked. Revocation is monotonic: a
// session already revoked keeps its original revocation time.
func (s *Store) RevokeWebSession(ctx context.Context, sessionID string, revokedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE web_sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL",
		toMillis(revokedAt), sessionID,
	)
	if err != nil {
		return fmt.Errorf("revoke web session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke web session rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := s.sqlDB.QueryRowContext(ctx, "SELECT 1 FROM web_sessions WHERE id = ?", sessionID).Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
	}
	return nil
}

// DeleteExpiredWebSessions removes sessions that expired before cutoff.
func (s *Store) DeleteExpiredWebSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM web_sessions WHERE expires_at < ?",
		toMillis(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired web sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired web sessions rows affected: %w", err)
	}
	return affected, nil
}
