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

func putPasswordReset(ctx context.Context, target execContexter, reset storage.PasswordReset) error {
	var usedAt sql.NullInt64
	if reset.UsedAt != nil {
		usedAt = sql.NullInt64{Int64: toMillis(*reset.UsedAt), Valid: true}
	}
	_, err := target.ExecContext(ctx, `
INSERT INTO password_resets (token_id, user_id, created_at, expires_at, used_at)
VALUES (?, ?, ?, ?, ?)
`,
		reset.TokenID,
		reset.UserID,
		toMillis(reset.CreatedAt),
		toMillis(reset.ExpiresAt),
		usedAt,
	)
	return err
}

// PutPasswordReset persists a single-use reset token.
func (s *Store) PutPasswordReset(ctx context.Context, reset storage.PasswordReset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	reset.TokenID = strings.TrimSpace(reset.TokenID)
	reset.UserID = strings.TrimSpace(reset.UserID)
	if reset.TokenID == "" {
		return fmt.Errorf("token id is required")
	}
	if reset.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if err := putPasswordReset(ctx, s.sqlDB, reset); err != nil {
		return fmt.Errorf("put password reset: %w", err)
	}
	return nil
}

// GetPasswordReset fetches a reset token by ID.
func (s *Store) GetPasswordReset(ctx context.Context, tokenID string) (storage.PasswordReset, error) {
	if err := ctx.Err(); err != nil {
		return storage.PasswordReset{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PasswordReset{}, fmt.Errorf("storage is not configured")
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return storage.PasswordReset{}, fmt.Errorf("token id is required")
	}

	var reset storage.PasswordReset
	var createdAt, expiresAt int64
	var usedAt sql.NullInt64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT token_id, user_id, created_at, expires_at, used_at FROM password_resets WHERE token_id = ?",
		tokenID,
	).Scan(&reset.TokenID, &reset.UserID, &createdAt, &expiresAt, &usedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.PasswordReset{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.PasswordReset{}, fmt.Errorf("get password reset: %w", err)
	}
	reset.CreatedAt = fromMillis(createdAt)
	reset.ExpiresAt = fromMillis(expiresAt)
	if usedAt.Valid {
		value := fromMillis(usedAt.Int64)
		reset.UsedAt = &value
	}
	return reset, nil
}

// MarkPasswordResetUsed consumes a reset token exactly once.
func (s *Store) MarkPasswordResetUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return fmt.Errorf("token id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE password_resets SET used_at = ? WHERE token_id = ? AND used_at IS NULL",
		toMillis(usedAt), tokenID,
	)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark password reset used rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteStalePasswordResets removes used tokens and tokens expired before cutoff.
func (s *Store) DeleteStalePasswordResets(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM password_resets WHERE used_at IS NOT NULL OR expires_at < ?",
		toMillis(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale password resets: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete stale password resets rows affected: %w", err)
	}
	return affected, nil
}
