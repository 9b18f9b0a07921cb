package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

// PutUserWithOutboxEvent persists a user and stages its integration event in
// one transaction so the signup event cannot outlive a failed user write.
func (s *Store) PutUserWithOutboxEvent(ctx context.Context, u user.User, event storage.OutboxEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start user transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := putUser(ctx, tx, u); err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	if err := enqueueOutboxEvent(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit user transaction: %w", err)
	}
	return nil
}

// PutPasswordResetWithOutboxEvent persists a reset token and its dispatch
// event atomically.
func (s *Store) PutPasswordResetWithOutboxEvent(ctx context.Context, reset storage.PasswordReset, event storage.OutboxEvent) error {
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

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start reset transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := putPasswordReset(ctx, tx, reset); err != nil {
		return fmt.Errorf("put password reset: %w", err)
	}
	if err := enqueueOutboxEvent(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset transaction: %w", err)
	}
	return nil
}
