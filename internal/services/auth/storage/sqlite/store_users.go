package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
)

const userColumns = "id, email, password_hash, display_name, role, locale, disabled, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	var role string
	var disabled int
	var createdAt, updatedAt int64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &role, &u.Locale, &disabled, &createdAt, &updatedAt); err != nil {
		return user.User{}, err
	}
	u.Role = user.Role(role)
	u.Disabled = disabled != 0
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func putUser(ctx context.Context, target execContexter, u user.User) error {
	disabled := 0
	if u.Disabled {
		disabled = 1
	}
	_, err := target.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, display_name, role, locale, disabled, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		string(u.Role),
		u.Locale,
		disabled,
		toMillis(u.CreatedAt),
		toMillis(u.UpdatedAt),
	)
	return err
}

// PutUser persists a new user record.
func (s *Store) PutUser(ctx context.Context, u user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if err := putUser(ctx, s.sqlDB, u); err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUser fetches a user record by ID.
func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return user.User{}, fmt.Errorf("user id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", userID)
	found, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, storage.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	return found, nil
}

// GetUserByEmail fetches a user record by its unique case-folded email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return user.User{}, fmt.Errorf("storage is not configured")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return user.User{}, fmt.Errorf("email is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	found, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, storage.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return found, nil
}

// UpdateUser rewrites the mutable fields of an existing user.
func (s *Store) UpdateUser(ctx context.Context, u user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	disabled := 0
	if u.Disabled {
		disabled = 1
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE users
SET email = ?, password_hash = ?, display_name = ?, role = ?, locale = ?, disabled = ?, updated_at = ?
WHERE id = ?
`,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		string(u.Role),
		u.Locale,
		disabled,
		toMillis(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListUsers pages user records ordered by ID.
func (s *Store) ListUsers(ctx context.Context, pageSize int, pageToken string) (storage.UserPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	afterID := ""
	if token := strings.TrimSpace(pageToken); token != "" {
		decoded, err := base64.RawURLEncoding.DecodeString(token)
		if err != nil {
			return storage.UserPage{}, fmt.Errorf("decode page token: %w", err)
		}
		afterID = string(decoded)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id > ? ORDER BY id LIMIT ?",
		afterID, pageSize+1,
	)
	if err != nil {
		return storage.UserPage{}, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var page storage.UserPage
	for rows.Next() {
		found, err := scanUser(rows)
		if err != nil {
			return storage.UserPage{}, fmt.Errorf("scan user: %w", err)
		}
		page.Users = append(page.Users, found)
	}
	if err := rows.Err(); err != nil {
		return storage.UserPage{}, fmt.Errorf("iterate users: %w", err)
	}
	if len(page.Users) > pageSize {
		page.Users = page.Users[:pageSize]
		last := page.Users[len(page.Users)-1]
		page.NextPageToken = base64.RawURLEncoding.EncodeToString([]byte(last.ID))
	}
	return page, nil
}
