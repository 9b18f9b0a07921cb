package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/platform/storage/pagination"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// PutNotification inserts an in-app notification. Rows carrying an
// already-seen dedupe key are dropped silently so event redelivery stays
// idempotent.
func (s *Store) PutNotification(ctx context.Context, n storage.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(n.ID) == "" {
		return fmt.Errorf("notification id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO notifications (id, user_id, kind, title, body, dedupe_key, created_at, read_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (dedupe_key) WHERE dedupe_key <> '' DO NOTHING
`,
		n.ID,
		n.UserID,
		n.Kind,
		n.Title,
		n.Body,
		n.DedupeKey,
		toMillis(n.CreatedAt),
		optionalMillis(n.ReadAt),
	)
	if err != nil {
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]storage.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	limit = pagination.ClampPageSize(limit, listPageSizes)
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, user_id, kind, title, body, dedupe_key, created_at, read_at
FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []storage.Notification
	for rows.Next() {
		var n storage.Notification
		var createdAt int64
		var readAt sql.NullInt64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.DedupeKey, &createdAt, &readAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.CreatedAt = fromMillis(createdAt)
		n.ReadAt = optionalTime(readAt)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead stamps a notification as read. Already-read rows
// keep their original timestamp.
func (s *Store) MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"UPDATE notifications SET read_at = ? WHERE id = ? AND read_at IS NULL",
		toMillis(readAt), notificationID,
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("mark notification rows: %w", err)
	}
	return nil
}

// CountUnreadNotifications returns the badge count for a user.
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	var count int64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read_at IS NULL",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
