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

const outboxColumns = `id, event_type, payload_json, dedupe_key, status, attempt_count,
next_attempt_at, lease_owner, lease_expires_at, last_error, processed_at, created_at, updated_at`

func scanOutboxEvent(row rowScanner) (storage.OutboxEvent, error) {
	var event storage.OutboxEvent
	var nextAttemptAt, createdAt, updatedAt int64
	var leaseExpiresAt, processedAt sql.NullInt64
	if err := row.Scan(
		&event.ID,
		&event.EventType,
		&event.PayloadJSON,
		&event.DedupeKey,
		&event.Status,
		&event.AttemptCount,
		&nextAttemptAt,
		&event.LeaseOwner,
		&leaseExpiresAt,
		&event.LastError,
		&processedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.OutboxEvent{}, err
	}
	event.NextAttemptAt = fromMillis(nextAttemptAt)
	event.CreatedAt = fromMillis(createdAt)
	event.UpdatedAt = fromMillis(updatedAt)
	if leaseExpiresAt.Valid {
		value := fromMillis(leaseExpiresAt.Int64)
		event.LeaseExpiresAt = &value
	}
	if processedAt.Valid {
		value := fromMillis(processedAt.Int64)
		event.ProcessedAt = &value
	}
	return event, nil
}

func normalizeOutboxEvent(event storage.OutboxEvent) (storage.OutboxEvent, error) {
	event.ID = strings.TrimSpace(event.ID)
	event.EventType = strings.TrimSpace(event.EventType)
	event.PayloadJSON = strings.TrimSpace(event.PayloadJSON)
	event.DedupeKey = strings.TrimSpace(event.DedupeKey)
	event.Status = strings.TrimSpace(event.Status)
	event.LeaseOwner = strings.TrimSpace(event.LeaseOwner)
	event.LastError = strings.TrimSpace(event.LastError)
	if event.ID == "" {
		return storage.OutboxEvent{}, fmt.Errorf("event id is required")
	}
	if event.EventType == "" {
		return storage.OutboxEvent{}, fmt.Errorf("event type is required")
	}
	if event.PayloadJSON == "" {
		event.PayloadJSON = "{}"
	}
	if event.Status == "" {
		event.Status = storage.OutboxStatusPending
	}
	if event.AttemptCount < 0 {
		return storage.OutboxEvent{}, fmt.Errorf("attempt count must be greater than or equal to zero")
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = event.CreatedAt
	}
	if event.NextAttemptAt.IsZero() {
		event.NextAttemptAt = event.CreatedAt
	}
	return event, nil
}

func enqueueOutboxEvent(ctx context.Context, target execContexter, event storage.OutboxEvent) error {
	normalized, err := normalizeOutboxEvent(event)
	if err != nil {
		return err
	}

	var leaseExpiresAt sql.NullInt64
	if normalized.LeaseExpiresAt != nil {
		leaseExpiresAt = sql.NullInt64{Int64: toMillis(*normalized.LeaseExpiresAt), Valid: true}
	}
	var processedAt sql.NullInt64
	if normalized.ProcessedAt != nil {
		processedAt = sql.NullInt64{Int64: toMillis(*normalized.ProcessedAt), Valid: true}
	}

	_, err = target.ExecContext(ctx, `
INSERT INTO auth_outbox (
	id,
	event_type,
	payload_json,
	dedupe_key,
	status,
	attempt_count,
	next_attempt_at,
	lease_owner,
	lease_expires_at,
	last_error,
	processed_at,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(dedupe_key) WHERE dedupe_key <> '' DO NOTHING
`,
		normalized.ID,
		normalized.EventType,
		normalized.PayloadJSON,
		normalized.DedupeKey,
		normalized.Status,
		normalized.AttemptCount,
		toMillis(normalized.NextAttemptAt),
		normalized.LeaseOwner,
		leaseExpiresAt,
		normalized.LastError,
		processedAt,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}
	return nil
}

// EnqueueOutboxEvent stages an integration event for dispatch.
func (s *Store) EnqueueOutboxEvent(ctx context.Context, event storage.OutboxEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return enqueueOutboxEvent(ctx, s.sqlDB, event)
}

// LeaseOutboxEvents leases due outbox events for one worker. A row is due
// when it is pending and its next attempt time has passed, or when a prior
// lease expired without resolution.
func (s *Store) LeaseOutboxEvents(ctx context.Context, owner string, limit int, leaseTTL time.Duration, now time.Time) ([]storage.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, fmt.Errorf("lease owner is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if leaseTTL <= 0 {
		return nil, fmt.Errorf("lease ttl must be greater than zero")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC()
	leaseExpiresAt := now.Add(leaseTTL)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("start lease transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	dueClause := `
	(status = ? AND next_attempt_at <= ?)
	OR
	(status = ? AND lease_expires_at IS NOT NULL AND lease_expires_at <= ?)
`
	dueArgs := []any{
		storage.OutboxStatusPending, toMillis(now),
		storage.OutboxStatusLeased, toMillis(now),
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM auth_outbox WHERE ("+dueClause+") ORDER BY next_attempt_at, created_at, id LIMIT ?",
		append(append([]any{}, dueArgs...), limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("select lease candidates: %w", err)
	}
	candidateIDs := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan lease candidate: %w", scanErr)
		}
		candidateIDs = append(candidateIDs, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate lease candidates: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close lease candidates: %w", err)
	}
	if len(candidateIDs) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit empty lease transaction: %w", err)
		}
		return []storage.OutboxEvent{}, nil
	}

	leased := make([]storage.OutboxEvent, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		result, updateErr := tx.ExecContext(ctx,
			"UPDATE auth_outbox SET status = ?, lease_owner = ?, lease_expires_at = ?, updated_at = ? WHERE id = ? AND ("+dueClause+")",
			append([]any{
				storage.OutboxStatusLeased, owner, toMillis(leaseExpiresAt), toMillis(now), id,
			}, dueArgs...)...,
		)
		if updateErr != nil {
			return nil, fmt.Errorf("lease outbox event %s: %w", id, updateErr)
		}
		rowsAffected, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			return nil, fmt.Errorf("lease rows affected for %s: %w", id, rowsErr)
		}
		if rowsAffected == 0 {
			continue
		}

		row := tx.QueryRowContext(ctx, "SELECT "+outboxColumns+" FROM auth_outbox WHERE id = ?", id)
		event, scanErr := scanOutboxEvent(row)
		if scanErr != nil {
			return nil, fmt.Errorf("load leased event %s: %w", id, scanErr)
		}
		leased = append(leased, event)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lease transaction: %w", err)
	}
	return leased, nil
}

// MarkOutboxEventDispatched finalizes a successfully handled event.
func (s *Store) MarkOutboxEventDispatched(ctx context.Context, eventID string, processedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE auth_outbox
SET status = ?, processed_at = ?, lease_owner = '', lease_expires_at = NULL, updated_at = ?
WHERE id = ?
`,
		storage.OutboxStatusDispatched,
		toMillis(processedAt),
		toMillis(processedAt),
		eventID,
	)
	if err != nil {
		return fmt.Errorf("mark outbox event dispatched: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark dispatched rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkOutboxEventFailed records a failed attempt. Transient failures go back
// to pending for the retry at nextAttemptAt; permanent failures park the
// event in the failed state.
func (s *Store) MarkOutboxEventFailed(ctx context.Context, eventID string, lastError string, nextAttemptAt time.Time, permanent bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return fmt.Errorf("event id is required")
	}
	status := storage.OutboxStatusPending
	if permanent {
		status = storage.OutboxStatusFailed
	}
	now := time.Now().UTC()
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE auth_outbox
SET status = ?, attempt_count = attempt_count + 1, next_attempt_at = ?,
	lease_owner = '', lease_expires_at = NULL, last_error = ?, updated_at = ?
WHERE id = ?
`,
		status,
		toMillis(nextAttemptAt),
		strings.TrimSpace(lastError),
		toMillis(now),
		eventID,
	)
	if err != nil {
		return fmt.Errorf("mark outbox event failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark failed rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteDispatchedOutboxEvents prunes dispatched rows processed before cutoff.
func (s *Store) DeleteDispatchedOutboxEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM auth_outbox WHERE status = ? AND processed_at IS NOT NULL AND processed_at < ?",
		storage.OutboxStatusDispatched, toMillis(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete dispatched outbox events: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete dispatched rows affected: %w", err)
	}
	return affected, nil
}

// GetOutboxEvent returns one outbox event by ID.
func (s *Store) GetOutboxEvent(ctx context.Context, id string) (storage.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return storage.OutboxEvent{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.OutboxEvent{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.OutboxEvent{}, fmt.Errorf("event id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+outboxColumns+" FROM auth_outbox WHERE id = ?", id)
	event, err := scanOutboxEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.OutboxEvent{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.OutboxEvent{}, fmt.Errorf("get outbox event: %w", err)
	}
	return event, nil
}
