package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/PedroJIzGar/timelogic/internal/platform/storage/pagination"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/filter"
)

const requestColumns = "id, employee_id, kind, starts_at, ends_at, status, note, decided_by, decided_at, created_at, updated_at"

func scanRequest(row rowScanner) (request.Request, error) {
	var r request.Request
	var kind, status string
	var startsAt, endsAt, createdAt, updatedAt int64
	var decidedAt sql.NullInt64
	if err := row.Scan(&r.ID, &r.EmployeeID, &kind, &startsAt, &endsAt, &status, &r.Note, &r.DecidedBy, &decidedAt, &createdAt, &updatedAt); err != nil {
		return request.Request{}, err
	}
	r.Kind = request.Kind(kind)
	r.Status = request.Status(status)
	r.StartsAt = fromMillis(startsAt)
	r.EndsAt = fromMillis(endsAt)
	r.DecidedAt = optionalTime(decidedAt)
	r.CreatedAt = fromMillis(createdAt)
	r.UpdatedAt = fromMillis(updatedAt)
	return r, nil
}

// PutRequest persists a new time-off request.
func (s *Store) PutRequest(ctx context.Context, r request.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("request id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO requests (id, employee_id, kind, starts_at, ends_at, status, note, decided_by, decided_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		r.ID,
		r.EmployeeID,
		string(r.Kind),
		toMillis(r.StartsAt),
		toMillis(r.EndsAt),
		string(r.Status),
		r.Note,
		r.DecidedBy,
		optionalMillis(r.DecidedAt),
		toMillis(r.CreatedAt),
		toMillis(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put request: %w", err)
	}
	return nil
}

// GetRequest fetches a request by ID.
func (s *Store) GetRequest(ctx context.Context, requestID string) (request.Request, error) {
	if err := ctx.Err(); err != nil {
		return request.Request{}, err
	}
	if err := s.ready(); err != nil {
		return request.Request{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE id = ?", requestID,
	)
	found, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return request.Request{}, storage.ErrNotFound
	}
	if err != nil {
		return request.Request{}, fmt.Errorf("get request: %w", err)
	}
	return found, nil
}

// UpdateRequest rewrites an existing request.
func (s *Store) UpdateRequest(ctx context.Context, r request.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE requests
SET employee_id = ?, kind = ?, starts_at = ?, ends_at = ?, status = ?, note = ?, decided_by = ?, decided_at = ?, updated_at = ?
WHERE id = ?
`,
		r.EmployeeID,
		string(r.Kind),
		toMillis(r.StartsAt),
		toMillis(r.EndsAt),
		string(r.Status),
		r.Note,
		r.DecidedBy,
		optionalMillis(r.DecidedAt),
		toMillis(r.UpdatedAt),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListRequests pages requests ordered by ID, optionally narrowed by an
// AIP-160 filter over status, kind, employee, and time range.
func (s *Store) ListRequests(ctx context.Context, opts storage.ListOptions) (storage.RequestPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.RequestPage{}, err
	}
	if err := s.ready(); err != nil {
		return storage.RequestPage{}, err
	}

	cond, err := filter.Requests().Parse(opts.Filter)
	if err != nil {
		return storage.RequestPage{}, err
	}

	pageSize := pagination.ClampPageSize(opts.PageSize, listPageSizes)

	afterID, err := decodePageToken(opts.PageToken, opts.Filter)
	if err != nil {
		return storage.RequestPage{}, err
	}

	query := "SELECT " + requestColumns + " FROM requests WHERE id > ?"
	params := []any{afterID}
	if cond.Clause != "" {
		query += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	query += " ORDER BY id LIMIT ?"
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.RequestPage{}, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var page storage.RequestPage
	for rows.Next() {
		found, err := scanRequest(rows)
		if err != nil {
			return storage.RequestPage{}, fmt.Errorf("scan request: %w", err)
		}
		page.Requests = append(page.Requests, found)
	}
	if err := rows.Err(); err != nil {
		return storage.RequestPage{}, fmt.Errorf("iterate requests: %w", err)
	}
	if len(page.Requests) > pageSize {
		page.Requests = page.Requests[:pageSize]
		last := page.Requests[len(page.Requests)-1]
		page.NextPageToken, err = encodePageToken(last.ID, opts.Filter)
		if err != nil {
			return storage.RequestPage{}, err
		}
	}
	return page, nil
}

// ListPendingRequests returns the manager approval queue, oldest first.
func (s *Store) ListPendingRequests(ctx context.Context) ([]request.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+requestColumns+" FROM requests WHERE status = ? ORDER BY created_at, id",
		string(request.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var pending []request.Request
	for rows.Next() {
		found, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		pending = append(pending, found)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return pending, nil
}
