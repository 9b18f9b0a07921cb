package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

const shiftColumns = "id, employee_id, starts_at, ends_at, position, status, note, created_at, updated_at"

func scanShift(row rowScanner) (schedule.Shift, error) {
	var sh schedule.Shift
	var status string
	var startsAt, endsAt, createdAt, updatedAt int64
	if err := row.Scan(&sh.ID, &sh.EmployeeID, &startsAt, &endsAt, &sh.Position, &status, &sh.Note, &createdAt, &updatedAt); err != nil {
		return schedule.Shift{}, err
	}
	sh.Status = schedule.Status(status)
	sh.StartsAt = fromMillis(startsAt)
	sh.EndsAt = fromMillis(endsAt)
	sh.CreatedAt = fromMillis(createdAt)
	sh.UpdatedAt = fromMillis(updatedAt)
	return sh, nil
}

// PutShift persists a new scheduled shift.
func (s *Store) PutShift(ctx context.Context, sh schedule.Shift) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(sh.ID) == "" {
		return fmt.Errorf("shift id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO shifts (id, employee_id, starts_at, ends_at, position, status, note, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		sh.ID,
		sh.EmployeeID,
		toMillis(sh.StartsAt),
		toMillis(sh.EndsAt),
		sh.Position,
		string(sh.Status),
		sh.Note,
		toMillis(sh.CreatedAt),
		toMillis(sh.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put shift: %w", err)
	}
	return nil
}

// GetShift fetches a shift by ID.
func (s *Store) GetShift(ctx context.Context, shiftID string) (schedule.Shift, error) {
	if err := ctx.Err(); err != nil {
		return schedule.Shift{}, err
	}
	if err := s.ready(); err != nil {
		return schedule.Shift{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE id = ?", shiftID,
	)
	found, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Shift{}, storage.ErrNotFound
	}
	if err != nil {
		return schedule.Shift{}, fmt.Errorf("get shift: %w", err)
	}
	return found, nil
}

// UpdateShift rewrites an existing shift.
func (s *Store) UpdateShift(ctx context.Context, sh schedule.Shift) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE shifts
SET employee_id = ?, starts_at = ?, ends_at = ?, position = ?, status = ?, note = ?, updated_at = ?
WHERE id = ?
`,
		sh.EmployeeID,
		toMillis(sh.StartsAt),
		toMillis(sh.EndsAt),
		sh.Position,
		string(sh.Status),
		sh.Note,
		toMillis(sh.UpdatedAt),
		sh.ID,
	)
	if err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shift rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListShifts returns shifts overlapping [from, to), optionally scoped
// to one employee, sorted in schedule-overview order.
func (s *Store) ListShifts(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.Shift, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := "SELECT " + shiftColumns + " FROM shifts WHERE starts_at < ? AND ends_at > ?"
	params := []any{toMillis(to), toMillis(from)}
	if strings.TrimSpace(employeeID) != "" {
		query += " AND employee_id = ?"
		params = append(params, employeeID)
	}
	query += " ORDER BY starts_at, id"

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.Shift
	for rows.Next() {
		found, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, found)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}
	schedule.SortShifts(shifts)
	return shifts, nil
}

// DeleteShift removes a shift. Missing rows are not an error.
func (s *Store) DeleteShift(ctx context.Context, shiftID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", shiftID); err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	return nil
}
