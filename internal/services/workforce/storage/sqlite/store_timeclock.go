package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/timeclock"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

const timeEntryColumns = "id, employee_id, clock_in_at, clock_out_at"

func scanTimeEntry(row rowScanner) (timeclock.Entry, error) {
	var e timeclock.Entry
	var clockInAt int64
	var clockOutAt sql.NullInt64
	if err := row.Scan(&e.ID, &e.EmployeeID, &clockInAt, &clockOutAt); err != nil {
		return timeclock.Entry{}, err
	}
	e.ClockInAt = fromMillis(clockInAt)
	e.ClockOutAt = optionalTime(clockOutAt)
	return e, nil
}

// PutTimeEntry persists a new punch-clock entry and its pauses. The
// partial unique index on open entries enforces the one-open-entry rule
// at the storage boundary.
func (s *Store) PutTimeEntry(ctx context.Context, entry timeclock.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("time entry id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put time entry: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO time_entries (id, employee_id, clock_in_at, clock_out_at)
VALUES (?, ?, ?, ?)
`,
		entry.ID,
		entry.EmployeeID,
		toMillis(entry.ClockInAt),
		optionalMillis(entry.ClockOutAt),
	); err != nil {
		if isOpenEntryConflict(err) {
			return timeclock.ErrAlreadyOn
		}
		return fmt.Errorf("put time entry: %w", err)
	}
	if err := insertPauses(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put time entry: %w", err)
	}
	return nil
}

// SaveTimeEntry rewrites an entry and replaces its pauses atomically.
func (s *Store) SaveTimeEntry(ctx context.Context, entry timeclock.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save time entry: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
UPDATE time_entries SET employee_id = ?, clock_in_at = ?, clock_out_at = ? WHERE id = ?
`,
		entry.EmployeeID,
		toMillis(entry.ClockInAt),
		optionalMillis(entry.ClockOutAt),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("save time entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save time entry rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM time_entry_pauses WHERE entry_id = ?", entry.ID); err != nil {
		return fmt.Errorf("clear pauses: %w", err)
	}
	if err := insertPauses(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save time entry: %w", err)
	}
	return nil
}

func insertPauses(ctx context.Context, target execContexter, entry timeclock.Entry) error {
	for _, p := range entry.Pauses {
		if _, err := target.ExecContext(ctx, `
INSERT INTO time_entry_pauses (id, entry_id, paused_at, resumed_at)
VALUES (?, ?, ?, ?)
`,
			p.ID,
			entry.ID,
			toMillis(p.PausedAt),
			optionalMillis(p.ResumedAt),
		); err != nil {
			return fmt.Errorf("put pause: %w", err)
		}
	}
	return nil
}

func isOpenEntryConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *Store) loadPauses(ctx context.Context, entries []timeclock.Entry) error {
	for i := range entries {
		rows, err := s.sqlDB.QueryContext(ctx,
			"SELECT id, paused_at, resumed_at FROM time_entry_pauses WHERE entry_id = ? ORDER BY paused_at, id",
			entries[i].ID,
		)
		if err != nil {
			return fmt.Errorf("list pauses: %w", err)
		}
		for rows.Next() {
			var p timeclock.Pause
			var pausedAt int64
			var resumedAt sql.NullInt64
			if err := rows.Scan(&p.ID, &pausedAt, &resumedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scan pause: %w", err)
			}
			p.PausedAt = fromMillis(pausedAt)
			p.ResumedAt = optionalTime(resumedAt)
			entries[i].Pauses = append(entries[i].Pauses, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate pauses: %w", err)
		}
		rows.Close()
	}
	return nil
}

func (s *Store) getTimeEntryWhere(ctx context.Context, where string, args ...any) (timeclock.Entry, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+timeEntryColumns+" FROM time_entries WHERE "+where, args...,
	)
	found, err := scanTimeEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return timeclock.Entry{}, storage.ErrNotFound
	}
	if err != nil {
		return timeclock.Entry{}, fmt.Errorf("get time entry: %w", err)
	}
	entries := []timeclock.Entry{found}
	if err := s.loadPauses(ctx, entries); err != nil {
		return timeclock.Entry{}, err
	}
	return entries[0], nil
}

// GetTimeEntry fetches one entry with its pauses.
func (s *Store) GetTimeEntry(ctx context.Context, entryID string) (timeclock.Entry, error) {
	if err := ctx.Err(); err != nil {
		return timeclock.Entry{}, err
	}
	if err := s.ready(); err != nil {
		return timeclock.Entry{}, err
	}
	return s.getTimeEntryWhere(ctx, "id = ?", entryID)
}

// GetOpenTimeEntry fetches the employee's entry still on the clock.
func (s *Store) GetOpenTimeEntry(ctx context.Context, employeeID string) (timeclock.Entry, error) {
	if err := ctx.Err(); err != nil {
		return timeclock.Entry{}, err
	}
	if err := s.ready(); err != nil {
		return timeclock.Entry{}, err
	}
	return s.getTimeEntryWhere(ctx, "employee_id = ? AND clock_out_at IS NULL", employeeID)
}

func (s *Store) listTimeEntriesWhere(ctx context.Context, where, order string, args ...any) ([]timeclock.Entry, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+timeEntryColumns+" FROM time_entries WHERE "+where+" ORDER BY "+order, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.Entry
	for rows.Next() {
		found, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		entries = append(entries, found)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time entries: %w", err)
	}
	if err := s.loadPauses(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListOpenTimeEntries returns every on-clock entry, oldest clock-in first.
func (s *Store) ListOpenTimeEntries(ctx context.Context) ([]timeclock.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.listTimeEntriesWhere(ctx, "clock_out_at IS NULL", "clock_in_at, id")
}

// ListTimeEntriesInRange returns entries clocked in during [from, to),
// optionally scoped to one employee.
func (s *Store) ListTimeEntriesInRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	where := "clock_in_at >= ? AND clock_in_at < ?"
	args := []any{toMillis(from), toMillis(to)}
	if strings.TrimSpace(employeeID) != "" {
		where += " AND employee_id = ?"
		args = append(args, employeeID)
	}
	return s.listTimeEntriesWhere(ctx, where, "clock_in_at, id", args...)
}
