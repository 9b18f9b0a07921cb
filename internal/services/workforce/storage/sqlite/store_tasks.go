package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/PedroJIzGar/timelogic/internal/platform/storage/pagination"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/task"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/filter"
)

const taskColumns = "id, title, details, assignee_employee_id, due_at, status, created_at, updated_at"

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var status string
	var dueAt sql.NullInt64
	var createdAt, updatedAt int64
	if err := row.Scan(&t.ID, &t.Title, &t.Details, &t.AssigneeEmployeeID, &dueAt, &status, &createdAt, &updatedAt); err != nil {
		return task.Task{}, err
	}
	t.Status = task.Status(status)
	t.DueAt = optionalTime(dueAt)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

// PutTask persists a new task.
func (s *Store) PutTask(ctx context.Context, t task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO tasks (id, title, details, assignee_employee_id, due_at, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		t.ID,
		t.Title,
		t.Details,
		t.AssigneeEmployeeID,
		optionalMillis(t.DueAt),
		string(t.Status),
		toMillis(t.CreatedAt),
		toMillis(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put task: %w", err)
	}
	return nil
}

// GetTask fetches a task by ID.
func (s *Store) GetTask(ctx context.Context, taskID string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if err := s.ready(); err != nil {
		return task.Task{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", taskID,
	)
	found, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return found, nil
}

// UpdateTask rewrites an existing task.
func (s *Store) UpdateTask(ctx context.Context, t task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE tasks
SET title = ?, details = ?, assignee_employee_id = ?, due_at = ?, status = ?, updated_at = ?
WHERE id = ?
`,
		t.Title,
		t.Details,
		t.AssigneeEmployeeID,
		optionalMillis(t.DueAt),
		string(t.Status),
		toMillis(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListTasks pages tasks ordered by ID, optionally narrowed by an
// AIP-160 filter over status, assignee, title, and due date.
func (s *Store) ListTasks(ctx context.Context, opts storage.ListOptions) (storage.TaskPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.TaskPage{}, err
	}
	if err := s.ready(); err != nil {
		return storage.TaskPage{}, err
	}

	cond, err := filter.Tasks().Parse(opts.Filter)
	if err != nil {
		return storage.TaskPage{}, err
	}

	pageSize := pagination.ClampPageSize(opts.PageSize, listPageSizes)

	afterID, err := decodePageToken(opts.PageToken, opts.Filter)
	if err != nil {
		return storage.TaskPage{}, err
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE id > ?"
	params := []any{afterID}
	if cond.Clause != "" {
		query += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	query += " ORDER BY id LIMIT ?"
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var page storage.TaskPage
	for rows.Next() {
		found, err := scanTask(rows)
		if err != nil {
			return storage.TaskPage{}, fmt.Errorf("scan task: %w", err)
		}
		page.Tasks = append(page.Tasks, found)
	}
	if err := rows.Err(); err != nil {
		return storage.TaskPage{}, fmt.Errorf("iterate tasks: %w", err)
	}
	if len(page.Tasks) > pageSize {
		page.Tasks = page.Tasks[:pageSize]
		last := page.Tasks[len(page.Tasks)-1]
		page.NextPageToken, err = encodePageToken(last.ID, opts.Filter)
		if err != nil {
			return storage.TaskPage{}, err
		}
	}
	return page, nil
}
