package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/PedroJIzGar/timelogic/internal/platform/storage/pagination"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/cursor"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/filter"
)

const employeeColumns = "id, user_id, first_name, last_name, email, position, department, hourly_rate, active, created_at, updated_at"

// listPageSizes bounds every keyset list in the store.
var listPageSizes = pagination.PageSizeConfig{Default: 50, Max: 200}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var e employee.Employee
	var rate string
	var active int
	var createdAt, updatedAt int64
	if err := row.Scan(&e.ID, &e.UserID, &e.FirstName, &e.LastName, &e.Email, &e.Position, &e.Department, &rate, &active, &createdAt, &updatedAt); err != nil {
		return employee.Employee{}, err
	}
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("parse hourly rate: %w", err)
	}
	e.HourlyRate = parsed
	e.Active = active != 0
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	return e, nil
}

// PutEmployee persists a new roster member.
func (s *Store) PutEmployee(ctx context.Context, e employee.Employee) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("employee id is required")
	}
	active := 0
	if e.Active {
		active = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO employees (id, user_id, first_name, last_name, email, position, department, hourly_rate, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		e.ID,
		e.UserID,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Position,
		e.Department,
		e.HourlyRate.String(),
		active,
		toMillis(e.CreatedAt),
		toMillis(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put employee: %w", err)
	}
	return nil
}

func (s *Store) getEmployeeBy(ctx context.Context, column, value string) (employee.Employee, error) {
	if err := ctx.Err(); err != nil {
		return employee.Employee{}, err
	}
	if err := s.ready(); err != nil {
		return employee.Employee{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE "+column+" = ?", value,
	)
	found, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return employee.Employee{}, storage.ErrNotFound
	}
	if err != nil {
		return employee.Employee{}, fmt.Errorf("get employee by %s: %w", column, err)
	}
	return found, nil
}

// GetEmployee fetches a roster member by ID.
func (s *Store) GetEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	return s.getEmployeeBy(ctx, "id", employeeID)
}

// GetEmployeeByEmail fetches a roster member by normalized email.
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (employee.Employee, error) {
	return s.getEmployeeBy(ctx, "email", email)
}

// GetEmployeeByUserID fetches the roster member linked to an auth user.
func (s *Store) GetEmployeeByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	if strings.TrimSpace(userID) == "" {
		return employee.Employee{}, storage.ErrNotFound
	}
	return s.getEmployeeBy(ctx, "user_id", userID)
}

// UpdateEmployee rewrites an existing roster member.
func (s *Store) UpdateEmployee(ctx context.Context, e employee.Employee) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	active := 0
	if e.Active {
		active = 1
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE employees
SET user_id = ?, first_name = ?, last_name = ?, email = ?, position = ?, department = ?, hourly_rate = ?, active = ?, updated_at = ?
WHERE id = ?
`,
		e.UserID,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Position,
		e.Department,
		e.HourlyRate.String(),
		active,
		toMillis(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update employee rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListEmployees pages roster members ordered by ID, optionally narrowed
// by an AIP-160 filter.
func (s *Store) ListEmployees(ctx context.Context, opts storage.ListOptions) (storage.EmployeePage, error) {
	if err := ctx.Err(); err != nil {
		return storage.EmployeePage{}, err
	}
	if err := s.ready(); err != nil {
		return storage.EmployeePage{}, err
	}

	cond, err := filter.Employees().Parse(opts.Filter)
	if err != nil {
		return storage.EmployeePage{}, err
	}

	pageSize := pagination.ClampPageSize(opts.PageSize, listPageSizes)

	afterID, err := decodePageToken(opts.PageToken, opts.Filter)
	if err != nil {
		return storage.EmployeePage{}, err
	}

	query := "SELECT " + employeeColumns + " FROM employees WHERE id > ?"
	params := []any{afterID}
	if cond.Clause != "" {
		query += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	query += " ORDER BY id LIMIT ?"
	params = append(params, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.EmployeePage{}, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var page storage.EmployeePage
	for rows.Next() {
		found, err := scanEmployee(rows)
		if err != nil {
			return storage.EmployeePage{}, fmt.Errorf("scan employee: %w", err)
		}
		page.Employees = append(page.Employees, found)
	}
	if err := rows.Err(); err != nil {
		return storage.EmployeePage{}, fmt.Errorf("iterate employees: %w", err)
	}
	if len(page.Employees) > pageSize {
		page.Employees = page.Employees[:pageSize]
		last := page.Employees[len(page.Employees)-1]
		page.NextPageToken, err = encodePageToken(last.ID, opts.Filter)
		if err != nil {
			return storage.EmployeePage{}, err
		}
	}
	return page, nil
}

// decodePageToken resolves an opaque cursor into the row key to resume
// after, rejecting tokens minted under a different filter.
func decodePageToken(token, currentFilter string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", nil
	}
	c, err := cursor.Decode(trimmed)
	if err != nil {
		return "", fmt.Errorf("decode page token: %w", err)
	}
	if err := cursor.ValidateFilter(c, currentFilter); err != nil {
		return "", fmt.Errorf("validate page token: %w", err)
	}
	return c.Key, nil
}

func encodePageToken(lastKey, currentFilter string) (string, error) {
	token, err := cursor.Encode(cursor.New(lastKey, currentFilter))
	if err != nil {
		return "", fmt.Errorf("encode page token: %w", err)
	}
	return token, nil
}
