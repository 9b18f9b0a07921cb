package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/timeclock"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// WorkforceReader is the read-only store surface the MCP tools consume.
type WorkforceReader interface {
	ListEmployees(ctx context.Context, opts storage.ListOptions) (storage.EmployeePage, error)
	GetEmployee(ctx context.Context, employeeID string) (employee.Employee, error)
	ListShifts(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.Shift, error)
	ListOpenTimeEntries(ctx context.Context) ([]timeclock.Entry, error)
	ListTasks(ctx context.Context, opts storage.ListOptions) (storage.TaskPage, error)
}

// RosterSearchInput selects roster records with an optional filter.
type RosterSearchInput struct {
	Filter   string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. department=\"kitchen\" AND active=true"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"maximum rows to return (default 50)"`
}

// RosterEmployee is one roster row in tool output.
type RosterEmployee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Position   string `json:"position,omitempty"`
	Department string `json:"department,omitempty"`
	Active     bool   `json:"active"`
}

// RosterSearchResult lists matching employees.
type RosterSearchResult struct {
	Employees []RosterEmployee `json:"employees"`
}

// RosterSearchHandler searches the roster with an optional AIP filter.
func RosterSearchHandler(store WorkforceReader) mcp.ToolHandlerFor[RosterSearchInput, RosterSearchResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RosterSearchInput) (*mcp.CallToolResult, RosterSearchResult, error) {
		pageSize := input.PageSize
		if pageSize <= 0 {
			pageSize = 50
		}
		page, err := store.ListEmployees(ctx, storage.ListOptions{Filter: input.Filter, PageSize: pageSize})
		if err != nil {
			return nil, RosterSearchResult{}, fmt.Errorf("list employees: %w", err)
		}
		result := RosterSearchResult{Employees: make([]RosterEmployee, 0, len(page.Employees))}
		for _, e := range page.Employees {
			result.Employees = append(result.Employees, RosterEmployee{
				ID:         e.ID,
				Name:       strings.TrimSpace(e.FirstName + " " + e.LastName),
				Email:      e.Email,
				Position:   e.Position,
				Department: e.Department,
				Active:     e.Active,
			})
		}
		return nil, result, nil
	}
}

// ScheduleWeekInput names the employee and any day inside the wanted week.
type ScheduleWeekInput struct {
	EmployeeID string `json:"employee_id" jsonschema:"roster employee identifier"`
	WeekOf     string `json:"week_of,omitempty" jsonschema:"any date inside the week, YYYY-MM-DD (default: current week)"`
}

// ScheduledShift is one shift row in tool output.
type ScheduledShift struct {
	ID       string `json:"id"`
	StartsAt string `json:"starts_at"`
	EndsAt   string `json:"ends_at"`
	Position string `json:"position,omitempty"`
	Status   string `json:"status"`
	Note     string `json:"note,omitempty"`
}

// ScheduleWeekResult lists one week of shifts in status order.
type ScheduleWeekResult struct {
	EmployeeID string           `json:"employee_id"`
	WeekStart  string           `json:"week_start"`
	Shifts     []ScheduledShift `json:"shifts"`
}

// ScheduleWeekHandler returns the employee's shifts for one week.
func ScheduleWeekHandler(store WorkforceReader, clock func() time.Time) mcp.ToolHandlerFor[ScheduleWeekInput, ScheduleWeekResult] {
	if clock == nil {
		clock = time.Now
	}
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScheduleWeekInput) (*mcp.CallToolResult, ScheduleWeekResult, error) {
		employeeID := strings.TrimSpace(input.EmployeeID)
		if employeeID == "" {
			return nil, ScheduleWeekResult{}, fmt.Errorf("employee_id is required")
		}
		anchor := clock().UTC()
		if strings.TrimSpace(input.WeekOf) != "" {
			parsed, err := time.Parse("2006-01-02", strings.TrimSpace(input.WeekOf))
			if err != nil {
				return nil, ScheduleWeekResult{}, fmt.Errorf("week_of must be YYYY-MM-DD: %w", err)
			}
			anchor = parsed
		}
		weekStart := schedule.WeekOf(anchor)
		shifts, err := store.ListShifts(ctx, employeeID, weekStart, weekStart.AddDate(0, 0, 7))
		if err != nil {
			return nil, ScheduleWeekResult{}, fmt.Errorf("list shifts: %w", err)
		}
		result := ScheduleWeekResult{
			EmployeeID: employeeID,
			WeekStart:  weekStart.Format("2006-01-02"),
			Shifts:     make([]ScheduledShift, 0, len(shifts)),
		}
		for _, s := range shifts {
			result.Shifts = append(result.Shifts, ScheduledShift{
				ID:       s.ID,
				StartsAt: s.StartsAt.UTC().Format(time.RFC3339),
				EndsAt:   s.EndsAt.UTC().Format(time.RFC3339),
				Position: s.Position,
				Status:   string(s.Status),
				Note:     s.Note,
			})
		}
		return nil, result, nil
	}
}

// TimeclockBoardInput has no parameters; the board is always global.
type TimeclockBoardInput struct{}

// OnClockEntry is one live punch-clock row in tool output.
type OnClockEntry struct {
	EntryID      string `json:"entry_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	State        string `json:"state"`
	ClockInAt    string `json:"clock_in_at"`
	Worked       string `json:"worked"`
	Paused       string `json:"paused,omitempty"`
}

// TimeclockBoardResult lists everyone currently on the clock.
type TimeclockBoardResult struct {
	Entries []OnClockEntry `json:"entries"`
}

// TimeclockBoardHandler reports open punch-clock entries with elapsed time.
func TimeclockBoardHandler(store WorkforceReader, clock func() time.Time) mcp.ToolHandlerFor[TimeclockBoardInput, TimeclockBoardResult] {
	if clock == nil {
		clock = time.Now
	}
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ TimeclockBoardInput) (*mcp.CallToolResult, TimeclockBoardResult, error) {
		entries, err := store.ListOpenTimeEntries(ctx)
		if err != nil {
			return nil, TimeclockBoardResult{}, fmt.Errorf("list open entries: %w", err)
		}
		now := clock()
		result := TimeclockBoardResult{Entries: make([]OnClockEntry, 0, len(entries))}
		for _, entry := range entries {
			row := OnClockEntry{
				EntryID:    entry.ID,
				EmployeeID: entry.EmployeeID,
				State:      string(entry.State()),
				ClockInAt:  entry.ClockInAt.UTC().Format(time.RFC3339),
				Worked:     entry.Worked(now).Truncate(time.Second).String(),
			}
			if paused := entry.Paused(now).Truncate(time.Second); paused > 0 {
				row.Paused = paused.String()
			}
			if e, err := store.GetEmployee(ctx, entry.EmployeeID); err == nil {
				row.EmployeeName = strings.TrimSpace(e.FirstName + " " + e.LastName)
			}
			result.Entries = append(result.Entries, row)
		}
		return nil, result, nil
	}
}

// TaskListInput narrows tasks to one status when set.
type TaskListInput struct {
	Status   string `json:"status,omitempty" jsonschema:"task status (open, in_progress, done)"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"maximum rows to return (default 50)"`
}

// TaskRow is one task in tool output.
type TaskRow struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Status             string `json:"status"`
	AssigneeEmployeeID string `json:"assignee_employee_id,omitempty"`
	DueAt              string `json:"due_at,omitempty"`
}

// TaskListResult lists matching tasks.
type TaskListResult struct {
	Tasks []TaskRow `json:"tasks"`
}

// TaskListHandler lists tasks, optionally narrowed to one status.
func TaskListHandler(store WorkforceReader) mcp.ToolHandlerFor[TaskListInput, TaskListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TaskListInput) (*mcp.CallToolResult, TaskListResult, error) {
		pageSize := input.PageSize
		if pageSize <= 0 {
			pageSize = 50
		}
		filter := ""
		if status := strings.TrimSpace(input.Status); status != "" {
			filter = fmt.Sprintf("status=%q", status)
		}
		page, err := store.ListTasks(ctx, storage.ListOptions{Filter: filter, PageSize: pageSize})
		if err != nil {
			return nil, TaskListResult{}, fmt.Errorf("list tasks: %w", err)
		}
		result := TaskListResult{Tasks: make([]TaskRow, 0, len(page.Tasks))}
		for _, t := range page.Tasks {
			row := TaskRow{
				ID:                 t.ID,
				Title:              t.Title,
				Status:             string(t.Status),
				AssigneeEmployeeID: t.AssigneeEmployeeID,
			}
			if t.DueAt != nil {
				row.DueAt = t.DueAt.UTC().Format(time.RFC3339)
			}
			result.Tasks = append(result.Tasks, row)
		}
		return nil, result, nil
	}
}
