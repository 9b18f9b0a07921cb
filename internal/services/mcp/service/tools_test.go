package service

import (
	"testing"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/task"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/timeclock"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/storagetest"
)

var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func testClock() func() time.Time {
	return func() time.Time { return testNow }
}

func seedStore() *storagetest.Store {
	store := storagetest.New()
	store.SeedEmployees(
		employee.Employee{ID: "emp-1", FirstName: "Ana", LastName: "García", Email: "ana@example.com", Department: "kitchen", Active: true},
		employee.Employee{ID: "emp-2", FirstName: "Luis", LastName: "Vega", Email: "luis@example.com", Department: "floor", Active: true},
	)
	return store
}

func TestRosterSearchForwardsFilter(t *testing.T) {
	store := seedStore()
	handler := RosterSearchHandler(store)

	_, result, err := handler(t.Context(), nil, RosterSearchInput{Filter: `department="kitchen"`})
	if err != nil {
		t.Fatalf("roster search: %v", err)
	}
	if store.LastEmployeeList.Filter != `department="kitchen"` {
		t.Fatalf("filter = %q, want department filter", store.LastEmployeeList.Filter)
	}
	if len(result.Employees) == 0 {
		t.Fatal("expected employees in result")
	}
	if result.Employees[0].Name != "Ana García" {
		t.Fatalf("name = %q, want %q", result.Employees[0].Name, "Ana García")
	}
}

func TestScheduleWeekReturnsAnchoredWeek(t *testing.T) {
	store := seedStore()
	store.SeedShifts(schedule.Shift{
		ID:         "shift-1",
		EmployeeID: "emp-1",
		StartsAt:   time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC),
		Status:     schedule.StatusConfirmed,
	})
	handler := ScheduleWeekHandler(store, testClock())

	_, result, err := handler(t.Context(), nil, ScheduleWeekInput{EmployeeID: "emp-1", WeekOf: "2026-03-04"})
	if err != nil {
		t.Fatalf("schedule week: %v", err)
	}
	if result.WeekStart != "2026-03-02" {
		t.Fatalf("week start = %q, want Monday 2026-03-02", result.WeekStart)
	}
	if len(result.Shifts) != 1 {
		t.Fatalf("shifts = %d, want 1", len(result.Shifts))
	}
	if result.Shifts[0].Status != "confirmed" {
		t.Fatalf("status = %q, want confirmed", result.Shifts[0].Status)
	}
}

func TestScheduleWeekRequiresEmployee(t *testing.T) {
	handler := ScheduleWeekHandler(seedStore(), testClock())

	if _, _, err := handler(t.Context(), nil, ScheduleWeekInput{}); err == nil {
		t.Fatal("expected error for missing employee_id")
	}
}

func TestTimeclockBoardReportsElapsed(t *testing.T) {
	store := seedStore()
	store.SeedTimeEntries(timeclock.Entry{
		ID:         "entry-1",
		EmployeeID: "emp-1",
		ClockInAt:  testNow.Add(-90 * time.Minute),
	})
	handler := TimeclockBoardHandler(store, testClock())

	_, result, err := handler(t.Context(), nil, TimeclockBoardInput{})
	if err != nil {
		t.Fatalf("timeclock board: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(result.Entries))
	}
	row := result.Entries[0]
	if row.State != "working" {
		t.Fatalf("state = %q, want working", row.State)
	}
	if row.Worked != "1h30m0s" {
		t.Fatalf("worked = %q, want 1h30m0s", row.Worked)
	}
	if row.EmployeeName != "Ana García" {
		t.Fatalf("employee name = %q, want Ana García", row.EmployeeName)
	}
}

func TestTaskListFiltersByStatus(t *testing.T) {
	store := seedStore()
	store.SeedTasks(
		task.Task{ID: "task-1", Title: "Restock shelves", Status: task.StatusOpen},
		task.Task{ID: "task-2", Title: "Close out register", Status: task.StatusDone},
	)
	handler := TaskListHandler(store)

	_, result, err := handler(t.Context(), nil, TaskListInput{Status: "open"})
	if err != nil {
		t.Fatalf("task list: %v", err)
	}
	if store.LastTaskList.Filter != `status="open"` {
		t.Fatalf("filter = %q, want status filter", store.LastTaskList.Filter)
	}
	if len(result.Tasks) == 0 {
		t.Fatal("expected tasks in result")
	}
}
