package schedule

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/storagetest"
)

// A Wednesday; its week anchors to Monday March 2.
var testNow = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func testDeps(store *storagetest.Store, viewer module.Viewer) module.Dependencies {
	return module.Dependencies{
		Employees:     store,
		Shifts:        store,
		ResolveViewer: func(*http.Request) module.Viewer { return viewer },
		Clock:         func() time.Time { return testNow },
	}
}

func seedWeek(store *storagetest.Store) {
	store.SeedEmployees(employee.Employee{ID: "emp-1", FirstName: "Ana", LastName: "García", Active: true})
	store.SeedShifts(schedule.Shift{
		ID:         "shift-1",
		EmployeeID: "emp-1",
		StartsAt:   time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, time.March, 5, 17, 0, 0, 0, time.UTC),
		Status:     schedule.StatusPending,
	})
}

func TestWeekViewGroupsShiftsByDay(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedWeek(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-1"})}

	rec := httptest.NewRecorder()
	h.handleWeek(rec, httptest.NewRequest(http.MethodGet, "/app/schedule", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "Ana García") {
		t.Fatal("shift row missing")
	}
	// Own pending shift carries confirm and decline actions.
	if !strings.Contains(body, "/app/schedule/shifts/shift-1/confirm") {
		t.Fatal("confirm action missing")
	}
	if !strings.Contains(body, "week=2026-02-23") || !strings.Contains(body, "week=2026-03-09") {
		t.Fatalf("week navigation missing: %s", body)
	}
}

func TestWeekViewHidesResponsesForOtherEmployees(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedWeek(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-2"})}

	rec := httptest.NewRecorder()
	h.handleWeek(rec, httptest.NewRequest(http.MethodGet, "/app/schedule", nil))
	if strings.Contains(rec.Body.String(), "/confirm") {
		t.Fatal("confirm action rendered for someone else's shift")
	}
}

func TestCreateShiftRequiresManager(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedWeek(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-1", Role: "employee"})}

	form := url.Values{"employee_id": {"emp-1"}, "starts_at": {"2026-03-06T09:00"}, "ends_at": {"2026-03-06T17:00"}}
	req := httptest.NewRequest(http.MethodPost, "/app/schedule/shifts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.handleCreateShift(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateShiftStoresPendingShift(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedWeek(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, Role: "manager"})}

	form := url.Values{
		"employee_id": {"emp-1"},
		"starts_at":   {"2026-03-06T09:00"},
		"ends_at":     {"2026-03-06T17:00"},
		"note":        {"opening"},
	}
	req := httptest.NewRequest(http.MethodPost, "/app/schedule/shifts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.handleCreateShift(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	shifts, err := store.ListShifts(t.Context(), "emp-1", testNow, testNow.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("list shifts: %v", err)
	}
	var found bool
	for _, s := range shifts {
		if s.Note == "opening" && s.Status == schedule.StatusPending {
			found = true
		}
	}
	if !found {
		t.Fatalf("created shift missing, got %+v", shifts)
	}
}

func TestCreateShiftRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedWeek(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, Role: "manager"})}

	form := url.Values{
		"employee_id": {"emp-1"},
		"starts_at":   {"2026-03-06T17:00"},
		"ends_at":     {"2026-03-06T09:00"},
	}
	req := httptest.NewRequest(http.MethodPost, "/app/schedule/shifts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.handleCreateShift(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestConfirmOwnPendingShift(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedWeek(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-1"})}

	req := httptest.NewRequest(http.MethodPost, "/app/schedule/shifts/shift-1/confirm", nil)
	req.SetPathValue("shiftID", "shift-1")
	rec := httptest.NewRecorder()
	h.handleConfirm(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	shift, err := store.GetShift(t.Context(), "shift-1")
	if err != nil {
		t.Fatalf("get shift: %v", err)
	}
	if shift.Status != schedule.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", shift.Status)
	}
}

func TestDeclineSomeoneElsesShiftIsHidden(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedWeek(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-2"})}

	req := httptest.NewRequest(http.MethodPost, "/app/schedule/shifts/shift-1/decline", nil)
	req.SetPathValue("shiftID", "shift-1")
	rec := httptest.NewRecorder()
	h.handleDecline(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	shift, _ := store.GetShift(t.Context(), "shift-1")
	if shift.Status != schedule.StatusPending {
		t.Fatalf("status = %s, want pending", shift.Status)
	}
}
