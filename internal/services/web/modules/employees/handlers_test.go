package employees

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/storagetest"
)

var testNow = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func testDeps(store *storagetest.Store, role string) module.Dependencies {
	return module.Dependencies{
		Employees: store,
		ResolveViewer: func(*http.Request) module.Viewer {
			return module.Viewer{SignedIn: true, UserID: "user-1", Role: role}
		},
		Clock: func() time.Time { return testNow },
	}
}

func postForm(t *testing.T, h http.HandlerFunc, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetPathValue("employeeID", strings.TrimSuffix(strings.TrimPrefix(target, "/app/employees/"), "/edit"))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestListPassesFilterToStore(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	store.SeedEmployees(employee.Employee{ID: "emp-1", FirstName: "Ana", LastName: "García", Active: true})
	h := handlers{deps: testDeps(store, "employee")}

	req := httptest.NewRequest(http.MethodGet, "/app/employees?filter="+url.QueryEscape(`department="kitchen"`), nil)
	rec := httptest.NewRecorder()
	h.handleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := store.LastEmployeeList.Filter; got != `department="kitchen"` {
		t.Fatalf("filter = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Ana García") {
		t.Fatal("roster row missing")
	}
}

func TestListHidesManageActionsFromEmployees(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	h := handlers{deps: testDeps(store, "employee")}

	rec := httptest.NewRecorder()
	h.handleList(rec, httptest.NewRequest(http.MethodGet, "/app/employees", nil))
	if strings.Contains(rec.Body.String(), "/app/employees/new") {
		t.Fatal("new-employee link rendered for a non-manager")
	}
}

func TestNewFormRequiresManager(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	h := handlers{deps: testDeps(store, "employee")}

	rec := httptest.NewRecorder()
	h.handleNewForm(rec, httptest.NewRequest(http.MethodGet, "/app/employees/new", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateEmployee(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	h := handlers{deps: testDeps(store, "manager")}

	rec := postForm(t, h.handleCreate, "/app/employees", url.Values{
		"name":        {"Ana García"},
		"email":       {"ana@example.com"},
		"position":    {"Cook"},
		"department":  {"kitchen"},
		"hourly_rate": {"12.50"},
		"active":      {"1"},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	created, err := store.GetEmployeeByEmail(t.Context(), "ana@example.com")
	if err != nil {
		t.Fatalf("employee not stored: %v", err)
	}
	if created.FirstName != "Ana" || created.LastName != "García" {
		t.Fatalf("name split = %q %q", created.FirstName, created.LastName)
	}
	if !created.HourlyRate.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("rate = %s", created.HourlyRate)
	}
	if got := rec.Header().Get("Location"); !strings.HasPrefix(got, "/app/employees/") {
		t.Fatalf("redirect = %q", got)
	}
}

func TestCreateRejectsBadRateWithFieldError(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	h := handlers{deps: testDeps(store, "manager")}

	rec := postForm(t, h.handleCreate, "/app/employees", url.Values{
		"name":        {"Ana García"},
		"email":       {"ana@example.com"},
		"hourly_rate": {"not-a-number"},
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if _, err := store.GetEmployeeByEmail(t.Context(), "ana@example.com"); err == nil {
		t.Fatal("employee stored despite invalid rate")
	}
}

func TestUpdateEmployeeKeepsIDAndStoresChanges(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	store.SeedEmployees(employee.Employee{
		ID: "emp-1", FirstName: "Ana", LastName: "García",
		Email: "ana@example.com", Active: true,
		HourlyRate: decimal.NewFromInt(10),
	})
	h := handlers{deps: testDeps(store, "manager")}

	rec := postForm(t, h.handleUpdate, "/app/employees/emp-1", url.Values{
		"name":        {"Ana Vega"},
		"email":       {"ana@example.com"},
		"position":    {"Shift lead"},
		"hourly_rate": {"14"},
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	updated, err := store.GetEmployee(t.Context(), "emp-1")
	if err != nil {
		t.Fatalf("get employee: %v", err)
	}
	if updated.LastName != "Vega" || updated.Position != "Shift lead" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Active {
		t.Fatal("unchecked active box should deactivate")
	}
}

func TestDetailShowsRateOnlyToManagers(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	store.SeedEmployees(employee.Employee{
		ID: "emp-1", FirstName: "Ana", LastName: "García",
		Email: "ana@example.com", HourlyRate: decimal.RequireFromString("12.50"), Active: true,
	})

	for role, wantRate := range map[string]bool{"manager": true, "employee": false} {
		h := handlers{deps: testDeps(store, role)}
		req := httptest.NewRequest(http.MethodGet, "/app/employees/emp-1", nil)
		req.SetPathValue("employeeID", "emp-1")
		rec := httptest.NewRecorder()
		h.handleDetail(rec, req)

		if got := strings.Contains(rec.Body.String(), "12.50"); got != wantRate {
			t.Errorf("role %s: rate visible = %v, want %v", role, got, wantRate)
		}
	}
}
