package requests

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/web/module"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage/storagetest"
)

var testNow = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func testDeps(store *storagetest.Store, viewer module.Viewer) module.Dependencies {
	return module.Dependencies{
		Employees:     store,
		Requests:      store,
		Notifications: store,
		ResolveViewer: func(*http.Request) module.Viewer { return viewer },
		Clock:         func() time.Time { return testNow },
	}
}

func seedRequests(store *storagetest.Store) {
	store.SeedEmployees(employee.Employee{
		ID: "emp-1", UserID: "user-1", FirstName: "Ana", LastName: "García", Active: true,
	})
	store.SeedRequests(request.Request{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Kind:       request.KindVacation,
		StartsAt:   time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		EndsAt:     time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC),
		Status:     request.StatusPending,
		CreatedAt:  testNow.Add(-time.Hour),
	})
}

func postForm(t *testing.T, path, requestID string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if requestID != "" {
		req.SetPathValue("requestID", requestID)
	}
	return req
}

func TestPageScopesOwnRequestsByEmployee(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedRequests(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-1"})}

	rec := httptest.NewRecorder()
	h.handlePage(rec, httptest.NewRequest(http.MethodGet, "/app/requests", nil))

	if got := store.LastRequestList.Filter; !strings.Contains(got, `employee_id="emp-1"`) {
		t.Fatalf("filter = %q", got)
	}
	if strings.Contains(rec.Body.String(), "/decide") {
		t.Fatal("decision queue rendered for a non-manager")
	}
}

func TestPageShowsQueueToManagers(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedRequests(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, Role: "manager"})}

	rec := httptest.NewRecorder()
	h.handlePage(rec, httptest.NewRequest(http.MethodGet, "/app/requests", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "Ana García") {
		t.Fatal("queue row missing employee name")
	}
	if !strings.Contains(body, "/app/requests/req-1/decide") {
		t.Fatal("decide actions missing")
	}
}

func TestCreateStoresPendingRequest(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedRequests(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-1"})}

	form := url.Values{
		"kind":      {"absence"},
		"starts_at": {"2026-03-20"},
		"ends_at":   {"2026-03-20"},
		"note":      {"dentist"},
	}
	rec := httptest.NewRecorder()
	h.handleCreate(rec, postForm(t, "/app/requests", "", form))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	pending, err := store.ListPendingRequests(t.Context())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	var found bool
	for _, req := range pending {
		if req.Kind == request.KindAbsence && req.Note == "dentist" && req.EmployeeID == "emp-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created request missing, got %+v", pending)
	}
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedRequests(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-1"})}

	form := url.Values{
		"kind":      {"vacation"},
		"starts_at": {"2026-03-20"},
		"ends_at":   {"2026-03-19"},
	}
	rec := httptest.NewRecorder()
	h.handleCreate(rec, postForm(t, "/app/requests", "", form))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCreateWithoutEmployeeRecordIsHidden(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true})}

	rec := httptest.NewRecorder()
	h.handleCreate(rec, postForm(t, "/app/requests", "", url.Values{"kind": {"vacation"}}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDecideApprovesAndNotifiesRequester(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedRequests(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, UserID: "user-9", Role: "manager"})}

	rec := httptest.NewRecorder()
	h.handleDecide(rec, postForm(t, "/app/requests/req-1/decide", "req-1", url.Values{"decision": {"approve"}}))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302: %s", rec.Code, rec.Body.String())
	}
	got, err := store.GetRequest(t.Context(), "req-1")
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Status != request.StatusApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}
	if got.DecidedBy != "user-9" {
		t.Fatalf("decided by = %q", got.DecidedBy)
	}
	notes, err := store.ListNotifications(t.Context(), "user-1", 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notes) != 1 || notes[0].Kind != "request_decided" {
		t.Fatalf("notifications = %+v", notes)
	}
}

func TestDecideRequiresManager(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedRequests(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, EmployeeID: "emp-1"})}

	rec := httptest.NewRecorder()
	h.handleDecide(rec, postForm(t, "/app/requests/req-1/decide", "req-1", url.Values{"decision": {"approve"}}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	got, _ := store.GetRequest(t.Context(), "req-1")
	if got.Status != request.StatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
}

func TestDecideRejectsDoubleDecision(t *testing.T) {
	t.Parallel()

	store := storagetest.New()
	seedRequests(store)
	h := handlers{deps: testDeps(store, module.Viewer{SignedIn: true, UserID: "user-9", Role: "manager"})}

	rec := httptest.NewRecorder()
	h.handleDecide(rec, postForm(t, "/app/requests/req-1/decide", "req-1", url.Values{"decision": {"reject"}}))
	if rec.Code != http.StatusFound {
		t.Fatalf("first decision status = %d, want 302", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.handleDecide(rec, postForm(t, "/app/requests/req-1/decide", "req-1", url.Values{"decision": {"approve"}}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("second decision status = %d, want 422", rec.Code)
	}
}
