package templates

import (
	"strings"
	"testing"
	"time"
)

var testCopy = map[string]string{
	"nav.dashboard":           "Dashboard",
	"login.title":             "Sign in",
	"login.email":             "Email",
	"tasks.status_open":       "Open",
	"timeclock.state_on":      "On the clock",
	"schedule.status_pending": "Pending",
}

func TestPageWrapsBodyInLayout(t *testing.T) {
	t.Parallel()

	layout := LayoutData{
		Title:     "Sign in | TimeLogic",
		Lang:      "en-US",
		ActiveNav: "dashboard",
		T:         testCopy,
	}
	html, err := Render(Page(layout, "login_page", LoginData{Email: "ana@example.com", T: testCopy}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(html, "<title>Sign in | TimeLogic</title>") {
		t.Fatalf("html = %q, want title", html)
	}
	if !strings.Contains(html, `value="ana@example.com"`) {
		t.Fatal("expected email value in form")
	}
	if !strings.Contains(html, `<html lang="en-US">`) {
		t.Fatal("expected lang attribute")
	}
	if !strings.Contains(html, `<main id="page-main">`) {
		t.Fatal("expected main element for fragment extraction")
	}
}

func TestFragmentRendersContentOnly(t *testing.T) {
	t.Parallel()

	html, err := Render(Fragment("timeclock_elapsed", PunchCard{Elapsed: 90 * time.Second}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.TrimSpace(html) != `<span class="elapsed">00:01:30</span>` {
		t.Fatalf("html = %q", html)
	}
}

func TestMissingCopyFallsBackToKey(t *testing.T) {
	t.Parallel()

	html, err := Render(Fragment("error_page", ErrorData{Status: 404, Message: "nope", HomeURL: "/app", T: nil}))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(html, "error.home") {
		t.Fatalf("html = %q, want key fallback", html)
	}
}

func TestDashboardRendersCardsAndOverview(t *testing.T) {
	t.Parallel()

	data := DashboardData{
		Cards: []KPICard{{Key: "headcount", Label: "Headcount", Value: "12"}},
		Overview: []ShiftRow{{
			EmployeeName: "Ana",
			Status:       "pending",
			StartsAt:     time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
			EndsAt:       time.Date(2026, 3, 9, 17, 0, 0, 0, time.UTC),
		}},
		OverviewURL: "/app/dashboard/overview",
		T:           testCopy,
	}
	html, err := Render(Fragment("dashboard_page", data))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(html, `data-kpi="headcount"`) {
		t.Fatal("expected KPI card")
	}
	if !strings.Contains(html, "Ana") || !strings.Contains(html, "Pending") {
		t.Fatalf("html = %q, want overview row", html)
	}
	if !strings.Contains(html, `hx-trigger="every 60s"`) {
		t.Fatal("expected 60s polling attribute")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	if got := formatDuration(7*time.Hour + 30*time.Minute + 5*time.Second); got != "07:30:05" {
		t.Fatalf("formatDuration() = %q", got)
	}
	if got := formatDuration(-time.Minute); got != "00:00:00" {
		t.Fatalf("formatDuration(negative) = %q", got)
	}
}
