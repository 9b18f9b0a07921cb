package timeclock

import (
	"testing"
	"time"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func openEntry(t *testing.T) Entry {
	t.Helper()
	entry, err := SignIn("emp-1", base, nil)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return entry
}

func TestSignInRequiresEmployee(t *testing.T) {
	if _, err := SignIn("  ", base, nil); err == nil {
		t.Fatal("expected error for empty employee")
	}
}

func TestStateTransitions(t *testing.T) {
	entry := openEntry(t)
	if entry.State() != StateWorking {
		t.Fatalf("state = %q, want working", entry.State())
	}
	if err := entry.Pause(base.Add(time.Hour), nil); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if entry.State() != StatePaused {
		t.Fatalf("state = %q, want paused", entry.State())
	}
	if err := entry.Resume(base.Add(90 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if entry.State() != StateWorking {
		t.Fatalf("state = %q, want working", entry.State())
	}
	if err := entry.SignOut(base.Add(2 * time.Hour)); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if entry.State() != StateOff {
		t.Fatalf("state = %q, want off", entry.State())
	}
}

func TestPauseErrors(t *testing.T) {
	entry := openEntry(t)
	if err := entry.Pause(base.Add(time.Minute), nil); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := entry.Pause(base.Add(2*time.Minute), nil); err != ErrAlreadyPaused {
		t.Fatalf("second pause err = %v, want ErrAlreadyPaused", err)
	}
	if err := entry.SignOut(base.Add(time.Hour)); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if err := entry.Pause(base.Add(2*time.Hour), nil); err != ErrNotOn {
		t.Fatalf("pause after sign out err = %v, want ErrNotOn", err)
	}
}

func TestResumeWithoutPause(t *testing.T) {
	entry := openEntry(t)
	if err := entry.Resume(base.Add(time.Minute)); err != ErrNotPaused {
		t.Fatalf("resume err = %v, want ErrNotPaused", err)
	}
}

func TestSignOutTwice(t *testing.T) {
	entry := openEntry(t)
	if err := entry.SignOut(base.Add(time.Hour)); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if err := entry.SignOut(base.Add(2 * time.Hour)); err != ErrNotOn {
		t.Fatalf("second sign out err = %v, want ErrNotOn", err)
	}
}

func TestSignOutClosesOpenPause(t *testing.T) {
	entry := openEntry(t)
	if err := entry.Pause(base.Add(time.Hour), nil); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := entry.SignOut(base.Add(2 * time.Hour)); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if len(entry.Pauses) != 1 || entry.Pauses[0].ResumedAt == nil {
		t.Fatal("expected the open pause to be closed on sign out")
	}
	if got := entry.Worked(base.Add(3 * time.Hour)); got != time.Hour {
		t.Fatalf("worked = %v, want 1h", got)
	}
	if got := entry.Paused(base.Add(3 * time.Hour)); got != time.Hour {
		t.Fatalf("paused = %v, want 1h", got)
	}
}

func TestWorkedSubtractsPauses(t *testing.T) {
	entry := openEntry(t)
	if err := entry.Pause(base.Add(time.Hour), nil); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := entry.Resume(base.Add(90 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	now := base.Add(2 * time.Hour)
	if got := entry.Worked(now); got != 90*time.Minute {
		t.Fatalf("worked = %v, want 90m", got)
	}
	if got := entry.Paused(now); got != 30*time.Minute {
		t.Fatalf("paused = %v, want 30m", got)
	}
}

func TestWorkedNeverNegative(t *testing.T) {
	entry := openEntry(t)
	// Clock skew: the wall clock reads earlier than the punch-in.
	if got := entry.Worked(base.Add(-time.Hour)); got != 0 {
		t.Fatalf("worked = %v, want 0", got)
	}
	if got := entry.Paused(base.Add(-time.Hour)); got != 0 {
		t.Fatalf("paused = %v, want 0", got)
	}
}

func TestOutOfOrderPunchesClamp(t *testing.T) {
	entry := openEntry(t)
	if err := entry.Pause(base.Add(time.Hour), nil); err != nil {
		t.Fatalf("pause: %v", err)
	}
	// Resume arrives with a timestamp before the pause started.
	if err := entry.Resume(base.Add(30 * time.Minute)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got := entry.Paused(base.Add(2 * time.Hour)); got != 0 {
		t.Fatalf("paused = %v, want 0", got)
	}

	// Sign-out before clock-in clamps to the clock-in instant.
	late := openEntry(t)
	if err := late.SignOut(base.Add(-time.Hour)); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if !late.ClockOutAt.Equal(base) {
		t.Fatalf("clock out = %v, want %v", late.ClockOutAt, base)
	}
	if got := late.Worked(base.Add(time.Hour)); got != 0 {
		t.Fatalf("worked = %v, want 0", got)
	}
}
