package timeclock

import (
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/id"
)

// State describes what an employee's punch clock is doing.
type State string

const (
	// StateOff indicates no open entry.
	StateOff State = "off"
	// StateWorking indicates an open entry with no open pause.
	StateWorking State = "working"
	// StatePaused indicates an open entry with an open pause.
	StatePaused State = "paused"
)

var (
	// ErrAlreadyOn indicates a sign-in while an entry is already open.
	ErrAlreadyOn = apperrors.New(apperrors.CodeTimeclockAlreadyOn, "employee is already clocked in")
	// ErrNotOn indicates a punch that needs an open entry.
	ErrNotOn = apperrors.New(apperrors.CodeTimeclockNotOn, "employee is not clocked in")
	// ErrAlreadyPaused indicates a pause while one is already open.
	ErrAlreadyPaused = apperrors.New(apperrors.CodeTimeclockAlreadyPaused, "entry is already paused")
	// ErrNotPaused indicates a resume without an open pause.
	ErrNotPaused = apperrors.New(apperrors.CodeTimeclockNotPaused, "entry is not paused")
)

// Pause is one break inside an entry. ResumedAt is nil while the break
// is still open.
type Pause struct {
	ID        string
	PausedAt  time.Time
	ResumedAt *time.Time
}

// Entry is one clock-in to clock-out span with its pauses.
type Entry struct {
	ID         string
	EmployeeID string
	ClockInAt  time.Time
	ClockOutAt *time.Time
	Pauses     []Pause
}

// SignIn opens a fresh entry for an employee. Callers enforce the
// one-open-entry rule against the store before creating another.
func SignIn(employeeID string, now time.Time, idGenerator func() (string, error)) (Entry, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return Entry{}, apperrors.New(apperrors.CodeScheduleEmployeeRequired, "employee is required")
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	entryID, err := idGenerator()
	if err != nil {
		return Entry{}, apperrors.Wrap(apperrors.CodeUnknown, "generate entry id", err)
	}
	return Entry{
		ID:         entryID,
		EmployeeID: employeeID,
		ClockInAt:  now.UTC(),
	}, nil
}

// State derives the punch-clock state of the entry.
func (e Entry) State() State {
	if e.ClockOutAt != nil {
		return StateOff
	}
	if e.openPause() >= 0 {
		return StatePaused
	}
	return StateWorking
}

// openPause returns the index of the open pause, or -1.
func (e Entry) openPause() int {
	for i := range e.Pauses {
		if e.Pauses[i].ResumedAt == nil {
			return i
		}
	}
	return -1
}

// Pause opens a break on the entry.
func (e *Entry) Pause(now time.Time, idGenerator func() (string, error)) error {
	if e == nil || e.ClockOutAt != nil {
		return ErrNotOn
	}
	if e.openPause() >= 0 {
		return ErrAlreadyPaused
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	pauseID, err := idGenerator()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "generate pause id", err)
	}
	e.Pauses = append(e.Pauses, Pause{ID: pauseID, PausedAt: now.UTC()})
	return nil
}

// Resume closes the open break.
func (e *Entry) Resume(now time.Time) error {
	if e == nil || e.ClockOutAt != nil {
		return ErrNotOn
	}
	open := e.openPause()
	if open < 0 {
		return ErrNotPaused
	}
	resumed := clampAfter(now.UTC(), e.Pauses[open].PausedAt)
	e.Pauses[open].ResumedAt = &resumed
	return nil
}

// SignOut closes any open break, then the entry.
func (e *Entry) SignOut(now time.Time) error {
	if e == nil || e.ClockOutAt != nil {
		return ErrNotOn
	}
	instant := now.UTC()
	if open := e.openPause(); open >= 0 {
		resumed := clampAfter(instant, e.Pauses[open].PausedAt)
		e.Pauses[open].ResumedAt = &resumed
	}
	out := clampAfter(instant, e.ClockInAt)
	e.ClockOutAt = &out
	return nil
}

// Worked returns elapsed wall-clock time minus breaks. Never negative,
// even when punch timestamps arrive out of order.
func (e Entry) Worked(now time.Time) time.Duration {
	end := now.UTC()
	if e.ClockOutAt != nil {
		end = *e.ClockOutAt
	}
	gross := end.Sub(e.ClockInAt)
	if gross < 0 {
		gross = 0
	}
	worked := gross - e.Paused(now)
	if worked < 0 {
		worked = 0
	}
	return worked
}

// Paused returns the total break time of the entry, never negative.
func (e Entry) Paused(now time.Time) time.Duration {
	end := now.UTC()
	if e.ClockOutAt != nil {
		end = *e.ClockOutAt
	}
	var total time.Duration
	for _, pause := range e.Pauses {
		until := end
		if pause.ResumedAt != nil {
			until = *pause.ResumedAt
		}
		if span := until.Sub(pause.PausedAt); span > 0 {
			total += span
		}
	}
	if total < 0 {
		total = 0
	}
	return total
}

func clampAfter(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
