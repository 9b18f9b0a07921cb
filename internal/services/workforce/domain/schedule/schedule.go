package schedule

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/id"
)

// Status describes the lifecycle of a shift.
type Status string

const (
	// StatusPending indicates a shift awaiting the employee's answer.
	StatusPending Status = "pending"
	// StatusConfirmed indicates a shift the employee accepted.
	StatusConfirmed Status = "confirmed"
	// StatusDeclined indicates a shift the employee turned down.
	StatusDeclined Status = "declined"
)

var (
	// ErrInvalidRange indicates a shift that ends at or before its start.
	ErrInvalidRange = apperrors.New(apperrors.CodeScheduleInvalidRange, "shift must end after it starts")
	// ErrEmployeeRequired indicates a shift without an employee.
	ErrEmployeeRequired = apperrors.New(apperrors.CodeScheduleEmployeeRequired, "employee is required")
	// ErrInvalidTransition indicates a disallowed shift status change.
	ErrInvalidTransition = apperrors.New(apperrors.CodeScheduleInvalidTransition, "shift status transition is not allowed")
)

// Valid reports whether the status is one of the three known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

// Order ranks statuses for overview sorting: confirmed shifts are
// actionable truth, declined ones are noise at the bottom.
func (s Status) Order() int {
	switch s {
	case StatusConfirmed:
		return 0
	case StatusPending:
		return 1
	case StatusDeclined:
		return 2
	}
	return 3
}

// Shift is one scheduled work block for an employee.
type Shift struct {
	ID         string
	EmployeeID string
	StartsAt   time.Time
	EndsAt     time.Time
	Position   string
	Status     Status
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateShiftInput describes the fields needed to schedule a shift.
type CreateShiftInput struct {
	EmployeeID string
	StartsAt   time.Time
	EndsAt     time.Time
	Position   string
	Note       string
}

// NewShift validates input and builds a pending shift.
func NewShift(input CreateShiftInput, now time.Time, idGenerator func() (string, error)) (Shift, error) {
	employeeID := strings.TrimSpace(input.EmployeeID)
	if employeeID == "" {
		return Shift{}, ErrEmployeeRequired
	}
	if !input.EndsAt.After(input.StartsAt) {
		return Shift{}, ErrInvalidRange
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	shiftID, err := idGenerator()
	if err != nil {
		return Shift{}, apperrors.Wrap(apperrors.CodeUnknown, "generate shift id", err)
	}
	instant := now.UTC()
	return Shift{
		ID:         shiftID,
		EmployeeID: employeeID,
		StartsAt:   input.StartsAt.UTC(),
		EndsAt:     input.EndsAt.UTC(),
		Position:   strings.TrimSpace(input.Position),
		Status:     StatusPending,
		Note:       strings.TrimSpace(input.Note),
		CreatedAt:  instant,
		UpdatedAt:  instant,
	}, nil
}

// Transition moves the shift to next. Only pending shifts move:
// pending→confirmed and pending→declined are the legal edges.
func (s *Shift) Transition(next Status, now time.Time) error {
	if s == nil || !next.Valid() {
		return ErrInvalidTransition
	}
	if s.Status != StatusPending || next == StatusPending {
		return ErrInvalidTransition
	}
	s.Status = next
	s.UpdatedAt = now.UTC()
	return nil
}

// SortShifts orders shifts for overview rendering: status rank, then
// start time, then ID so equal shifts render deterministically.
func SortShifts(shifts []Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if a, b := shifts[i].Status.Order(), shifts[j].Status.Order(); a != b {
			return a < b
		}
		if !shifts[i].StartsAt.Equal(shifts[j].StartsAt) {
			return shifts[i].StartsAt.Before(shifts[j].StartsAt)
		}
		return shifts[i].ID < shifts[j].ID
	})
}

// WeekOf anchors t to its week: Monday 00:00 UTC.
func WeekOf(t time.Time) time.Time {
	t = t.UTC()
	days := (int(t.Weekday()) + 6) % 7
	anchor := t.AddDate(0, 0, -days)
	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
}
