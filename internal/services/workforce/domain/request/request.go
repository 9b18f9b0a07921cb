package request

import (
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/id"
)

// Kind classifies what an employee is asking for.
type Kind string

const (
	// KindVacation is paid time off.
	KindVacation Kind = "vacation"
	// KindAbsence is unplanned time away, such as sick leave.
	KindAbsence Kind = "absence"
	// KindSwap asks to trade a shift with a coworker.
	KindSwap Kind = "swap"
)

// Status describes where a request sits in the approval flow.
type Status string

const (
	// StatusPending indicates a request awaiting a manager's decision.
	StatusPending Status = "pending"
	// StatusApproved indicates a granted request.
	StatusApproved Status = "approved"
	// StatusRejected indicates a denied request.
	StatusRejected Status = "rejected"
)

var (
	// ErrInvalidKind indicates an unknown request kind.
	ErrInvalidKind = apperrors.New(apperrors.CodeRequestInvalidKind, "request kind is not valid")
	// ErrInvalidRange indicates a request that ends before its start.
	ErrInvalidRange = apperrors.New(apperrors.CodeRequestInvalidRange, "request must end at or after its start")
	// ErrEmployeeRequired indicates a request without an employee.
	ErrEmployeeRequired = apperrors.New(apperrors.CodeScheduleEmployeeRequired, "employee is required")
	// ErrInvalidTransition indicates a decision on a request that is not pending.
	ErrInvalidTransition = apperrors.New(apperrors.CodeRequestInvalidTransition, "request status transition is not allowed")
)

// Valid reports whether the kind is one of the three known values.
func (k Kind) Valid() bool {
	switch k {
	case KindVacation, KindAbsence, KindSwap:
		return true
	}
	return false
}

// Valid reports whether the status is one of the three known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request is an employee's petition for time off or a shift change.
type Request struct {
	ID         string
	EmployeeID string
	Kind       Kind
	StartsAt   time.Time
	EndsAt     time.Time
	Status     Status
	Note       string
	DecidedBy  string
	DecidedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateRequestInput describes the fields needed to file a request.
type CreateRequestInput struct {
	EmployeeID string
	Kind       Kind
	StartsAt   time.Time
	EndsAt     time.Time
	Note       string
}

// New validates input and builds a pending request. Single-day requests
// with EndsAt equal to StartsAt are allowed.
func New(input CreateRequestInput, now time.Time, idGenerator func() (string, error)) (Request, error) {
	employeeID := strings.TrimSpace(input.EmployeeID)
	if employeeID == "" {
		return Request{}, ErrEmployeeRequired
	}
	if !input.Kind.Valid() {
		return Request{}, ErrInvalidKind
	}
	if input.EndsAt.Before(input.StartsAt) {
		return Request{}, ErrInvalidRange
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	requestID, err := idGenerator()
	if err != nil {
		return Request{}, apperrors.Wrap(apperrors.CodeUnknown, "generate request id", err)
	}
	instant := now.UTC()
	return Request{
		ID:         requestID,
		EmployeeID: employeeID,
		Kind:       input.Kind,
		StartsAt:   input.StartsAt.UTC(),
		EndsAt:     input.EndsAt.UTC(),
		Status:     StatusPending,
		Note:       strings.TrimSpace(input.Note),
		CreatedAt:  instant,
		UpdatedAt:  instant,
	}, nil
}

// Approve grants a pending request, recording who decided.
func (r *Request) Approve(deciderID string, now time.Time) error {
	return r.decide(StatusApproved, deciderID, now)
}

// Reject denies a pending request, recording who decided.
func (r *Request) Reject(deciderID string, now time.Time) error {
	return r.decide(StatusRejected, deciderID, now)
}

func (r *Request) decide(next Status, deciderID string, now time.Time) error {
	if r == nil || r.Status != StatusPending {
		return ErrInvalidTransition
	}
	instant := now.UTC()
	r.Status = next
	r.DecidedBy = strings.TrimSpace(deciderID)
	r.DecidedAt = &instant
	r.UpdatedAt = instant
	return nil
}

// Overlaps reports whether the request covers any part of [from, to).
func (r Request) Overlaps(from, to time.Time) bool {
	return r.StartsAt.Before(to) && !r.EndsAt.Before(from)
}
