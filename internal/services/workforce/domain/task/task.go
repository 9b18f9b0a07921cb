package task

import (
	"strings"
	"time"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/platform/id"
)

// Status describes the lifecycle of a task.
type Status string

const (
	// StatusOpen indicates a task not yet started.
	StatusOpen Status = "open"
	// StatusInProgress indicates a task being worked on.
	StatusInProgress Status = "in_progress"
	// StatusDone indicates a finished task.
	StatusDone Status = "done"
)

var (
	// ErrTitleEmpty indicates a task without a title.
	ErrTitleEmpty = apperrors.New(apperrors.CodeTaskTitleEmpty, "task title is required")
	// ErrInvalidTransition indicates a disallowed task status change.
	ErrInvalidTransition = apperrors.New(apperrors.CodeTaskInvalidTransition, "task status transition is not allowed")
)

// Valid reports whether the status is one of the three known values.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is one unit of assignable work.
type Task struct {
	ID                 string
	Title              string
	Details            string
	AssigneeEmployeeID string
	DueAt              *time.Time
	Status             Status
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreateTaskInput describes the fields needed to open a task.
type CreateTaskInput struct {
	Title              string
	Details            string
	AssigneeEmployeeID string
	DueAt              *time.Time
}

// New validates input and builds an open task.
func New(input CreateTaskInput, now time.Time, idGenerator func() (string, error)) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, ErrTitleEmpty
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	taskID, err := idGenerator()
	if err != nil {
		return Task{}, apperrors.Wrap(apperrors.CodeUnknown, "generate task id", err)
	}
	instant := now.UTC()
	return Task{
		ID:                 taskID,
		Title:              title,
		Details:            strings.TrimSpace(input.Details),
		AssigneeEmployeeID: strings.TrimSpace(input.AssigneeEmployeeID),
		DueAt:              input.DueAt,
		Status:             StatusOpen,
		CreatedAt:          instant,
		UpdatedAt:          instant,
	}, nil
}

// Transition advances the task along open → in_progress → done.
func (t *Task) Transition(next Status, now time.Time) error {
	if t == nil || !next.Valid() {
		return ErrInvalidTransition
	}
	allowed := (t.Status == StatusOpen && next == StatusInProgress) ||
		(t.Status == StatusInProgress && next == StatusDone)
	if !allowed {
		return ErrInvalidTransition
	}
	t.Status = next
	t.UpdatedAt = now.UTC()
	return nil
}

// Assign hands the task to an employee. Empty unassigns it.
func (t *Task) Assign(employeeID string, now time.Time) {
	if t == nil {
		return
	}
	t.AssigneeEmployeeID = strings.TrimSpace(employeeID)
	t.UpdatedAt = now.UTC()
}
