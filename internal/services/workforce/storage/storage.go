package storage

import (
	"context"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/task"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/timeclock"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New(errors.CodeNotFound, "record not found")

// ListOptions shapes filtered, paginated list queries.
//
// Filter is an AIP-160 expression over the entity's declared fields; an
// empty filter matches everything. PageToken is an opaque cursor from a
// previous page.
type ListOptions struct {
	Filter    string
	PageSize  int
	PageToken string
}

// EmployeePage describes a page of roster records.
type EmployeePage struct {
	Employees     []employee.Employee
	NextPageToken string
}

// EmployeeStore persists roster members.
type EmployeeStore interface {
	PutEmployee(ctx context.Context, e employee.Employee) error
	GetEmployee(ctx context.Context, employeeID string) (employee.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (employee.Employee, error)
	GetEmployeeByUserID(ctx context.Context, userID string) (employee.Employee, error)
	UpdateEmployee(ctx context.Context, e employee.Employee) error
	ListEmployees(ctx context.Context, opts ListOptions) (EmployeePage, error)
}

// ShiftStore persists scheduled shifts.
type ShiftStore interface {
	PutShift(ctx context.Context, s schedule.Shift) error
	GetShift(ctx context.Context, shiftID string) (schedule.Shift, error)
	UpdateShift(ctx context.Context, s schedule.Shift) error
	// ListShifts returns shifts overlapping [from, to), optionally scoped
	// to one employee, in SortShifts order.
	ListShifts(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.Shift, error)
	DeleteShift(ctx context.Context, shiftID string) error
}

// TimeclockStore persists punch-clock entries and their pauses.
type TimeclockStore interface {
	PutTimeEntry(ctx context.Context, entry timeclock.Entry) error
	// SaveTimeEntry rewrites an entry and its pauses in one transaction.
	SaveTimeEntry(ctx context.Context, entry timeclock.Entry) error
	GetTimeEntry(ctx context.Context, entryID string) (timeclock.Entry, error)
	// GetOpenTimeEntry returns the employee's entry without a clock-out,
	// or ErrNotFound. At most one exists.
	GetOpenTimeEntry(ctx context.Context, employeeID string) (timeclock.Entry, error)
	// ListOpenTimeEntries returns every entry still on the clock, oldest
	// clock-in first.
	ListOpenTimeEntries(ctx context.Context) ([]timeclock.Entry, error)
	// ListTimeEntriesInRange returns entries whose clock-in falls in
	// [from, to), optionally scoped to one employee.
	ListTimeEntriesInRange(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Entry, error)
}

// TaskPage describes a page of task records.
type TaskPage struct {
	Tasks         []task.Task
	NextPageToken string
}

// TaskStore persists work items.
type TaskStore interface {
	PutTask(ctx context.Context, t task.Task) error
	GetTask(ctx context.Context, taskID string) (task.Task, error)
	UpdateTask(ctx context.Context, t task.Task) error
	ListTasks(ctx context.Context, opts ListOptions) (TaskPage, error)
}

// RequestPage describes a page of time-off requests.
type RequestPage struct {
	Requests      []request.Request
	NextPageToken string
}

// RequestStore persists time-off and swap requests.
type RequestStore interface {
	PutRequest(ctx context.Context, r request.Request) error
	GetRequest(ctx context.Context, requestID string) (request.Request, error)
	UpdateRequest(ctx context.Context, r request.Request) error
	ListRequests(ctx context.Context, opts ListOptions) (RequestPage, error)
	// ListPendingRequests returns the manager approval queue, oldest first.
	ListPendingRequests(ctx context.Context) ([]request.Request, error)
}

// Notification is an in-app message for one user.
type Notification struct {
	ID        string
	UserID    string
	Kind      string
	Title     string
	Body      string
	DedupeKey string
	CreatedAt time.Time
	ReadAt    *time.Time
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	// PutNotification inserts a notification. A non-empty DedupeKey that
	// already exists makes the insert a no-op.
	PutNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID string, readAt time.Time) error
	CountUnreadNotifications(ctx context.Context, userID string) (int64, error)
}
