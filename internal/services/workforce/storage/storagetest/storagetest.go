// Package storagetest provides in-memory store fakes for handler and
// service tests. The fakes keep insertion order, honor ErrNotFound, and
// record the last ListOptions they saw so tests can assert filter
// pass-through without a database.
package storagetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/task"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/timeclock"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// Store is an in-memory implementation of every workforce store
// interface. The zero value is ready to use.
type Store struct {
	mu sync.Mutex

	employees     []employee.Employee
	shifts        []schedule.Shift
	entries       []timeclock.Entry
	tasks         []task.Task
	requests      []request.Request
	notifications []storage.Notification

	// LastEmployeeList, LastTaskList, and LastRequestList capture the
	// options of the most recent list call for assertion.
	LastEmployeeList storage.ListOptions
	LastTaskList     storage.ListOptions
	LastRequestList  storage.ListOptions

	// Err, when set, is returned by every method.
	Err error
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{}
}

// SeedEmployees replaces the roster.
func (s *Store) SeedEmployees(employees ...employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = append([]employee.Employee(nil), employees...)
}

// SeedShifts replaces stored shifts.
func (s *Store) SeedShifts(shifts ...schedule.Shift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts = append([]schedule.Shift(nil), shifts...)
}

// SeedTimeEntries replaces stored punch entries.
func (s *Store) SeedTimeEntries(entries ...timeclock.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]timeclock.Entry(nil), entries...)
}

// SeedTasks replaces stored tasks.
func (s *Store) SeedTasks(tasks ...task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]task.Task(nil), tasks...)
}

// SeedRequests replaces stored requests.
func (s *Store) SeedRequests(requests ...request.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append([]request.Request(nil), requests...)
}

// PutEmployee implements storage.EmployeeStore.
func (s *Store) PutEmployee(_ context.Context, e employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.employees = append(s.employees, e)
	return nil
}

// GetEmployee implements storage.EmployeeStore.
func (s *Store) GetEmployee(_ context.Context, employeeID string) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return employee.Employee{}, s.Err
	}
	for _, e := range s.employees {
		if e.ID == employeeID {
			return e, nil
		}
	}
	return employee.Employee{}, storage.ErrNotFound
}

// GetEmployeeByEmail implements storage.EmployeeStore.
func (s *Store) GetEmployeeByEmail(_ context.Context, email string) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return employee.Employee{}, s.Err
	}
	for _, e := range s.employees {
		if strings.EqualFold(e.Email, email) {
			return e, nil
		}
	}
	return employee.Employee{}, storage.ErrNotFound
}

// GetEmployeeByUserID implements storage.EmployeeStore.
func (s *Store) GetEmployeeByUserID(_ context.Context, userID string) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return employee.Employee{}, s.Err
	}
	for _, e := range s.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return employee.Employee{}, storage.ErrNotFound
}

// UpdateEmployee implements storage.EmployeeStore.
func (s *Store) UpdateEmployee(_ context.Context, e employee.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.employees {
		if s.employees[i].ID == e.ID {
			s.employees[i] = e
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListEmployees implements storage.EmployeeStore. The fake ignores
// Filter but records it. Page tokens are the last returned employee
// ID, resuming in full-name order.
func (s *Store) ListEmployees(_ context.Context, opts storage.ListOptions) (storage.EmployeePage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastEmployeeList = opts
	if s.Err != nil {
		return storage.EmployeePage{}, s.Err
	}
	out := append([]employee.Employee(nil), s.employees...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	out = resumeAfter(out, opts.PageToken, func(e employee.Employee) string { return e.ID })
	next := ""
	if opts.PageSize > 0 && len(out) > opts.PageSize {
		out = out[:opts.PageSize]
		next = out[len(out)-1].ID
	}
	return storage.EmployeePage{Employees: out, NextPageToken: next}, nil
}

// resumeAfter skips rows up to and including the one named by the
// token. An unknown token restarts from the beginning.
func resumeAfter[T any](rows []T, token string, id func(T) string) []T {
	if token == "" {
		return rows
	}
	for i, row := range rows {
		if id(row) == token {
			return rows[i+1:]
		}
	}
	return rows
}

// PutShift implements storage.ShiftStore.
func (s *Store) PutShift(_ context.Context, shift schedule.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.shifts = append(s.shifts, shift)
	return nil
}

// GetShift implements storage.ShiftStore.
func (s *Store) GetShift(_ context.Context, shiftID string) (schedule.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return schedule.Shift{}, s.Err
	}
	for _, shift := range s.shifts {
		if shift.ID == shiftID {
			return shift, nil
		}
	}
	return schedule.Shift{}, storage.ErrNotFound
}

// UpdateShift implements storage.ShiftStore.
func (s *Store) UpdateShift(_ context.Context, shift schedule.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.shifts {
		if s.shifts[i].ID == shift.ID {
			s.shifts[i] = shift
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListShifts implements storage.ShiftStore.
func (s *Store) ListShifts(_ context.Context, employeeID string, from, to time.Time) ([]schedule.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []schedule.Shift
	for _, shift := range s.shifts {
		if employeeID != "" && shift.EmployeeID != employeeID {
			continue
		}
		if shift.StartsAt.Before(to) && shift.EndsAt.After(from) {
			out = append(out, shift)
		}
	}
	schedule.SortShifts(out)
	return out, nil
}

// DeleteShift implements storage.ShiftStore.
func (s *Store) DeleteShift(_ context.Context, shiftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.shifts {
		if s.shifts[i].ID == shiftID {
			s.shifts = append(s.shifts[:i], s.shifts[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// PutTimeEntry implements storage.TimeclockStore.
func (s *Store) PutTimeEntry(_ context.Context, entry timeclock.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.entries = append(s.entries, entry)
	return nil
}

// SaveTimeEntry implements storage.TimeclockStore.
func (s *Store) SaveTimeEntry(_ context.Context, entry timeclock.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.entries {
		if s.entries[i].ID == entry.ID {
			s.entries[i] = entry
			return nil
		}
	}
	return storage.ErrNotFound
}

// GetTimeEntry implements storage.TimeclockStore.
func (s *Store) GetTimeEntry(_ context.Context, entryID string) (timeclock.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return timeclock.Entry{}, s.Err
	}
	for _, entry := range s.entries {
		if entry.ID == entryID {
			return entry, nil
		}
	}
	return timeclock.Entry{}, storage.ErrNotFound
}

// GetOpenTimeEntry implements storage.TimeclockStore.
func (s *Store) GetOpenTimeEntry(_ context.Context, employeeID string) (timeclock.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return timeclock.Entry{}, s.Err
	}
	for _, entry := range s.entries {
		if entry.EmployeeID == employeeID && entry.ClockOutAt == nil {
			return entry, nil
		}
	}
	return timeclock.Entry{}, storage.ErrNotFound
}

// ListOpenTimeEntries implements storage.TimeclockStore.
func (s *Store) ListOpenTimeEntries(_ context.Context) ([]timeclock.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []timeclock.Entry
	for _, entry := range s.entries {
		if entry.ClockOutAt == nil {
			out = append(out, entry)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ClockInAt.Before(out[j].ClockInAt) })
	return out, nil
}

// ListTimeEntriesInRange implements storage.TimeclockStore.
func (s *Store) ListTimeEntriesInRange(_ context.Context, employeeID string, from, to time.Time) ([]timeclock.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []timeclock.Entry
	for _, entry := range s.entries {
		if employeeID != "" && entry.EmployeeID != employeeID {
			continue
		}
		if !entry.ClockInAt.Before(from) && entry.ClockInAt.Before(to) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// PutTask implements storage.TaskStore.
func (s *Store) PutTask(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.tasks = append(s.tasks, t)
	return nil
}

// GetTask implements storage.TaskStore.
func (s *Store) GetTask(_ context.Context, taskID string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return task.Task{}, s.Err
	}
	for _, t := range s.tasks {
		if t.ID == taskID {
			return t, nil
		}
	}
	return task.Task{}, storage.ErrNotFound
}

// UpdateTask implements storage.TaskStore.
func (s *Store) UpdateTask(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.tasks {
		if s.tasks[i].ID == t.ID {
			s.tasks[i] = t
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListTasks implements storage.TaskStore. Tokens page through tasks
// in insertion order, same scheme as ListEmployees.
func (s *Store) ListTasks(_ context.Context, opts storage.ListOptions) (storage.TaskPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastTaskList = opts
	if s.Err != nil {
		return storage.TaskPage{}, s.Err
	}
	out := append([]task.Task(nil), s.tasks...)
	out = resumeAfter(out, opts.PageToken, func(t task.Task) string { return t.ID })
	next := ""
	if opts.PageSize > 0 && len(out) > opts.PageSize {
		out = out[:opts.PageSize]
		next = out[len(out)-1].ID
	}
	return storage.TaskPage{Tasks: out, NextPageToken: next}, nil
}

// PutRequest implements storage.RequestStore.
func (s *Store) PutRequest(_ context.Context, r request.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.requests = append(s.requests, r)
	return nil
}

// GetRequest implements storage.RequestStore.
func (s *Store) GetRequest(_ context.Context, requestID string) (request.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return request.Request{}, s.Err
	}
	for _, r := range s.requests {
		if r.ID == requestID {
			return r, nil
		}
	}
	return request.Request{}, storage.ErrNotFound
}

// UpdateRequest implements storage.RequestStore.
func (s *Store) UpdateRequest(_ context.Context, r request.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.requests {
		if s.requests[i].ID == r.ID {
			s.requests[i] = r
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListRequests implements storage.RequestStore.
func (s *Store) ListRequests(_ context.Context, opts storage.ListOptions) (storage.RequestPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastRequestList = opts
	if s.Err != nil {
		return storage.RequestPage{}, s.Err
	}
	out := append([]request.Request(nil), s.requests...)
	if opts.PageSize > 0 && len(out) > opts.PageSize {
		out = out[:opts.PageSize]
	}
	return storage.RequestPage{Requests: out}, nil
}

// ListPendingRequests implements storage.RequestStore.
func (s *Store) ListPendingRequests(_ context.Context) ([]request.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []request.Request
	for _, r := range s.requests {
		if r.Status == request.StatusPending {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// PutNotification implements storage.NotificationStore.
func (s *Store) PutNotification(_ context.Context, n storage.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if n.DedupeKey != "" {
		for _, existing := range s.notifications {
			if existing.DedupeKey == n.DedupeKey {
				return nil
			}
		}
	}
	s.notifications = append(s.notifications, n)
	return nil
}

// ListNotifications implements storage.NotificationStore.
func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]storage.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []storage.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MarkNotificationRead implements storage.NotificationStore.
func (s *Store) MarkNotificationRead(_ context.Context, notificationID string, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i := range s.notifications {
		if s.notifications[i].ID == notificationID {
			at := readAt
			s.notifications[i].ReadAt = &at
			return nil
		}
	}
	return storage.ErrNotFound
}

// CountUnreadNotifications implements storage.NotificationStore.
func (s *Store) CountUnreadNotifications(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

var (
	_ storage.EmployeeStore     = (*Store)(nil)
	_ storage.ShiftStore        = (*Store)(nil)
	_ storage.TimeclockStore    = (*Store)(nil)
	_ storage.TaskStore         = (*Store)(nil)
	_ storage.RequestStore      = (*Store)(nil)
	_ storage.NotificationStore = (*Store)(nil)
)
