package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/timeclock"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// Step kinds recorded by the DSL.
const (
	stepEmployee    = "employee"
	stepClockIn     = "clock_in"
	stepPause       = "pause"
	stepResume      = "resume"
	stepClockOut    = "clock_out"
	stepAdvance     = "advance"
	stepExpectState = "expect_state"
	stepRequest     = "request"
	stepApprove     = "approve"
	stepReject      = "reject"
)

// AssertionMode controls what a failed expectation does to the run.
type AssertionMode string

const (
	// AssertionStrict stops the run on the first failed expectation.
	AssertionStrict AssertionMode = "strict"
	// AssertionWarn logs failed expectations and keeps going.
	AssertionWarn AssertionMode = "warn"
)

// Config holds runner settings.
type Config struct {
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Start anchors the scenario clock. Zero means the current time.
	Start time.Time
}

// DefaultConfig returns strict settings with the standard logger.
func DefaultConfig() Config {
	return Config{
		Assertions: AssertionStrict,
		Logger:     log.Default(),
	}
}

// Stores are the workforce stores the runner executes against.
type Stores struct {
	Employees storage.EmployeeStore
	Timeclock storage.TimeclockStore
	Requests  storage.RequestStore
}

// Result summarizes one scenario run.
type Result struct {
	Scenario string
	Steps    int
	Failures int
}

// Runner replays scenario steps against workforce stores with a
// virtual clock.
type Runner struct {
	cfg    Config
	stores Stores
	now    time.Time

	employees map[string]string // ref to employee ID
	requests  map[string]string // ref to request ID
}

// NewRunner builds a runner. A zero Start in cfg anchors the clock at
// the current UTC time.
func NewRunner(cfg Config, stores Stores) *Runner {
	if cfg.Assertions == "" {
		cfg.Assertions = AssertionStrict
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Second)
	}
	return &Runner{
		cfg:       cfg,
		stores:    stores,
		now:       start,
		employees: map[string]string{},
		requests:  map[string]string{},
	}
}

// Run executes the scenario's steps in order. Failed expectations end
// the run in strict mode and are logged in warn mode. Store failures
// always end the run.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) (Result, error) {
	result := Result{Scenario: scenario.Name}
	for i, step := range scenario.Steps {
		if r.cfg.Verbose {
			r.cfg.Logger.Printf("scenario %s: step %d %s", scenario.Name, i+1, step.Kind)
		}
		failure, err := r.runStep(ctx, step)
		if err != nil {
			return result, fmt.Errorf("step %d (%s): %w", i+1, step.Kind, err)
		}
		result.Steps++
		if failure == "" {
			continue
		}
		result.Failures++
		if r.cfg.Assertions == AssertionStrict {
			return result, fmt.Errorf("step %d (%s): %s", i+1, step.Kind, failure)
		}
		r.cfg.Logger.Printf("scenario %s: step %d (%s): %s", scenario.Name, i+1, step.Kind, failure)
	}
	return result, nil
}

// runStep executes one step. The string return is an assertion
// failure message; the error return is a broken run.
func (r *Runner) runStep(ctx context.Context, step Step) (string, error) {
	switch step.Kind {
	case stepEmployee:
		return r.stepEmployee(ctx, step)
	case stepClockIn:
		return r.punch(ctx, step, r.clockIn)
	case stepPause:
		return r.punch(ctx, step, func(ctx context.Context, employeeID string) error {
			return r.mutateOpenEntry(ctx, employeeID, func(entry *timeclock.Entry) error {
				return entry.Pause(r.now, nil)
			})
		})
	case stepResume:
		return r.punch(ctx, step, func(ctx context.Context, employeeID string) error {
			return r.mutateOpenEntry(ctx, employeeID, func(entry *timeclock.Entry) error {
				return entry.Resume(r.now)
			})
		})
	case stepClockOut:
		return r.stepClockOut(ctx, step)
	case stepAdvance:
		return r.stepAdvance(step)
	case stepExpectState:
		return r.stepExpectState(ctx, step)
	case stepRequest:
		return r.stepRequest(ctx, step)
	case stepApprove:
		return r.decideRequest(ctx, step, func(req *request.Request, deciderID string) error {
			return req.Approve(deciderID, r.now)
		})
	case stepReject:
		return r.decideRequest(ctx, step, func(req *request.Request, deciderID string) error {
			return req.Reject(deciderID, r.now)
		})
	default:
		return "", fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) stepEmployee(ctx context.Context, step Step) (string, error) {
	ref := stringArg(step.Args, "ref")
	if ref == "" {
		return "", errors.New("employee step needs a ref")
	}
	rate := decimal.Zero
	if raw := stringArg(step.Args, "hourly_rate"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return "", fmt.Errorf("parse hourly_rate: %w", err)
		}
		rate = parsed
	}
	record, err := employee.New(employee.CreateEmployeeInput{
		FirstName:  stringArg(step.Args, "first"),
		LastName:   stringArg(step.Args, "last"),
		Email:      stringArg(step.Args, "email"),
		Position:   stringArg(step.Args, "position"),
		Department: stringArg(step.Args, "department"),
		HourlyRate: rate,
	}, r.now, nil)
	if err != nil {
		return "", fmt.Errorf("create employee %s: %w", ref, err)
	}
	if err := r.stores.Employees.PutEmployee(ctx, record); err != nil {
		return "", fmt.Errorf("put employee %s: %w", ref, err)
	}
	r.employees[ref] = record.ID
	return "", nil
}

// punch runs a punch action for the step's employee and checks the
// expect_error argument against the outcome.
func (r *Runner) punch(ctx context.Context, step Step, action func(context.Context, string) error) (string, error) {
	employeeID, err := r.employeeID(step.Args)
	if err != nil {
		return "", err
	}
	return r.expectOutcome(step, action(ctx, employeeID))
}

func (r *Runner) clockIn(ctx context.Context, employeeID string) error {
	if _, err := r.stores.Timeclock.GetOpenTimeEntry(ctx, employeeID); err == nil {
		return timeclock.ErrAlreadyOn
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("get open time entry: %w", err)
	}
	entry, err := timeclock.SignIn(employeeID, r.now, nil)
	if err != nil {
		return err
	}
	return r.stores.Timeclock.PutTimeEntry(ctx, entry)
}

func (r *Runner) mutateOpenEntry(ctx context.Context, employeeID string, mutate func(*timeclock.Entry) error) error {
	entry, err := r.stores.Timeclock.GetOpenTimeEntry(ctx, employeeID)
	if errors.Is(err, storage.ErrNotFound) {
		return timeclock.ErrNotOn
	}
	if err != nil {
		return fmt.Errorf("get open time entry: %w", err)
	}
	if err := mutate(&entry); err != nil {
		return err
	}
	return r.stores.Timeclock.SaveTimeEntry(ctx, entry)
}

func (r *Runner) stepClockOut(ctx context.Context, step Step) (string, error) {
	employeeID, err := r.employeeID(step.Args)
	if err != nil {
		return "", err
	}
	var worked time.Duration
	actionErr := r.mutateOpenEntry(ctx, employeeID, func(entry *timeclock.Entry) error {
		if err := entry.SignOut(r.now); err != nil {
			return err
		}
		worked = entry.Worked(r.now)
		return nil
	})
	failure, err := r.expectOutcome(step, actionErr)
	if failure != "" || err != nil {
		return failure, err
	}
	if want, ok := intArg(step.Args, "expect_worked_minutes"); ok && actionErr == nil {
		if got := int(worked / time.Minute); got != want {
			return fmt.Sprintf("worked %d minutes, want %d", got, want), nil
		}
	}
	return "", nil
}

func (r *Runner) stepAdvance(step Step) (string, error) {
	minutes, ok := intArg(step.Args, "minutes")
	if !ok {
		return "", errors.New("advance step needs minutes")
	}
	r.now = r.now.Add(time.Duration(minutes) * time.Minute)
	return "", nil
}

func (r *Runner) stepExpectState(ctx context.Context, step Step) (string, error) {
	employeeID, err := r.employeeID(step.Args)
	if err != nil {
		return "", err
	}
	want := stringArg(step.Args, "state")
	if want == "" {
		return "", errors.New("expect_state step needs a state")
	}
	got := string(timeclock.StateOff)
	entry, err := r.stores.Timeclock.GetOpenTimeEntry(ctx, employeeID)
	if err == nil {
		got = string(entry.State())
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("get open time entry: %w", err)
	}
	if got != want {
		return fmt.Sprintf("state is %q, want %q", got, want), nil
	}
	return "", nil
}

func (r *Runner) stepRequest(ctx context.Context, step Step) (string, error) {
	employeeID, err := r.employeeID(step.Args)
	if err != nil {
		return "", err
	}
	days, ok := intArg(step.Args, "days")
	if !ok {
		days = 1
	}
	req, actionErr := request.New(request.CreateRequestInput{
		EmployeeID: employeeID,
		Kind:       request.Kind(stringArg(step.Args, "kind")),
		StartsAt:   r.now,
		EndsAt:     r.now.Add(time.Duration(days) * 24 * time.Hour),
		Note:       stringArg(step.Args, "note"),
	}, r.now, nil)
	if actionErr == nil {
		if err := r.stores.Requests.PutRequest(ctx, req); err != nil {
			return "", fmt.Errorf("put request: %w", err)
		}
		if ref := stringArg(step.Args, "ref"); ref != "" {
			r.requests[ref] = req.ID
		}
	}
	return r.expectOutcome(step, actionErr)
}

func (r *Runner) decideRequest(ctx context.Context, step Step, decide func(*request.Request, string) error) (string, error) {
	ref := stringArg(step.Args, "request")
	requestID, ok := r.requests[ref]
	if !ok {
		return "", fmt.Errorf("unknown request ref %q", ref)
	}
	req, err := r.stores.Requests.GetRequest(ctx, requestID)
	if err != nil {
		return "", fmt.Errorf("get request %s: %w", ref, err)
	}
	deciderID := stringArg(step.Args, "decider")
	actionErr := decide(&req, deciderID)
	if actionErr == nil {
		if err := r.stores.Requests.UpdateRequest(ctx, req); err != nil {
			return "", fmt.Errorf("update request %s: %w", ref, err)
		}
	}
	return r.expectOutcome(step, actionErr)
}

// expectOutcome matches an action error against the step's
// expect_error code. A matching code passes, an unexpected error or a
// missing expected one is an assertion failure.
func (r *Runner) expectOutcome(step Step, actionErr error) (string, error) {
	want := stringArg(step.Args, "expect_error")
	if want == "" {
		if actionErr == nil {
			return "", nil
		}
		if code, ok := errorCode(actionErr); ok {
			return fmt.Sprintf("unexpected error %s", code), nil
		}
		return "", actionErr
	}
	if actionErr == nil {
		return fmt.Sprintf("expected error %s, got none", want), nil
	}
	code, ok := errorCode(actionErr)
	if !ok {
		return "", actionErr
	}
	if string(code) != want {
		return fmt.Sprintf("expected error %s, got %s", want, code), nil
	}
	return "", nil
}

func errorCode(err error) (apperrors.Code, bool) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

func (r *Runner) employeeID(args map[string]any) (string, error) {
	ref := stringArg(args, "employee")
	id, ok := r.employees[ref]
	if !ok {
		return "", fmt.Errorf("unknown employee ref %q", ref)
	}
	return id, nil
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func intArg(args map[string]any, key string) (int, bool) {
	switch value := args[key].(type) {
	case int:
		return value, true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}
