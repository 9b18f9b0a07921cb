// Package seed fills the local databases with demo accounts, a staffed
// week, and working data so the dashboard is usable right after start.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	authstorage "github.com/PedroJIzGar/timelogic/internal/services/auth/storage"
	"github.com/PedroJIzGar/timelogic/internal/services/auth/user"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/employee"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/request"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/schedule"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/domain/task"
	"github.com/PedroJIzGar/timelogic/internal/services/workforce/storage"
)

// Config holds seed command configuration.
type Config struct {
	AuthDBPath      string
	WorkforceDBPath string
	Password        string
}

type envConfig struct {
	AuthDBPath      string `env:"TIMELOGIC_AUTH_DB_PATH" envDefault:"data/auth.db"`
	WorkforceDBPath string `env:"TIMELOGIC_WORKFORCE_DB_PATH" envDefault:"data/workforce.db"`
	Password        string `env:"TIMELOGIC_SEED_PASSWORD" envDefault:"timelogic-demo"`
}

// ParseConfig parses environment defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		AuthDBPath:      envCfg.AuthDBPath,
		WorkforceDBPath: envCfg.WorkforceDBPath,
		Password:        envCfg.Password,
	}

	fs.StringVar(&cfg.AuthDBPath, "auth-db-path", cfg.AuthDBPath, "auth SQLite database path")
	fs.StringVar(&cfg.WorkforceDBPath, "workforce-db-path", cfg.WorkforceDBPath, "workforce SQLite database path")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "password shared by the demo accounts")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// authStore is the identity surface the seeder writes to.
type authStore interface {
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	PutUser(ctx context.Context, u user.User) error
}

// workforceStore is the dashboard store surface the seeder writes to.
type workforceStore interface {
	GetEmployeeByEmail(ctx context.Context, email string) (employee.Employee, error)
	PutEmployee(ctx context.Context, e employee.Employee) error
	ListShifts(ctx context.Context, employeeID string, from, to time.Time) ([]schedule.Shift, error)
	PutShift(ctx context.Context, s schedule.Shift) error
	ListTasks(ctx context.Context, opts storage.ListOptions) (storage.TaskPage, error)
	PutTask(ctx context.Context, t task.Task) error
	ListRequests(ctx context.Context, opts storage.ListOptions) (storage.RequestPage, error)
	PutRequest(ctx context.Context, r request.Request) error
}

// Result counts what the run created versus left alone.
type Result struct {
	UsersCreated     int
	EmployeesCreated int
	ShiftsCreated    int
	TasksCreated     int
	RequestsCreated  int
	Skipped          int
}

type demoAccount struct {
	email       string
	displayName string
	role        user.Role
	locale      string

	// employee fields; position empty means no roster record
	firstName  string
	lastName   string
	position   string
	department string
	hourlyRate string
}

var demoAccounts = []demoAccount{
	{email: "admin@timelogic.local", displayName: "Alex Admin", role: user.RoleAdmin, locale: "en-US"},
	{email: "marta@timelogic.local", displayName: "Marta Ruiz", role: user.RoleManager, locale: "es-ES",
		firstName: "Marta", lastName: "Ruiz", position: "Floor Manager", department: "floor", hourlyRate: "24.50"},
	{email: "ana@timelogic.local", displayName: "Ana García", role: user.RoleEmployee, locale: "es-ES",
		firstName: "Ana", lastName: "García", position: "Cook", department: "kitchen", hourlyRate: "17.25"},
	{email: "luis@timelogic.local", displayName: "Luis Vega", role: user.RoleEmployee, locale: "en-US",
		firstName: "Luis", lastName: "Vega", position: "Server", department: "floor", hourlyRate: "15.00"},
}

// Seeder writes demo data into the auth and workforce stores.
type Seeder struct {
	auth      authStore
	workforce workforceStore
	clock     func() time.Time
	cost      int
}

// NewSeeder builds a seeder. A nil clock falls back to time.Now.
func NewSeeder(auth authStore, workforce workforceStore, clock func() time.Time) *Seeder {
	if clock == nil {
		clock = time.Now
	}
	return &Seeder{auth: auth, workforce: workforce, clock: clock, cost: bcrypt.DefaultCost}
}

// Apply creates any missing demo records. Reruns are no-ops: every
// record is keyed by email, start time, or title before it is written.
func (s *Seeder) Apply(ctx context.Context, password string) (Result, error) {
	var result Result

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Result{}, fmt.Errorf("hash demo password: %w", err)
	}

	employeeIDs := make(map[string]string)
	for _, account := range demoAccounts {
		userID, created, err := s.ensureUser(ctx, account, string(hash))
		if err != nil {
			return result, err
		}
		if created {
			result.UsersCreated++
		} else {
			result.Skipped++
		}
		if account.position == "" {
			continue
		}
		employeeID, created, err := s.ensureEmployee(ctx, account, userID)
		if err != nil {
			return result, err
		}
		if created {
			result.EmployeesCreated++
		} else {
			result.Skipped++
		}
		employeeIDs[account.email] = employeeID
	}

	if err := s.ensureWeek(ctx, employeeIDs, &result); err != nil {
		return result, err
	}
	if err := s.ensureTasks(ctx, employeeIDs, &result); err != nil {
		return result, err
	}
	if err := s.ensureRequests(ctx, employeeIDs, &result); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Seeder) ensureUser(ctx context.Context, account demoAccount, passwordHash string) (string, bool, error) {
	existing, err := s.auth.GetUserByEmail(ctx, account.email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, authstorage.ErrNotFound) {
		return "", false, fmt.Errorf("look up user %s: %w", account.email, err)
	}

	created, err := user.CreateUser(user.CreateUserInput{
		Email:        account.email,
		PasswordHash: passwordHash,
		DisplayName:  account.displayName,
		Role:         account.role,
		Locale:       account.locale,
	}, s.clock, nil)
	if err != nil {
		return "", false, fmt.Errorf("create user %s: %w", account.email, err)
	}
	if err := s.auth.PutUser(ctx, created); err != nil {
		return "", false, fmt.Errorf("store user %s: %w", account.email, err)
	}
	return created.ID, true, nil
}

func (s *Seeder) ensureEmployee(ctx context.Context, account demoAccount, userID string) (string, bool, error) {
	existing, err := s.workforce.GetEmployeeByEmail(ctx, account.email)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", false, fmt.Errorf("look up employee %s: %w", account.email, err)
	}

	rate, err := decimal.NewFromString(account.hourlyRate)
	if err != nil {
		return "", false, fmt.Errorf("parse hourly rate for %s: %w", account.email, err)
	}
	created, err := employee.New(employee.CreateEmployeeInput{
		UserID:     userID,
		FirstName:  account.firstName,
		LastName:   account.lastName,
		Email:      account.email,
		Position:   account.position,
		Department: account.department,
		HourlyRate: rate,
	}, s.clock(), nil)
	if err != nil {
		return "", false, fmt.Errorf("create employee %s: %w", account.email, err)
	}
	if err := s.workforce.PutEmployee(ctx, created); err != nil {
		return "", false, fmt.Errorf("store employee %s: %w", account.email, err)
	}
	return created.ID, true, nil
}

// ensureWeek schedules Monday through Friday day shifts for the current
// week, skipping slots that already hold a shift.
func (s *Seeder) ensureWeek(ctx context.Context, employeeIDs map[string]string, result *Result) error {
	weekStart := schedule.WeekOf(s.clock())
	for _, employeeID := range employeeIDs {
		existing, err := s.workforce.ListShifts(ctx, employeeID, weekStart, weekStart.AddDate(0, 0, 7))
		if err != nil {
			return fmt.Errorf("list shifts for %s: %w", employeeID, err)
		}
		taken := make(map[time.Time]bool, len(existing))
		for _, shift := range existing {
			taken[shift.StartsAt.UTC()] = true
		}
		for day := 0; day < 5; day++ {
			startsAt := weekStart.AddDate(0, 0, day).Add(9 * time.Hour)
			if taken[startsAt] {
				result.Skipped++
				continue
			}
			shift, err := schedule.NewShift(schedule.CreateShiftInput{
				EmployeeID: employeeID,
				StartsAt:   startsAt,
				EndsAt:     startsAt.Add(8 * time.Hour),
				Position:   "Day shift",
			}, s.clock(), nil)
			if err != nil {
				return fmt.Errorf("create shift for %s: %w", employeeID, err)
			}
			if err := s.workforce.PutShift(ctx, shift); err != nil {
				return fmt.Errorf("store shift for %s: %w", employeeID, err)
			}
			result.ShiftsCreated++
		}
	}
	return nil
}

func (s *Seeder) ensureTasks(ctx context.Context, employeeIDs map[string]string, result *Result) error {
	demoTasks := []task.CreateTaskInput{
		{Title: "Restock dry storage", Details: "Check par levels before the weekend.", AssigneeEmployeeID: employeeIDs["ana@timelogic.local"]},
		{Title: "Deep clean espresso machine", AssigneeEmployeeID: employeeIDs["luis@timelogic.local"]},
		{Title: "Post next week's schedule"},
	}

	page, err := s.workforce.ListTasks(ctx, storage.ListOptions{PageSize: 500})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	existing := make(map[string]bool, len(page.Tasks))
	for _, t := range page.Tasks {
		existing[t.Title] = true
	}

	for _, input := range demoTasks {
		if existing[input.Title] {
			result.Skipped++
			continue
		}
		created, err := task.New(input, s.clock(), nil)
		if err != nil {
			return fmt.Errorf("create task %q: %w", input.Title, err)
		}
		if err := s.workforce.PutTask(ctx, created); err != nil {
			return fmt.Errorf("store task %q: %w", input.Title, err)
		}
		result.TasksCreated++
	}
	return nil
}

func (s *Seeder) ensureRequests(ctx context.Context, employeeIDs map[string]string, result *Result) error {
	employeeID := employeeIDs["ana@timelogic.local"]
	if employeeID == "" {
		return nil
	}
	weekStart := schedule.WeekOf(s.clock())
	startsAt := weekStart.AddDate(0, 0, 14)

	page, err := s.workforce.ListRequests(ctx, storage.ListOptions{
		Filter:   fmt.Sprintf("employee_id=%q", employeeID),
		PageSize: 100,
	})
	if err != nil {
		return fmt.Errorf("list requests: %w", err)
	}
	for _, r := range page.Requests {
		if r.Kind == request.KindVacation && r.StartsAt.UTC().Equal(startsAt) {
			result.Skipped++
			return nil
		}
	}

	created, err := request.New(request.CreateRequestInput{
		EmployeeID: employeeID,
		Kind:       request.KindVacation,
		StartsAt:   startsAt,
		EndsAt:     startsAt.AddDate(0, 0, 4),
		Note:       "Family trip",
	}, s.clock(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if err := s.workforce.PutRequest(ctx, created); err != nil {
		return fmt.Errorf("store request: %w", err)
	}
	result.RequestsCreated++
	return nil
}

// Summary renders a one-line report of what the run did.
func (r Result) Summary() string {
	return fmt.Sprintf("seeded %d users, %d employees, %d shifts, %d tasks, %d requests (%d already present)",
		r.UsersCreated, r.EmployeesCreated, r.ShiftsCreated, r.TasksCreated, r.RequestsCreated, r.Skipped)
}

// Fprint writes the summary to out.
func (r Result) Fprint(out io.Writer) {
	fmt.Fprintln(out, r.Summary())
}
