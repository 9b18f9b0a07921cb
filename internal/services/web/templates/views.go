package templates

import "time"

// LoginData feeds the sign-in form.
type LoginData struct {
	Email      string
	RememberMe bool
	Redirect   string
	FieldError string
	FormError  string
	T          map[string]string
}

// RegisterData feeds the signup form.
type RegisterData struct {
	Email       string
	DisplayName string
	FieldErrors map[string]string
	FormError   string
	T           map[string]string
}

// ResetRequestData feeds the password-reset request form.
type ResetRequestData struct {
	Email     string
	FormError string
	T         map[string]string
}

// ResetCompleteData feeds the password-reset completion form.
type ResetCompleteData struct {
	TokenID   string
	FormError string
	T         map[string]string
}

// KPICard is one dashboard metric tile.
type KPICard struct {
	Key   string
	Label string
	Value string
}

// ShiftRow is a schedule line in overviews and week views.
type ShiftRow struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Status       string
	StartsAt     time.Time
	EndsAt       time.Time
	Note         string
	CanRespond   bool
	ConfirmURL   string
	DeclineURL   string
}

// RequestRow is a time-off or swap request line.
type RequestRow struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Kind         string
	Status       string
	StartsAt     time.Time
	EndsAt       time.Time
	Note         string
	CanDecide    bool
	DecideURL    string
}

// DashboardData feeds the landing dashboard.
type DashboardData struct {
	Cards       []KPICard
	Overview    []ShiftRow
	Pending     []RequestRow
	OverviewURL string
	T           map[string]string
}

// EmployeeRow is one roster line.
type EmployeeRow struct {
	ID         string
	Name       string
	Email      string
	Position   string
	Department string
	Active     bool
	DetailURL  string
}

// EmployeesData feeds the roster list page.
type EmployeesData struct {
	Rows          []EmployeeRow
	Filter        string
	FilterError   string
	NextPageToken string
	NextPageURL   string
	CanManage     bool
	NewURL        string
	T             map[string]string
}

// EmployeeDetailData feeds the employee detail page.
type EmployeeDetailData struct {
	Employee  EmployeeRow
	Rate      string
	UserID    string
	CreatedAt time.Time
	CanManage bool
	EditURL   string
	T         map[string]string
}

// EmployeeFormData feeds the create and edit forms.
type EmployeeFormData struct {
	ActionURL   string
	Editing     bool
	Name        string
	Email       string
	Position    string
	Department  string
	Rate        string
	Active      bool
	FieldErrors map[string]string
	FormError   string
	T           map[string]string
}

// ScheduleDay is one column of the week view.
type ScheduleDay struct {
	Date   time.Time
	Shifts []ShiftRow
}

// ScheduleData feeds the week view.
type ScheduleData struct {
	WeekStart   time.Time
	PrevWeekURL string
	NextWeekURL string
	Days        []ScheduleDay
	CanManage   bool
	Employees   []EmployeeRow
	CreateURL   string
	FormError   string
	T           map[string]string
}

// PauseRow is one pause interval on the punch card.
type PauseRow struct {
	PausedAt  time.Time
	ResumedAt *time.Time
}

// PunchCard is the viewer's current time entry state.
type PunchCard struct {
	State      string
	ClockInAt  time.Time
	Elapsed    time.Duration
	Pauses     []PauseRow
	SignInURL  string
	PauseURL   string
	ResumeURL  string
	SignOutURL string
	ElapsedURL string
}

// BoardRow is one live-board line for managers.
type BoardRow struct {
	EmployeeID   string
	EmployeeName string
	State        string
	ClockInAt    time.Time
	Elapsed      time.Duration
}

// TimeclockData feeds the punch board page.
type TimeclockData struct {
	HasEmployee bool
	Card        PunchCard
	IsManager   bool
	Board       []BoardRow
	LivePath    string
	FormError   string
	T           map[string]string
}

// TaskRow is one task line.
type TaskRow struct {
	ID           string
	Title        string
	Details      string
	Status       string
	AssigneeID   string
	AssigneeName string
	DueAt        *time.Time
	NextStatus   string
	StatusURL    string
	AssignURL    string
}

// TasksData feeds the task list page.
type TasksData struct {
	Rows        []TaskRow
	Filter      string
	FilterError string
	NextPageURL string
	CanManage   bool
	Employees   []EmployeeRow
	CreateURL   string
	FormError   string
	T           map[string]string
}

// RequestsData feeds the requests page.
type RequestsData struct {
	Mine      []RequestRow
	Queue     []RequestRow
	IsManager bool
	CreateURL string
	FormError string
	T         map[string]string
}

// PasskeyRow is one enrolled passkey line.
type PasskeyRow struct {
	ID         string
	Name       string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	DeleteURL  string
}

// SettingsData feeds the settings page.
type SettingsData struct {
	DisplayName string
	Email       string
	Locale      string
	Locales     []LanguageOption
	Passkeys    []PasskeyRow
	ProfileURL  string
	PasswordURL string
	BeginURL    string
	FinishURL   string
	FormError   string
	Saved       bool
	T           map[string]string
}

// ErrorData feeds the error page.
type ErrorData struct {
	Status  int
	Message string
	HomeURL string
	T       map[string]string
}
