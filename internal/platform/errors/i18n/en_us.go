package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown = "UNKNOWN"

	CodeAuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAuthEmailInvalid       = "AUTH_EMAIL_INVALID"
	CodeAuthEmailTaken         = "AUTH_EMAIL_TAKEN"
	CodeAuthPasswordTooShort   = "AUTH_PASSWORD_TOO_SHORT"
	CodeAuthPasswordMismatch   = "AUTH_PASSWORD_MISMATCH"
	CodeAuthUserDisabled       = "AUTH_USER_DISABLED"
	CodeAuthSessionExpired     = "AUTH_SESSION_EXPIRED"
	CodeAuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID"
	CodeAuthResetTokenExpired  = "AUTH_RESET_TOKEN_EXPIRED"
	CodeAuthResetTokenUsed     = "AUTH_RESET_TOKEN_USED"
	CodeAuthPasskeyInvalid     = "AUTH_PASSKEY_INVALID"

	CodeEmployeeNameEmpty    = "EMPLOYEE_NAME_EMPTY"
	CodeEmployeeEmailInvalid = "EMPLOYEE_EMAIL_INVALID"
	CodeEmployeeEmailTaken   = "EMPLOYEE_EMAIL_TAKEN"
	CodeEmployeeRateNegative = "EMPLOYEE_RATE_NEGATIVE"
	CodeEmployeeInactive     = "EMPLOYEE_INACTIVE"

	CodeScheduleInvalidRange      = "SCHEDULE_INVALID_RANGE"
	CodeScheduleInvalidTransition = "SCHEDULE_INVALID_TRANSITION"
	CodeScheduleEmployeeRequired  = "SCHEDULE_EMPLOYEE_REQUIRED"

	CodeTimeclockAlreadyOn     = "TIMECLOCK_ALREADY_ON"
	CodeTimeclockNotOn         = "TIMECLOCK_NOT_ON"
	CodeTimeclockAlreadyPaused = "TIMECLOCK_ALREADY_PAUSED"
	CodeTimeclockNotPaused     = "TIMECLOCK_NOT_PAUSED"

	CodeTaskTitleEmpty        = "TASK_TITLE_EMPTY"
	CodeTaskInvalidTransition = "TASK_INVALID_TRANSITION"

	CodeRequestInvalidKind       = "REQUEST_INVALID_KIND"
	CodeRequestInvalidRange      = "REQUEST_INVALID_RANGE"
	CodeRequestInvalidTransition = "REQUEST_INVALID_TRANSITION"

	CodeFilterInvalid = "FILTER_INVALID"

	CodeNotFound = "NOT_FOUND"
)

var enUSCatalog = NewCatalog("en-US", map[Code]string{
	CodeUnknown: "Something went wrong. Please try again.",

	// Identity errors
	CodeAuthInvalidCredentials: "Incorrect email or password",
	CodeAuthEmailInvalid:       "Enter a valid email address",
	CodeAuthEmailTaken:         "An account with this email already exists",
	CodeAuthPasswordTooShort:   "Password must be at least {{.MinLength}} characters",
	CodeAuthPasswordMismatch:   "The current password is not correct",
	CodeAuthUserDisabled:       "This account is disabled",
	CodeAuthSessionExpired:     "Your session has expired. Please sign in again",
	CodeAuthResetTokenInvalid:  "The reset link is not valid",
	CodeAuthResetTokenExpired:  "The reset link has expired",
	CodeAuthResetTokenUsed:     "This reset link has already been used",
	CodeAuthPasskeyInvalid:     "The passkey could not be verified",

	// Employee errors
	CodeEmployeeNameEmpty:    "Employee name cannot be empty",
	CodeEmployeeEmailInvalid: "Employee email is not valid",
	CodeEmployeeEmailTaken:   "An employee with this email already exists",
	CodeEmployeeRateNegative: "Hourly rate cannot be negative",
	CodeEmployeeInactive:     "This employee is inactive",

	// Schedule errors
	CodeScheduleInvalidRange:      "A shift must end after it starts",
	CodeScheduleInvalidTransition: "Cannot change shift from {{.FromStatus}} to {{.ToStatus}}",
	CodeScheduleEmployeeRequired:  "A shift needs an assigned employee",

	// Timeclock errors
	CodeTimeclockAlreadyOn:     "You are already clocked in",
	CodeTimeclockNotOn:         "You are not clocked in",
	CodeTimeclockAlreadyPaused: "The shift is already paused",
	CodeTimeclockNotPaused:     "The shift is not paused",

	// Task errors
	CodeTaskTitleEmpty:        "Task title cannot be empty",
	CodeTaskInvalidTransition: "Cannot change task from {{.FromStatus}} to {{.ToStatus}}",

	// Request errors
	CodeRequestInvalidKind:       "Invalid request type",
	CodeRequestInvalidRange:      "A request must end after it starts",
	CodeRequestInvalidTransition: "Cannot change request from {{.FromStatus}} to {{.ToStatus}}",

	// List filter errors
	CodeFilterInvalid: "The list filter is not valid",

	// Storage errors
	CodeNotFound: "The requested resource was not found",
})
