// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Identity errors
	CodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthEmailInvalid       Code = "AUTH_EMAIL_INVALID"
	CodeAuthEmailTaken         Code = "AUTH_EMAIL_TAKEN"
	CodeAuthPasswordTooShort   Code = "AUTH_PASSWORD_TOO_SHORT"
	CodeAuthPasswordMismatch   Code = "AUTH_PASSWORD_MISMATCH"
	CodeAuthUserDisabled       Code = "AUTH_USER_DISABLED"
	CodeAuthSessionExpired     Code = "AUTH_SESSION_EXPIRED"
	CodeAuthResetTokenInvalid  Code = "AUTH_RESET_TOKEN_INVALID"
	CodeAuthResetTokenExpired  Code = "AUTH_RESET_TOKEN_EXPIRED"
	CodeAuthResetTokenUsed     Code = "AUTH_RESET_TOKEN_USED"
	CodeAuthPasskeyInvalid     Code = "AUTH_PASSKEY_INVALID"

	// Employee errors
	CodeEmployeeNameEmpty    Code = "EMPLOYEE_NAME_EMPTY"
	CodeEmployeeEmailInvalid Code = "EMPLOYEE_EMAIL_INVALID"
	CodeEmployeeEmailTaken   Code = "EMPLOYEE_EMAIL_TAKEN"
	CodeEmployeeRateNegative Code = "EMPLOYEE_RATE_NEGATIVE"
	CodeEmployeeInactive     Code = "EMPLOYEE_INACTIVE"

	// Schedule errors
	CodeScheduleInvalidRange      Code = "SCHEDULE_INVALID_RANGE"
	CodeScheduleInvalidTransition Code = "SCHEDULE_INVALID_TRANSITION"
	CodeScheduleEmployeeRequired  Code = "SCHEDULE_EMPLOYEE_REQUIRED"

	// Timeclock errors
	CodeTimeclockAlreadyOn     Code = "TIMECLOCK_ALREADY_ON"
	CodeTimeclockNotOn         Code = "TIMECLOCK_NOT_ON"
	CodeTimeclockAlreadyPaused Code = "TIMECLOCK_ALREADY_PAUSED"
	CodeTimeclockNotPaused     Code = "TIMECLOCK_NOT_PAUSED"

	// Task errors
	CodeTaskTitleEmpty        Code = "TASK_TITLE_EMPTY"
	CodeTaskInvalidTransition Code = "TASK_INVALID_TRANSITION"

	// Request errors
	CodeRequestInvalidKind       Code = "REQUEST_INVALID_KIND"
	CodeRequestInvalidRange      Code = "REQUEST_INVALID_RANGE"
	CodeRequestInvalidTransition Code = "REQUEST_INVALID_TRANSITION"

	// List filter errors
	CodeFilterInvalid Code = "FILTER_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeAuthEmailInvalid,
		CodeAuthPasswordTooShort,
		CodeEmployeeNameEmpty,
		CodeEmployeeEmailInvalid,
		CodeEmployeeRateNegative,
		CodeScheduleInvalidRange,
		CodeScheduleEmployeeRequired,
		CodeTaskTitleEmpty,
		CodeRequestInvalidKind,
		CodeRequestInvalidRange,
		CodeFilterInvalid:
		return codes.InvalidArgument

	// Unauthenticated - credential or session failures
	case CodeAuthInvalidCredentials,
		CodeAuthPasswordMismatch,
		CodeAuthSessionExpired,
		CodeAuthPasskeyInvalid:
		return codes.Unauthenticated

	// FailedPrecondition - state doesn't allow operation
	case CodeAuthUserDisabled,
		CodeAuthResetTokenExpired,
		CodeAuthResetTokenUsed,
		CodeEmployeeInactive,
		CodeScheduleInvalidTransition,
		CodeTimeclockAlreadyOn,
		CodeTimeclockNotOn,
		CodeTimeclockAlreadyPaused,
		CodeTimeclockNotPaused,
		CodeTaskInvalidTransition,
		CodeRequestInvalidTransition:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist (reset tokens stay indistinguishable
	// from absent ones)
	case CodeNotFound,
		CodeAuthResetTokenInvalid:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAuthEmailTaken,
		CodeEmployeeEmailTaken:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
