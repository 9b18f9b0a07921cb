// Package routepath stores canonical HTTP paths for web modules.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root                 = "/"
	Health               = "/up"
	StaticPrefix         = "/static/"
	AuthPrefix           = "/auth/"
	Login                = "/auth/login"
	Register             = "/auth/register"
	ResetRequest         = "/auth/reset"
	ResetCompletePattern = "/auth/reset/{tokenID}"
	Logout               = "/auth/logout"

	AppPrefix                 = "/app/"
	App                       = "/app"
	DashboardOverview         = "/app/dashboard/overview"
	AppEmployees              = "/app/employees"
	EmployeesPrefix           = "/app/employees/"
	AppEmployeesNew           = "/app/employees/new"
	AppEmployeePattern        = EmployeesPrefix + "{employeeID}"
	AppEmployeeEditPattern    = EmployeesPrefix + "{employeeID}/edit"
	AppSchedule               = "/app/schedule"
	SchedulePrefix            = "/app/schedule/"
	AppScheduleShifts         = "/app/schedule/shifts"
	AppScheduleShiftPattern   = SchedulePrefix + "shifts/{shiftID}"
	AppTimeclock              = "/app/timeclock"
	TimeclockPrefix           = "/app/timeclock/"
	AppTimeclockSignIn        = "/app/timeclock/sign-in"
	AppTimeclockPause         = "/app/timeclock/pause"
	AppTimeclockResume        = "/app/timeclock/resume"
	AppTimeclockSignOut       = "/app/timeclock/sign-out"
	AppTimeclockElapsed       = "/app/timeclock/elapsed"
	AppTimeclockLive          = "/app/timeclock/live"
	AppTasks                  = "/app/tasks"
	TasksPrefix               = "/app/tasks/"
	AppTaskPattern            = TasksPrefix + "{taskID}"
	AppTaskAssignPattern      = TasksPrefix + "{taskID}/assign"
	AppTaskStatusPattern      = TasksPrefix + "{taskID}/status"
	AppRequests               = "/app/requests"
	RequestsPrefix            = "/app/requests/"
	AppRequestDecidePattern   = RequestsPrefix + "{requestID}/decide"
	AppSettings               = "/app/settings"
	SettingsPrefix            = "/app/settings/"
	AppSettingsProfile        = "/app/settings/profile"
	AppSettingsPassword       = "/app/settings/password"
	AppSettingsPasskeys       = "/app/settings/passkeys"
	AppSettingsPasskeysBegin  = "/app/settings/passkeys/begin"
	AppSettingsPasskeysFinish = "/app/settings/passkeys/finish"
	SettingsPasskeysPrefix    = "/app/settings/passkeys/"
	PasskeyDeletePattern      = SettingsPasskeysPrefix + "{credentialID}/delete"
	ShiftConfirmSuffix        = "/confirm"
	ShiftDeclineSuffix        = "/decline"
	AppScheduleConfirmPattern = SchedulePrefix + "shifts/{shiftID}/confirm"
	AppScheduleDeclinePattern = SchedulePrefix + "shifts/{shiftID}/decline"

	// RedirectQueryKey carries the sanitized post-login target.
	RedirectQueryKey = "redirect"
)

// AppEmployee returns the employee detail route.
func AppEmployee(employeeID string) string {
	return EmployeesPrefix + escapeSegment(employeeID)
}

// AppEmployeeEdit returns the employee edit-form route.
func AppEmployeeEdit(employeeID string) string {
	return AppEmployee(employeeID) + "/edit"
}

// AppScheduleShift returns the shift detail route.
func AppScheduleShift(shiftID string) string {
	return SchedulePrefix + "shifts/" + escapeSegment(shiftID)
}

// AppScheduleShiftConfirm returns the shift confirm route.
func AppScheduleShiftConfirm(shiftID string) string {
	return AppScheduleShift(shiftID) + ShiftConfirmSuffix
}

// AppScheduleShiftDecline returns the shift decline route.
func AppScheduleShiftDecline(shiftID string) string {
	return AppScheduleShift(shiftID) + ShiftDeclineSuffix
}

// AppTask returns the task detail route.
func AppTask(taskID string) string {
	return TasksPrefix + escapeSegment(taskID)
}

// AppTaskAssign returns the task assignment route.
func AppTaskAssign(taskID string) string {
	return AppTask(taskID) + "/assign"
}

// AppTaskStatus returns the task status-transition route.
func AppTaskStatus(taskID string) string {
	return AppTask(taskID) + "/status"
}

// AppRequestDecide returns the request approve/reject route.
func AppRequestDecide(requestID string) string {
	return RequestsPrefix + escapeSegment(requestID) + "/decide"
}

// ResetComplete returns the password-reset completion route for a token.
func ResetComplete(tokenID string) string {
	return ResetRequest + "/" + escapeSegment(tokenID)
}

// PasskeyDelete returns the passkey removal route.
func PasskeyDelete(credentialID string) string {
	return SettingsPasskeysPrefix + escapeSegment(credentialID) + "/delete"
}

// LoginWithRedirect returns the login route carrying a post-login target.
// Only relative targets are kept; anything else falls back to plain login.
func LoginWithRedirect(target string) string {
	target = SanitizeRedirect(target)
	if target == "" {
		return Login
	}
	return Login + "?" + RedirectQueryKey + "=" + url.QueryEscape(target)
}

// SanitizeRedirect keeps only same-site relative targets. External URLs,
// scheme-carrying values, and protocol-relative paths come back empty.
func SanitizeRedirect(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}
	if strings.ContainsAny(target, "\r\n") {
		return ""
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}
	return target
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
