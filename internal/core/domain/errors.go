package domain

import "errors"

// Error kinds. Every error the core returns unwraps to exactly one of these,
// which is what the transport layer maps to a status code.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrUnavailable    = errors.New("unavailable")
)

// RuleError is a business-rule rejection with a stable machine code and a
// message meant for the end user.
type RuleError struct {
	Kind    error
	Code    string
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return e.Kind }

func newRule(kind error, code, msg string) *RuleError {
	return &RuleError{Kind: kind, Code: code, Message: msg}
}

// Marking rejections.
var (
	ErrInvalidStatus       = newRule(ErrInvalidRequest, "invalid_status", "status must be one of: office, home, leave")
	ErrNotesTooLong        = newRule(ErrInvalidRequest, "notes_too_long", "notes must be at most 500 characters")
	ErrWeekendMarking      = newRule(ErrInvalidRequest, "weekend_marking", "cannot mark attendance for weekends (Saturday & Sunday)")
	ErrCutoffRollToWeekend = newRule(ErrInvalidRequest, "cutoff_roll_to_weekend", "cannot mark attendance after 9:30 AM as tomorrow is weekend")
	ErrPastDateRestricted  = newRule(ErrForbidden, "past_date_restricted", "cannot mark attendance for past dates, contact admin if needed")
	ErrDeleteWindowClosed  = newRule(ErrForbidden, "delete_window_closed", "can only delete attendance for today (before 9:30 AM) or future dates")
	ErrAttendanceNotFound  = newRule(ErrNotFound, "attendance_not_found", "no attendance record found for this date")
	ErrMarkConflict        = newRule(ErrConflict, "mark_conflict", "attendance was modified concurrently, please retry")
	ErrInvalidDate         = newRule(ErrInvalidRequest, "invalid_date", "date must be formatted as YYYY-MM-DD")
	ErrInvalidDateRange    = newRule(ErrInvalidRequest, "invalid_date_range", "start date must not be after end date")
)

// Identity rejections.
var (
	ErrInvalidCredentials = newRule(ErrInvalidRequest, "invalid_credentials", "invalid credentials")
	ErrInvalidRole        = newRule(ErrInvalidRequest, "invalid_role", "role must be one of: admin, employee, chef")
	ErrUserNotFound       = newRule(ErrNotFound, "user_not_found", "user not found")
	ErrUserExists         = newRule(ErrConflict, "user_exists", "user already exists")
	ErrUserInactive       = newRule(ErrForbidden, "user_inactive", "account is deactivated")
	ErrRoleForbidden      = newRule(ErrForbidden, "role_forbidden", "access forbidden")
)

// CodeOf returns the RuleError code carried by err, or "" if there is none.
func CodeOf(err error) string {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
