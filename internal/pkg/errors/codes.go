package errors

import "net/http"

// RuleCode identifies one violated business rule on one field.
// Codes are stable: the presentation layer maps them to per-field messages.
type RuleCode string

// Field-level rule codes shared across entity families.
const (
	RuleRequired           RuleCode = "FIELD_REQUIRED"
	RuleNotPositive        RuleCode = "NUMBER_NOT_POSITIVE"
	RulePostalCodeRange    RuleCode = "POSTAL_CODE_OUT_OF_RANGE"
	RuleEndDateBeforeStart RuleCode = "END_DATE_BEFORE_START"
	RuleInvalidStatus      RuleCode = "STATUS_INVALID"
	RuleInvalidRole        RuleCode = "ROLE_INVALID"
)

// Not-found error codes, one per aggregate family.
const (
	CodeSiteNotFound         = "SITE_NOT_FOUND"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeMachineNotFound      = "MACHINE_NOT_FOUND"
	CodeMaintenanceNotFound  = "MAINTENANCE_NOT_FOUND"
	CodeReportNotFound       = "REPORT_NOT_FOUND"
	CodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
)

// Validation and storage error codes.
const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeStorageFailed    = "STORAGE_FAILED"
	CodeCascadeFailed    = "CASCADE_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// Conflict error codes.
const (
	CodeUsernameTaken   = "USERNAME_TAKEN"
	CodeSiteHasMachines = "SITE_HAS_MACHINES"
)

// Auth error codes.
const (
	CodeAuthFailed       = "AUTH_FAILED"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeTokenInvalid     = "TOKEN_INVALID"
	CodePermissionDenied = "PERMISSION_DENIED"
)

// CodeNotFound maps an entity family name to its not-found code.
func CodeNotFound(entity string) string {
	switch entity {
	case "site":
		return CodeSiteNotFound
	case "user":
		return CodeUserNotFound
	case "machine":
		return CodeMachineNotFound
	case "maintenance":
		return CodeMaintenanceNotFound
	case "report":
		return CodeReportNotFound
	case "notification":
		return CodeNotificationNotFound
	default:
		return "NOT_FOUND"
	}
}

// Convenience constructors using predefined codes.

// ErrPermissionDenied creates a policy-denial error for an operation.
func ErrPermissionDenied(operation string) *AppError {
	return Forbidden(CodePermissionDenied, "operation not permitted: "+operation)
}

// ErrCascadeFailed wraps a failed cross-aggregate cascade. The triggering
// write has already committed; only the dependent write failed.
func ErrCascadeFailed(err error) *AppError {
	return &AppError{
		Code:       CodeCascadeFailed,
		Message:    "dependent aggregate update failed after commit",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
