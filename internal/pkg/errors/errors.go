// Package errors provides the typed error taxonomy for PlantKeeper.
//
// Four concerns are distinguished so callers can pattern-match on failure
// kind: validation (per-field rule violations collected by a builder),
// not-found (missing aggregate or foreign reference), storage (transaction
// level failures) and authorization (policy denial).
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for common failure scenarios.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
	ErrConflict      = errors.New("conflict")
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "SITE_NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code.
	HTTPStatus int `json:"-"`

	// Err is the wrapped underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Common error constructors. Each wraps its sentinel so that
// errors.Is(err, ErrUnauthorized) and friends hold on the result.

// NotFound creates a 404 error.
func NotFound(code, message string) *AppError {
	return Wrap(ErrNotFound, code, message, http.StatusNotFound)
}

// BadRequest creates a 400 error.
func BadRequest(code, message string) *AppError {
	return Wrap(ErrBadRequest, code, message, http.StatusBadRequest)
}

// Unauthorized creates a 401 error.
func Unauthorized(code, message string) *AppError {
	return Wrap(ErrUnauthorized, code, message, http.StatusUnauthorized)
}

// Forbidden creates a 403 error.
func Forbidden(code, message string) *AppError {
	return Wrap(ErrForbidden, code, message, http.StatusForbidden)
}

// Conflict creates a 409 error.
func Conflict(code, message string) *AppError {
	return Wrap(ErrConflict, code, message, http.StatusConflict)
}

// Internal creates a 500 error.
func Internal(code, message string) *AppError {
	return Wrap(ErrInternal, code, message, http.StatusInternalServerError)
}

// IsAppError checks if an error is an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ValidationError carries the complete set of rule violations collected by a
// builder for one entity family. The Violations map (field name → rule code)
// is the stable contract the presentation layer renders per-field messages
// from; it is never truncated to the first failure.
type ValidationError struct {
	// Entity is the aggregate family the violations belong to (e.g. "site").
	Entity string `json:"entity"`

	// Violations maps field name to the violated rule code.
	Violations map[string]RuleCode `json:"violations"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Entity, strings.Join(e.Fields(), ", "))
}

// Fields returns the violated field names in stable (sorted) order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Has reports whether the given field carries the given rule code.
func (e *ValidationError) Has(field string, code RuleCode) bool {
	return e.Violations[field] == code
}

// Validation creates a ValidationError for the given entity family.
func Validation(entity string, violations map[string]RuleCode) *ValidationError {
	return &ValidationError{Entity: entity, Violations: violations}
}

// IsValidationError checks if an error is a ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// NotFoundError identifies a missing aggregate or foreign reference.
type NotFoundError struct {
	// Entity is the aggregate family looked up (e.g. "machine").
	Entity string `json:"entity"`

	// ID is the identifier that did not resolve.
	ID int64 `json:"id"`
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Unwrap makes errors.Is(err, ErrNotFound) hold for every NotFoundError.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a NotFoundError for the given entity family and id.
func NewNotFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFoundError checks if an error is a NotFoundError and returns it.
func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nferr *NotFoundError
	if errors.As(err, &nferr) {
		return nferr, true
	}
	return nil, false
}

// StorageError wraps a transaction-level failure raised by a repository.
// The originating transaction has already been rolled back when a
// StorageError surfaces.
type StorageError struct {
	// Op is the repository operation that failed ("insert", "update", ...).
	Op string `json:"op"`

	// Entity is the aggregate family being persisted.
	Entity string `json:"entity"`

	// Err is the underlying storage failure.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StorageError) Unwrap() error { return e.Err }

// NewStorage creates a StorageError.
func NewStorage(op, entity string, err error) *StorageError {
	return &StorageError{Op: op, Entity: entity, Err: err}
}

// IsStorageError checks if an error is a StorageError and returns it.
func IsStorageError(err error) (*StorageError, bool) {
	var serr *StorageError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
