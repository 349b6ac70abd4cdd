package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeSiteNotFound, "site not found", http.StatusNotFound),
			want: "SITE_NOT_FOUND: site not found",
		},
		{
			name: "with wrapped error",
			err:  Wrap(fmt.Errorf("connection reset"), CodeStorageFailed, "storage failure", http.StatusInternalServerError),
			want: "STORAGE_FAILED: storage failure: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(inner, "CODE", "msg", 500)

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestConstructors_WrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		sentinel error
	}{
		{"not found", NotFound(CodeSiteNotFound, "site not found"), ErrNotFound},
		{"bad request", BadRequest(CodeValidationFailed, "bad input"), ErrBadRequest},
		{"unauthorized", Unauthorized(CodeAuthFailed, "invalid credentials"), ErrUnauthorized},
		{"forbidden", ErrPermissionDenied("site:write"), ErrForbidden},
		{"conflict", Conflict(CodeUsernameTaken, "username taken"), ErrConflict},
		{"internal", Internal(CodeInternal, "boom"), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound(CodeMachineNotFound, "machine not found")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	got, ok := IsAppError(wrapped)
	if !ok {
		t.Fatal("IsAppError should return true for wrapped AppError")
	}
	if got.Code != CodeMachineNotFound {
		t.Errorf("Code = %q, want %s", got.Code, CodeMachineNotFound)
	}
}

func TestValidationError_Fields(t *testing.T) {
	verr := Validation("site", map[string]RuleCode{
		"siteName":   RuleRequired,
		"city":       RuleRequired,
		"postalCode": RulePostalCodeRange,
	})

	fields := verr.Fields()
	want := []string{"city", "postalCode", "siteName"}
	if len(fields) != len(want) {
		t.Fatalf("Fields() returned %d entries, want %d", len(fields), len(want))
	}
	for i, f := range want {
		if fields[i] != f {
			t.Errorf("Fields()[%d] = %q, want %q", i, fields[i], f)
		}
	}
	if !verr.Has("postalCode", RulePostalCodeRange) {
		t.Error("Has(postalCode, RulePostalCodeRange) = false, want true")
	}
}

func TestNotFoundError_Sentinel(t *testing.T) {
	err := NewNotFound("machine", 42)
	wrapped := fmt.Errorf("resolve technician: %w", err)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("NotFoundError should satisfy errors.Is(err, ErrNotFound)")
	}

	got, ok := IsNotFoundError(wrapped)
	if !ok {
		t.Fatal("IsNotFoundError should match wrapped NotFoundError")
	}
	if got.Entity != "machine" || got.ID != 42 {
		t.Errorf("got %q/%d, want machine/42", got.Entity, got.ID)
	}
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("duplicate key")
	serr := NewStorage("insert", "site", cause)

	if !errors.Is(serr, cause) {
		t.Error("StorageError should unwrap to its cause")
	}
	if _, ok := IsValidationError(serr); ok {
		t.Error("StorageError must not match IsValidationError")
	}
}
