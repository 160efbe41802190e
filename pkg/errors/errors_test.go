package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"tms/pkg/db"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidState, "bid is not pending")

	if err.Code != CodeInvalidState {
		t.Errorf("expected code %s, got %s", CodeInvalidState, err.Code)
	}
	if err.Message != "bid is not pending" {
		t.Errorf("expected message 'bid is not pending', got %s", err.Message)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error")

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   &AppError{Code: CodeNotFound, Message: "Bid not found"},
			expected: "NOT_FOUND: Bid not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped")

	if errors.Unwrap(appErr) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestAppError_Retryable(t *testing.T) {
	tests := []struct {
		err  *AppError
		want bool
	}{
		{Conflict("transporter modified"), true},
		{InsufficientCapacity("no trucks"), false},
		{InvalidState("not pending"), false},
		{NotFound("Bid"), false},
		{Internal("boom", nil), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if got := tt.err.Retryable(); got != tt.want {
				t.Errorf("Retryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code Code
	}{
		{"invalid state", InvalidState("x"), CodeInvalidState},
		{"insufficient capacity", InsufficientCapacity("x"), CodeInsufficientCapacity},
		{"conflict", Conflict("x"), CodeConflict},
		{"internal", Internal("x", nil), CodeInternal},
		{"validation", Validation("x", nil), CodeValidation},
		{"invalid input", InvalidInput("x"), CodeInvalidInput},
		{"not found", NotFound("Load"), CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "12345")

	if err.Message != "Booking not found" {
		t.Errorf("expected message 'Booking not found', got %s", err.Message)
	}
	if err.Details["id"] != "12345" {
		t.Errorf("expected id '12345', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Booking" {
		t.Errorf("expected resource 'Booking', got %v", err.Details["resource"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Load")
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	wrapped := fmt.Errorf("context: %w", appErr)
	if AsAppError(wrapped) != appErr {
		t.Errorf("AsAppError() should find AppError in a wrapped chain")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("accept: %w", Conflict("retry"))

	if !HasCode(err, CodeConflict) {
		t.Errorf("HasCode() should match wrapped conflict")
	}
	if HasCode(err, CodeNotFound) {
		t.Errorf("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Errorf("HasCode() should be false for non-AppError")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	jsonStr := string(NotFoundWithID("Bid", "12345").ToJSON())

	if !strings.Contains(jsonStr, "NOT_FOUND") {
		t.Errorf("ToJSON() should contain error code")
	}
	if !strings.Contains(jsonStr, "Bid not found") {
		t.Errorf("ToJSON() should contain error message")
	}
}

func TestFromTransaction(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"app error passes through", InsufficientCapacity("short"), CodeInsufficientCapacity},
		{"commit conflict", fmt.Errorf("commit: %w", db.ErrVersionConflict), CodeConflict},
		{"anything else", errors.New("socket closed"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromTransaction(tt.err, "Failed to accept bid")
			if !HasCode(got, tt.want) {
				t.Errorf("FromTransaction() = %v, want code %s", got, tt.want)
			}
		})
	}

	if FromTransaction(nil, "noop") != nil {
		t.Error("FromTransaction(nil) should be nil")
	}
}
