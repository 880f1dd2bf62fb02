package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeNotFound, "user not found")
	if got, want := e.Error(), "NOT_FOUND: user not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := Wrap(errors.New("sql: no rows"), ErrCodeNotFound, "user not found")
	if got, want := wrapped.Error(), "NOT_FOUND: user not found (sql: no rows)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := Wrap(cause, ErrCodeInternalError, "store unavailable")

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should see through Wrap")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCodeConflict, "lost the race")); got != ErrCodeConflict {
		t.Errorf("CodeOf() = %q, want %q", got, ErrCodeConflict)
	}

	// AppError buried under plain wrapping is still found.
	buried := fmt.Errorf("purchase: %w", New(ErrCodeInsufficientFunds, "balance too low"))
	if got := CodeOf(buried); got != ErrCodeInsufficientFunds {
		t.Errorf("CodeOf(buried) = %q, want %q", got, ErrCodeInsufficientFunds)
	}

	if got := CodeOf(errors.New("plain")); got != ErrCodeInternalError {
		t.Errorf("CodeOf(plain) = %q, want %q", got, ErrCodeInternalError)
	}
}

func TestHasCode(t *testing.T) {
	err := New(ErrCodeExpired, "code expired")
	if !HasCode(err, ErrCodeExpired) {
		t.Error("HasCode() = false, want true")
	}
	if HasCode(err, ErrCodeConflict) {
		t.Error("HasCode() with wrong code = true, want false")
	}
	if HasCode(nil, ErrCodeExpired) {
		t.Error("HasCode(nil) = true, want false")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeSelfReferral, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotVerified, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeAlreadySet, http.StatusConflict},
		{ErrCodeAlreadyConsumed, http.StatusConflict},
		{ErrCodeExpired, http.StatusGone},
		{ErrCodeInvalidState, http.StatusGone},
		{ErrCodeInsufficientFunds, http.StatusPaymentRequired},
		{ErrCodeSlotLimitReached, http.StatusUnprocessableEntity},
		{ErrCodeEditLimitReached, http.StatusUnprocessableEntity},
		{ErrCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := HTTPStatus(New(tt.code, "msg")); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}

	if got := HTTPStatus(nil); got != http.StatusOK {
		t.Errorf("HTTPStatus(nil) = %d, want %d", got, http.StatusOK)
	}
	if got := HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain) = %d, want %d", got, http.StatusInternalServerError)
	}
}
