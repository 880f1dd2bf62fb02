package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeExpired           = "EXPIRED"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrCodeAlreadyConsumed   = "ALREADY_CONSUMED"
	ErrCodeSelfReferral      = "SELF_REFERRAL"
	ErrCodeAlreadySet        = "ALREADY_SET"
	ErrCodeNotVerified       = "NOT_VERIFIED"
	ErrCodeSlotLimitReached  = "SLOT_LIMIT_REACHED"
	ErrCodeEditLimitReached  = "EDIT_LIMIT_REACHED"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// CodeOf returns the application error code carried by err, or
// ErrCodeInternalError when err is not an *AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternalError
}

// HasCode reports whether err carries the given application error code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps an error to the HTTP status the transport layer should
// answer with. Business-rule failures map to 4xx, everything else to 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch CodeOf(err) {
	case ErrCodeValidation, ErrCodeSelfReferral:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeNotVerified:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict, ErrCodeAlreadySet, ErrCodeAlreadyConsumed, ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeExpired, ErrCodeInvalidState:
		return http.StatusGone
	case ErrCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case ErrCodeSlotLimitReached, ErrCodeEditLimitReached:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
