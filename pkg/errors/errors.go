package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries a stable machine code, the HTTP status to respond with
// and a human-readable message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error renders the message, appending the wrapped cause when present.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds a standalone typed error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap annotates an underlying error with a code, status and message.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Shared error vocabulary. Handlers compare codes, not messages.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// Recruitment pipeline errors.
	ErrMSPInactive        = New("MSP_INACTIVE", http.StatusBadRequest, "msp code is inactive")
	ErrMSPProgramMismatch = New("MSP_PROGRAM_MISMATCH", http.StatusBadRequest, "msp code does not belong to the candidate's program")
	ErrMSPNotVacant       = New("MSP_NOT_VACANT", http.StatusBadRequest, "msp code is not vacant")
	ErrMSPTaken           = New("MSP_TAKEN", http.StatusBadRequest, "msp code is already taken by another candidate")
	ErrStageOrderMismatch = New("STAGE_ORDER_MISMATCH", http.StatusBadRequest, "stage order does not match the requested slot")

	// Day-close errors. The paused message substring is a wire contract:
	// clients pattern-match "day close paused" to surface the escalation
	// contact affordance instead of a generic error toast.
	ErrDayClosePaused     = New("DAY_CLOSE_PAUSED", http.StatusForbidden, "day close paused due to an unresolved escalation")
	ErrOutsideWindow      = New("OUTSIDE_CLOSING_WINDOW", http.StatusBadRequest, "day close submitted outside the closing window")
	ErrRoutineLogRequired = New("ROUTINE_LOG_REQUIRED", http.StatusBadRequest, "routine log is required before closing the day")

	// ErrCacheMiss signals a cache lookup found no entry.
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError coerces any error into the typed shape, defaulting unknown
// errors to an internal 500.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone copies a shared error so the message can be specialised without
// mutating the sentinel.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
