package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a gatepad error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrNoActiveFile       ErrorCode = "NO_ACTIVE_FILE"      // 409
	ErrBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE" // 502
	ErrStorage            ErrorCode = "STORAGE"             // 503
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// GatepadError represents a structured error with code, status, and details.
type GatepadError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *GatepadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *GatepadError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *GatepadError {
	return &GatepadError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing project, file or snapshot.
// kind is the entity name ("project", "file", "snapshot").
func NewNotFound(kind, id string) *GatepadError {
	return &GatepadError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewNoActiveFile creates a 409 error for operations that need a selected file.
func NewNoActiveFile() *GatepadError {
	return &GatepadError{
		Code:    ErrNoActiveFile,
		Status:  409,
		Message: "no file is selected",
	}
}

// NewBackendUnavailable creates a 502 error for a failed analysis backend call.
func NewBackendUnavailable(endpoint string, err error) *GatepadError {
	msg := fmt.Sprintf("backend call %s failed", endpoint)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &GatepadError{
		Code:    ErrBackendUnavailable,
		Status:  502,
		Message: msg,
		Details: map[string]any{"endpoint": endpoint},
		cause:   err,
	}
}

// NewStorage creates a 503 error for a failed read or write of persisted state.
func NewStorage(op string, err error) *GatepadError {
	msg := fmt.Sprintf("storage %s failed", op)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &GatepadError{
		Code:    ErrStorage,
		Status:  503,
		Message: msg,
		Details: map[string]any{"op": op},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *GatepadError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &GatepadError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a GatepadError with the given code.
func Is(err error, code ErrorCode) bool {
	var gErr *GatepadError
	if stderrors.As(err, &gErr) {
		return gErr.Code == code
	}
	return false
}

// As extracts a GatepadError from err, converting anything else to INTERNAL.
func As(err error) *GatepadError {
	var gErr *GatepadError
	if stderrors.As(err, &gErr) {
		return gErr
	}
	return NewInternal(err)
}
