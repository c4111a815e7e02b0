package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors, one per kind a callable can report to its client.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAlreadyExists      = errors.New("already exists")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrNotFound           = errors.New("not found")
	ErrResourceExhausted  = errors.New("resource exhausted")
	ErrInternal           = errors.New("internal error")
)

// Kind is the client-visible error category of a callable failure.
type Kind string

const (
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindPermissionDenied   Kind = "PERMISSION_DENIED"
	KindInvalidArgument    Kind = "INVALID_ARGUMENT"
	KindAlreadyExists      Kind = "ALREADY_EXISTS"
	KindFailedPrecondition Kind = "FAILED_PRECONDITION"
	KindNotFound           Kind = "NOT_FOUND"
	KindResourceExhausted  Kind = "RESOURCE_EXHAUSTED"
	KindInternal           Kind = "INTERNAL"
)

// AppError is a structured error carrying its kind and HTTP status.
type AppError struct {
	Code    Kind   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthenticated reports a call made without a valid identity.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Code:    KindUnauthenticated,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthenticated,
	}
}

// PermissionDenied reports a caller whose claims do not grant the operation.
func PermissionDenied(message string) *AppError {
	return &AppError{
		Code:    KindPermissionDenied,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrPermissionDenied,
	}
}

// InvalidArgument reports a malformed input field.
func InvalidArgument(field, message string) *AppError {
	return &AppError{
		Code:    KindInvalidArgument,
		Message: message,
		Field:   field,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidArgument,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    KindAlreadyExists,
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Field:   field,
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// FailedPrecondition reports an operation refused because of current system state.
func FailedPrecondition(message string) *AppError {
	return &AppError{
		Code:    KindFailedPrecondition,
		Message: message,
		Status:  http.StatusPreconditionFailed,
		Err:     ErrFailedPrecondition,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    KindNotFound,
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// ResourceExhausted reports a caller that exceeded its request quota.
func ResourceExhausted(message string) *AppError {
	return &AppError{
		Code:    KindResourceExhausted,
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     ErrResourceExhausted,
	}
}

// Internal creates a 500 error. The cause is kept for logging and never
// rendered to the client.
func Internal(message string, err error) *AppError {
	if message == "" {
		message = "an internal error occurred"
	}
	if err == nil {
		err = ErrInternal
	}
	return &AppError{
		Code:    KindInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf maps any error into the callable error taxonomy. Errors that carry
// no recognizable kind are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrFailedPrecondition):
		return KindFailedPrecondition
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrResourceExhausted):
		return KindResourceExhausted
	default:
		return KindInternal
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return StatusForKind(KindOf(err))
}

// StatusForKind returns the HTTP status used to render the given kind.
func StatusForKind(k Kind) int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindAlreadyExists:
		return http.StatusConflict
	case KindFailedPrecondition:
		return http.StatusPreconditionFailed
	case KindNotFound:
		return http.StatusNotFound
	case KindResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
