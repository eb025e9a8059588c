package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure taxonomy.
var (
	ErrNetworkFailure = errors.New("network failure")
	ErrNotFound       = errors.New("resource not found")
	ErrServerFailure  = errors.New("server failure")
	ErrSuperseded     = errors.New("request superseded")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
)

// Kind classifies a failure for the presentation layer.
type Kind string

const (
	KindNetworkFailure Kind = "network_failure"
	KindNotFound       Kind = "not_found"
	KindServerFailure  Kind = "server_failure"
	KindSuperseded     Kind = "superseded"
	KindUnknown        Kind = "unknown"
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// networkError keeps both the sentinel and the transport cause in the chain.
type networkError struct {
	cause error
}

func (e *networkError) Error() string { return ErrNetworkFailure.Error() + ": " + e.cause.Error() }

func (e *networkError) Unwrap() []error { return []error{ErrNetworkFailure, e.cause} }

// NetworkFailure creates an error for a service that could not be reached.
func NetworkFailure(service string, err error) *AppError {
	var cause error = ErrNetworkFailure
	if err != nil {
		cause = &networkError{cause: err}
	}
	return &AppError{
		Code:    "NETWORK_FAILURE",
		Message: fmt.Sprintf("%s is unreachable", service),
		Status:  http.StatusBadGateway,
		Err:     cause,
	}
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// ServerFailure creates an error for a non-success response other than 404.
func ServerFailure(service string, status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("%s responded with status %d", service, status)
	}
	return &AppError{
		Code:    "SERVER_FAILURE",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     ErrServerFailure,
	}
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     ErrServiceUnavail,
	}
}

// Superseded marks a result that arrived after a newer request was issued.
func Superseded(resource string) *AppError {
	return &AppError{
		Code:    "SUPERSEDED",
		Message: fmt.Sprintf("%s request superseded", resource),
		Status:  http.StatusConflict,
		Err:     ErrSuperseded,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf classifies err. Context errors count as network failures since the
// response never arrived.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrSuperseded):
		return KindSuperseded
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNetworkFailure),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindNetworkFailure
	case errors.Is(err, ErrServerFailure), errors.Is(err, ErrServiceUnavail):
		return KindServerFailure
	default:
		return KindUnknown
	}
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNetworkFailure), errors.Is(err, ErrServerFailure):
		return http.StatusBadGateway
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
