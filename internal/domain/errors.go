package domain

import (
	"errors"
)

// Domain error types raised by the API client and workflow controller
type (
	// ValidationError indicates missing or invalid input; it never
	// reaches the network.
	ValidationError struct {
		Message string
	}

	// ServerUnreachableError indicates a transport-level failure
	// (connection refused, name resolution, timeout) as opposed to an
	// application-level error response.
	ServerUnreachableError struct {
		Message string
	}

	// ApplicationError carries a backend-supplied or status-line error
	// message for a non-2xx response.
	ApplicationError struct {
		Message string
		Status  int
	}

	// EmptyResponseError indicates a success status with an unusable or
	// empty payload.
	EmptyResponseError struct {
		Message string
	}
)

// Error implementations
func (e *ValidationError) Error() string        { return e.Message }
func (e *ServerUnreachableError) Error() string { return e.Message }
func (e *ApplicationError) Error() string       { return e.Message }
func (e *EmptyResponseError) Error() string     { return e.Message }

// Sentinel errors - use with errors.Is()
var (
	ErrValidation        = errors.New("validation failed")
	ErrServerUnreachable = errors.New("server unreachable")
	ErrEmptyResponse     = errors.New("empty response")
	ErrBusy              = errors.New("operation already in progress")
)

// Is implementations so the typed errors match their sentinels
func (e *ValidationError) Is(target error) bool        { return target == ErrValidation }
func (e *ServerUnreachableError) Is(target error) bool { return target == ErrServerUnreachable }
func (e *EmptyResponseError) Is(target error) bool     { return target == ErrEmptyResponse }
