// Package apperror defines the closed set of domain errors the application
// can surface to callers.
//
// Every failure that crosses a layer boundary is one of the sentinel errors
// below, wrapped in an *AppError carrying a human-readable message. HTTP
// handlers translate them to status codes in exactly one place
// (handler/response.go) — the service and repository layers never see a
// status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMethodNotSupported = errors.New("method not supported")
	ErrDispatchFailed     = errors.New("dispatch failed")
	ErrValidation         = errors.New("validation error")
)

// AppError pairs a sentinel error with the message shown to the caller.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable error message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing record, e.g. "Case with ID: abc not found".
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s with ID: %s not found", resource, id),
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// InvalidCredentials returns the uniform login failure. The message is
// deliberately identical for "no such user" and "wrong password" so the
// response does not reveal which one happened.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid email or password",
	}
}

// MethodNotSupported reports a dispatch attempt with an unexecutable verb.
func MethodNotSupported(method string) *AppError {
	return &AppError{
		Err:     ErrMethodNotSupported,
		Message: fmt.Sprintf("Method: %s is not supported", method),
	}
}

// DispatchFailed reports a transport-level failure reaching the target.
// The underlying cause stays in the chain for errors.Is.
func DispatchFailed(cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrDispatchFailed, cause),
		Message: fmt.Sprintf("Request failed: %v", cause),
	}
}

func ValidationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
	}
}
