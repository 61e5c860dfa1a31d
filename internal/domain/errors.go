package domain

import "fmt"

// AppError is the base domain error type. Message becomes the "error" field
// of the JSON response, Details the optional "details" field.
type AppError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrConfiguration(msg string) *AppError {
	return &AppError{Status: 500, Message: msg}
}

func ErrUnauthenticated() *AppError {
	return &AppError{Status: 401, Message: "Unauthorized"}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Status: 403, Message: msg}
}

func ErrValidation(msg string) *AppError {
	return &AppError{Status: 400, Message: msg}
}

// ErrUpstream wraps a failed required call to the identity provider or the
// data store; the upstream error text is surfaced in the details field.
func ErrUpstream(msg string, cause error) *AppError {
	e := &AppError{Status: 500, Message: msg, Cause: cause}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func ErrInternal(msg string) *AppError {
	return &AppError{Status: 500, Message: msg}
}

// ErrUnexpected covers any otherwise uncaught failure.
func ErrUnexpected(cause error) *AppError {
	e := &AppError{Status: 500, Message: "Unexpected error", Cause: cause}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}
