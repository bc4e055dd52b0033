// Package apperr defines the closed set of error variants the API can
// surface, each carrying the HTTP status it maps to. Handlers match on
// *Error with errors.As; anything else is an internal error.
package apperr

import "fmt"

// Error is an API-visible failure with a fixed HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation reports a malformed or missing client input (400).
func Validation(format string, args ...any) *Error {
	return &Error{Status: 400, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing route or resource (404).
func NotFound(format string, args ...any) *Error {
	return &Error{Status: 404, Message: fmt.Sprintf(format, args...)}
}

// InvalidID reports a malformed identifier. The original system mapped
// cast failures to 404, and that mapping is kept.
func InvalidID(field string) *Error {
	return &Error{Status: 404, Message: fmt.Sprintf("Resource not found. Invalid %s", field)}
}

// Duplicate reports a duplicate-key store rejection (400).
func Duplicate(field string) *Error {
	return &Error{Status: 400, Message: fmt.Sprintf("Duplicate %s entered", field)}
}
