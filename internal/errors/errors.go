// Package errors centralises the error values and HTTP error rendering used
// across the service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error with an associated HTTP status for the API layer.
type Error struct {
	Status int
	Msg    string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.cause }

func wrap(status int, msg string, cause error) *Error {
	return &Error{Status: status, Msg: msg, cause: cause}
}

// QueryFailed wraps a failed historical query.
func QueryFailed(filter string, cause error) error {
	return wrap(http.StatusBadGateway, fmt.Sprintf("historical query %q failed", filter), cause)
}

// DecodeFailed wraps a malformed server response.
func DecodeFailed(what string, cause error) error {
	return wrap(http.StatusBadGateway, fmt.Sprintf("decode %s failed", what), cause)
}

// SnapshotFailed wraps a snapshot store failure.
func SnapshotFailed(op string, cause error) error {
	return wrap(http.StatusInternalServerError, fmt.Sprintf("snapshot %s failed", op), cause)
}

// InitConfigFailed wraps a configuration load failure.
func InitConfigFailed(cause error) error {
	return wrap(http.StatusInternalServerError, "init config failed", cause)
}

// As extracts an *Error from err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
