package airtable

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the base or table itself could not be found. This is
// a configuration fault, not a data condition: callers treat it as fatal.
var ErrNotFound = errors.New("airtable: base or table not found")

// IsNotFound reports whether err is the fatal base/table misconfiguration.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// UnknownFieldError is returned when a write references a field that does
// not exist in the external schema (HTTP 422, UNKNOWN_FIELD_NAME).
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("airtable: unknown field %q", e.Field)
}

// AsUnknownField extracts an UnknownFieldError from err, if present.
func AsUnknownField(err error) (*UnknownFieldError, bool) {
	var ufe *UnknownFieldError
	if errors.As(err, &ufe) {
		return ufe, true
	}
	return nil, false
}
