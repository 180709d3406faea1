package ir

import (
	"errors"
	"fmt"
)

// ErrBadInstant is the cause of a ParseError for unparseable date/time values.
var ErrBadInstant = errors.New("unrecognised date/time format")

// ParseError reports a field value that could not be parsed.
// Parse failures abort a reconstruction; there is no partial output.
type ParseError struct {
	// Field names the column, when known.
	Field string

	// Input is the raw text that failed to parse.
	Input string

	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
