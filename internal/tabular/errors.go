package tabular

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is the cause of a RowError for a header lacking a required column.
var ErrMissingColumn = errors.New("missing required column")

// RowError locates a failure in an input file.
type RowError struct {
	File string // empty when reading from a bare io.Reader
	Line int    // 1-based; the header is line 1
	Err  error
}

func (e *RowError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
