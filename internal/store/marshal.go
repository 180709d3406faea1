package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/snaphist/internal/ir"
)

// instantLayout keeps full nanosecond precision so a stored instant reads
// back equal to the one written.
const instantLayout = "2006-01-02 15:04:05.999999999"

// marshalInstant converts an instant to TEXT for storage.
func marshalInstant(t time.Time) string {
	if ir.IsOpenEnded(t) {
		return ir.OpenEndedLabel
	}
	return t.UTC().Format(instantLayout)
}

// unmarshalInstant parses an instant written by marshalInstant.
func unmarshalInstant(field, s string) (time.Time, error) {
	if s == ir.OpenEndedLabel {
		return ir.OpenEnded, nil
	}
	t, err := time.Parse(instantLayout, s)
	if err != nil {
		return time.Time{}, &ir.ParseError{Field: field, Input: s, Err: ir.ErrBadInstant}
	}
	return t.UTC(), nil
}

// marshalAttributes converts an AttributeSet to canonical JSON TEXT.
func marshalAttributes(attrs ir.AttributeSet) (string, error) {
	if attrs == nil {
		attrs = ir.AttributeSet{}
	}
	data, err := ir.MarshalCanonical(attrs)
	if err != nil {
		return "", fmt.Errorf("marshal attributes: %w", err)
	}
	return string(data), nil
}

// unmarshalAttributes parses canonical JSON TEXT into an AttributeSet.
func unmarshalAttributes(data string) (ir.AttributeSet, error) {
	attrs := ir.AttributeSet{}
	if err := json.Unmarshal([]byte(data), &attrs); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return attrs, nil
}

// marshalColumns converts a column list to canonical JSON TEXT.
func marshalColumns(columns []string) (string, error) {
	if columns == nil {
		columns = []string{}
	}
	data, err := ir.MarshalCanonical(columns)
	if err != nil {
		return "", fmt.Errorf("marshal columns: %w", err)
	}
	return string(data), nil
}

// unmarshalColumns parses a column list written by marshalColumns.
func unmarshalColumns(data string) ([]string, error) {
	columns := []string{}
	if err := json.Unmarshal([]byte(data), &columns); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	return columns, nil
}
