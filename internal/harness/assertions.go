package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Records  []ir.Record // Records of the object concerned, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Records) > 0 {
		fmt.Fprintf(&buf, "\nRecords:\n")
		for i, r := range e.Records {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, describeRecord(r))
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(h *history.History, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(h, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluateAssertion(h *history.History, a Assertion) error {
	switch a.Type {
	case AssertRecordCount:
		return assertRecordCount(h, a)
	case AssertValueAt:
		return assertValueAt(h, a)
	case AssertColumns:
		return assertColumns(h, a)
	case AssertOrphans:
		return assertOrphans(h, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertRecordCount checks the number of records of one object.
func assertRecordCount(h *history.History, a Assertion) error {
	records := h.RecordsFor(a.Object)
	if len(records) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordCount,
		Expected: fmt.Sprintf("object %d has %d records", a.Object, a.Count),
		Actual:   fmt.Sprintf("%d records", len(records)),
		Records:  records,
	}
}

// assertValueAt finds the record whose interval covers At and checks one
// attribute. Intervals are half-open except the last, which includes its end.
func assertValueAt(h *history.History, a Assertion) error {
	at, err := ir.ParseInstant(a.At)
	if err != nil {
		return fmt.Errorf("value_at: %w", err)
	}

	records := h.RecordsFor(a.Object)
	rec, ok := recordAt(records, at)
	if !ok {
		return &AssertionError{
			Type:     AssertValueAt,
			Expected: fmt.Sprintf("object %d has a record covering %s", a.Object, a.At),
			Actual:   "no covering record",
			Records:  records,
		}
	}

	got, present := rec.Attributes.Get(a.Name)
	switch {
	case a.Absent && !present:
		return nil
	case a.Absent:
		return &AssertionError{
			Type:     AssertValueAt,
			Expected: fmt.Sprintf("%s absent at %s", a.Name, a.At),
			Actual:   fmt.Sprintf("%s = %q", a.Name, got),
			Records:  records,
		}
	case !present:
		return &AssertionError{
			Type:     AssertValueAt,
			Expected: fmt.Sprintf("%s = %q at %s", a.Name, a.Value, a.At),
			Actual:   fmt.Sprintf("%s absent", a.Name),
			Records:  records,
		}
	case got != a.Value:
		return &AssertionError{
			Type:     AssertValueAt,
			Expected: fmt.Sprintf("%s = %q at %s", a.Name, a.Value, a.At),
			Actual:   fmt.Sprintf("%s = %q", a.Name, got),
			Records:  records,
		}
	}
	return nil
}

// assertColumns checks the history's attribute column set.
func assertColumns(h *history.History, a Assertion) error {
	want := a.Columns
	if want == nil {
		want = []string{}
	}
	if slices.Equal(h.Columns, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertColumns,
		Expected: fmt.Sprintf("columns %v", want),
		Actual:   fmt.Sprintf("columns %v", h.Columns),
	}
}

// assertOrphans checks the number of dropped attribute rows.
func assertOrphans(h *history.History, a Assertion) error {
	if h.Orphans == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertOrphans,
		Expected: fmt.Sprintf("%d orphan attributes", a.Count),
		Actual:   fmt.Sprintf("%d orphan attributes", h.Orphans),
	}
}

// compareExpectation compares the full history with an expectation.
func compareExpectation(h *history.History, want *Expectation) []string {
	var failures []string

	if want.Columns != nil && !slices.Equal(h.Columns, want.Columns) {
		failures = append(failures, fmt.Sprintf("expect.columns: got %v, want %v", h.Columns, want.Columns))
	}

	if len(h.Records) != len(want.Records) {
		failures = append(failures, fmt.Sprintf("expect.records: got %d records, want %d", len(h.Records), len(want.Records)))
	}

	for i := range min(len(h.Records), len(want.Records)) {
		if msg := compareRecord(h.Records[i], want.Records[i]); msg != "" {
			failures = append(failures, fmt.Sprintf("expect.records[%d]: %s", i, msg))
		}
	}
	return failures
}

func compareRecord(got ir.Record, want ExpectedRecord) string {
	var diffs []string

	if got.ObjectID != want.ID {
		diffs = append(diffs, fmt.Sprintf("id %d, want %d", got.ObjectID, want.ID))
	}
	if msg := compareInstant("created", got.Created, want.Created); msg != "" {
		diffs = append(diffs, msg)
	}
	if msg := compareInstant("terminated", got.Terminated, want.Terminated); msg != "" {
		diffs = append(diffs, msg)
	}

	wantAttrs := ir.AttributeSet(want.Attributes)
	if wantAttrs == nil {
		wantAttrs = ir.AttributeSet{}
	}
	if !maps.Equal(got.Attributes, wantAttrs) {
		diffs = append(diffs, fmt.Sprintf("attributes %v, want %v", got.Attributes, wantAttrs))
	}

	return strings.Join(diffs, "; ")
}

func compareInstant(field string, got time.Time, want string) string {
	w, err := ir.ParseInstant(want)
	if err != nil {
		return fmt.Sprintf("%s: %v", field, err)
	}
	if !got.Equal(w) {
		return fmt.Sprintf("%s %s, want %s", field, ir.FormatInstant(got, ir.OpenEndedLabel), want)
	}
	return ""
}

// recordAt returns the record covering t.
func recordAt(records []ir.Record, t time.Time) (ir.Record, bool) {
	for i, r := range records {
		last := i == len(records)-1
		if t.Before(r.Created) {
			continue
		}
		if t.Before(r.Terminated) || (last && t.Equal(r.Terminated)) {
			return r, true
		}
	}
	return ir.Record{}, false
}

func describeRecord(r ir.Record) string {
	parts := make([]string, 0, len(r.Attributes))
	for _, name := range r.Attributes.Names() {
		parts = append(parts, name+"="+r.Attributes[name])
	}
	return fmt.Sprintf("object %d [%s, %s) {%s}", r.ObjectID,
		ir.FormatInstant(r.Created, ir.OpenEndedLabel),
		ir.FormatInstant(r.Terminated, ir.OpenEndedLabel),
		strings.Join(parts, ", "))
}
