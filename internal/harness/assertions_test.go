package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
	"github.com/roach88/snaphist/internal/testutil"
)

func sampleHistory() *history.History {
	objects := []ir.Object{testutil.Object(1, "2020-01-01", "2020-03-01")}
	attrs := []ir.Attribute{
		testutil.Attr(10, 1, "color", "red", "2020-01-01", "2020-01-31"),
		testutil.Attr(11, 1, "color", "blue", "2020-02-01", "infinity"),
		testutil.Attr(12, 7, "ghost", "x", "2020-01-01", "infinity"),
	}
	return history.Reconstruct(objects, attrs, history.Options{})
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	h := sampleHistory()

	failures := EvaluateAssertions(h, []Assertion{
		{Type: AssertRecordCount, Object: 1, Count: 3},
		{Type: AssertValueAt, Object: 1, At: "2020-01-15", Name: "color", Value: "red"},
		{Type: AssertValueAt, Object: 1, At: "2020-02-01", Name: "color", Value: "blue"},
		// The final zero-length record covers the terminated instant.
		{Type: AssertValueAt, Object: 1, At: "2020-03-01", Name: "color", Value: "blue"},
		{Type: AssertValueAt, Object: 1, At: "2020-01-15", Name: "size", Absent: true},
		{Type: AssertColumns, Columns: []string{"color"}},
		{Type: AssertOrphans, Count: 1},
	})
	assert.Empty(t, failures)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	h := sampleHistory()

	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"count", Assertion{Type: AssertRecordCount, Object: 1, Count: 2}, "object 1 has 2 records"},
		{"wrong value", Assertion{Type: AssertValueAt, Object: 1, At: "2020-01-15", Name: "color", Value: "blue"}, `Actual: color = "red"`},
		{"missing value", Assertion{Type: AssertValueAt, Object: 1, At: "2020-01-15", Name: "size", Value: "L"}, "size absent"},
		{"unexpected value", Assertion{Type: AssertValueAt, Object: 1, At: "2020-01-15", Name: "color", Absent: true}, "color absent at"},
		{"before lifetime", Assertion{Type: AssertValueAt, Object: 1, At: "2019-01-01", Name: "color", Value: "red"}, "no covering record"},
		{"unknown object", Assertion{Type: AssertValueAt, Object: 9, At: "2020-01-15", Name: "color", Value: "red"}, "no covering record"},
		{"columns", Assertion{Type: AssertColumns, Columns: []string{"color", "ghost"}}, "columns [color ghost]"},
		{"orphans", Assertion{Type: AssertOrphans, Count: 0}, "0 orphan attributes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := EvaluateAssertions(h, []Assertion{tt.assertion})
			require.Len(t, failures, 1)
			assert.Contains(t, failures[0], tt.want)
			assert.Contains(t, failures[0], "assertions[0]")
		})
	}
}

func TestAssertionError_IncludesRecords(t *testing.T) {
	h := sampleHistory()

	err := assertRecordCount(h, Assertion{Type: AssertRecordCount, Object: 1, Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Records:")
	assert.Contains(t, err.Error(), "object 1 [2020-01-01 00:00:00, 2020-02-01 00:00:00) {color=red}")
}

func TestRecordAt(t *testing.T) {
	records := sampleHistory().RecordsFor(1)

	r, ok := recordAt(records, testutil.At("2020-02-01"))
	require.True(t, ok)
	assert.True(t, r.Created.Equal(testutil.At("2020-02-01")), "half-open: the boundary belongs to the later record")

	_, ok = recordAt(records, testutil.At("2020-03-02"))
	assert.False(t, ok)
}

func TestSnapshot_Canonical(t *testing.T) {
	h := history.Reconstruct(
		[]ir.Object{{ID: 1, Created: testutil.At("2020-01-01"), Terminated: ir.OpenEnded}},
		nil, history.Options{})

	data, err := Snapshot("empty", h)
	require.NoError(t, err)
	assert.Equal(t,
		`{"columns":[],"records":[{"attributes":{},"created":"2020-01-01 00:00:00","eid":"","etype":"","id":1,"plant":"","scope":"","terminated":"infinity","type":""}],"scenario_name":"empty"}`,
		string(data))
}
