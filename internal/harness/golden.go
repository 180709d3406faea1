package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
)

// Snapshot renders a history as canonical JSON for golden comparison:
// the scenario name, the column set and every record in output order.
func Snapshot(name string, h *history.History) ([]byte, error) {
	records := make(ir.IRArray, len(h.Records))
	for i, r := range h.Records {
		records[i] = r.ToIR()
	}
	return ir.MarshalCanonical(ir.IRObject{
		"scenario_name": ir.IRString(name),
		"columns":       ir.StringArray(h.Columns),
		"records":       records,
	})
}

// RunWithGolden executes a scenario and compares the history against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the history doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's history against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result.History)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
