package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 5)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.HistoryHash, 64)
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/01_value_change.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)

	scenario.Options.Workers = 4
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.HistoryHash, second.HistoryHash)
}

func TestRun_ExpectationMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expects the wrong value",
		Objects:     []ObjectRow{{ID: 1, Created: "2020-01-01", Terminated: "infinity"}},
		Attributes: []AttributeRow{
			{ID: 10, ObjID: 1, Def: "color", Value: "red", Created: "2020-01-01", Terminated: "infinity"},
		},
		Expect: &Expectation{
			Columns: []string{"colour"},
			Records: []ExpectedRecord{
				{ID: 1, Created: "2020-01-01", Terminated: "infinity", Attributes: map[string]string{"color": "blue"}},
				{ID: 1, Created: "2020-02-01", Terminated: "infinity"},
			},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "expect.columns")
	assert.Contains(t, result.Errors[1], "got 1 records, want 2")
	assert.Contains(t, result.Errors[2], "expect.records[0]: attributes")
}

func TestRun_InstantsCompareAfterParsing(t *testing.T) {
	scenario := &Scenario{
		Name:        "instants",
		Description: "date-only and full instants are equal",
		Objects:     []ObjectRow{{ID: 1, Created: "2020-01-01 00:00:00", Terminated: "INFINITY"}},
		Expect: &Expectation{
			Records: []ExpectedRecord{{ID: 1, Created: "2020-01-01", Terminated: "infinity"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BadInstant(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad",
		Description: "unparseable created",
		Objects:     []ObjectRow{{ID: 1, Created: "yesterday", Terminated: "infinity"}},
		Assertions:  []Assertion{{Type: AssertOrphans}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "objects[0]")
	assert.Contains(t, err.Error(), "created")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, "typo.yaml", `
name: typo
description: "misspelt field"
objcts: []
assertions:
  - type: orphans
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nassertions: [{type: orphans}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nassertions: [{type: orphans}]\n",
			wantErr: "description is required",
		},
		{
			name:    "nothing to check",
			content: "name: n\ndescription: d\n",
			wantErr: "expect or assertions is required",
		},
		{
			name:    "unknown assertion",
			content: "name: n\ndescription: d\nassertions: [{type: trace_order}]\n",
			wantErr: `unknown assertion type "trace_order"`,
		},
		{
			name:    "value_at without name",
			content: "name: n\ndescription: d\nassertions: [{type: value_at, at: '2020-01-01'}]\n",
			wantErr: "at and name are required",
		},
		{
			name:    "value and absent",
			content: "name: n\ndescription: d\nassertions: [{type: value_at, at: '2020-01-01', name: a, value: b, absent: true}]\n",
			wantErr: "exclusive",
		},
		{
			name:    "path in name",
			content: "name: a/b\ndescription: d\nassertions: [{type: orphans}]\n",
			wantErr: "path separators",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_CUE(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/03_overlap_tiebreak.cue")
	require.NoError(t, err)

	assert.Equal(t, "overlap_tiebreak", scenario.Name)
	require.Len(t, scenario.Attributes, 2)
	assert.Equal(t, "green", scenario.Attributes[1].Value)
	require.NotNil(t, scenario.Expect)
	assert.Equal(t, map[string]string{"color": "red"}, scenario.Expect.Records[0].Attributes)
}

func TestLoadScenario_InvalidCUE(t *testing.T) {
	path := writeScenario(t, "bad.cue", `name: "x"
name: "y"
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUE")
}

func TestLoadScenario_NotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# notes"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	assert.Empty(t, scenarios)
}

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
