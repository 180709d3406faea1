package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
)

// Scenario defines a reconstruction conformance scenario.
// Field tags serve both YAML and CUE (which decodes through JSON tags).
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	Options ScenarioOptions `yaml:"options,omitempty" json:"options,omitempty"`

	Objects    []ObjectRow    `yaml:"objects" json:"objects"`
	Attributes []AttributeRow `yaml:"attributes,omitempty" json:"attributes,omitempty"`

	// Expect, if set, is compared with the full history.
	Expect *Expectation `yaml:"expect,omitempty" json:"expect,omitempty"`

	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// ScenarioOptions mirrors history.Options.
type ScenarioOptions struct {
	Workers         int  `yaml:"workers,omitempty" json:"workers,omitempty"`
	ClampToLifetime bool `yaml:"clamp_to_lifetime,omitempty" json:"clamp_to_lifetime,omitempty"`
}

// ObjectRow is an input object with textual instants.
type ObjectRow struct {
	ID         int64  `yaml:"id" json:"id"`
	Plant      string `yaml:"plant,omitempty" json:"plant,omitempty"`
	Scope      string `yaml:"scope,omitempty" json:"scope,omitempty"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty"`
	EType      string `yaml:"etype,omitempty" json:"etype,omitempty"`
	EID        string `yaml:"eid,omitempty" json:"eid,omitempty"`
	Created    string `yaml:"created" json:"created"`
	Terminated string `yaml:"terminated" json:"terminated"`
}

// AttributeRow is an input attribute with textual instants.
type AttributeRow struct {
	ID         int64  `yaml:"id" json:"id"`
	ObjID      int64  `yaml:"objid" json:"objid"`
	Def        string `yaml:"def" json:"def"`
	Value      string `yaml:"value" json:"value"`
	Created    string `yaml:"created" json:"created"`
	Terminated string `yaml:"terminated" json:"terminated"`
}

// Expectation describes the whole expected history.
type Expectation struct {
	// Columns, when non-nil, must equal the history's attribute columns.
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`

	Records []ExpectedRecord `yaml:"records" json:"records"`
}

// ExpectedRecord is one expected snapshot. Fixed object fields are not
// compared; they are copied verbatim from the object.
type ExpectedRecord struct {
	ID         int64             `yaml:"id" json:"id"`
	Created    string            `yaml:"created" json:"created"`
	Terminated string            `yaml:"terminated" json:"terminated"`
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Assertion checks one property of the reconstructed history.
type Assertion struct {
	Type string `yaml:"type" json:"type"`

	// Object is the object id (used by record_count and value_at).
	Object int64 `yaml:"object,omitempty" json:"object,omitempty"`

	// At is the instant to inspect (used by value_at).
	At string `yaml:"at,omitempty" json:"at,omitempty"`

	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`

	// Absent expects Name to have no value (used by value_at).
	Absent bool `yaml:"absent,omitempty" json:"absent,omitempty"`

	// Count is the expected number (used by record_count and orphans).
	Count int `yaml:"count,omitempty" json:"count,omitempty"`

	// Columns is the expected column set (used by columns).
	Columns []string `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordCount = "record_count"
	AssertValueAt     = "value_at"
	AssertColumns     = "columns"
	AssertOrphans     = "orphans"
)

// LoadScenario reads and parses a scenario file. Files ending in .cue are
// evaluated as CUE; anything else is parsed as YAML.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	if filepath.Ext(path) == ".cue" {
		scenario, err = parseCUE(data)
	} else {
		scenario, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// LoadScenarios loads every .yaml, .yml and .cue scenario in dir, sorted by
// file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".cue":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func parseYAML(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

func parseCUE(data []byte) (*Scenario, error) {
	v := cuecontext.New().CompileBytes(data)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile CUE: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CUE: %w", err)
	}

	var scenario Scenario
	if err := v.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to decode CUE: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Options.Workers < 0 {
		return fmt.Errorf("options.workers must be non-negative")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecordCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for record_count", index)
		}
	case AssertValueAt:
		if a.At == "" || a.Name == "" {
			return fmt.Errorf("assertions[%d]: at and name are required for value_at", index)
		}
		if a.Absent && a.Value != "" {
			return fmt.Errorf("assertions[%d]: value and absent are exclusive", index)
		}
	case AssertColumns:
	case AssertOrphans:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for orphans", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// HistoryOptions converts the scenario options.
func (s *Scenario) HistoryOptions() history.Options {
	return history.Options{
		Workers:         s.Options.Workers,
		ClampToLifetime: s.Options.ClampToLifetime,
	}
}

// Input parses the scenario's objects and attributes.
func (s *Scenario) Input() ([]ir.Object, []ir.Attribute, error) {
	objects := make([]ir.Object, 0, len(s.Objects))
	for i, row := range s.Objects {
		created, terminated, err := parseWindow(row.Created, row.Terminated)
		if err != nil {
			return nil, nil, fmt.Errorf("objects[%d]: %w", i, err)
		}
		objects = append(objects, ir.Object{
			ID:         row.ID,
			Plant:      row.Plant,
			Scope:      row.Scope,
			Type:       row.Type,
			EType:      row.EType,
			EID:        row.EID,
			Created:    created,
			Terminated: terminated,
		})
	}

	attrs := make([]ir.Attribute, 0, len(s.Attributes))
	for i, row := range s.Attributes {
		created, terminated, err := parseWindow(row.Created, row.Terminated)
		if err != nil {
			return nil, nil, fmt.Errorf("attributes[%d]: %w", i, err)
		}
		attrs = append(attrs, ir.Attribute{
			ID:         row.ID,
			ObjID:      row.ObjID,
			Name:       row.Def,
			Value:      row.Value,
			Created:    created,
			Terminated: terminated,
		})
	}
	return objects, attrs, nil
}

func parseWindow(created, terminated string) (time.Time, time.Time, error) {
	c, err := ir.ParseInstant(created)
	if err != nil {
		return time.Time{}, time.Time{}, fieldError("created", err)
	}
	t, err := ir.ParseInstant(terminated)
	if err != nil {
		return time.Time{}, time.Time{}, fieldError("terminated", err)
	}
	return c, t, nil
}

func fieldError(field string, err error) error {
	var pe *ir.ParseError
	if errors.As(err, &pe) {
		pe.Field = field
	}
	return err
}
