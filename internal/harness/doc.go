// Package harness provides conformance testing for snapshot reconstruction.
//
// A scenario states input objects and attributes, reconstruction options,
// and the history it expects. The harness imports the input into a fresh
// in-memory store, reads it back, reconstructs, verifies the result, and
// evaluates the scenario's expectations.
//
// # Scenario Format
//
// Scenarios are YAML or CUE files with the following structure:
//
//	name: colour_change
//	description: "A value replaced mid-life yields two snapshots"
//	options:
//	  workers: 1
//	  clamp_to_lifetime: false
//	objects:
//	  - { id: 1, plant: P1, created: "2020-01-01", terminated: infinity }
//	attributes:
//	  - { id: 10, objid: 1, def: color, value: red,
//	      created: "2020-01-01", terminated: "2020-01-31" }
//	expect:
//	  columns: [color]
//	  records:
//	    - { id: 1, created: "2020-01-01 00:00:00", terminated: infinity,
//	        attributes: { color: red } }
//	assertions:
//	  - type: value_at
//	    object: 1
//	    at: "2020-01-15"
//	    name: color
//	    value: red
//
// Expected records are compared in order. Instants are compared after
// parsing, so "2020-01-01" matches "2020-01-01 00:00:00".
//
// # Assertion Types
//
//   - record_count: the object has exactly Count records
//   - value_at: the record covering At has Name = Value, or no Name when Absent
//   - columns: the attribute column set equals Columns
//   - orphans: exactly Count attribute rows were dropped as orphans
//
// # Golden Files
//
// RunWithGolden renders the reconstructed history as canonical JSON and
// compares it with testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
