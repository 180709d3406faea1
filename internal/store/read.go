package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/snaphist/internal/ir"
)

// ErrRunNotFound is returned when a run id has no stored run.
var ErrRunNotFound = errors.New("run not found")

// Run summarises one saved reconstruction.
type Run struct {
	ID            string   `json:"id"`
	HistoryHash   string   `json:"history_hash"`
	Columns       []string `json:"columns"`
	Objects       int      `json:"objects"`
	Records       int      `json:"records"`
	Orphans       int      `json:"orphans"`
	SchemaVersion string   `json:"schema_version"`
	ToolVersion   string   `json:"tool_version"`
}

type objectRow struct {
	ID         int64  `db:"id"`
	Plant      string `db:"plant"`
	Scope      string `db:"scope"`
	Type       string `db:"type"`
	EType      string `db:"etype"`
	EID        string `db:"eid"`
	Created    string `db:"created"`
	Terminated string `db:"terminated"`
}

type attributeRow struct {
	ID         int64  `db:"id"`
	ObjID      int64  `db:"objid"`
	Def        string `db:"def"`
	Value      string `db:"value"`
	Created    string `db:"created"`
	Terminated string `db:"terminated"`
}

type runRow struct {
	ID            string `db:"id"`
	HistoryHash   string `db:"history_hash"`
	Columns       string `db:"columns"`
	Objects       int    `db:"objects"`
	Records       int    `db:"records"`
	Orphans       int    `db:"orphans"`
	SchemaVersion string `db:"schema_version"`
	ToolVersion   string `db:"tool_version"`
}

type recordRow struct {
	ObjectID   int64  `db:"object_id"`
	Plant      string `db:"plant"`
	Scope      string `db:"scope"`
	Type       string `db:"type"`
	EType      string `db:"etype"`
	EID        string `db:"eid"`
	Created    string `db:"created"`
	Terminated string `db:"terminated"`
	Attributes string `db:"attributes"`
}

// Objects returns every imported object in import order.
// Returns an empty slice (not nil) if none have been imported.
func (s *Store) Objects(ctx context.Context) ([]ir.Object, error) {
	var rows []objectRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, plant, scope, type, etype, eid, created, terminated
		FROM objects
		ORDER BY seq ASC
	`); err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}

	objects := make([]ir.Object, 0, len(rows))
	for _, row := range rows {
		created, err := unmarshalInstant("created", row.Created)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", row.ID, err)
		}
		terminated, err := unmarshalInstant("terminated", row.Terminated)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", row.ID, err)
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
	return objects, nil
}

// Attributes returns every imported attribute in import order.
// Returns an empty slice (not nil) if none have been imported.
func (s *Store) Attributes(ctx context.Context) ([]ir.Attribute, error) {
	var rows []attributeRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, objid, def, value, created, terminated
		FROM attributes
		ORDER BY seq ASC
	`); err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}

	attrs := make([]ir.Attribute, 0, len(rows))
	for _, row := range rows {
		created, err := unmarshalInstant("created", row.Created)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", row.ID, err)
		}
		terminated, err := unmarshalInstant("terminated", row.Terminated)
		if err != nil {
			return nil, fmt.Errorf("attribute %d: %w", row.ID, err)
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
	return attrs, nil
}

// ReadRun returns the summary of one saved run.
// Returns ErrRunNotFound if no run has that id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, history_hash, columns, objects, records, orphans, schema_version, tool_version
		FROM runs
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return row.toRun()
}

// ListRuns returns every saved run, oldest first.
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, history_hash, columns, objects, records, orphans, schema_version, tool_version
		FROM runs
		ORDER BY seq ASC
	`); err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		run, err := row.toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ReadRunRecords returns the records of a saved run in output order.
// Returns ErrRunNotFound if no run has that id.
func (s *Store) ReadRunRecords(ctx context.Context, runID string) ([]ir.Record, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, err
	}

	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT object_id, plant, scope, type, etype, eid, created, terminated, attributes
		FROM run_records
		WHERE run_id = ?
		ORDER BY ord ASC
	`, runID); err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}

	records := make([]ir.Record, 0, len(rows))
	for i, row := range rows {
		created, err := unmarshalInstant("created", row.Created)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		terminated, err := unmarshalInstant("terminated", row.Terminated)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		attrs, err := unmarshalAttributes(row.Attributes)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, ir.Record{
			ObjectID:   row.ObjectID,
			Plant:      row.Plant,
			Scope:      row.Scope,
			Type:       row.Type,
			EType:      row.EType,
			EID:        row.EID,
			Created:    created,
			Terminated: terminated,
			Attributes: attrs,
		})
	}
	return records, nil
}

func (row runRow) toRun() (Run, error) {
	columns, err := unmarshalColumns(row.Columns)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", row.ID, err)
	}
	return Run{
		ID:            row.ID,
		HistoryHash:   row.HistoryHash,
		Columns:       columns,
		Objects:       row.Objects,
		Records:       row.Records,
		Orphans:       row.Orphans,
		SchemaVersion: row.SchemaVersion,
		ToolVersion:   row.ToolVersion,
	}, nil
}
