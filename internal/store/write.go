package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
)

// ImportObjects inserts object rows in one transaction, preserving order.
// Uses ON CONFLICT(id) DO NOTHING - a row whose id is already stored is
// silently ignored, so the first occurrence wins.
//
// Returns the number of rows actually inserted.
func (s *Store) ImportObjects(ctx context.Context, objects []ir.Object) (int, error) {
	inserted := 0
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, obj := range objects {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO objects
				(id, plant, scope, type, etype, eid, created, terminated)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`,
				obj.ID,
				obj.Plant,
				obj.Scope,
				obj.Type,
				obj.EType,
				obj.EID,
				marshalInstant(obj.Created),
				marshalInstant(obj.Terminated),
			)
			if err != nil {
				return fmt.Errorf("object %d: %w", obj.ID, err)
			}
			n, _ := res.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import objects: %w", err)
	}
	return inserted, nil
}

// ImportAttributes inserts attribute rows in one transaction, preserving
// order. Attributes need not reference a stored object.
//
// Returns the number of rows actually inserted.
func (s *Store) ImportAttributes(ctx context.Context, attrs []ir.Attribute) (int, error) {
	inserted := 0
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, a := range attrs {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO attributes
				(id, objid, def, value, created, terminated)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO NOTHING
			`,
				a.ID,
				a.ObjID,
				a.Name,
				a.Value,
				marshalInstant(a.Created),
				marshalInstant(a.Terminated),
			)
			if err != nil {
				return fmt.Errorf("attribute %d: %w", a.ID, err)
			}
			n, _ := res.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("import attributes: %w", err)
	}
	return inserted, nil
}

// SaveRun stores a reconstructed history under runID, atomically.
// Records are stored with their output position so ReadRunRecords returns
// them in the original order.
//
// Saving the same runID twice is an error.
func (s *Store) SaveRun(ctx context.Context, runID string, h *history.History) (Run, error) {
	hash, err := h.Hash()
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	columns, err := marshalColumns(h.Columns)
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}

	run := Run{
		ID:            runID,
		HistoryHash:   hash,
		Columns:       h.Columns,
		Objects:       h.Objects,
		Records:       len(h.Records),
		Orphans:       h.Orphans,
		SchemaVersion: ir.SchemaVersion,
		ToolVersion:   ir.ToolVersion,
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs
			(id, history_hash, columns, objects, records, orphans, schema_version, tool_version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			run.HistoryHash,
			columns,
			run.Objects,
			run.Records,
			run.Orphans,
			run.SchemaVersion,
			run.ToolVersion,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, r := range h.Records {
			attrs, err := marshalAttributes(r.Attributes)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO run_records
				(run_id, ord, object_id, plant, scope, type, etype, eid, created, terminated, attributes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				runID,
				i,
				r.ObjectID,
				r.Plant,
				r.Scope,
				r.Type,
				r.EType,
				r.EID,
				marshalInstant(r.Created),
				marshalInstant(r.Terminated),
				attrs,
			)
			if err != nil {
				return fmt.Errorf("insert record %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return Run{}, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}

// inTx runs fn in a transaction, committing on success and rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
