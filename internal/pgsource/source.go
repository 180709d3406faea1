package pgsource

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roach88/snaphist/internal/ir"
)

// Source reads input rows from a PostgreSQL database.
type Source struct {
	pool   *pgxpool.Pool
	tables Tables
}

// Open connects to the database at dsn and checks the connection.
func Open(ctx context.Context, dsn string, tables Tables) (*Source, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Source{pool: pool, tables: tables}, nil
}

// Close releases the connection pool.
func (s *Source) Close() {
	s.pool.Close()
}

// Objects returns every object row ordered by id.
func (s *Source) Objects(ctx context.Context) ([]ir.Object, error) {
	query, err := objectsQuery(s.tables.Objects)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query objects: %w", err)
	}

	objects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ir.Object, error) {
		var (
			obj                 ir.Object
			created, terminated pgtype.Timestamp
		)
		err := row.Scan(&obj.ID, &obj.Plant, &obj.Scope, &obj.Type, &obj.EType, &obj.EID, &created, &terminated)
		if err != nil {
			return ir.Object{}, err
		}
		if obj.Created, err = createdInstant(created); err != nil {
			return ir.Object{}, fmt.Errorf("object %d: %w", obj.ID, err)
		}
		obj.Terminated = terminatedInstant(terminated)
		return obj, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read objects: %w", err)
	}
	return objects, nil
}

// Attributes returns every attribute row ordered by id.
func (s *Source) Attributes(ctx context.Context) ([]ir.Attribute, error) {
	query, err := attributesQuery(s.tables.Attributes)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}

	attrs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ir.Attribute, error) {
		var (
			a                   ir.Attribute
			created, terminated pgtype.Timestamp
		)
		err := row.Scan(&a.ID, &a.ObjID, &a.Name, &a.Value, &created, &terminated)
		if err != nil {
			return ir.Attribute{}, err
		}
		if a.Created, err = createdInstant(created); err != nil {
			return ir.Attribute{}, fmt.Errorf("attribute %d: %w", a.ID, err)
		}
		a.Terminated = terminatedInstant(terminated)
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}
	return attrs, nil
}

// createdInstant converts a created timestamp. A created instant is
// required and must be finite.
func createdInstant(ts pgtype.Timestamp) (time.Time, error) {
	switch {
	case !ts.Valid:
		return time.Time{}, &ir.ParseError{Field: "created", Input: "NULL", Err: ir.ErrBadInstant}
	case ts.InfinityModifier == pgtype.Infinity:
		return ir.OpenEnded, nil
	case ts.InfinityModifier == pgtype.NegativeInfinity:
		return time.Time{}, &ir.ParseError{Field: "created", Input: "-infinity", Err: ir.ErrBadInstant}
	}
	return ts.Time.UTC(), nil
}

// terminatedInstant converts a terminated timestamp. NULL and 'infinity'
// both mean the window never closes.
func terminatedInstant(ts pgtype.Timestamp) time.Time {
	if !ts.Valid || ts.InfinityModifier == pgtype.Infinity {
		return ir.OpenEnded
	}
	if ts.InfinityModifier == pgtype.NegativeInfinity {
		return time.Time{}
	}
	return ts.Time.UTC()
}
