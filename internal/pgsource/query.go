package pgsource

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
)

const dialectPostgres = "postgres"

// Tables names the source tables. Names may be schema-qualified ("public.obj").
type Tables struct {
	Objects    string
	Attributes string
}

// DefaultTables returns the table names of the original export.
func DefaultTables() Tables {
	return Tables{Objects: "obj", Attributes: "attr"}
}

func text(col string) exp.AliasedExpression {
	return goqu.COALESCE(goqu.C(col), "").As(col)
}

func timestamp(col string) exp.AliasedExpression {
	return goqu.Cast(goqu.C(col), "timestamp").As(col)
}

// objectsQuery selects every object row in id order.
func objectsQuery(table string) (string, error) {
	q, _, err := goqu.Dialect(dialectPostgres).
		From(goqu.I(table)).
		Select(
			goqu.C("id"),
			text("plant"),
			text("scope"),
			text("type"),
			text("etype"),
			text("eid"),
			timestamp("created"),
			timestamp("terminated"),
		).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build objects query: %w", err)
	}
	return q, nil
}

// attributesQuery selects every attribute row in id order.
func attributesQuery(table string) (string, error) {
	q, _, err := goqu.Dialect(dialectPostgres).
		From(goqu.I(table)).
		Select(
			goqu.C("id"),
			goqu.C("objid"),
			text("def"),
			text("value"),
			timestamp("created"),
			timestamp("terminated"),
		).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("build attributes query: %w", err)
	}
	return q, nil
}
