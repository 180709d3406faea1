package history

import (
	"slices"

	"github.com/roach88/snaphist/internal/ir"
)

// FixedColumns lead every table row, in order.
var FixedColumns = []string{"id", "plant", "scope", "type", "etype", "eid", "created", "terminated"}

// Table is the widened, rectangular form of a History.
type Table struct {
	Columns []string
	Rows    []Row
}

// Row is one record plus its attribute values aligned with Table.Columns.
// Names absent from the record hold "".
type Row struct {
	ir.Record
	Values []string
}

// Header returns the full header: FixedColumns followed by the attribute columns.
func (t Table) Header() []string {
	return append(slices.Clone(FixedColumns), t.Columns...)
}

// Table widens every record to the global column set.
func (h *History) Table() Table {
	rows := make([]Row, len(h.Records))
	for i, r := range h.Records {
		values := make([]string, len(h.Columns))
		for j, name := range h.Columns {
			values[j] = r.Attributes[name] // "" when absent
		}
		rows[i] = Row{Record: r, Values: values}
	}
	return Table{Columns: slices.Clone(h.Columns), Rows: rows}
}
