package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
)

// WriteOptions controls how instants are rendered.
type WriteOptions struct {
	// OpenEndedLabel renders the open-ended sentinel. Empty renders it as
	// the plain date 9999-12-31 23:59:59.
	OpenEndedLabel string
}

// DefaultWriteOptions renders the sentinel as ir.OpenEndedLabel.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{OpenEndedLabel: ir.OpenEndedLabel}
}

// WriteCSV writes the widened table: the header, then one row per record.
func WriteCSV(w io.Writer, t history.Table, opts WriteOptions) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, len(history.FixedColumns)+len(t.Columns))
	for i, r := range t.Rows {
		row = row[:0]
		row = append(row, strconv.FormatInt(r.ObjectID, 10))
		row = append(row, r.FixedFields()...)
		row = append(row,
			ir.FormatInstant(r.Created, opts.OpenEndedLabel),
			ir.FormatInstant(r.Terminated, opts.OpenEndedLabel),
		)
		row = append(row, r.Values...)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
