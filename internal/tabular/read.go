package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/snaphist/internal/ir"
)

// ObjectColumns are the required columns of an object file.
var ObjectColumns = []string{"id", "plant", "scope", "type", "etype", "eid", "created", "terminated"}

// AttributeColumns are the required columns of an attribute file. "def"
// also matches the aliases in attributeNameAliases.
var AttributeColumns = []string{"id", "objid", "def", "value", "created", "terminated"}

var attributeNameAliases = []string{"def", "def_name", "attr_name"}

// ReadObjects parses an object file. Any malformed row aborts the read.
func ReadObjects(r io.Reader) ([]ir.Object, error) {
	var objects []ir.Object
	err := readRows(r, ObjectColumns, nil, func(row rowReader) error {
		var obj ir.Object
		var err error
		if obj.ID, err = row.int64("id"); err != nil {
			return err
		}
		obj.Plant = row.str("plant")
		obj.Scope = row.str("scope")
		obj.Type = row.str("type")
		obj.EType = row.str("etype")
		obj.EID = row.str("eid")
		if obj.Created, err = row.instant("created"); err != nil {
			return err
		}
		if obj.Terminated, err = row.instant("terminated"); err != nil {
			return err
		}
		objects = append(objects, obj)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// ReadAttributes parses an attribute file. Any malformed row aborts the read.
func ReadAttributes(r io.Reader) ([]ir.Attribute, error) {
	var attrs []ir.Attribute
	aliases := map[string][]string{"def": attributeNameAliases}
	err := readRows(r, AttributeColumns, aliases, func(row rowReader) error {
		var a ir.Attribute
		var err error
		if a.ID, err = row.int64("id"); err != nil {
			return err
		}
		if a.ObjID, err = row.int64("objid"); err != nil {
			return err
		}
		a.Name = row.str("def")
		a.Value = row.str("value")
		if a.Created, err = row.instant("created"); err != nil {
			return err
		}
		if a.Terminated, err = row.instant("terminated"); err != nil {
			return err
		}
		attrs = append(attrs, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// rowReader gives named access to one CSV record.
type rowReader struct {
	record []string
	index  map[string]int
}

func (r rowReader) str(col string) string {
	return r.record[r.index[col]]
}

func (r rowReader) int64(col string) (int64, error) {
	raw := strings.TrimSpace(r.str(col))
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ir.ParseError{Field: col, Input: raw, Err: errors.Unwrap(err)}
	}
	return n, nil
}

func (r rowReader) instant(col string) (time.Time, error) {
	t, err := ir.ParseInstant(r.str(col))
	if err != nil {
		var pe *ir.ParseError
		if errors.As(err, &pe) {
			pe.Field = col
		}
		return time.Time{}, err
	}
	return t, nil
}

// readRows reads the header, resolves required columns (with aliases) and
// calls fn for every data row.
func readRows(r io.Reader, required []string, aliases map[string][]string, fn func(rowReader) error) error {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return &RowError{Line: 1, Err: errors.New("empty file: no header")}
	}
	if err != nil {
		return &RowError{Line: 1, Err: err}
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff") // UTF-8 BOM
		}
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	index := make(map[string]int, len(required))
	for _, col := range required {
		candidates := aliases[col]
		if candidates == nil {
			candidates = []string{col}
		}
		found := false
		for _, c := range candidates {
			if pos, ok := positions[c]; ok {
				index[col] = pos
				found = true
				break
			}
		}
		if !found {
			return &RowError{Line: 1, Err: fmt.Errorf("%w %q", ErrMissingColumn, col)}
		}
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return &RowError{Line: pe.Line, Err: pe.Err}
			}
			return &RowError{Err: err}
		}
		line, _ := cr.FieldPos(0)
		if err := fn(rowReader{record: record, index: index}); err != nil {
			return &RowError{Line: line, Err: err}
		}
	}
}
