package history

import (
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/snaphist/internal/ir"
)

// Options tunes a reconstruction pass. The zero value is sequential and
// takes every attribute created instant as a change point.
type Options struct {
	// Workers > 1 builds objects in parallel. Output order is unchanged:
	// each object writes only its own slot.
	Workers int

	// ClampToLifetime drops attribute change points that fall before the
	// object's created instant or after its terminated instant. Unclamped,
	// such points produce records outside the object's lifetime.
	ClampToLifetime bool
}

// History is the result of one reconstruction pass.
type History struct {
	// Records holds every snapshot, grouped by object in processing order
	// and ascending by start instant within an object.
	Records []ir.Record

	// Columns is the sorted set of every attribute name in the input,
	// orphans included. It is the attribute column set of History.Table.
	Columns []string

	// Objects is the number of distinct objects reconstructed.
	Objects int

	// Orphans counts attribute rows dropped because their objid matched no object.
	Orphans int

	// DuplicateObjects counts object rows ignored because their id was already seen.
	DuplicateObjects int
}

// Hash returns the content hash of the history.
func (h *History) Hash() (string, error) {
	return ir.HistoryHash(h.Columns, h.Records)
}

// RecordsFor returns the records of one object.
func (h *History) RecordsFor(objectID int64) []ir.Record {
	var out []ir.Record
	for _, r := range h.Records {
		if r.ObjectID == objectID {
			out = append(out, r)
		}
	}
	return out
}

// Reconstruct rebuilds the snapshot history of every object.
//
// Objects are processed in order of first appearance; a repeated id is
// ignored. Attribute rows whose objid matches no object are dropped without
// error; their names still join the column set.
func Reconstruct(objects []ir.Object, attrs []ir.Attribute, opts Options) *History {
	objs, dups := uniqueObjects(objects)

	byObject := make(map[int64][]ir.Attribute, len(objs))
	for _, obj := range objs {
		byObject[obj.ID] = nil
	}

	names := make(map[string]struct{})
	orphans := 0
	for _, a := range attrs {
		names[a.Name] = struct{}{}
		if _, ok := byObject[a.ObjID]; !ok {
			orphans++
			continue
		}
		byObject[a.ObjID] = append(byObject[a.ObjID], a)
	}

	perObject := make([][]ir.Record, len(objs))
	build := func(i int) {
		perObject[i] = BuildSnapshots(objs[i], byObject[objs[i].ID], opts)
	}

	if opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for i := range objs {
			g.Go(func() error {
				build(i)
				return nil
			})
		}
		_ = g.Wait() // builders never fail
	} else {
		for i := range objs {
			build(i)
		}
	}

	total := 0
	for _, recs := range perObject {
		total += len(recs)
	}
	records := make([]ir.Record, 0, total)
	for _, recs := range perObject {
		records = append(records, recs...)
	}

	columns := make([]string, 0, len(names))
	for name := range names {
		columns = append(columns, name)
	}
	slices.Sort(columns)

	return &History{
		Records:          records,
		Columns:          columns,
		Objects:          len(objs),
		Orphans:          orphans,
		DuplicateObjects: dups,
	}
}

// uniqueObjects keeps the first object of every id, in input order.
func uniqueObjects(objects []ir.Object) ([]ir.Object, int) {
	seen := make(map[int64]struct{}, len(objects))
	out := make([]ir.Object, 0, len(objects))
	for _, obj := range objects {
		if _, ok := seen[obj.ID]; ok {
			continue
		}
		seen[obj.ID] = struct{}{}
		out = append(out, obj)
	}
	return out, len(objects) - len(out)
}
