package history

import (
	"fmt"

	"github.com/roach88/snaphist/internal/ir"
)

// ViolationKind categorizes a broken history invariant.
type ViolationKind string

const (
	// ViolationCount: record count differs from the number of change points.
	ViolationCount ViolationKind = "COUNT"

	// ViolationStart: the first record does not start at the object's created instant.
	ViolationStart ViolationKind = "START"

	// ViolationEnd: the last record does not end at the object's terminated instant.
	ViolationEnd ViolationKind = "END"

	// ViolationGap: consecutive records neither meet nor abut.
	ViolationGap ViolationKind = "GAP"

	// ViolationNegative: a record ends before it starts.
	ViolationNegative ViolationKind = "NEGATIVE_INTERVAL"

	// ViolationUnknownObject: a record belongs to no input object.
	ViolationUnknownObject ViolationKind = "UNKNOWN_OBJECT"
)

// Violation describes one broken invariant of a reconstructed history.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	ObjectID int64         `json:"object_id"`
	Message  string        `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: object %d: %s", v.Kind, v.ObjectID, v.Message)
}

// Verify checks that h is a faithful reconstruction of objects and attrs:
// every object's records tile its lifetime end to end, there is one record
// per change point, and no record belongs to an unknown object.
// A nil result means the history is consistent.
func Verify(h *History, objects []ir.Object, attrs []ir.Attribute, opts Options) []Violation {
	objs, _ := uniqueObjects(objects)

	byObject := make(map[int64][]ir.Record, len(objs))
	for _, obj := range objs {
		byObject[obj.ID] = nil
	}

	var violations []Violation
	for _, r := range h.Records {
		if _, ok := byObject[r.ObjectID]; !ok {
			violations = append(violations, Violation{
				Kind:     ViolationUnknownObject,
				ObjectID: r.ObjectID,
				Message:  "record for an object that is not in the input",
			})
			continue
		}
		byObject[r.ObjectID] = append(byObject[r.ObjectID], r)
	}

	attrsByObject := make(map[int64][]ir.Attribute)
	for _, a := range attrs {
		attrsByObject[a.ObjID] = append(attrsByObject[a.ObjID], a)
	}

	for _, obj := range objs {
		violations = append(violations, verifyObject(obj, byObject[obj.ID], attrsByObject[obj.ID], opts)...)
	}
	return violations
}

func verifyObject(obj ir.Object, records []ir.Record, attrs []ir.Attribute, opts Options) []Violation {
	var violations []Violation
	add := func(kind ViolationKind, format string, args ...any) {
		violations = append(violations, Violation{
			Kind:     kind,
			ObjectID: obj.ID,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	points := ChangePoints(obj, attrs, opts)
	if len(records) != len(points) {
		add(ViolationCount, "got %d records, want %d", len(records), len(points))
	}
	if len(records) == 0 {
		return violations
	}

	// Coverage starts at obj.Created unless an attribute change point
	// precedes it.
	start := obj.Created
	if points[0].Before(start) {
		start = points[0]
	}
	if first := records[0].Created; !first.Equal(start) {
		add(ViolationStart, "first record starts at %s, want %s",
			ir.FormatInstant(first, ir.OpenEndedLabel), ir.FormatInstant(start, ir.OpenEndedLabel))
	}
	if last := records[len(records)-1].Terminated; !last.Equal(obj.Terminated) {
		add(ViolationEnd, "last record ends at %s, object terminated %s",
			ir.FormatInstant(last, ir.OpenEndedLabel), ir.FormatInstant(obj.Terminated, ir.OpenEndedLabel))
	}

	for i, r := range records {
		// A record starting past the object's end closes at obj.Terminated
		// and is inverted by construction.
		pastEnd := r.Created.After(obj.Terminated) && !obj.Terminated.Before(obj.Created)
		if r.Terminated.Before(r.Created) && !pastEnd {
			add(ViolationNegative, "record %d ends at %s before it starts at %s", i,
				ir.FormatInstant(r.Terminated, ir.OpenEndedLabel), ir.FormatInstant(r.Created, ir.OpenEndedLabel))
		}
		if i > 0 && !records[i-1].Terminated.Equal(r.Created) {
			add(ViolationGap, "record %d ends at %s but record %d starts at %s", i-1,
				ir.FormatInstant(records[i-1].Terminated, ir.OpenEndedLabel), i, ir.FormatInstant(r.Created, ir.OpenEndedLabel))
		}
	}
	return violations
}
