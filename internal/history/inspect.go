package history

import (
	"fmt"
	"slices"

	"github.com/roach88/snaphist/internal/ir"
)

// FindingKind categorizes a data-quality defect in the input.
type FindingKind string

const (
	// FindingDuplicateObject: an object id appears more than once; the first row wins.
	FindingDuplicateObject FindingKind = "DUPLICATE_OBJECT"

	// FindingInvertedObject: an object terminates before it is created.
	FindingInvertedObject FindingKind = "INVERTED_OBJECT_WINDOW"

	// FindingOrphanAttribute: an attribute references an unknown object and is dropped.
	FindingOrphanAttribute FindingKind = "ORPHAN_ATTRIBUTE"

	// FindingInvertedAttribute: an attribute terminates before it is created.
	FindingInvertedAttribute FindingKind = "INVERTED_ATTRIBUTE_WINDOW"

	// FindingOverlap: two values of one name are active over a shared span.
	// The later-created value wins inside the overlap.
	FindingOverlap FindingKind = "OVERLAPPING_VALUES"

	// FindingOutsideLifetime: an attribute is created outside its object's lifetime.
	FindingOutsideLifetime FindingKind = "OUTSIDE_LIFETIME"
)

// Finding is one data-quality warning. Findings never stop a reconstruction.
type Finding struct {
	Kind        FindingKind `json:"kind"`
	ObjectID    int64       `json:"object_id"`
	AttributeID int64       `json:"attribute_id,omitempty"`
	Name        string      `json:"name,omitempty"`
	Message     string      `json:"message"`
}

func (f Finding) String() string {
	if f.AttributeID != 0 {
		return fmt.Sprintf("%s: object %d attribute %d: %s", f.Kind, f.ObjectID, f.AttributeID, f.Message)
	}
	return fmt.Sprintf("%s: object %d: %s", f.Kind, f.ObjectID, f.Message)
}

// Inspect reports data-quality defects in the input record sets, in input
// order. A value handing over to its successor at the same instant is the
// normal shape of attribute history and is not reported as an overlap.
func Inspect(objects []ir.Object, attrs []ir.Attribute) []Finding {
	var findings []Finding

	known := make(map[int64]ir.Object, len(objects))
	for _, obj := range objects {
		if _, ok := known[obj.ID]; ok {
			findings = append(findings, Finding{
				Kind:     FindingDuplicateObject,
				ObjectID: obj.ID,
				Message:  "object id repeated; later row ignored",
			})
			continue
		}
		known[obj.ID] = obj
		if obj.Terminated.Before(obj.Created) {
			findings = append(findings, Finding{
				Kind:     FindingInvertedObject,
				ObjectID: obj.ID,
				Message:  "terminated before created",
			})
		}
	}

	type key struct {
		objID int64
		name  string
	}
	grouped := make(map[key][]ir.Attribute)
	var order []key

	for _, a := range attrs {
		obj, ok := known[a.ObjID]
		if !ok {
			findings = append(findings, Finding{
				Kind:        FindingOrphanAttribute,
				ObjectID:    a.ObjID,
				AttributeID: a.ID,
				Name:        a.Name,
				Message:     "references an unknown object; dropped",
			})
			continue
		}
		if a.Terminated.Before(a.Created) {
			findings = append(findings, Finding{
				Kind:        FindingInvertedAttribute,
				ObjectID:    a.ObjID,
				AttributeID: a.ID,
				Name:        a.Name,
				Message:     "terminated before created",
			})
		}
		if !withinLifetime(obj, a.Created) {
			findings = append(findings, Finding{
				Kind:        FindingOutsideLifetime,
				ObjectID:    a.ObjID,
				AttributeID: a.ID,
				Name:        a.Name,
				Message: fmt.Sprintf("created %s outside object lifetime",
					ir.FormatInstant(a.Created, ir.OpenEndedLabel)),
			})
		}

		k := key{a.ObjID, a.Name}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], a)
	}

	for _, k := range order {
		findings = append(findings, overlaps(grouped[k])...)
	}
	return findings
}

// overlaps sweeps one attribute's values in created order and reports every
// value that starts strictly inside the window of an earlier one.
func overlaps(attrs []ir.Attribute) []Finding {
	if len(attrs) < 2 {
		return nil
	}
	sorted := slices.Clone(attrs)
	slices.SortStableFunc(sorted, func(a, b ir.Attribute) int {
		return a.Created.Compare(b.Created)
	})

	var findings []Finding
	reach := sorted[0]
	for _, a := range sorted[1:] {
		if a.Created.Before(reach.Terminated) {
			findings = append(findings, Finding{
				Kind:        FindingOverlap,
				ObjectID:    a.ObjID,
				AttributeID: a.ID,
				Name:        a.Name,
				Message: fmt.Sprintf("value %q overlaps attribute %d (%q) from %s",
					a.Value, reach.ID, reach.Value, ir.FormatInstant(a.Created, ir.OpenEndedLabel)),
			})
		}
		if a.Terminated.After(reach.Terminated) {
			reach = a
		}
	}
	return findings
}
