package history

import (
	"slices"
	"time"

	"github.com/roach88/snaphist/internal/ir"
)

// Value is one attribute value with its validity window.
type Value struct {
	AttributeID int64
	Value       string
	Created     time.Time
	Terminated  time.Time
}

// ValueOf extracts the temporal value of an attribute row.
func ValueOf(a ir.Attribute) Value {
	return Value{
		AttributeID: a.ID,
		Value:       a.Value,
		Created:     a.Created,
		Terminated:  a.Terminated,
	}
}

// ActiveAt reports whether the value is valid at t.
// Both ends of the window are inclusive; the open-ended sentinel is never
// before any instant of interest.
func (v Value) ActiveAt(t time.Time) bool {
	return !v.Created.After(t) && !v.Terminated.Before(t)
}

// Timeline is the ordered value history of one attribute name of one object.
type Timeline struct {
	Name   string
	values []Value // stable-sorted by Created
}

// NewTimeline builds a timeline from values in input order.
func NewTimeline(name string, values []Value) *Timeline {
	sorted := slices.Clone(values)
	slices.SortStableFunc(sorted, func(a, b Value) int {
		return a.Created.Compare(b.Created)
	})
	return &Timeline{Name: name, values: sorted}
}

// Values returns the values ordered by Created.
func (tl *Timeline) Values() []Value {
	return slices.Clone(tl.values)
}

// ActiveAt returns the value active at t. When several values are active,
// the last one in Created order wins.
func (tl *Timeline) ActiveAt(t time.Time) (Value, bool) {
	var (
		found Value
		ok    bool
	)
	for _, v := range tl.values {
		if v.ActiveAt(t) {
			found, ok = v, true
		}
	}
	return found, ok
}

// Timelines holds every attribute timeline of one object.
type Timelines struct {
	names  []string
	byName map[string]*Timeline
}

// NewTimelines groups an object's attribute rows by name.
func NewTimelines(attrs []ir.Attribute) *Timelines {
	grouped := make(map[string][]Value)
	for _, a := range attrs {
		grouped[a.Name] = append(grouped[a.Name], ValueOf(a))
	}

	ts := &Timelines{
		names:  make([]string, 0, len(grouped)),
		byName: make(map[string]*Timeline, len(grouped)),
	}
	for name, values := range grouped {
		ts.names = append(ts.names, name)
		ts.byName[name] = NewTimeline(name, values)
	}
	slices.Sort(ts.names)
	return ts
}

// Names returns every attribute name seen on the object, sorted.
func (ts *Timelines) Names() []string {
	return slices.Clone(ts.names)
}

// Timeline returns the timeline for name, or nil.
func (ts *Timelines) Timeline(name string) *Timeline {
	return ts.byName[name]
}

// ActiveAt returns the value of name active at t.
func (ts *Timelines) ActiveAt(name string, t time.Time) (string, bool) {
	tl, ok := ts.byName[name]
	if !ok {
		return "", false
	}
	v, ok := tl.ActiveAt(t)
	return v.Value, ok
}

// SnapshotAt resolves every name at t. Names without an active value are
// omitted.
func (ts *Timelines) SnapshotAt(t time.Time) ir.AttributeSet {
	snap := make(ir.AttributeSet, len(ts.names))
	for _, name := range ts.names {
		if v, ok := ts.ActiveAt(name, t); ok {
			snap[name] = v
		}
	}
	return snap
}
