package ir

import (
	"maps"
	"slices"
	"time"
)

// Object is a long-lived entity whose attributes change over time.
// Objects are read once and never mutated.
type Object struct {
	ID         int64     `json:"id"`
	Plant      string    `json:"plant"`
	Scope      string    `json:"scope"`
	Type       string    `json:"type"`
	EType      string    `json:"etype"`
	EID        string    `json:"eid"`
	Created    time.Time `json:"created"`
	Terminated time.Time `json:"terminated"` // OpenEnded if the object never terminates
}

// IsOpenEnded reports whether the object never terminates.
func (o Object) IsOpenEnded() bool {
	return IsOpenEnded(o.Terminated)
}

// Attribute is one value of a named attribute of an object, valid within
// [Created, Terminated]. Several attributes may share (ObjID, Name); together
// they form the value history of that logical attribute.
type Attribute struct {
	ID         int64     `json:"id"`
	ObjID      int64     `json:"objid"`
	Name       string    `json:"def"`
	Value      string    `json:"value"`
	Created    time.Time `json:"created"`
	Terminated time.Time `json:"terminated"` // OpenEnded if the value never expires
}

// AttributeSet maps attribute names to the value active at one instant.
// A name without an active value is absent, never mapped to "".
type AttributeSet map[string]string

// Get returns the value for name and whether it is present.
func (s AttributeSet) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Names returns the attribute names in lexicographic order.
func (s AttributeSet) Names() []string {
	return slices.Sorted(maps.Keys(s))
}

// Record is one snapshot of an object: the object's fixed fields, an interval
// [Created, Terminated) and the attribute values active at Created.
type Record struct {
	ObjectID   int64        `json:"id"`
	Plant      string       `json:"plant"`
	Scope      string       `json:"scope"`
	Type       string       `json:"type"`
	EType      string       `json:"etype"`
	EID        string       `json:"eid"`
	Created    time.Time    `json:"created"`
	Terminated time.Time    `json:"terminated"`
	Attributes AttributeSet `json:"attributes"`
}

// NewRecord creates a record for obj spanning [start, end).
func NewRecord(obj Object, start, end time.Time, attrs AttributeSet) Record {
	if attrs == nil {
		attrs = AttributeSet{}
	}
	return Record{
		ObjectID:   obj.ID,
		Plant:      obj.Plant,
		Scope:      obj.Scope,
		Type:       obj.Type,
		EType:      obj.EType,
		EID:        obj.EID,
		Created:    start,
		Terminated: end,
		Attributes: attrs,
	}
}

// FixedFields returns the object fields in output column order.
func (r Record) FixedFields() []string {
	return []string{r.Plant, r.Scope, r.Type, r.EType, r.EID}
}

// ToIR converts the record to an IRObject for canonical encoding.
// Instants are rendered with FormatInstant so the open-ended sentinel
// always encodes as OpenEndedLabel.
func (r Record) ToIR() IRObject {
	attrs := make(IRObject, len(r.Attributes))
	for k, v := range r.Attributes {
		attrs[k] = IRString(v)
	}
	return IRObject{
		"id":         IRInt(r.ObjectID),
		"plant":      IRString(r.Plant),
		"scope":      IRString(r.Scope),
		"type":       IRString(r.Type),
		"etype":      IRString(r.EType),
		"eid":        IRString(r.EID),
		"created":    IRString(FormatInstant(r.Created, OpenEndedLabel)),
		"terminated": IRString(FormatInstant(r.Terminated, OpenEndedLabel)),
		"attributes": attrs,
	}
}
