// Package testutil provides fixtures shared by snaphist tests.
package testutil

import (
	"strconv"
	"time"

	"github.com/roach88/snaphist/internal/ir"
)

// At parses an instant literal ("2020-01-01", "2020-01-01 10:00:00" or
// "infinity"). Panics on malformed input.
func At(s string) time.Time {
	return ir.MustParseInstant(s)
}

// Object builds an object with placeholder descriptive fields derived from id.
func Object(id int64, created, terminated string) ir.Object {
	return ir.Object{
		ID:         id,
		Plant:      "plant-1",
		Scope:      "scope-1",
		Type:       "pump",
		EType:      "equipment",
		EID:        "E-" + strconv.FormatInt(id, 10),
		Created:    At(created),
		Terminated: At(terminated),
	}
}

// Attr builds an attribute row.
func Attr(id, objID int64, name, value, created, terminated string) ir.Attribute {
	return ir.Attribute{
		ID:         id,
		ObjID:      objID,
		Name:       name,
		Value:      value,
		Created:    At(created),
		Terminated: At(terminated),
	}
}
