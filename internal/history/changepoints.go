package history

import (
	"slices"
	"time"

	"github.com/roach88/snaphist/internal/ir"
)

// ChangePoints returns the strictly increasing instants at which the
// object's attribute state may change: the object's created instant, every
// attribute's created instant, and the object's terminated instant unless it
// is open-ended. Attribute terminated instants are not change points.
//
// Attribute created instants outside [obj.Created, obj.Terminated] are
// dropped when opts.ClampToLifetime is set. The result is never empty.
func ChangePoints(obj ir.Object, attrs []ir.Attribute, opts Options) []time.Time {
	points := make([]time.Time, 0, len(attrs)+2)
	points = append(points, obj.Created)

	for _, a := range attrs {
		if opts.ClampToLifetime && !withinLifetime(obj, a.Created) {
			continue
		}
		points = append(points, a.Created)
	}
	if !obj.IsOpenEnded() {
		points = append(points, obj.Terminated)
	}

	slices.SortFunc(points, time.Time.Compare)
	return slices.CompactFunc(points, time.Time.Equal)
}

func withinLifetime(obj ir.Object, t time.Time) bool {
	return !t.Before(obj.Created) && !t.After(obj.Terminated)
}
