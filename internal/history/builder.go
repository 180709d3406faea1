package history

import (
	"github.com/roach88/snaphist/internal/ir"
)

// BuildSnapshots emits one record per change point of obj, in ascending
// start order. Record i spans [d_i, d_i+1); the last record ends at the
// object's own terminated instant, open-ended sentinel included.
//
// attrs must all belong to obj.
func BuildSnapshots(obj ir.Object, attrs []ir.Attribute, opts Options) []ir.Record {
	timelines := NewTimelines(attrs)
	points := ChangePoints(obj, attrs, opts)

	records := make([]ir.Record, 0, len(points))
	for i, start := range points {
		end := obj.Terminated
		if i < len(points)-1 {
			end = points[i+1]
		}
		records = append(records, ir.NewRecord(obj, start, end, timelines.SnapshotAt(start)))
	}
	return records
}
