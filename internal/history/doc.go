// Package history reconstructs point-in-time snapshot histories.
//
// Given objects with a lifetime [created, terminated) and attribute values
// with their own validity windows, Reconstruct partitions every object's
// lifetime at its change points and emits one ir.Record per interval, holding
// the attribute values active at the interval's start.
//
// # Boundary semantics
//
// A value is active at T when created <= T <= terminated. Both ends are
// inclusive, and attribute terminated instants are not change points, so a
// value switch is seen only at the new value's created instant. At that
// instant the old and the new value are both active; the value with the
// latest created instant wins (input order breaks exact ties).
//
// # Missing values
//
// A record omits names without an active value. History.Table widens every
// row to the global column set, filling absent names with "". The two
// policies apply at exactly those two points.
//
// Reconstruction is a pure function of its input: the same objects and
// attributes always produce the same records in the same order.
package history
