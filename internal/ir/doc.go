// Package ir provides the foundational record types for snaphist.
//
// This package contains type definitions and their canonical encodings only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Instants are time.Time in UTC; the open-ended marker is the OpenEnded
//     sentinel, never a zero value or nil
//   - Attribute snapshots are AttributeSet, keyed by attribute name
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
package ir
