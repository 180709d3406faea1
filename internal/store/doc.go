// Package store provides SQLite-backed storage for snaphist.
//
// The store holds:
//   - Objects and Attributes: imported input rows, kept in import order
//   - Runs: one row per saved reconstruction, with its history hash
//   - Run Records: the snapshot records of a run, in output order
//
// # Ordering
//
// Input rows carry an autoincrement seq. Reads return rows ORDER BY seq so a
// reconstruction over stored input processes objects in import order, the
// same order the source files presented them.
//
// Importing a row whose id already exists is a no-op: the first occurrence
// wins, matching how reconstruction treats repeated object ids.
//
// # Instants
//
// Instants are stored as TEXT "2006-01-02 15:04:05.999999999"; the
// open-ended sentinel is stored as 'infinity'.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity for run records
package store
