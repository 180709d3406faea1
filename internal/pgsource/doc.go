// Package pgsource reads objects and attributes from PostgreSQL.
//
// The tables are expected to carry the same columns as the CSV inputs:
//
//	obj:  id, plant, scope, type, etype, eid, created, terminated
//	attr: id, objid, def, value, created, terminated
//
// Timestamps are read as timestamp without time zone and taken as UTC.
// PostgreSQL's 'infinity' maps to ir.OpenEnded, as does a NULL terminated.
// Nullable text columns read as "".
package pgsource
