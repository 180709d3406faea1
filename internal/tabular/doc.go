// Package tabular reads and writes the delimited files around a
// reconstruction: object and attribute CSV inputs, the widened history CSV,
// and a JSON Lines rendering of the records.
//
// Input files are header-driven: columns are located by name, in any order,
// case-insensitively. The attribute name column may be called "def",
// "def_name" or "attr_name".
package tabular
