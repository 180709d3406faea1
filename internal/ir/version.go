package ir

// Version constants for the record schema and the tool.
const (
	// SchemaVersion is the record schema version.
	SchemaVersion = "1"

	// ToolVersion is the snaphist version.
	ToolVersion = "0.1.0"
)
