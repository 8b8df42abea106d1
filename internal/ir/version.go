package ir

// Version constants for the journal format and engine.
const (
	// IRVersion is the journal/envelope schema version.
	IRVersion = "1"

	// EngineVersion is the solidarity engine version.
	EngineVersion = "0.1.0"
)
