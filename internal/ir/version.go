package ir

// Version constants for the plan schema and engine.
const (
	// PlanVersion is the plan schema version. Bump when Plan's digest
	// input changes shape.
	PlanVersion = "1"

	// EngineVersion is the rewrites engine version.
	EngineVersion = "0.3.0"
)
