package model

// Completeness describes how much of a source was collected
type Completeness string

const (
	CompletenessSuccess Completeness = "success"
	CompletenessPartial Completeness = "partial"
	CompletenessFailed  Completeness = "failed"
)

// Warning components
const (
	ComponentCollector = "collector"
	ComponentMatcher   = "matcher"
	ComponentGraph     = "graph"
)

// Warning records a non-fatal failure encountered during a run. The cause
// must never contain credential material.
type Warning struct {
	Component string `json:"component"`
	// ID names the source or strategy the warning originated from.
	ID    string `json:"id"`
	Cause string `json:"cause"`
}
