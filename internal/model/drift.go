package model

// Severity grades a drift finding
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Drift finding codes
const (
	DriftFieldMissing  = "field_missing"
	DriftValueMismatch = "value_mismatch"
)

// DriftFinding records a field-level divergence between a declared resource
// and its observed counterpart.
type DriftFinding struct {
	Declared      Key         `json:"declared_key"`
	Observed      Key         `json:"observed_key"`
	Field         string      `json:"field"`
	DeclaredValue interface{} `json:"declared_value"`
	ObservedValue interface{} `json:"observed_value"`
	Severity      Severity    `json:"severity"`
	Code          string      `json:"code"`
}
