package logging

import "time"

// #region provenance-entry
// ProvenanceEntry is a single row in the decision_log table.
type ProvenanceEntry struct {
	ReportID      string
	OperationType string
	Condition     string
	Action        string // "allow" | "degrade" | "safe_mode" | "block"
	Rule          string
	Overrides     string // comma separated, empty when none fired
	Trust         string
	Score         float64
	InputsJSON    string
	Reason        string
	CreatedAt     time.Time
}
// #endregion provenance-entry

// #region decision-record
// DecisionRecord captures the gate inputs and thresholds of one cycle.
// Serialized as JSON into decision_log.inputs_json so a decision can be
// re-derived offline.
type DecisionRecord struct {
	ReportID string `json:"report_id"`

	// Exact context as evaluated at runtime
	Inputs DecisionInputs `json:"inputs"`

	// Risk assessed before rules ran
	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`

	// Gate thresholds active at decision time
	Thresholds DecisionThresholds `json:"thresholds"`

	// Gate output
	Action     string   `json:"action"`
	Allowed    bool     `json:"operation_allowed"`
	Confidence float64  `json:"confidence"`
	Rule       string   `json:"rule"`
	Overrides  []string `json:"overrides,omitempty"`
	Blocking   []string `json:"blocking_reasons,omitempty"`
}

// DecisionInputs is the context the gate saw.
type DecisionInputs struct {
	OperationType  string  `json:"operation_type"`
	FidelityIndex  float64 `json:"dynamic_fidelity_index"`
	UncertaintyPct float64 `json:"overall_uncertainty_pct"`
	HILStatus      string  `json:"hil_validation_status"`
	SystemStatus   string  `json:"system_status"`
}

// DecisionThresholds captures the gate config active at decision time.
type DecisionThresholds struct {
	AllowMinFidelity      float64 `json:"allow_min_fidelity"`
	AllowMaxUncertainty   float64 `json:"allow_max_uncertainty"`
	DegradeMinFidelity    float64 `json:"degrade_min_fidelity"`
	DegradeMaxUncertainty float64 `json:"degrade_max_uncertainty"`
	SafeModeMinFidelity   float64 `json:"safe_mode_min_fidelity"`
}
// #endregion decision-record
