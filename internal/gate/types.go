package gate

import (
	"errors"
	"fmt"

	"github.com/maureliano/hvdc-simulator-sub000/internal/hil"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
)

// #region operation-type
// OperationType is the kind of twin-derived action being gated.
type OperationType string

const (
	OpMeasurement  OperationType = "measurement"
	OpPrediction   OperationType = "prediction"
	OpControl      OperationType = "control"
	OpOptimization OperationType = "optimization"
)

// Valid reports whether o is a declared operation type.
func (o OperationType) Valid() bool {
	switch o {
	case OpMeasurement, OpPrediction, OpControl, OpOptimization:
		return true
	}
	return false
}

// ParseOperationType converts a string into an OperationType.
func ParseOperationType(s string) (OperationType, error) {
	o := OperationType(s)
	if !o.Valid() {
		return "", fmt.Errorf("%w: unknown operation type %q", ErrInvalidContext, s)
	}
	return o, nil
}

// #endregion operation-type

// #region action
// Action is the gating verdict.
type Action string

const (
	ActionAllow    Action = "allow"
	ActionDegrade  Action = "degrade"
	ActionSafeMode Action = "safe_mode"
	ActionBlock    Action = "block"
)

// RiskLevel buckets the internal risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// #endregion action

// #region context
// ErrInvalidContext is returned for decision contexts with undeclared enum
// values or non-finite numbers.
var ErrInvalidContext = errors.New("invalid decision context")

// Context carries everything the engine needs for one decision.
type Context struct {
	OperationType  OperationType         `json:"operation_type"`
	FidelityIndex  float64               `json:"dynamic_fidelity_index"`
	UncertaintyPct float64               `json:"overall_uncertainty_pct"`
	HILStatus      hil.Status            `json:"hil_validation_status"`
	SystemStatus   measurement.Condition `json:"system_status"`
}

// #endregion context

// #region gate-config
// Config holds the decision thresholds and risk weights.
type Config struct {
	AllowMinFidelity      float64 `yaml:"allow_min_fidelity"`
	AllowMaxUncertainty   float64 `yaml:"allow_max_uncertainty"`
	DegradeMinFidelity    float64 `yaml:"degrade_min_fidelity"`
	DegradeMaxUncertainty float64 `yaml:"degrade_max_uncertainty"`
	SafeModeMinFidelity   float64 `yaml:"safe_mode_min_fidelity"`

	ConfidenceDegrade     float64 `yaml:"confidence_degrade"`
	ConfidenceSafeMode    float64 `yaml:"confidence_safe_mode"`
	ConfidenceBlock       float64 `yaml:"confidence_block"`
	FaultConfidenceFactor float64 `yaml:"fault_confidence_factor"`
	ConfidenceFloor       float64 `yaml:"confidence_floor"`

	BaseRisk                map[OperationType]float64 `yaml:"base_risk"`
	FidelityDeficitWeight   float64                   `yaml:"fidelity_deficit_weight"`
	UncertaintyExcessWeight float64                   `yaml:"uncertainty_excess_weight"`
	TransientPenalty        float64                   `yaml:"transient_penalty"`
	FaultPenalty            float64                   `yaml:"fault_penalty"`
}

// DefaultGateConfig returns the production decision table.
func DefaultGateConfig() Config {
	return Config{
		AllowMinFidelity:      85,
		AllowMaxUncertainty:   5,
		DegradeMinFidelity:    70,
		DegradeMaxUncertainty: 10,
		SafeModeMinFidelity:   50,

		ConfidenceDegrade:     70,
		ConfidenceSafeMode:    50,
		ConfidenceBlock:       30,
		FaultConfidenceFactor: 0.8,
		ConfidenceFloor:       20,

		BaseRisk: map[OperationType]float64{
			OpMeasurement:  20,
			OpPrediction:   40,
			OpControl:      60,
			OpOptimization: 80,
		},
		FidelityDeficitWeight:   0.5,
		UncertaintyExcessWeight: 2,
		TransientPenalty:        15,
		FaultPenalty:            30,
	}
}

// #endregion gate-config

// #region decision
// Risk is the engine's internal risk assessment for one context.
type Risk struct {
	Score float64   `json:"score"` // [0, 100]
	Level RiskLevel `json:"level"`
}

// Decision is the output of the engine.
type Decision struct {
	Action           Action   `json:"action"`
	OperationAllowed bool     `json:"operation_allowed"`
	Confidence       float64  `json:"confidence"` // [0, 100]
	Reasoning        string   `json:"reasoning"`
	Recommendations  []string `json:"recommendations"`
	BlockingReasons  []string `json:"blocking_reasons"`
	SafetyMargin     float64  `json:"safety_margin"`
	Risk             Risk     `json:"risk"`
	Rule             string   `json:"rule"`                // table rule that matched
	Overrides        []string `json:"overrides,omitempty"` // override rules that fired, in order
}

// #endregion decision
