package orchestrator

// #region imports
import (
	"time"

	"github.com/maureliano/hvdc-simulator-sub000/internal/fidelity"
	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/hil"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/uncertainty"
)

// #endregion

// #region trust

// Trust is the coarse trustworthiness bucket of one report.
type Trust string

const (
	TrustHigh     Trust = "high"
	TrustMedium   Trust = "medium"
	TrustLow      Trust = "low"
	TrustCritical Trust = "critical"
)

// #endregion

// #region direction

// Direction classifies the recent evolution of the overall score.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionStable    Direction = "stable"
	DirectionDegrading Direction = "degrading"
)

// #endregion

// #region report

// Report is the trust report of one evaluation cycle. It is never mutated
// after Evaluate returns it.
type Report struct {
	ID              string                `json:"id"`
	Timestamp       time.Time             `json:"timestamp"`
	OperationType   gate.OperationType    `json:"operation_type"`
	Condition       measurement.Condition `json:"operating_condition"`
	Fidelity        fidelity.Result       `json:"dynamic_fidelity"`
	Uncertainty     uncertainty.Report    `json:"uncertainty"`
	HIL             *hil.Report           `json:"hil_validation,omitempty"` // nil when no HIL batch was supplied
	Decision        gate.Decision         `json:"agentic_decision"`
	Score           float64               `json:"overall_iff_score"` // [0, 100]
	Trust           Trust                 `json:"system_trustworthiness"`
	Recommendations []string              `json:"recommendations"`

	// Input is the request that produced the report, kept so stored reports
	// can be exported as replay fixtures.
	Input Input `json:"input"`
}

// #endregion

// #region input

// Input is one evaluation request as it arrives over the wire or from a
// replay fixture.
type Input struct {
	Digital       measurement.Snapshot `json:"digital"`
	Real          measurement.Snapshot `json:"real"`
	HILOutcomes   []hil.Outcome        `json:"hil_outcomes,omitempty"`
	OperationType gate.OperationType   `json:"operation_type"`
}

// #endregion

// #region history-result

// HistoryResult is either empty or a list of reports, oldest first. An empty
// result means no evaluation has been recorded; it is never padded.
type HistoryResult struct {
	reports []Report
}

// Empty reports whether no evaluation has been recorded.
func (h HistoryResult) Empty() bool {
	return len(h.reports) == 0
}

// Reports returns the reports, oldest first. It returns nil when Empty.
func (h HistoryResult) Reports() []Report {
	return h.reports
}

// #endregion

// #region trend-summary

// Trend is the direction and rate (score points per second) of the last
// trendWindow reports.
type Trend struct {
	Direction Direction `json:"trend"`
	Rate      float64   `json:"rate"`
	Samples   int       `json:"samples"`
}

// Summary is an aggregate view over the whole history.
type Summary struct {
	Count            int      `json:"count"`
	AverageScore     float64  `json:"average_score"`
	TrendDescription string   `json:"trend_description"`
	DimensionNames   []string `json:"dimension_names"`
}

// #endregion

// #region config

// ConditionConfig sets the deviation limits used to infer the operating
// condition from a snapshot pair.
type ConditionConfig struct {
	TransientFrequencyHz float64 `yaml:"transient_frequency_hz"`
	TransientVoltagePct  float64 `yaml:"transient_voltage_pct"`
	FaultFrequencyHz     float64 `yaml:"fault_frequency_hz"`
	FaultVoltagePct      float64 `yaml:"fault_voltage_pct"`
}

// Config wires the analyzers together.
type Config struct {
	Fidelity    fidelity.Config    `yaml:"fidelity"`
	Uncertainty uncertainty.Config `yaml:"uncertainty"`
	Gate        gate.Config        `yaml:"gate"`
	Condition   ConditionConfig    `yaml:"condition"`

	// HistoryLimit caps the in-memory history; 0 keeps every report.
	HistoryLimit int `yaml:"history_limit"`
}

// DefaultConfig returns the default analyzer wiring.
func DefaultConfig() Config {
	return Config{
		Fidelity:    fidelity.DefaultConfig(),
		Uncertainty: uncertainty.DefaultConfig(),
		Gate:        gate.DefaultGateConfig(),
		Condition: ConditionConfig{
			TransientFrequencyHz: 0.1,
			TransientVoltagePct:  5,
			FaultFrequencyHz:     0.2,
			FaultVoltagePct:      10,
		},
		HistoryLimit: 10000,
	}
}

// #endregion
