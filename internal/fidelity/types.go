package fidelity

import "time"

// #region status
// Status is the qualitative fidelity band of one snapshot comparison.
type Status string

const (
	StatusExcellent  Status = "excellent"
	StatusGood       Status = "good"
	StatusAcceptable Status = "acceptable"
	StatusPoor       Status = "poor"
	StatusCritical   Status = "critical"
)

// #endregion status

// #region config
// Tolerance holds one limit per compared quantity. Voltage, current and power
// are percentages; frequency is in Hz.
type Tolerance struct {
	VoltagePct  float64 `yaml:"voltage_pct" json:"voltage_pct"`
	CurrentPct  float64 `yaml:"current_pct" json:"current_pct"`
	PowerPct    float64 `yaml:"power_pct" json:"power_pct"`
	FrequencyHz float64 `yaml:"frequency_hz" json:"frequency_hz"`
}

// Weights sets the contribution of each quantity to the fidelity index.
type Weights struct {
	Voltage   float64 `yaml:"voltage" json:"voltage"`
	Current   float64 `yaml:"current" json:"current"`
	Power     float64 `yaml:"power" json:"power"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Voltage + w.Current + w.Power + w.Frequency
}

// Config holds the sigmoid centres, weights and status bands.
type Config struct {
	// Sigmoid centres: an error equal to the centre normalizes to 0.5.
	Centers Tolerance `yaml:"centers"`
	Weights Weights   `yaml:"weights"`

	// Status bands, each strictly looser than the previous one.
	Excellent  Tolerance `yaml:"excellent"`
	Good       Tolerance `yaml:"good"`
	Acceptable Tolerance `yaml:"acceptable"`
	Poor       Tolerance `yaml:"poor"`
}

// DefaultConfig returns the calibration used for +/-500 kV bipole stations.
func DefaultConfig() Config {
	return Config{
		Centers: Tolerance{VoltagePct: 2.0, CurrentPct: 3.0, PowerPct: 3.0, FrequencyHz: 0.1},
		Weights: Weights{Voltage: 0.25, Current: 0.25, Power: 0.35, Frequency: 0.15},

		Excellent:  Tolerance{VoltagePct: 1.0, CurrentPct: 1.5, PowerPct: 1.5, FrequencyHz: 0.05},
		Good:       Tolerance{VoltagePct: 2.0, CurrentPct: 3.0, PowerPct: 3.0, FrequencyHz: 0.1},
		Acceptable: Tolerance{VoltagePct: 5.0, CurrentPct: 7.0, PowerPct: 7.0, FrequencyHz: 0.2},
		Poor:       Tolerance{VoltagePct: 10.0, CurrentPct: 15.0, PowerPct: 15.0, FrequencyHz: 0.5},
	}
}

// #endregion config

// #region result
// Result is the outcome of comparing one digital snapshot with one real one.
type Result struct {
	Timestamp time.Time `json:"timestamp"`

	VoltageErrorPct  float64 `json:"voltage_error_pct"`
	CurrentErrorPct  float64 `json:"current_error_pct"`
	PowerErrorPct    float64 `json:"power_error_pct"`
	FrequencyErrorHz float64 `json:"frequency_error_hz"`

	VoltageAbsError float64 `json:"voltage_abs_error"`
	CurrentAbsError float64 `json:"current_abs_error"`
	PowerAbsError   float64 `json:"power_abs_error"`

	Index  float64 `json:"dynamic_fidelity_index"` // [0, 100]
	Status Status  `json:"status"`
}

// #endregion result
