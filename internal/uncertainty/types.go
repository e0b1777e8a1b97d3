package uncertainty

// #region contributors
// Contributors are the four independent uncertainty sources of one quantity,
// each in percent of the nominal value.
type Contributors struct {
	Parametric    float64 `yaml:"parametric" json:"parametric"`
	Measurement   float64 `yaml:"measurement" json:"measurement"`
	Model         float64 `yaml:"model" json:"model"`
	Environmental float64 `yaml:"environmental" json:"environmental"`
}

// Scale is a per-quantity multiplier applied under one operating condition.
type Scale struct {
	Voltage   float64 `yaml:"voltage" json:"voltage"`
	Current   float64 `yaml:"current" json:"current"`
	Power     float64 `yaml:"power" json:"power"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
}

// #endregion contributors

// #region config
// Config holds the base contributors and condition scale factors.
type Config struct {
	Voltage   Contributors `yaml:"voltage"`
	Current   Contributors `yaml:"current"`
	Power     Contributors `yaml:"power"`
	Frequency Contributors `yaml:"frequency"`

	Transient Scale `yaml:"transient"`
	Fault     Scale `yaml:"fault"`
}

// DefaultConfig returns contributors for 0.1-class DC instrumentation.
func DefaultConfig() Config {
	return Config{
		Voltage:   Contributors{Parametric: 0.10, Measurement: 0.05, Model: 0.08, Environmental: 0.02},
		Current:   Contributors{Parametric: 0.12, Measurement: 0.06, Model: 0.08, Environmental: 0.03},
		Power:     Contributors{Parametric: 0.15, Measurement: 0.08, Model: 0.10, Environmental: 0.04},
		Frequency: Contributors{Parametric: 0.02, Measurement: 0.01, Model: 0.01, Environmental: 0.005},

		Transient: Scale{Voltage: 1.5, Current: 2.0, Power: 2.5, Frequency: 1.8},
		Fault:     Scale{Voltage: 2.0, Current: 3.0, Power: 2.8, Frequency: 2.5},
	}
}

// #endregion config

// #region report
// Bound is the confidence interval around one nominal value.
type Bound struct {
	Lower          float64 `json:"lower"`
	Upper          float64 `json:"upper"`
	Nominal        float64 `json:"nominal"`
	UncertaintyPct float64 `json:"uncertainty_pct"`
}

// SourceBreakdown is the share of each source category, summing to 100.
type SourceBreakdown struct {
	Parametric    float64 `json:"parametric"`
	Measurement   float64 `json:"measurement"`
	Model         float64 `json:"model"`
	Environmental float64 `json:"environmental"`
}

// Report is the uncertainty picture of one snapshot under one condition.
type Report struct {
	Voltage   Bound `json:"voltage"`
	Current   Bound `json:"current"`
	Power     Bound `json:"power"`
	Frequency Bound `json:"frequency"`

	OverallPct      float64         `json:"overall_uncertainty_pct"`
	ConfidenceLevel float64         `json:"confidence_level"` // (0, 1]
	Sources         SourceBreakdown `json:"source_breakdown"`
}

// #endregion report
