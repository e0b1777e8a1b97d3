package fidelity

import (
	"fmt"
	"math"

	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
)

// #region analyzer
// Analyzer scores how closely the twin's instantaneous estimate tracks the
// measured system.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates an analyzer with the given configuration.
func NewAnalyzer(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// Analyze compares digital against real. Both snapshots must already be
// validated; the comparison itself has no failure mode.
func (a *Analyzer) Analyze(digital, real measurement.Snapshot) Result {
	res := Result{
		Timestamp:        real.Timestamp,
		VoltageErrorPct:  PercentError(digital.Voltage, real.Voltage),
		CurrentErrorPct:  PercentError(digital.Current, real.Current),
		PowerErrorPct:    PercentError(digital.Power, real.Power),
		FrequencyErrorHz: absDiff(digital.Frequency, real.Frequency),
		VoltageAbsError:  absDiff(digital.Voltage, real.Voltage),
		CurrentAbsError:  absDiff(digital.Current, real.Current),
		PowerAbsError:    absDiff(digital.Power, real.Power),
	}
	if res.Timestamp.IsZero() {
		res.Timestamp = digital.Timestamp
	}

	c, w := a.config.Centers, a.config.Weights
	weighted := w.Voltage*normalize(res.VoltageErrorPct, c.VoltagePct) +
		w.Current*normalize(res.CurrentErrorPct, c.CurrentPct) +
		w.Power*normalize(res.PowerErrorPct, c.PowerPct) +
		w.Frequency*normalize(res.FrequencyErrorHz, c.FrequencyHz)
	if total := w.Sum(); total > 0 {
		weighted /= total
	}

	res.Index = clamp(100*(1-weighted), 0, 100)
	res.Status = a.classify(res)
	return res
}

// #endregion analyzer

// #region classify
// classify walks the bands from tightest to loosest on the raw errors.
func (a *Analyzer) classify(r Result) Status {
	bands := []struct {
		status Status
		tol    Tolerance
	}{
		{StatusExcellent, a.config.Excellent},
		{StatusGood, a.config.Good},
		{StatusAcceptable, a.config.Acceptable},
		{StatusPoor, a.config.Poor},
	}
	for _, b := range bands {
		if within(r, b.tol) {
			return b.status
		}
	}
	return StatusCritical
}

func within(r Result, tol Tolerance) bool {
	return r.VoltageErrorPct < tol.VoltagePct &&
		r.CurrentErrorPct < tol.CurrentPct &&
		r.PowerErrorPct < tol.PowerPct &&
		r.FrequencyErrorHz < tol.FrequencyHz
}

// #endregion classify

// #region validate-config
// Validate checks that weights are usable and bands widen monotonically.
func (c Config) Validate() error {
	w := c.Weights
	for _, v := range []float64{w.Voltage, w.Current, w.Power, w.Frequency} {
		if v < 0 {
			return fmt.Errorf("fidelity weights must be non-negative")
		}
	}
	if math.Abs(w.Sum()-1) > 1e-6 {
		return fmt.Errorf("fidelity weights sum to %.4f, want 1", w.Sum())
	}
	if !positive(c.Centers) {
		return fmt.Errorf("fidelity sigmoid centers must be positive")
	}
	bands := []Tolerance{c.Excellent, c.Good, c.Acceptable, c.Poor}
	for i, b := range bands {
		if !positive(b) {
			return fmt.Errorf("fidelity status band %d must be positive", i)
		}
		if i > 0 && !looser(b, bands[i-1]) {
			return fmt.Errorf("fidelity status band %d is tighter than band %d", i, i-1)
		}
	}
	return nil
}

func positive(t Tolerance) bool {
	return t.VoltagePct > 0 && t.CurrentPct > 0 && t.PowerPct > 0 && t.FrequencyHz > 0
}

func looser(a, b Tolerance) bool {
	return a.VoltagePct >= b.VoltagePct && a.CurrentPct >= b.CurrentPct &&
		a.PowerPct >= b.PowerPct && a.FrequencyHz >= b.FrequencyHz
}

// #endregion validate-config

// #region helpers
// MaxPercentError caps PercentError. A reference close enough to zero would
// otherwise turn any finite difference into +Inf.
const MaxPercentError = 1e6

// PercentError is |d-r|/|r|*100, with a zero reference mapped to 0 when both
// values are zero and to 100 otherwise. The result saturates at
// MaxPercentError.
func PercentError(digital, real float64) float64 {
	if real == 0 {
		if digital == 0 {
			return 0
		}
		return 100
	}
	pct := absDiff(digital, real) / math.Abs(real) * 100
	if math.IsNaN(pct) || pct > MaxPercentError {
		return MaxPercentError
	}
	return pct
}

// absDiff is |a-b| saturated at math.MaxFloat64.
func absDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return math.MaxFloat64
	}
	return d
}

// normalize maps an error onto (0, 1) with a logistic curve centred at center.
func normalize(err, center float64) float64 {
	return 1 / (1 + math.Exp(-2*(err/center-1)))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// #endregion helpers
