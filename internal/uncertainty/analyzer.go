package uncertainty

import (
	"errors"
	"fmt"
	"math"

	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
)

// ErrUnknownCondition is returned for an operating condition outside the declared set.
var ErrUnknownCondition = errors.New("unknown operating condition")

// #region analyzer
// Analyzer propagates the configured source uncertainties to confidence bounds.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates an analyzer with the given configuration.
func NewAnalyzer(config Config) *Analyzer {
	return &Analyzer{config: config}
}

// Analyze derives per-quantity bounds around nominal for the given condition.
func (a *Analyzer) Analyze(nominal measurement.Snapshot, condition measurement.Condition) (Report, error) {
	scale, err := a.scaleFor(condition)
	if err != nil {
		return Report{}, err
	}

	uV := scale.Voltage * a.config.Voltage.rss()
	uI := scale.Current * a.config.Current.rss()
	uP := scale.Power * a.config.Power.rss()
	uF := scale.Frequency * a.config.Frequency.rss()

	overall := rss(uV, uI, uP, uF)
	return Report{
		Voltage:         relativeBound(nominal.Voltage, uV),
		Current:         relativeBound(nominal.Current, uI),
		Power:           relativeBound(nominal.Power, uP),
		Frequency:       absoluteBound(nominal.Frequency, uF),
		OverallPct:      overall,
		ConfidenceLevel: Confidence(overall),
		Sources:         a.breakdown(scale),
	}, nil
}

// #endregion analyzer

// #region scale
func (a *Analyzer) scaleFor(c measurement.Condition) (Scale, error) {
	switch c {
	case measurement.ConditionNormal:
		return Scale{Voltage: 1, Current: 1, Power: 1, Frequency: 1}, nil
	case measurement.ConditionTransient:
		return a.config.Transient, nil
	case measurement.ConditionFault:
		return a.config.Fault, nil
	}
	return Scale{}, fmt.Errorf("%w: %q", ErrUnknownCondition, c)
}

// #endregion scale

// #region breakdown
// breakdown sums each source category across quantities, weighted by the
// quantity's scale factor, and normalizes to percentages.
func (a *Analyzer) breakdown(s Scale) SourceBreakdown {
	parts := []struct {
		c Contributors
		k float64
	}{
		{a.config.Voltage, s.Voltage},
		{a.config.Current, s.Current},
		{a.config.Power, s.Power},
		{a.config.Frequency, s.Frequency},
	}
	var sum Contributors
	for _, p := range parts {
		sum.Parametric += p.c.Parametric * p.k
		sum.Measurement += p.c.Measurement * p.k
		sum.Model += p.c.Model * p.k
		sum.Environmental += p.c.Environmental * p.k
	}
	total := sum.Parametric + sum.Measurement + sum.Model + sum.Environmental
	if total <= 0 {
		return SourceBreakdown{Parametric: 25, Measurement: 25, Model: 25, Environmental: 25}
	}
	return SourceBreakdown{
		Parametric:    sum.Parametric / total * 100,
		Measurement:   sum.Measurement / total * 100,
		Model:         sum.Model / total * 100,
		Environmental: sum.Environmental / total * 100,
	}
}

// #endregion breakdown

// #region validate-config
// Validate rejects negative contributors and non-positive scale factors.
func (c Config) Validate() error {
	for name, k := range map[string]Contributors{
		"voltage": c.Voltage, "current": c.Current, "power": c.Power, "frequency": c.Frequency,
	} {
		if k.Parametric < 0 || k.Measurement < 0 || k.Model < 0 || k.Environmental < 0 {
			return fmt.Errorf("uncertainty contributors for %s must be non-negative", name)
		}
	}
	for name, s := range map[string]Scale{"transient": c.Transient, "fault": c.Fault} {
		if s.Voltage <= 0 || s.Current <= 0 || s.Power <= 0 || s.Frequency <= 0 {
			return fmt.Errorf("uncertainty %s scale factors must be positive", name)
		}
	}
	return nil
}

// #endregion validate-config

// #region helpers
// Confidence maps an overall uncertainty percentage to a confidence level in (0, 1].
func Confidence(overallPct float64) float64 {
	return math.Exp(-0.5 * math.Max(0, overallPct))
}

func (c Contributors) rss() float64 {
	return rss(c.Parametric, c.Measurement, c.Model, c.Environmental)
}

func rss(xs ...float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func relativeBound(nominal, pct float64) Bound {
	lo := nominal * (1 - pct/100)
	hi := nominal * (1 + pct/100)
	return Bound{Lower: math.Min(lo, hi), Upper: math.Max(lo, hi), Nominal: nominal, UncertaintyPct: pct}
}

func absoluteBound(nominal, pct float64) Bound {
	half := math.Abs(pct / 100 * nominal)
	return Bound{Lower: nominal - half, Upper: nominal + half, Nominal: nominal, UncertaintyPct: pct}
}

// #endregion helpers
