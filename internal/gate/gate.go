package gate

import (
	"fmt"
	"math"
	"strings"

	"github.com/maureliano/hvdc-simulator-sub000/internal/hil"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
)

// #region rules
// Rule is one row of the decision table. Rows are checked in order and the
// first match wins.
type Rule struct {
	Name   string
	Action Action
	Match  func(c Context, r Risk) bool
}

// Override adjusts a decision after the table lookup. Apply reports whether
// the override fired.
type Override struct {
	Name  string
	Apply func(d *Decision, c Context) bool
}

// #endregion rules

// #region gate
// Engine classifies whether twin-derived actions may proceed. It holds no
// state between calls.
type Engine struct {
	config    Config
	rules     []Rule
	overrides []Override
}

// NewEngine creates an engine with the given configuration.
func NewEngine(config Config) *Engine {
	e := &Engine{config: config}
	e.rules = e.buildRules()
	e.overrides = e.buildOverrides()
	return e
}

// Rules returns the decision table in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Overrides returns the post-table override rules in application order.
func (e *Engine) Overrides() []Override {
	return e.overrides
}

// Decide runs the decision table, then the overrides.
func (e *Engine) Decide(c Context) (Decision, error) {
	if err := validateContext(c); err != nil {
		return Decision{}, err
	}
	c.FidelityIndex = clamp(c.FidelityIndex, 0, 100)
	c.UncertaintyPct = math.Max(0, c.UncertaintyPct)

	risk := e.Assess(c)

	var rule Rule
	for _, r := range e.rules {
		if r.Match(c, risk) {
			rule = r
			break
		}
	}

	d := Decision{
		Action:       rule.Action,
		Confidence:   e.baseConfidence(rule.Action, c),
		SafetyMargin: math.Max(0, c.FidelityIndex-e.config.SafeModeMinFidelity),
		Risk:         risk,
		Rule:         rule.Name,
	}
	if reason := e.tableBlockingReason(d.Action, c); reason != "" {
		d.BlockingReasons = append(d.BlockingReasons, reason)
	}

	for _, o := range e.overrides {
		if o.Apply(&d, c) {
			d.Overrides = append(d.Overrides, o.Name)
		}
	}

	d.OperationAllowed = allowed(d.Action, c.OperationType)
	if !d.OperationAllowed && d.Action == ActionSafeMode {
		d.BlockingReasons = append(d.BlockingReasons,
			fmt.Sprintf("safe mode permits measurement only; %s suspended", c.OperationType))
	}
	d.Confidence = clamp(d.Confidence, 0, 100)
	d.Reasoning = reasoning(d, c)
	d.Recommendations = e.recommend(d, c)
	return d, nil
}

// #endregion gate

// #region table
func (e *Engine) buildRules() []Rule {
	cfg := e.config
	return []Rule{
		{
			Name:   "high_fidelity_low_uncertainty",
			Action: ActionAllow,
			Match: func(c Context, r Risk) bool {
				return c.FidelityIndex >= cfg.AllowMinFidelity &&
					c.UncertaintyPct <= cfg.AllowMaxUncertainty &&
					r.Level != RiskCritical
			},
		},
		{
			Name:   "moderate_fidelity",
			Action: ActionDegrade,
			Match: func(c Context, _ Risk) bool {
				return c.FidelityIndex >= cfg.DegradeMinFidelity &&
					c.UncertaintyPct <= cfg.DegradeMaxUncertainty
			},
		},
		{
			Name:   "above_safe_mode_floor",
			Action: ActionSafeMode,
			Match: func(c Context, _ Risk) bool {
				return c.FidelityIndex >= cfg.SafeModeMinFidelity
			},
		},
		{
			Name:   "below_safe_mode_floor",
			Action: ActionBlock,
			Match:  func(Context, Risk) bool { return true },
		},
	}
}

func (e *Engine) tableBlockingReason(a Action, c Context) string {
	if a != ActionBlock {
		return ""
	}
	return fmt.Sprintf("dynamic fidelity index %.2f below safe-mode floor %.0f",
		c.FidelityIndex, e.config.SafeModeMinFidelity)
}

// #endregion table

// #region overrides
func (e *Engine) buildOverrides() []Override {
	cfg := e.config
	return []Override{
		{
			Name: "fault_downgrade",
			Apply: func(d *Decision, c Context) bool {
				if c.SystemStatus != measurement.ConditionFault {
					return false
				}
				switch d.Action {
				case ActionAllow:
					d.Action = ActionDegrade
					d.Confidence = math.Min(d.Confidence, cfg.ConfidenceDegrade)
				case ActionDegrade:
					d.Action = ActionSafeMode
					d.Confidence = math.Min(d.Confidence, cfg.ConfidenceSafeMode)
					d.BlockingReasons = append(d.BlockingReasons,
						"system fault: degraded operation escalated to safe mode")
				default:
					return false
				}
				d.Confidence = math.Max(d.Confidence*cfg.FaultConfidenceFactor, cfg.ConfidenceFloor)
				return true
			},
		},
		{
			Name: "hil_not_validated_optimization",
			Apply: func(d *Decision, c Context) bool {
				if c.HILStatus != hil.StatusNotValidated || c.OperationType != OpOptimization {
					return false
				}
				if d.Action != ActionBlock {
					d.Confidence = cfg.ConfidenceBlock
				}
				d.Action = ActionBlock
				d.BlockingReasons = append(d.BlockingReasons,
					"hil validation not passed; optimization requires a validated twin")
				return true
			},
		},
	}
}

// #endregion overrides

// #region risk
// Assess scores the operational risk of acting on the twin in context c.
func (e *Engine) Assess(c Context) Risk {
	cfg := e.config
	score := cfg.BaseRisk[c.OperationType]
	score += cfg.FidelityDeficitWeight * math.Max(0, cfg.AllowMinFidelity-c.FidelityIndex)
	score += cfg.UncertaintyExcessWeight * math.Max(0, c.UncertaintyPct-cfg.AllowMaxUncertainty)
	switch c.SystemStatus {
	case measurement.ConditionFault:
		score += cfg.FaultPenalty
	case measurement.ConditionTransient:
		score += cfg.TransientPenalty
	}
	score = clamp(score, 0, 100)

	level := RiskLow
	switch {
	case score >= 80:
		level = RiskCritical
	case score >= 60:
		level = RiskHigh
	case score >= 40:
		level = RiskMedium
	}
	return Risk{Score: score, Level: level}
}

// #endregion risk

// #region helpers
func (e *Engine) baseConfidence(a Action, c Context) float64 {
	switch a {
	case ActionAllow:
		return c.FidelityIndex
	case ActionDegrade:
		return e.config.ConfidenceDegrade
	case ActionSafeMode:
		return e.config.ConfidenceSafeMode
	default:
		return e.config.ConfidenceBlock
	}
}

func allowed(a Action, op OperationType) bool {
	switch a {
	case ActionAllow, ActionDegrade:
		return true
	case ActionSafeMode:
		return op == OpMeasurement
	default:
		return false
	}
}

func (e *Engine) recommend(d Decision, c Context) []string {
	var recs []string
	switch d.Action {
	case ActionAllow:
		recs = append(recs, fmt.Sprintf("%s actions may proceed; keep continuous fidelity monitoring", c.OperationType))
	case ActionDegrade:
		recs = append(recs,
			fmt.Sprintf("run %s actions with reduced authority and operator confirmation", c.OperationType),
			fmt.Sprintf("recalibrate twin parameters to restore fidelity above %.0f", e.config.AllowMinFidelity))
	case ActionSafeMode:
		recs = append(recs,
			"restrict the twin to monitoring; fall back to conventional station control",
			"run a hil validation campaign before re-enabling closed-loop use")
	case ActionBlock:
		recs = append(recs,
			"do not execute twin-derived actions; investigate model divergence",
			"resynchronize the twin with field measurements")
	}
	if c.HILStatus == hil.StatusNotValidated && c.OperationType == OpOptimization {
		recs = append(recs, "complete hil validation before enabling optimization")
	}
	if d.Risk.Level == RiskHigh || d.Risk.Level == RiskCritical {
		recs = append(recs, fmt.Sprintf("risk level %s: require manual approval", d.Risk.Level))
	}
	return recs
}

func reasoning(d Decision, c Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule %s: dfi=%.2f uncertainty=%.3f%% hil=%s system=%s risk=%s(%.1f) -> %s",
		d.Rule, c.FidelityIndex, c.UncertaintyPct, c.HILStatus, c.SystemStatus,
		d.Risk.Level, d.Risk.Score, d.Action)
	if len(d.Overrides) > 0 {
		fmt.Fprintf(&b, " after overrides [%s]", strings.Join(d.Overrides, ", "))
	}
	return b.String()
}

func validateContext(c Context) error {
	if !c.OperationType.Valid() {
		return fmt.Errorf("%w: operation type %q", ErrInvalidContext, c.OperationType)
	}
	if !c.SystemStatus.Valid() {
		return fmt.Errorf("%w: system status %q", ErrInvalidContext, c.SystemStatus)
	}
	switch c.HILStatus {
	case hil.StatusValidated, hil.StatusPartiallyValidated, hil.StatusNotValidated:
	default:
		return fmt.Errorf("%w: hil status %q", ErrInvalidContext, c.HILStatus)
	}
	for name, v := range map[string]float64{"fidelity index": c.FidelityIndex, "uncertainty": c.UncertaintyPct} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidContext, name)
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// #endregion helpers

// #region validate-config
// Validate checks that the decision thresholds are ordered and complete.
func (c Config) Validate() error {
	if !(c.AllowMinFidelity >= c.DegradeMinFidelity && c.DegradeMinFidelity >= c.SafeModeMinFidelity) {
		return fmt.Errorf("gate fidelity thresholds must satisfy allow >= degrade >= safe_mode")
	}
	if c.AllowMaxUncertainty > c.DegradeMaxUncertainty {
		return fmt.Errorf("gate allow uncertainty %.2f exceeds degrade uncertainty %.2f",
			c.AllowMaxUncertainty, c.DegradeMaxUncertainty)
	}
	if c.FaultConfidenceFactor <= 0 || c.FaultConfidenceFactor > 1 {
		return fmt.Errorf("gate fault confidence factor %.2f outside (0, 1]", c.FaultConfidenceFactor)
	}
	for _, op := range []OperationType{OpMeasurement, OpPrediction, OpControl, OpOptimization} {
		if _, ok := c.BaseRisk[op]; !ok {
			return fmt.Errorf("gate base risk missing for %s", op)
		}
	}
	return nil
}

// #endregion validate-config
