package orchestrator

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maureliano/hvdc-simulator-sub000/internal/fidelity"
	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/hil"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/uncertainty"
)

// #endregion

// #region score-weights

// Weights of the overall fidelity score. Confidence enters twice: once as
// the uncertainty dimension and once as the statistical-confidence dimension.
const (
	weightFidelity    = 0.35
	weightUncertainty = 0.25
	weightHIL         = 0.25
	weightConfidence  = 0.15
)

const (
	trustHighScore   = 90.0
	trustMediumScore = 75.0
	trustLowScore    = 50.0
)

// #endregion

// #region orchestrator-struct

// Orchestrator runs one evaluation cycle across the four analyzers and keeps
// the append-only history of the resulting reports. It is safe for
// concurrent use.
type Orchestrator struct {
	fidelity    *fidelity.Analyzer
	uncertainty *uncertainty.Analyzer
	hil         *hil.Aggregator
	gate        *gate.Engine
	config      Config

	now   func() time.Time
	newID func() string

	mu      sync.RWMutex
	history []Report
}

// #endregion

// #region constructor

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock used to stamp reports whose measurements carry no
// timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator sets the report ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// New creates a fully wired orchestrator.
func New(config Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fidelity:    fidelity.NewAnalyzer(config.Fidelity),
		uncertainty: uncertainty.NewAnalyzer(config.Uncertainty),
		hil:         hil.NewAggregator(),
		gate:        gate.NewEngine(config.Gate),
		config:      config,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// #endregion

// #region evaluate

// ErrUnencodableReport is returned when a cycle produced a report that cannot
// be serialized, such as one carrying a non-finite metric. Such a report is
// never appended to the history.
var ErrUnencodableReport = errors.New("unencodable report")

// Evaluate scores one digital/real snapshot pair. hilOutcomes may be nil when
// no HIL batch accompanies the cycle. The report is appended to the history.
func (o *Orchestrator) Evaluate(
	digital, real measurement.Snapshot,
	hilOutcomes []hil.Outcome,
	op gate.OperationType,
) (Report, error) {
	return o.EvaluateInputWith(Input{
		Digital:       digital,
		Real:          real,
		HILOutcomes:   hilOutcomes,
		OperationType: op,
	}, nil)
}

// EvaluateInput is Evaluate over a decoded request.
func (o *Orchestrator) EvaluateInput(in Input) (Report, error) {
	return o.EvaluateInputWith(in, nil)
}

// EvaluateInputWith runs one cycle and hands the finished report to persist
// before it enters the history. When persist fails the history is left
// untouched and the error is returned. persist may be nil.
func (o *Orchestrator) EvaluateInputWith(in Input, persist func(Report) error) (Report, error) {
	rep, err := o.evaluate(in.Digital, in.Real, in.HILOutcomes, in.OperationType)
	if err != nil {
		return Report{}, err
	}
	if persist != nil {
		if err := persist(cloneReport(rep)); err != nil {
			return Report{}, err
		}
	}
	o.append(rep)
	return cloneReport(rep), nil
}

func (o *Orchestrator) evaluate(
	digital, real measurement.Snapshot,
	hilOutcomes []hil.Outcome,
	op gate.OperationType,
) (Report, error) {
	if !op.Valid() {
		return Report{}, fmt.Errorf("evaluate: %w: operation type %q", gate.ErrInvalidContext, op)
	}
	if err := digital.Validate(); err != nil {
		return Report{}, fmt.Errorf("evaluate: digital snapshot: %w", err)
	}
	if err := real.Validate(); err != nil {
		return Report{}, fmt.Errorf("evaluate: real snapshot: %w", err)
	}

	// 1. Dynamic fidelity
	fid := o.fidelity.Analyze(digital, real)

	// 2. Uncertainty under the inferred operating condition
	cond := o.DeriveCondition(fid)
	unc, err := o.uncertainty.Analyze(digital, cond)
	if err != nil {
		return Report{}, fmt.Errorf("evaluate: %w", err)
	}

	// 3. HIL batch, if any
	var hilRep *hil.Report
	hilStatus := hil.StatusNotValidated
	hilPassRate := 0.0
	if len(hilOutcomes) == 0 {
		hilOutcomes = nil
	} else {
		rep, err := o.hil.Aggregate(hilOutcomes)
		if err != nil {
			return Report{}, fmt.Errorf("evaluate: %w", err)
		}
		hilRep = &rep
		hilStatus = rep.Status
		hilPassRate = rep.PassRatePct
	}

	// 4. Decision
	decision, err := o.gate.Decide(gate.Context{
		OperationType:  op,
		FidelityIndex:  fid.Index,
		UncertaintyPct: unc.OverallPct,
		HILStatus:      hilStatus,
		SystemStatus:   cond,
	})
	if err != nil {
		return Report{}, fmt.Errorf("evaluate: %w", err)
	}

	// 5-7. Score, trust, recommendations
	score := OverallScore(fid.Index, unc.ConfidenceLevel, hilPassRate)
	ts := fid.Timestamp
	if ts.IsZero() {
		ts = o.now()
	}
	rep := Report{
		ID:              o.newID(),
		Timestamp:       ts.UTC(),
		OperationType:   op,
		Condition:       cond,
		Fidelity:        fid,
		Uncertainty:     unc,
		HIL:             hilRep,
		Decision:        decision,
		Score:           score,
		Trust:           Classify(score, decision.OperationAllowed),
		Recommendations: recommendations(fid, cond, unc, hilRep, decision),
		Input: Input{
			Digital:       digital,
			Real:          real,
			HILOutcomes:   slices.Clone(hilOutcomes),
			OperationType: op,
		},
	}

	if err := encodable(rep); err != nil {
		return Report{}, fmt.Errorf("evaluate: %w", err)
	}
	return rep, nil
}

func encodable(rep Report) error {
	if _, err := json.Marshal(rep); err != nil {
		return fmt.Errorf("%w: %v", ErrUnencodableReport, err)
	}
	return nil
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() Config {
	return o.config
}

// #endregion

// #region condition

// DeriveCondition infers the operating condition from the deviation between
// the twin and the measurements.
func (o *Orchestrator) DeriveCondition(fid fidelity.Result) measurement.Condition {
	c := o.config.Condition
	switch {
	case fid.FrequencyErrorHz > c.FaultFrequencyHz || fid.VoltageErrorPct > c.FaultVoltagePct:
		return measurement.ConditionFault
	case fid.FrequencyErrorHz > c.TransientFrequencyHz || fid.VoltageErrorPct > c.TransientVoltagePct:
		return measurement.ConditionTransient
	default:
		return measurement.ConditionNormal
	}
}

// #endregion

// #region scoring

// OverallScore combines the fidelity index, the confidence level (0-1) and
// the HIL pass rate (percent) into one 0-100 score.
func OverallScore(fidelityIndex, confidenceLevel, hilPassRatePct float64) float64 {
	conf := confidenceLevel * 100
	score := weightFidelity*fidelityIndex +
		weightUncertainty*conf +
		weightHIL*hilPassRatePct +
		weightConfidence*conf
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}

// Classify buckets a score. High and medium require the decision engine to
// currently permit operation.
func Classify(score float64, operationAllowed bool) Trust {
	switch {
	case score >= trustHighScore && operationAllowed:
		return TrustHigh
	case score >= trustMediumScore && operationAllowed:
		return TrustMedium
	case score >= trustLowScore:
		return TrustLow
	default:
		return TrustCritical
	}
}

// #endregion

// #region recommendations

func recommendations(
	fid fidelity.Result,
	cond measurement.Condition,
	unc uncertainty.Report,
	hilRep *hil.Report,
	decision gate.Decision,
) []string {
	var recs []string

	switch fid.Status {
	case fidelity.StatusPoor, fidelity.StatusCritical:
		recs = append(recs, fmt.Sprintf("dynamic fidelity %s (%.1f): recalibrate the twin against field measurements", fid.Status, fid.Index))
	case fidelity.StatusAcceptable:
		recs = append(recs, "dynamic fidelity acceptable: schedule parameter re-estimation")
	}

	if cond != measurement.ConditionNormal {
		recs = append(recs, fmt.Sprintf("operating condition %s: uncertainty bounds widened", cond))
	}
	if unc.OverallPct > 1 {
		recs = append(recs, fmt.Sprintf("overall uncertainty %.2f%% elevated: review instrumentation and model parameters", unc.OverallPct))
	}

	switch {
	case hilRep == nil:
		recs = append(recs, "no hil evidence supplied for this cycle")
	case hilRep.Failed > 0:
		recs = append(recs, fmt.Sprintf("%d of %d hil tests failed: review the failing scenarios", hilRep.Failed, hilRep.Total))
	}

	return append(recs, decision.Recommendations...)
}

// #endregion
