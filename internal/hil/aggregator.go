package hil

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInsufficientData is returned when there is nothing to aggregate.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidOutcome is returned for outcomes carrying non-finite metrics.
	ErrInvalidOutcome = errors.New("invalid hil outcome")
)

// Status thresholds on the pass rate, in percent.
const (
	validatedPassRate = 100.0
	partialPassRate   = 80.0
)

// Aggregator reduces a HIL batch to a validation report.
type Aggregator struct{}

// NewAggregator creates an aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate summarizes outcomes. An empty batch is an error, never a zero report.
func (a *Aggregator) Aggregate(outcomes []Outcome) (Report, error) {
	if len(outcomes) == 0 {
		return Report{}, fmt.Errorf("aggregate hil outcomes: %w", ErrInsufficientData)
	}

	var rep Report
	var confSum, errMean float64
	n := float64(len(outcomes))
	for i, o := range outcomes {
		if !finite(o.ErrorPct) || !finite(o.Confidence) {
			return Report{}, fmt.Errorf("%w: outcome %d (%s) has non-finite metrics", ErrInvalidOutcome, i, o.TestName)
		}
		if o.Passed {
			rep.Passed++
		} else {
			rep.Failed++
		}
		confSum += clamp(o.Confidence, 0, 100)
		errMean += math.Abs(o.ErrorPct) / n
		rep.MaxErrorPct = math.Max(rep.MaxErrorPct, math.Abs(o.ErrorPct))
	}

	rep.Total = len(outcomes)
	rep.PassRatePct = float64(rep.Passed) / n * 100
	rep.AverageConfidence = clamp(confSum/n, 0, 100)
	rep.AverageErrorPct = errMean
	rep.Status = statusFor(rep.PassRatePct)
	return rep, nil
}

func statusFor(passRate float64) Status {
	switch {
	case passRate >= validatedPassRate:
		return StatusValidated
	case passRate >= partialPassRate:
		return StatusPartiallyValidated
	default:
		return StatusNotValidated
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
