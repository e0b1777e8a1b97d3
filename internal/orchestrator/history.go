package orchestrator

// #region imports
import (
	"fmt"
	"slices"
	"time"
)

// #endregion

// #region constants

const (
	trendWindow    = 10
	trendThreshold = 0.5 // score points per second
)

// dimensionNames are the analyzers that contribute to every report.
var dimensionNames = []string{
	"dynamic_fidelity",
	"uncertainty_quantification",
	"hil_validation",
	"agentic_decision",
}

// #endregion

// #region append

func (o *Orchestrator) append(reports ...Report) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.history = append(o.history, reports...)
	if limit := o.config.HistoryLimit; limit > 0 && len(o.history) > limit {
		o.history = slices.Clone(o.history[len(o.history)-limit:])
	}
}

// Restore appends previously persisted reports, oldest first, e.g. when a
// service restarts and replays its store.
func (o *Orchestrator) Restore(reports []Report) {
	cloned := make([]Report, len(reports))
	for i, r := range reports {
		cloned[i] = cloneReport(r)
	}
	o.append(cloned...)
}

// snapshot copies the most recent n reports (all when n <= 0) under the read lock.
func (o *Orchestrator) snapshot(n int) []Report {
	o.mu.RLock()
	defer o.mu.RUnlock()

	start := 0
	if n > 0 && len(o.history) > n {
		start = len(o.history) - n
	}
	out := make([]Report, 0, len(o.history)-start)
	for _, r := range o.history[start:] {
		out = append(out, cloneReport(r))
	}
	return out
}

// #endregion

// #region history

// History returns the most recent limit reports, oldest first. A limit of 0
// returns the whole history.
func (o *Orchestrator) History(limit int) HistoryResult {
	reports := o.snapshot(limit)
	if len(reports) == 0 {
		return HistoryResult{}
	}
	return HistoryResult{reports: reports}
}

// Len returns the number of reports currently held.
func (o *Orchestrator) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.history)
}

// #endregion

// #region trend

// Trend compares the mean score of the older half of the last trendWindow
// reports with the newer half. The rate is the score change per second
// between the halves' mean timestamps, with the elapsed time floored at one
// second so bursts of evaluations do not divide by ~0.
func (o *Orchestrator) Trend() Trend {
	return trendOf(o.snapshot(trendWindow))
}

func trendOf(recent []Report) Trend {
	if len(recent) < 2 {
		return Trend{Direction: DirectionStable, Samples: len(recent)}
	}
	half := len(recent) / 2
	firstScore, firstAt := means(recent[:half])
	secondScore, secondAt := means(recent[half:])

	elapsed := secondAt.Sub(firstAt).Seconds()
	if elapsed < 1 {
		elapsed = 1
	}
	rate := (secondScore - firstScore) / elapsed

	dir := DirectionStable
	switch {
	case rate > trendThreshold:
		dir = DirectionImproving
	case rate < -trendThreshold:
		dir = DirectionDegrading
	}
	return Trend{Direction: dir, Rate: rate, Samples: len(recent)}
}

// means returns the mean score and mean timestamp of reports.
func means(reports []Report) (float64, time.Time) {
	base := reports[0].Timestamp
	var score, offset float64
	for _, r := range reports {
		score += r.Score
		offset += float64(r.Timestamp.Sub(base))
	}
	n := float64(len(reports))
	return score / n, base.Add(time.Duration(offset / n))
}

// #endregion

// #region summary

// Summary aggregates the whole history.
func (o *Orchestrator) Summary() Summary {
	all := o.snapshot(0)
	s := Summary{
		Count:          len(all),
		DimensionNames: slices.Clone(dimensionNames),
	}
	if len(all) == 0 {
		s.TrendDescription = "no evaluations recorded"
		return s
	}

	var total float64
	for _, r := range all {
		total += r.Score
	}
	s.AverageScore = total / float64(len(all))

	recent := all
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}
	t := trendOf(recent)
	s.TrendDescription = fmt.Sprintf("%s (%+.2f pts/s over last %d reports)", t.Direction, t.Rate, t.Samples)
	return s
}

// #endregion

// #region clone

func cloneReport(r Report) Report {
	r.Recommendations = slices.Clone(r.Recommendations)
	r.Decision.Recommendations = slices.Clone(r.Decision.Recommendations)
	r.Decision.BlockingReasons = slices.Clone(r.Decision.BlockingReasons)
	r.Decision.Overrides = slices.Clone(r.Decision.Overrides)
	r.Input.HILOutcomes = slices.Clone(r.Input.HILOutcomes)
	if r.HIL != nil {
		h := *r.HIL
		r.HIL = &h
	}
	return r
}

// #endregion
