package replay

import (
	"fmt"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

// #region types

// ReplayResult captures the outcome of replaying one cycle.
type ReplayResult struct {
	CycleID string
	Report  orchestrator.Report
	Err     error // set when the cycle could not be evaluated

	ActionMatched bool
	TrustMatched  bool
}

// Matched reports whether the cycle evaluated and met every expectation.
func (r ReplayResult) Matched() bool {
	return r.Err == nil && r.ActionMatched && r.TrustMatched
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalCycles int
	Matched     int
	Mismatched  int
	Errors      int
	Actions     map[gate.Action]int
	Final       orchestrator.Summary
}

// #endregion types

// #region replay

// Replay runs every cycle in order through a fresh orchestrator built from
// config. Cycle ids become report ids so results can be traced back to the
// fixture.
func Replay(f *Fixture, config orchestrator.Config) ([]ReplayResult, ReplaySummary) {
	var nextID string
	orch := orchestrator.New(config, orchestrator.WithIDGenerator(func() string { return nextID }))

	results := make([]ReplayResult, 0, len(f.Cycles))
	for _, c := range f.Cycles {
		nextID = c.CycleID
		res := ReplayResult{CycleID: c.CycleID}

		rep, err := orch.EvaluateInput(c.Input)
		if err != nil {
			res.Err = fmt.Errorf("cycle %s: %w", c.CycleID, err)
			results = append(results, res)
			continue
		}
		res.Report = rep
		res.ActionMatched = c.ExpectedAction == "" || c.ExpectedAction == rep.Decision.Action
		res.TrustMatched = c.ExpectedTrust == "" || c.ExpectedTrust == rep.Trust
		results = append(results, res)
	}

	return results, Summarize(results, orch.Summary())
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, final orchestrator.Summary) ReplaySummary {
	s := ReplaySummary{
		TotalCycles: len(results),
		Actions:     make(map[gate.Action]int),
		Final:       final,
	}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Errors++
			continue
		case r.Matched():
			s.Matched++
		default:
			s.Mismatched++
		}
		s.Actions[r.Report.Decision.Action]++
	}
	return s
}

// #endregion replay
