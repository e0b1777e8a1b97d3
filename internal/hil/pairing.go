package hil

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// DefaultPairWindow is the widest timestamp skew accepted between a hardware
// sample and its digital counterpart.
const DefaultPairWindow = 100 * time.Millisecond

// PairSamples matches every hardware sample with the digital sample closest in time,
// dropping hardware samples with no digital sample inside window. Both inputs
// are sorted internally; the merge itself is a single two-pointer pass.
func PairSamples(hardware, digital []Sample, window time.Duration) []Pair {
	if len(hardware) == 0 || len(digital) == 0 {
		return nil
	}
	hw := sortedCopy(hardware)
	dg := sortedCopy(digital)

	pairs := make([]Pair, 0, len(hw))
	j := 0
	for _, h := range hw {
		// advance while the next digital sample is at least as close
		for j+1 < len(dg) && absDuration(dg[j+1].Timestamp.Sub(h.Timestamp)) <= absDuration(dg[j].Timestamp.Sub(h.Timestamp)) {
			j++
		}
		skew := absDuration(dg[j].Timestamp.Sub(h.Timestamp))
		if skew > window {
			continue
		}
		pairs = append(pairs, Pair{Hardware: h, Digital: dg[j], Skew: skew})
	}
	return pairs
}

// OutcomesFromPairs turns matched samples into HIL outcomes. A pair passes when
// the digital value is within maxErrorPct of the hardware value; confidence
// falls linearly from 100 at zero error to 0 at twice the limit.
func OutcomesFromPairs(name string, pairs []Pair, maxErrorPct float64) []Outcome {
	outcomes := make([]Outcome, 0, len(pairs))
	for i, p := range pairs {
		errPct := relativeError(p.Digital.Value, p.Hardware.Value)
		conf := 100.0
		if maxErrorPct > 0 {
			conf = clamp(100*(1-errPct/(2*maxErrorPct)), 0, 100)
		}
		outcomes = append(outcomes, Outcome{
			TestName:   fmt.Sprintf("%s-%d", name, i),
			Passed:     errPct <= maxErrorPct,
			ErrorPct:   errPct,
			Confidence: conf,
			Timestamp:  p.Hardware.Timestamp,
		})
	}
	return outcomes
}

func sortedCopy(in []Sample) []Sample {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Sample) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

func relativeError(digital, hardware float64) float64 {
	if hardware == 0 {
		if digital == 0 {
			return 0
		}
		return 100
	}
	return math.Abs(digital-hardware) / math.Abs(hardware) * 100
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Series is one signal recorded on both the hardware rig and the twin.
type Series struct {
	TestName    string   `json:"test_name"`
	Hardware    []Sample `json:"hardware"`
	Digital     []Sample `json:"digital"`
	MaxErrorPct float64  `json:"max_error_pct"`
	WindowMs    int64    `json:"window_ms,omitempty"` // DefaultPairWindow when 0
}

// Outcomes pairs the recordings and scores every matched sample.
func (s Series) Outcomes() []Outcome {
	window := DefaultPairWindow
	if s.WindowMs > 0 {
		window = time.Duration(s.WindowMs) * time.Millisecond
	}
	return OutcomesFromPairs(s.TestName, PairSamples(s.Hardware, s.Digital, window), s.MaxErrorPct)
}
