package orchestrator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
)

func seeded(scores ...float64) []Report {
	reports := make([]Report, len(scores))
	for i, s := range scores {
		reports[i] = Report{
			ID:        fmt.Sprintf("seed-%02d", i),
			Timestamp: t0.Add(time.Duration(i) * time.Second),
			Score:     s,
			Trust:     Classify(s, true),
			Decision:  gate.Decision{Action: gate.ActionAllow, OperationAllowed: true},
		}
	}
	return reports
}

func TestHistoryEmpty(t *testing.T) {
	o := newTestOrchestrator()

	h := o.History(10)
	assert.True(t, h.Empty())
	assert.Nil(t, h.Reports())

	s := o.Summary()
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.AverageScore)
	assert.Equal(t, "no evaluations recorded", s.TrendDescription)
	assert.Len(t, s.DimensionNames, 4)

	tr := o.Trend()
	assert.Equal(t, DirectionStable, tr.Direction)
	assert.Equal(t, 0.0, tr.Rate)
}

func TestHistoryLimitOldestFirst(t *testing.T) {
	o := newTestOrchestrator()
	o.Restore(seeded(10, 20, 30, 40, 50))

	h := o.History(3)
	require.False(t, h.Empty())
	got := h.Reports()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"seed-02", "seed-03", "seed-04"}, []string{got[0].ID, got[1].ID, got[2].ID})

	assert.Len(t, o.History(0).Reports(), 5)
	assert.Len(t, o.History(99).Reports(), 5)
}

func TestHistoryReturnsCopies(t *testing.T) {
	o := newTestOrchestrator()
	s := snap(500, 2, 1000, 60)
	_, err := o.Evaluate(s, s, nil, gate.OpMeasurement)
	require.NoError(t, err)

	first := o.History(1).Reports()
	first[0].Recommendations[0] = "tampered"
	first[0].Score = -1

	again := o.History(1).Reports()
	assert.NotEqual(t, "tampered", again[0].Recommendations[0])
	assert.NotEqual(t, -1.0, again[0].Score)
}

func TestHistoryCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryLimit = 3
	o := New(cfg)
	o.Restore(seeded(1, 2, 3, 4, 5))

	assert.Equal(t, 3, o.Len())
	got := o.History(0).Reports()
	assert.Equal(t, 3.0, got[0].Score)
	assert.Equal(t, 5.0, got[2].Score)
}

func TestTrendImproving(t *testing.T) {
	o := newTestOrchestrator()
	o.Restore(seeded(60, 62, 64, 66, 68, 70, 72, 74, 76, 78))

	tr := o.Trend()
	assert.Equal(t, DirectionImproving, tr.Direction)
	// halves average 64 and 74, mean timestamps 5 s apart
	assert.InDelta(t, 2.0, tr.Rate, 1e-9)
	assert.Greater(t, tr.Rate, 0.5)
	assert.Equal(t, 10, tr.Samples)
}

func TestTrendDegradingAndStable(t *testing.T) {
	o := newTestOrchestrator()
	o.Restore(seeded(90, 88, 86, 84, 82, 80))
	assert.Equal(t, DirectionDegrading, o.Trend().Direction)

	flat := newTestOrchestrator()
	flat.Restore(seeded(80, 80.5, 80, 80.5, 80, 80.5))
	assert.Equal(t, DirectionStable, flat.Trend().Direction)

	single := newTestOrchestrator()
	single.Restore(seeded(80))
	assert.Equal(t, DirectionStable, single.Trend().Direction)
	assert.Equal(t, 1, single.Trend().Samples)
}

func TestTrendUsesLastTenOnly(t *testing.T) {
	o := newTestOrchestrator()
	// an old decline followed by ten improving reports
	o.Restore(seeded(99, 95, 90, 60, 62, 64, 66, 68, 70, 72, 74, 76, 78))

	assert.Equal(t, DirectionImproving, o.Trend().Direction)
}

func TestTrendFloorsElapsedTime(t *testing.T) {
	reports := seeded(60, 60, 70, 70)
	for i := range reports {
		reports[i].Timestamp = t0
	}
	tr := trendOf(reports)
	assert.InDelta(t, 10.0, tr.Rate, 1e-9)
	assert.Equal(t, DirectionImproving, tr.Direction)
}

func TestSummary(t *testing.T) {
	o := newTestOrchestrator()
	o.Restore(seeded(60, 62, 64, 66, 68, 70, 72, 74, 76, 78))

	s := o.Summary()
	assert.Equal(t, 10, s.Count)
	assert.InDelta(t, 69.0, s.AverageScore, 1e-9)
	assert.Equal(t, "improving (+2.00 pts/s over last 10 reports)", s.TrendDescription)
	assert.Equal(t, []string{"dynamic_fidelity", "uncertainty_quantification", "hil_validation", "agentic_decision"}, s.DimensionNames)
}
