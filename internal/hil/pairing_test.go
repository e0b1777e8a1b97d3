package hil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int, v float64) Sample {
	return Sample{Timestamp: t0.Add(time.Duration(ms) * time.Millisecond), Value: v}
}

func TestPairSamplesNearestNeighbour(t *testing.T) {
	hardware := []Sample{at(0, 100), at(100, 101), at(200, 102), at(1000, 103)}
	// deliberately unsorted
	digital := []Sample{at(190, 102.2), at(10, 100.1), at(95, 100.9), at(130, 0)}

	pairs := PairSamples(hardware, digital, DefaultPairWindow)

	require.Len(t, pairs, 3, "the 1000ms hardware sample has no digital neighbour in window")
	assert.Equal(t, at(10, 100.1), pairs[0].Digital)
	assert.Equal(t, 10*time.Millisecond, pairs[0].Skew)
	assert.Equal(t, at(95, 100.9), pairs[1].Digital)
	assert.Equal(t, at(190, 102.2), pairs[2].Digital)
	assert.Equal(t, at(200, 102), pairs[2].Hardware)
}

func TestPairSamplesEmpty(t *testing.T) {
	assert.Nil(t, PairSamples(nil, []Sample{at(0, 1)}, DefaultPairWindow))
	assert.Nil(t, PairSamples([]Sample{at(0, 1)}, nil, DefaultPairWindow))
}

func TestPairSamplesDoesNotMutateInput(t *testing.T) {
	digital := []Sample{at(50, 2), at(0, 1)}
	PairSamples([]Sample{at(0, 1)}, digital, DefaultPairWindow)
	assert.Equal(t, at(50, 2), digital[0])
}

func TestOutcomesFromPairs(t *testing.T) {
	pairs := []Pair{
		{Hardware: at(0, 100), Digital: at(0, 100.5)},
		{Hardware: at(100, 100), Digital: at(100, 103)},
	}

	out := OutcomesFromPairs("step", pairs, 2)

	require.Len(t, out, 2)
	assert.Equal(t, "step-0", out[0].TestName)
	assert.True(t, out[0].Passed)
	assert.InDelta(t, 0.5, out[0].ErrorPct, 1e-9)
	assert.InDelta(t, 87.5, out[0].Confidence, 1e-9)
	assert.False(t, out[1].Passed)
	assert.InDelta(t, 25, out[1].Confidence, 1e-9)

	rep, err := NewAggregator().Aggregate(out)
	require.NoError(t, err)
	assert.Equal(t, StatusNotValidated, rep.Status)
}

func TestSeriesOutcomes(t *testing.T) {
	s := Series{
		TestName:    "dc-voltage",
		Hardware:    []Sample{at(0, 500), at(100, 501), at(400, 502)},
		Digital:     []Sample{at(5, 500.5), at(90, 501), at(250, 510)},
		MaxErrorPct: 1,
	}

	out := s.Outcomes()
	require.Len(t, out, 2, "the sample at 400ms has no digital sample within 100ms")
	assert.True(t, out[0].Passed)
	assert.True(t, out[1].Passed)

	s.WindowMs = 200
	assert.Len(t, s.Outcomes(), 3)
}
