package uncertainty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
)

var nominal = measurement.Snapshot{Voltage: 500, Current: 2, Power: 1000, Frequency: 60}

func TestAnalyzeNormal(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	rep, err := a.Analyze(nominal, measurement.ConditionNormal)
	require.NoError(t, err)

	// RSS of the default contributors, unscaled.
	assert.InDelta(t, math.Sqrt(0.0193), rep.Voltage.UncertaintyPct, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0253), rep.Current.UncertaintyPct, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0405), rep.Power.UncertaintyPct, 1e-12)
	assert.InDelta(t, math.Sqrt(0.000625), rep.Frequency.UncertaintyPct, 1e-12)
	assert.InDelta(t, math.Sqrt(0.085725), rep.OverallPct, 1e-12)
	assert.InDelta(t, math.Exp(-0.5*rep.OverallPct), rep.ConfidenceLevel, 1e-12)

	assert.InDelta(t, 500*(1-rep.Voltage.UncertaintyPct/100), rep.Voltage.Lower, 1e-9)
	assert.InDelta(t, 500*(1+rep.Voltage.UncertaintyPct/100), rep.Voltage.Upper, 1e-9)
	assert.Equal(t, 500.0, rep.Voltage.Nominal)

	half := rep.Frequency.UncertaintyPct / 100 * 60
	assert.InDelta(t, 60-half, rep.Frequency.Lower, 1e-12)
	assert.InDelta(t, 60+half, rep.Frequency.Upper, 1e-12)
}

func TestFaultUncertaintyExceedsNormal(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	normal, err := a.Analyze(nominal, measurement.ConditionNormal)
	require.NoError(t, err)
	transient, err := a.Analyze(nominal, measurement.ConditionTransient)
	require.NoError(t, err)
	fault, err := a.Analyze(nominal, measurement.ConditionFault)
	require.NoError(t, err)

	assert.Greater(t, fault.OverallPct, normal.OverallPct)
	assert.Greater(t, transient.OverallPct, normal.OverallPct)
	assert.Less(t, fault.ConfidenceLevel, normal.ConfidenceLevel)
}

func TestConfidenceStrictlyDecreasing(t *testing.T) {
	prev := Confidence(0)
	assert.Equal(t, 1.0, prev)
	for _, u := range []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 50} {
		c := Confidence(u)
		assert.Less(t, c, prev, "confidence at %.2f%%", u)
		assert.Greater(t, c, 0.0)
		prev = c
	}
}

func TestSourceBreakdownSumsTo100(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	for _, c := range measurement.Conditions() {
		rep, err := a.Analyze(nominal, c)
		require.NoError(t, err)
		s := rep.Sources
		assert.InDelta(t, 100, s.Parametric+s.Measurement+s.Model+s.Environmental, 1e-9, "condition %s", c)
		assert.Greater(t, s.Parametric, s.Environmental)
	}
}

func TestSourceBreakdownAllZeroContributors(t *testing.T) {
	a := NewAnalyzer(Config{Transient: DefaultConfig().Transient, Fault: DefaultConfig().Fault})

	rep, err := a.Analyze(nominal, measurement.ConditionNormal)
	require.NoError(t, err)
	assert.Equal(t, SourceBreakdown{Parametric: 25, Measurement: 25, Model: 25, Environmental: 25}, rep.Sources)
	assert.Equal(t, 0.0, rep.OverallPct)
	assert.Equal(t, 1.0, rep.ConfidenceLevel)
}

func TestNegativeNominalKeepsBoundsOrdered(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	reversed := nominal
	reversed.Current = -2
	reversed.Power = -1000

	rep, err := a.Analyze(reversed, measurement.ConditionFault)
	require.NoError(t, err)
	assert.LessOrEqual(t, rep.Current.Lower, rep.Current.Upper)
	assert.LessOrEqual(t, rep.Power.Lower, rep.Power.Upper)
	assert.Less(t, rep.Power.Lower, -1000.0)
}

func TestAnalyzeUnknownCondition(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	_, err := a.Analyze(nominal, measurement.Condition("islanded"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Power.Model = -0.1
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Fault.Current = 0
	assert.Error(t, bad.Validate())
}
