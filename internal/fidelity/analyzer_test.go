package fidelity

import (
	"math"
	"testing"
	"time"

	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
)

func snap(v, i, p, f float64) measurement.Snapshot {
	return measurement.Snapshot{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Voltage:   v,
		Current:   i,
		Power:     p,
		Frequency: f,
	}
}

func TestAnalyzeIdenticalSnapshots(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	s := snap(500, 2, 1000, 60)

	res := a.Analyze(s, s)

	if res.Index <= 85 {
		t.Fatalf("expected index > 85 for identical snapshots, got %.4f", res.Index)
	}
	if res.Status != StatusExcellent && res.Status != StatusGood {
		t.Fatalf("expected excellent or good, got %s", res.Status)
	}
	// every normalized error sits at the sigmoid floor 1/(1+e^2)
	want := 100 * (1 - 1/(1+math.Exp(2)))
	if math.Abs(res.Index-want) > 1e-9 {
		t.Fatalf("expected index %.6f, got %.6f", want, res.Index)
	}
}

func TestAnalyzeLargeDeviationIsCritical(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	real := snap(500, 2, 1000, 60)
	digital := snap(575, 2.3, 1150, 62)

	res := a.Analyze(digital, real)

	if res.Status != StatusCritical {
		t.Fatalf("expected critical, got %s", res.Status)
	}
	if res.Index >= 50 {
		t.Fatalf("expected index < 50, got %.4f", res.Index)
	}
	if math.Abs(res.VoltageErrorPct-15) > 1e-9 {
		t.Fatalf("expected 15%% voltage error, got %.6f", res.VoltageErrorPct)
	}
	if math.Abs(res.FrequencyErrorHz-2) > 1e-9 {
		t.Fatalf("expected 2 Hz frequency error, got %.6f", res.FrequencyErrorHz)
	}
	if math.Abs(res.PowerAbsError-150) > 1e-9 {
		t.Fatalf("expected 150 MW absolute power error, got %.6f", res.PowerAbsError)
	}
}

func TestAnalyzeStatusBands(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	real := snap(500, 2, 1000, 60)

	tests := []struct {
		name    string
		digital measurement.Snapshot
		want    Status
	}{
		{"excellent", snap(502, 2.01, 1005, 60.01), StatusExcellent},
		{"good", snap(507.5, 2, 1000, 60), StatusGood},
		{"acceptable", snap(500, 2.1, 1000, 60.15), StatusAcceptable},
		{"poor", snap(540, 2, 1000, 60), StatusPoor},
		{"critical on frequency alone", snap(500, 2, 1000, 60.6), StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := a.Analyze(tt.digital, real)
			if res.Status != tt.want {
				t.Fatalf("expected %s, got %s (V=%.3f%% I=%.3f%% P=%.3f%% f=%.3fHz)",
					tt.want, res.Status, res.VoltageErrorPct, res.CurrentErrorPct, res.PowerErrorPct, res.FrequencyErrorHz)
			}
		})
	}
}

func TestAnalyzeIndexDecreasesWithError(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	real := snap(500, 2, 1000, 60)

	prev := 101.0
	for _, dv := range []float64{0, 2, 5, 10, 25, 50} {
		res := a.Analyze(snap(500+dv, 2, 1000, 60), real)
		if res.Index >= prev {
			t.Fatalf("index should strictly decrease: dv=%.1f index=%.4f prev=%.4f", dv, res.Index, prev)
		}
		if res.Index < 0 || res.Index > 100 {
			t.Fatalf("index %.4f out of [0, 100]", res.Index)
		}
		prev = res.Index
	}
}

func TestPercentErrorZeroReference(t *testing.T) {
	if got := PercentError(0, 0); got != 0 {
		t.Fatalf("expected 0 for 0/0, got %f", got)
	}
	if got := PercentError(5, 0); got != 100 {
		t.Fatalf("expected 100 for x/0, got %f", got)
	}
	if got := PercentError(-510, -500); math.Abs(got-2) > 1e-9 {
		t.Fatalf("expected 2%% for negative reference, got %f", got)
	}
}

func TestAnalyzeZeroReferenceStaysFinite(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	res := a.Analyze(snap(10, 1, 5, 60), snap(0, 0, 0, 60))

	if math.IsNaN(res.Index) || math.IsInf(res.Index, 0) {
		t.Fatalf("index must be finite, got %f", res.Index)
	}
	if res.Status != StatusCritical {
		t.Fatalf("expected critical, got %s", res.Status)
	}
}

func TestPercentErrorSaturates(t *testing.T) {
	if got := PercentError(1e9, 5e-324); got != MaxPercentError {
		t.Fatalf("subnormal reference: expected %g, got %g", MaxPercentError, got)
	}
	if got := PercentError(1e308, -1e308); got != MaxPercentError {
		t.Fatalf("overflowing difference: expected %g, got %g", MaxPercentError, got)
	}
}

func TestAnalyzeExtremeReadingsStayFinite(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	cases := map[string][2]measurement.Snapshot{
		"overflow":  {snap(1e308, 1, 5, 60), snap(-1e308, 1, 5, 60)},
		"subnormal": {snap(1e9, 1, 5, 60), snap(5e-324, 1, 5, 60)},
	}
	for name, c := range cases {
		res := a.Analyze(c[0], c[1])
		for field, v := range map[string]float64{
			"voltage_error_pct": res.VoltageErrorPct,
			"voltage_abs_error": res.VoltageAbsError,
			"index":             res.Index,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s: %s must be finite, got %g", name, field, v)
			}
		}
		if res.Status != StatusCritical {
			t.Fatalf("%s: expected critical, got %s", name, res.Status)
		}
	}
}

func TestNormalizeAtCenter(t *testing.T) {
	if got := normalize(2, 2); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected 0.5 at the centre, got %f", got)
	}
	if normalize(0, 2) > 0.2 {
		t.Fatal("zero error should sit near the floor")
	}
	if normalize(20, 2) < 0.99 {
		t.Fatal("large error should saturate")
	}
}

func TestAnalyzeTimestampFallback(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	digital := snap(500, 2, 1000, 60)
	real := digital
	real.Timestamp = time.Time{}

	res := a.Analyze(digital, real)
	if !res.Timestamp.Equal(digital.Timestamp) {
		t.Fatalf("expected digital timestamp fallback, got %v", res.Timestamp)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Weights.Power = 0.5
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}

	bad = DefaultConfig()
	bad.Poor.VoltagePct = 0.5
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for a band tighter than its predecessor")
	}

	bad = DefaultConfig()
	bad.Centers.FrequencyHz = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for zero sigmoid centre")
	}
}
