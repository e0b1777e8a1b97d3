package measurement

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// #region snapshot
// Snapshot is one sample of the converter station's DC-side quantities,
// either estimated by the digital twin or measured on the real system.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Voltage   float64   `json:"voltage"`   // kV
	Current   float64   `json:"current"`   // kA
	Power     float64   `json:"power"`     // MW
	Frequency float64   `json:"frequency"` // Hz, AC side
}

// #endregion snapshot

// #region condition
// Condition is the operating condition of the station at the sampling instant.
type Condition string

const (
	ConditionNormal    Condition = "normal"
	ConditionTransient Condition = "transient"
	ConditionFault     Condition = "fault"
)

// Conditions lists every condition in severity order.
func Conditions() []Condition {
	return []Condition{ConditionNormal, ConditionTransient, ConditionFault}
}

// Valid reports whether c is one of the declared conditions.
func (c Condition) Valid() bool {
	switch c {
	case ConditionNormal, ConditionTransient, ConditionFault:
		return true
	}
	return false
}

// ParseCondition converts a string into a Condition.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown operating condition %q", s)
	}
	return c, nil
}

// #endregion condition

// #region validate
// ErrInvalidSnapshot is returned for snapshots carrying non-finite or
// physically impossible values.
var ErrInvalidSnapshot = errors.New("invalid measurement snapshot")

// MaxMagnitude bounds every snapshot quantity. It sits far above any physical
// converter rating and keeps differences between two readings finite.
const MaxMagnitude = 1e9

// Validate rejects NaN/Inf fields, magnitudes above MaxMagnitude and negative
// frequencies. Zero is a legal value for every quantity (de-energized pole).
func (s Snapshot) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"voltage", s.Voltage},
		{"current", s.Current},
		{"power", s.Power},
		{"frequency", s.Frequency},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidSnapshot, f.name)
		}
		if math.Abs(f.v) > MaxMagnitude {
			return fmt.Errorf("%w: %s %g exceeds magnitude %g", ErrInvalidSnapshot, f.name, f.v, MaxMagnitude)
		}
	}
	if s.Frequency < 0 {
		return fmt.Errorf("%w: frequency %.4f is negative", ErrInvalidSnapshot, s.Frequency)
	}
	return nil
}

// #endregion validate
