package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/maureliano/hvdc-simulator-sub000/internal/gate"
	"github.com/maureliano/hvdc-simulator-sub000/internal/measurement"
	"github.com/maureliano/hvdc-simulator-sub000/internal/orchestrator"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string         `json:"description,omitempty"`
	Cycles      []FixtureCycle `json:"cycles"`
}

// FixtureCycle is one recorded evaluation request plus the outcome it is
// expected to produce. Empty expectations are not checked.
type FixtureCycle struct {
	CycleID string `json:"cycle_id"`
	orchestrator.Input

	ExpectedAction gate.Action        `json:"expected_action,omitempty"`
	ExpectedTrust  orchestrator.Trust `json:"expected_trust,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads a JSON fixture file, validates it against the fixture
// contract and parses it.
func LoadFixture(path string, v *measurement.Validator) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data, v)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture validates and decodes a fixture document.
func ParseFixture(data []byte, v *measurement.Validator) (*Fixture, error) {
	if err := v.ValidateFixture(data); err != nil {
		return nil, err
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// #endregion fixture-loader

// #region fixture-export

// ExportFixture turns recorded reports into a fixture whose expectations are
// the recorded action and trust, so a later replay detects drift.
func ExportFixture(description string, reports []orchestrator.Report) Fixture {
	f := Fixture{Description: description, Cycles: make([]FixtureCycle, 0, len(reports))}
	for _, r := range reports {
		f.Cycles = append(f.Cycles, FixtureCycle{
			CycleID:        r.ID,
			Input:          r.Input,
			ExpectedAction: r.Decision.Action,
			ExpectedTrust:  r.Trust,
		})
	}
	return f
}

// WriteFixture writes f as indented JSON to path.
func WriteFixture(path string, f Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-export
