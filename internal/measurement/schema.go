package measurement

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/measurement.schema.json
var schemaDoc []byte

const schemaURL = "https://hvdc-simulator.local/measurement.schema.json"

// ErrInvalidDocument is returned when a JSON document does not satisfy its contract.
var ErrInvalidDocument = errors.New("invalid document")

// Validator checks raw JSON documents against the evaluation request and
// replay fixture contracts before they are decoded into Go types. Decoding
// alone cannot tell a missing field from a zero reading.
type Validator struct {
	evaluation *jsonschema.Schema
	fixture    *jsonschema.Schema
}

// NewValidator compiles the embedded contract schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaDoc)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	evaluation, err := compiler.Compile(schemaURL + "#/$defs/evaluation")
	if err != nil {
		return nil, fmt.Errorf("compile evaluation schema: %w", err)
	}
	fixture, err := compiler.Compile(schemaURL + "#/$defs/fixture")
	if err != nil {
		return nil, fmt.Errorf("compile fixture schema: %w", err)
	}
	return &Validator{evaluation: evaluation, fixture: fixture}, nil
}

// ValidateEvaluation validates a single evaluation request document.
func (v *Validator) ValidateEvaluation(raw []byte) error {
	return validateAgainst(v.evaluation, raw)
}

// ValidateFixture validates a replay fixture document.
func (v *Validator) ValidateFixture(raw []byte) error {
	return validateAgainst(v.fixture, raw)
}

func validateAgainst(schema *jsonschema.Schema, raw []byte) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: decode json: %v", ErrInvalidDocument, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
