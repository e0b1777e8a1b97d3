package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts a JSON-tagged Go value into a Struct. v must encode as a
// JSON object.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("struct from %T: %w", v, err)
	}
	return out, nil
}

// structJSON renders s as JSON. A nil Struct renders as an empty object.
func structJSON(s *structpb.Struct) ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal struct: %w", err)
	}
	return raw, nil
}

// fromStruct decodes s into the JSON-tagged value v.
func fromStruct(s *structpb.Struct, v any) error {
	raw, err := structJSON(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
