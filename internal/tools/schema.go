package tools

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// validatePayload validates payload against a resolved schema, returning a
// normalized copy with declared defaults applied.
//
// The copy matters twice over: ApplyDefaults mutates its argument, and the
// JSON round-trip canonicalizes value types (int vs float64, json.Number)
// so that cache keys derived from the result are representation-independent.
//
// Validation is strict: schemas generated by jsonschema.For reject unknown
// top-level fields, required fields must be present, and enum/pattern
// constraints are enforced exactly as declared. The first violation is
// returned with its field path in the message.
func validatePayload(res *jsonschema.Resolved, payload map[string]any) (map[string]any, error) {
	normalized, err := cloneJSONMap(payload)
	if err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	if err := res.ApplyDefaults(&normalized); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	if err := res.Validate(normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// cloneJSONMap deep-copies m through a JSON round-trip.
func cloneJSONMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
