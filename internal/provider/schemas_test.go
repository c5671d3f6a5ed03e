package provider

import (
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

func TestSchemas_AllResolve(t *testing.T) {
	t.Parallel()

	builders := map[string]func() (*jsonschema.Schema, error){
		"weather input":   weatherInputSchema,
		"weather output":  weatherOutputSchema,
		"mobility input":  mobilityInputSchema,
		"mobility output": mobilityOutputSchema,
		"calendar input":  calendarInputSchema,
		"calendar output": calendarOutputSchema,
		"todo input":      todoInputSchema,
		"todo output":     todoOutputSchema,
		"finance input":   financeInputSchema,
		"finance output":  financeOutputSchema,
	}

	for name, build := range builders {
		s, err := build()
		if err != nil {
			t.Fatalf("%s: build: %v", name, err)
		}
		// Defaults must themselves be valid; resolving with validation on
		// catches a default that escapes its own enum.
		if _, err := s.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true}); err != nil {
			t.Errorf("%s: resolve: %v", name, err)
		}
	}
}

func TestSchemas_EnumsAndDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		build   func() (*jsonschema.Schema, error)
		field   string
		want    string // default, as raw JSON
		options int
	}{
		{"weather when", weatherInputSchema, "when", `"today"`, 2},
		{"mobility mode", mobilityInputSchema, "mode", `"driving"`, 4},
		{"todo bucket", todoInputSchema, "bucket", `"work"`, 4},
		{"finance data_type", financeInputSchema, "data_type", `"mixed"`, 3},
	}

	for _, tt := range tests {
		s, err := tt.build()
		if err != nil {
			t.Fatalf("%s: build: %v", tt.name, err)
		}
		p := s.Properties[tt.field]
		if p == nil {
			t.Fatalf("%s: property %q missing", tt.name, tt.field)
		}
		if got := string(p.Default); got != tt.want {
			t.Errorf("%s: default = %s, want %s", tt.name, got, tt.want)
		}
		if len(p.Enum) != tt.options {
			t.Errorf("%s: enum has %d options, want %d", tt.name, len(p.Enum), tt.options)
		}
	}
}

func TestSchemas_RequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() (*jsonschema.Schema, error)
		required map[string]bool
	}{
		{"weather input", weatherInputSchema, map[string]bool{"location": true, "when": false}},
		{"mobility input", mobilityInputSchema, map[string]bool{"origin": true, "destination": true, "mode": false}},
		{"calendar input", calendarInputSchema, map[string]bool{"date": true}},
		{"todo input", todoInputSchema, map[string]bool{"bucket": false, "include_completed": false}},
		{"finance input", financeInputSchema, map[string]bool{"symbols": true, "data_type": false}},
	}

	for _, tt := range tests {
		s, err := tt.build()
		if err != nil {
			t.Fatalf("%s: build: %v", tt.name, err)
		}
		got := make(map[string]bool)
		for _, f := range s.Required {
			got[f] = true
		}
		for field, want := range tt.required {
			if got[field] != want {
				t.Errorf("%s: required[%s] = %v, want %v", tt.name, field, got[field], want)
			}
		}
	}
}
