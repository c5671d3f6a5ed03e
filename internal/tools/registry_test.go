package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// staticAdapter returns a fixed payload; enough for registry tests.
type staticAdapter struct {
	out map[string]any
}

func (a *staticAdapter) Fetch(ctx context.Context, input map[string]any) (any, error) {
	return a.out, nil
}

func (a *staticAdapter) Normalize(raw any) (map[string]any, error) {
	return raw.(map[string]any), nil
}

func openSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func testSpec(name string) Spec {
	return Spec{
		Name:         name,
		Description:  "test tool",
		InputSchema:  openSchema(),
		OutputSchema: openSchema(),
		CacheTTL:     time.Minute,
		Adapter:      &staticAdapter{out: map[string]any{"ok": true}},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(testSpec("weather.get_daily")); err != nil {
		t.Fatalf("Register() = %v", err)
	}
	r.Freeze()

	e, err := r.lookup("weather.get_daily")
	if err != nil {
		t.Fatalf("lookup() = %v", err)
	}
	if e.spec.Name != "weather.get_daily" {
		t.Errorf("lookup returned wrong entry: %s", e.spec.Name)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := r.Register(testSpec("todo.list")); err != nil {
		t.Fatalf("first Register() = %v", err)
	}
	if err := r.Register(testSpec("todo.list")); !errors.Is(err, ErrDuplicateTool) {
		t.Errorf("second Register() = %v, want ErrDuplicateTool", err)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Freeze()
	if _, err := r.lookup("no.such_tool"); !errors.Is(err, ErrToolNotFound) {
		t.Errorf("lookup() = %v, want ErrToolNotFound", err)
	}
}

func TestRegistry_FrozenRejectsRegistration(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Freeze()
	if err := r.Register(testSpec("calendar.list_events")); !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("Register() after Freeze = %v, want ErrRegistryFrozen", err)
	}
}

func TestRegistry_Ready(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if r.Ready() {
		t.Error("Ready() before Freeze = true, want false")
	}
	r.Freeze()
	if !r.Ready() {
		t.Error("Ready() after Freeze = false, want true")
	}
}

func TestRegistry_InvalidSpecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Spec)
	}{
		{"empty name", func(s *Spec) { s.Name = "" }},
		{"no namespace dot", func(s *Spec) { s.Name = "weather" }},
		{"uppercase name", func(s *Spec) { s.Name = "Weather.Get" }},
		{"missing input schema", func(s *Spec) { s.InputSchema = nil }},
		{"missing output schema", func(s *Spec) { s.OutputSchema = nil }},
		{"missing adapter", func(s *Spec) { s.Adapter = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spec := testSpec("valid.name")
			tt.mutate(&spec)
			if err := NewRegistry().Register(spec); !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("Register() = %v, want ErrInvalidSpec", err)
			}
		})
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"todo.list", "calendar.list_events", "weather.get_daily"} {
		if err := r.Register(testSpec(name)); err != nil {
			t.Fatalf("Register(%s) = %v", name, err)
		}
	}
	r.Freeze()

	infos := r.List()
	if len(infos) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(infos))
	}
	want := []string{"calendar.list_events", "todo.list", "weather.get_daily"}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, info.Name, want[i])
		}
		if info.InputSchema == nil || info.OutputSchema == nil {
			t.Errorf("List()[%d] missing schemas", i)
		}
	}
}

func TestRegistry_ResilienceDefaultsApplied(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	spec := testSpec("a.b")
	spec.Resilience = ResilienceConfig{} // all zero
	if err := r.Register(spec); err != nil {
		t.Fatalf("Register() = %v", err)
	}
	r.Freeze()

	e, err := r.lookup("a.b")
	if err != nil {
		t.Fatalf("lookup() = %v", err)
	}
	got := e.spec.Resilience
	if got.Timeout != DefaultTimeout || got.FailureThreshold != DefaultFailureThreshold {
		t.Errorf("defaults not applied: %+v", got)
	}
}
