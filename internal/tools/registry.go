package tools

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	// ErrInvalidSpec indicates a tool spec missing required fields.
	ErrInvalidSpec = errors.New("invalid tool spec")

	// ErrDuplicateTool indicates a second registration under an existing name.
	ErrDuplicateTool = errors.New("duplicate tool")

	// ErrToolNotFound indicates a lookup for an unregistered name.
	ErrToolNotFound = errors.New("tool not found")

	// ErrRegistryFrozen indicates a registration attempt after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")
)

// entry is a registered tool with its compiled schemas and per-tool state.
// Built once during Register; read-only afterwards (the cache and breaker
// are internally synchronized).
type entry struct {
	spec   Spec
	input  *jsonschema.Resolved
	output *jsonschema.Resolved
	cache  *responseCache
	exec   *executor
}

// Registry is the authoritative mapping from tool name to spec, adapter,
// and policy. It is a closed set: tools are registered during startup, the
// registry is frozen before serving begins, and the read path is a plain
// map access with no locking thereafter.
type Registry struct {
	mu      sync.Mutex
	frozen  atomic.Bool
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a tool. It resolves both schemas (failing fast on contract
// bugs), and builds the tool's cache, circuit breaker, and executor.
// Returns ErrDuplicateTool if the name is taken and ErrRegistryFrozen after
// Freeze.
func (r *Registry) Register(spec Spec) error {
	if err := spec.validate(); err != nil {
		return err
	}

	input, err := spec.InputSchema.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return fmt.Errorf("%s: resolving input schema: %w", spec.Name, err)
	}
	output, err := spec.OutputSchema.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
	if err != nil {
		return fmt.Errorf("%s: resolving output schema: %w", spec.Name, err)
	}

	spec.Resilience = spec.Resilience.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen.Load() {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryFrozen, spec.Name)
	}
	if _, exists := r.entries[spec.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTool, spec.Name)
	}

	r.entries[spec.Name] = &entry{
		spec:   spec,
		input:  input,
		output: output,
		cache:  newResponseCache(spec.CacheSize, spec.CacheTTL),
		exec:   newExecutor(spec.Name, spec.Resilience, spec.Limiter),
	}
	return nil
}

// Freeze closes the set. Must be called before serving; afterwards lookups
// are lock-free and Register fails.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Ready reports whether initialization has completed (the liveness probe).
func (r *Registry) Ready() bool {
	return r.frozen.Load()
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// lookup returns the entry for name.
func (r *Registry) lookup(name string) (*entry, error) {
	if !r.frozen.Load() {
		// Registration may still be in flight; take the lock.
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return e, nil
}

// Info describes a registered tool for discovery listings.
type Info struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	InputSchema  *jsonschema.Schema `json:"input_schema"`
	OutputSchema *jsonschema.Schema `json:"output_schema"`
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, Info{
			Name:         e.spec.Name,
			Description:  e.spec.Description,
			InputSchema:  e.spec.InputSchema,
			OutputSchema: e.spec.OutputSchema,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
