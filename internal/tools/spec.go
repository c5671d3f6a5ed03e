// Package tools implements the tool dispatch core: the registry of callable
// tools, input/output schema validation, response caching, and per-tool
// execution with timeout, retry, and circuit breaking.
//
// The package is transport-agnostic. The MCP server and the HTTP API both sit
// on top of Dispatcher.Dispatch; neither the registry nor the adapters ever
// see wire framing.
package tools

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/time/rate"
)

// Adapter is the capability a tool's provider integration implements.
//
// Fetch performs the upstream call for a validated input and returns the
// provider's raw payload. It must honor ctx: the dispatcher injects a
// per-attempt deadline and cancellation from the caller.
//
// Normalize maps the raw payload into the tool's declared output shape:
// unit conversions, clamping out-of-range values, provider status mapping.
// A payload Normalize cannot make sense of is reported via
// ErrMalformedProviderResponse, which is never retried.
type Adapter interface {
	Fetch(ctx context.Context, input map[string]any) (any, error)
	Normalize(raw any) (map[string]any, error)
}

// ErrMalformedProviderResponse marks a provider payload that cannot be
// normalized into the declared output shape. Adapters wrap it so the
// executor skips retries and the dispatcher reports a contract breach
// instead of provider unavailability.
var ErrMalformedProviderResponse = errors.New("malformed provider response")

// Resilience defaults, applied for zero-valued ResilienceConfig fields.
const (
	DefaultTimeout          = 10 * time.Second
	DefaultMaxRetries       = 3
	DefaultBackoffBase      = 500 * time.Millisecond
	DefaultBackoffMax       = 10 * time.Second
	DefaultFailureThreshold = 5
	DefaultSuccessThreshold = 1
	DefaultCooldown         = 30 * time.Second
)

// ResilienceConfig holds the per-tool execution policy consumed by the
// executor and circuit breaker. Zero values use package defaults.
type ResilienceConfig struct {
	// Timeout bounds each individual upstream attempt, not the whole dispatch.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after the first,
	// taken only for retryable failures. 0 disables retry.
	MaxRetries int

	// BackoffBase is the delay before the first retry; subsequent delays
	// double, with jitter, capped at BackoffMax.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// FailureThreshold consecutive failed dispatches open the circuit.
	FailureThreshold int

	// SuccessThreshold trial successes close a half-open circuit.
	SuccessThreshold int

	// Cooldown is how long an open circuit rejects calls before permitting
	// a trial.
	Cooldown time.Duration
}

// withDefaults fills zero values with package defaults.
// MaxRetries is left as-is: zero is a meaningful policy (no retry).
func (c ResilienceConfig) withDefaults() ResilienceConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.BackoffMax < c.BackoffBase {
		c.BackoffMax = DefaultBackoffMax
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = DefaultSuccessThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	return c
}

// Spec declares a callable tool: its name, contract, adapter, and policy.
// Specs are registered once at startup and immutable afterwards.
type Spec struct {
	// Name is the unique dotted identifier, e.g. "weather.get_daily".
	Name string

	// Description is surfaced to calling agents for tool selection.
	Description string

	// InputSchema and OutputSchema declare the tool's contract. Both are
	// resolved (compiled) at registration; an unresolvable schema fails
	// Register.
	InputSchema  *jsonschema.Schema
	OutputSchema *jsonschema.Schema

	// CacheTTL is how long a validated output is served from cache.
	// Zero or negative disables caching for this tool.
	CacheTTL time.Duration

	// CacheSize bounds the tool's LRU response cache. Zero uses 256.
	CacheSize int

	// Resilience is the tool's execution policy.
	Resilience ResilienceConfig

	// Limiter optionally throttles upstream attempts (shields providers
	// with strict quotas). Nil means no proactive limit.
	Limiter *rate.Limiter

	// Adapter performs and normalizes the upstream call.
	Adapter Adapter
}

// toolNameRe enforces the dotted namespace convention, e.g. "todo.list".
var toolNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// validate checks a spec is registrable.
func (s *Spec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}
	if !toolNameRe.MatchString(s.Name) {
		return fmt.Errorf("%w: name %q must be dotted lowercase (e.g. \"weather.get_daily\")", ErrInvalidSpec, s.Name)
	}
	if s.InputSchema == nil {
		return fmt.Errorf("%w: %s: input schema is required", ErrInvalidSpec, s.Name)
	}
	if s.OutputSchema == nil {
		return fmt.Errorf("%w: %s: output schema is required", ErrInvalidSpec, s.Name)
	}
	if s.Adapter == nil {
		return fmt.Errorf("%w: %s: adapter is required", ErrInvalidSpec, s.Name)
	}
	return nil
}
