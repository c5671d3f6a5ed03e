package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/dailymcp/daily/internal/log"
)

// Dispatcher is the orchestration entry point for tool invocation.
//
// Dispatch order is deliberate: input validation happens before any network
// cost, the cache is consulted before the provider, and output validation
// happens before the cache store so a malformed provider response is never
// cached and re-served.
type Dispatcher struct {
	registry *Registry
	logger   log.Logger
}

// NewDispatcher creates a dispatcher over a registry.
func NewDispatcher(registry *Registry, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch executes the named tool against rawInput and returns a Result.
// Failures are structured, never panics; log lines carry tool name and error
// kind but no payload contents (inputs may carry location/schedule data).
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawInput map[string]any) Result {
	start := time.Now()

	// (1) Registry lookup.
	e, err := d.registry.lookup(name)
	if err != nil {
		return d.fail(newError(name, KindNotFound, err.Error(), err), start)
	}

	// (2) Input validation: strict, defaults applied, first violation wins.
	input, err := validatePayload(e.input, rawInput)
	if err != nil {
		return d.fail(newError(name, KindValidation, err.Error(), err), start)
	}

	// (3) Cache lookup under the canonical key.
	key, err := cacheKey(name, input)
	if err != nil {
		return d.fail(newError(name, KindValidation, err.Error(), err), start)
	}
	if cached, ok := e.cache.get(key); ok {
		d.logger.Debug("tool dispatched",
			"tool", name, "cached", true, "duration", time.Since(start))
		return Result{Output: cached, Cached: true}
	}

	// (4) Provider call under the tool's resilience policy.
	output, attempts, err := e.exec.execute(ctx, func(ctx context.Context) (map[string]any, error) {
		raw, err := e.spec.Adapter.Fetch(ctx, input)
		if err != nil {
			return nil, err
		}
		normalized, err := e.spec.Adapter.Normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedProviderResponse, err)
		}
		return normalized, nil
	})
	if err != nil {
		structured, ok := AsError(err)
		if !ok {
			structured = newError(name, KindProviderUnavailable, err.Error(), err)
		}
		res := d.fail(structured, start)
		res.Attempts = attempts
		return res
	}

	// (5) Output validation: a violation here is the provider's contract
	// breach, not the caller's fault. Full detail goes to the log; the
	// caller gets a generic internal error.
	validated, err := validatePayload(e.output, output)
	if err != nil {
		d.logger.Error("provider output failed contract validation",
			"tool", name, "error", err)
		res := d.fail(newError(name, KindProviderContract,
			"tool produced an invalid response; this is a server-side defect", err), start)
		res.Attempts = attempts
		return res
	}

	// (6) Cache store with the tool's TTL.
	e.cache.put(key, validated)

	d.logger.Debug("tool dispatched",
		"tool", name, "cached", false, "attempts", attempts, "duration", time.Since(start))
	return Result{Output: validated, Attempts: attempts}
}

// CircuitStates reports each tool's breaker state, keyed by tool name.
// Surfaced on the readiness endpoint so operators can tell "actively
// failing" from "resting".
func (d *Dispatcher) CircuitStates() map[string]string {
	states := make(map[string]string)
	for _, info := range d.registry.List() {
		if e, err := d.registry.lookup(info.Name); err == nil {
			states[info.Name] = e.exec.state().String()
		}
	}
	return states
}

// fail logs and wraps a structured error into a Result.
func (d *Dispatcher) fail(err *Error, start time.Time) Result {
	level := d.logger.Warn
	if err.Kind == KindValidation || err.Kind == KindNotFound {
		level = d.logger.Debug
	}
	level("tool dispatch failed",
		"tool", err.Tool, "kind", err.Kind.String(), "duration", time.Since(start))
	return failure(err)
}
