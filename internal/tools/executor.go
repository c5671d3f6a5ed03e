package tools

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// executor runs one tool's adapter calls under the tool's resilience policy:
// a per-attempt timeout, bounded retry with jittered exponential backoff for
// retryable failures, an optional proactive rate limit, and the tool's
// circuit breaker.
//
// The breaker tally moves once per outer invocation, not once per attempt:
// transient blips absorbed by retry are not the sustained unavailability the
// breaker protects against.
type executor struct {
	tool    string
	cfg     ResilienceConfig
	limiter *rate.Limiter
	breaker *circuitBreaker
}

func newExecutor(tool string, cfg ResilienceConfig, limiter *rate.Limiter) *executor {
	return &executor{
		tool:    tool,
		cfg:     cfg,
		limiter: limiter,
		breaker: newCircuitBreaker(cfg),
	}
}

// execute runs fn under the policy. It returns the result, the number of
// attempts made, and an error already classified as *Error.
func (e *executor) execute(ctx context.Context, fn func(ctx context.Context) (map[string]any, error)) (map[string]any, int, error) {
	if err := e.breaker.allow(); err != nil {
		return nil, 0, newError(e.tool, KindCircuitOpen,
			"provider temporarily disabled after repeated failures; retry later", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.BackoffBase
	bo.MaxInterval = e.cfg.BackoffMax
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.25
	bo.MaxElapsedTime = 0 // attempts are bounded by count, not wall clock
	bo.Reset()

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				// Caller gave up mid-backoff; no provider outcome was
				// observed, so the slot claimed by allow is released rather
				// than tallied.
				e.breaker.abandon()
				return nil, attempts, newError(e.tool, KindProviderUnavailable,
					"request canceled during retry", ctx.Err())
			case <-time.After(bo.NextBackOff()):
			}
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				e.breaker.abandon()
				return nil, attempts, newError(e.tool, KindProviderUnavailable,
					"request canceled while rate limited", err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		out, err := fn(attemptCtx)
		cancel()
		attempts++

		if err == nil {
			e.breaker.success()
			return out, attempts, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			// The attempt's failure is indistinguishable from the caller's
			// cancellation, so it does not count against the provider.
			e.breaker.abandon()
			return nil, attempts, newError(e.tool, KindProviderUnavailable,
				"request canceled", ctx.Err())
		}
		if !retryableError(err) {
			break
		}
	}

	// Exhausted (or hit a non-retryable provider failure): one breaker
	// failure for the whole invocation.
	e.breaker.failure()

	if errors.Is(lastErr, ErrMalformedProviderResponse) {
		return nil, attempts, newError(e.tool, KindProviderContract,
			"provider returned data outside the tool contract", lastErr)
	}
	return nil, attempts, newError(e.tool, KindProviderUnavailable,
		fmt.Sprintf("provider failed after %d attempt(s): %v", attempts, lastErr), lastErr)
}

// state exposes the breaker state for observability endpoints.
func (e *executor) state() CircuitState {
	return e.breaker.currentState()
}

// retryableError determines if an error should trigger a retry.
// Client-side and contract errors must never be retried; timeouts,
// 5xx-equivalents, and connection failures are worth another attempt.
func retryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMalformedProviderResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// A per-attempt deadline counts as a retryable failure.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()

	// Rate limit responses - always retry
	if containsAny(errStr, "rate limit", "quota exceeded", "429") {
		return true
	}
	// Transient server errors - retry
	if containsAny(errStr, "500", "502", "503", "504", "unavailable") {
		return true
	}
	// Network errors - retry
	if containsAny(errStr, "connection reset", "connection refused", "timeout", "temporary", "EOF") {
		return true
	}

	return false
}

// containsAny checks if s contains any of the substrings (case-insensitive).
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
