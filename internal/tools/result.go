package tools

import (
	"encoding/json"
	"errors"
)

// ErrorKind classifies a dispatch failure. The kind decides how the failure
// is reported (caller fault vs provider fault vs internal defect) and whether
// the caller may reasonably retry.
type ErrorKind int

const (
	// KindValidation: the caller's input violates the tool's input schema.
	KindValidation ErrorKind = iota
	// KindNotFound: no tool registered under the requested name.
	KindNotFound
	// KindProviderUnavailable: the upstream provider failed after the retry
	// budget was exhausted.
	KindProviderUnavailable
	// KindCircuitOpen: the tool's circuit breaker is resting after sustained
	// provider failures; no upstream attempt was made.
	KindCircuitOpen
	// KindProviderContract: the adapter's normalized output failed the output
	// schema. An internal defect, never the caller's fault.
	KindProviderContract
)

// String returns the wire name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindCircuitOpen:
		return "circuit_open"
	case KindProviderContract:
		return "provider_contract_error"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the kind as its wire name.
func (k ErrorKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Error is the structured failure returned to callers.
// Message is safe to surface verbatim: validation messages carry the field
// path and reason, provider-contract messages carry no provider internals.
type Error struct {
	Tool      string    `json:"tool"`
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Tool == "" {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Tool + ": " + e.Kind.String() + ": " + e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// newError builds an Error wrapping cause. Retryability follows the kind:
// only provider unavailability is worth the caller trying again later.
func newError(tool string, kind ErrorKind, msg string, cause error) *Error {
	return &Error{
		Tool:      tool,
		Kind:      kind,
		Message:   msg,
		Retryable: kind == KindProviderUnavailable || kind == KindCircuitOpen,
		cause:     cause,
	}
}

// Result is the outcome of a single dispatch: either Output or Err is set,
// never both.
type Result struct {
	// Output is the validated, schema-shaped tool output. Shared with the
	// response cache; callers must treat it as read-only.
	Output map[string]any

	// Err is the structured failure, nil on success.
	Err *Error

	// Cached reports whether Output was served from the response cache.
	Cached bool

	// Attempts is the number of upstream attempts made (0 on cache hit or
	// pre-flight failure).
	Attempts int
}

// OK reports whether the dispatch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// failure wraps an *Error into a Result.
func failure(err *Error) Result {
	return Result{Err: err}
}

// AsError extracts a structured *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
