package dispatch

import (
	"encoding/json"
	"fmt"
)

// FailureKind classifies a dispatch failure. The set is part of the
// response envelope contract and stable across operations.
type FailureKind string

const (
	// FailUnknownOperation — requested name not in the registry.
	FailUnknownOperation FailureKind = "unknown_operation"
	// FailInvalidArgument — arguments failed schema/format validation;
	// the handler was never invoked.
	FailInvalidArgument FailureKind = "invalid_argument"
	// FailHandlerError — the bound handler failed; no retry at this layer.
	FailHandlerError FailureKind = "handler_error"
	// FailSafetyViolation — dispatch refused by safety gating (only when
	// the integrating configuration hard-blocks on unsafe input).
	FailSafetyViolation FailureKind = "safety_violation"
	// FailRateLimited — a sensitive operation exceeded its rate limit.
	FailRateLimited FailureKind = "rate_limited"
)

// Failure describes why a dispatch did not produce a payload.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Message
}

// Result is the normalized outcome of a dispatch: exactly one of Payload
// or Err is set. The caller never receives both.
type Result struct {
	Payload any
	Err     *Failure
}

// OK reports whether the dispatch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Succeed wraps a handler payload.
func Succeed(payload any) Result {
	return Result{Payload: payload}
}

// Fail builds a failure result.
func Fail(kind FailureKind, format string, args ...any) Result {
	return Result{Err: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// envelope is the stable wire shape returned to callers regardless of
// which operation was invoked.
type envelope struct {
	Success bool     `json:"success"`
	Result  any      `json:"result,omitempty"`
	Error   *Failure `json:"error,omitempty"`
}

// MarshalJSON renders {"success":true,"result":...} or
// {"success":false,"error":{"kind":...,"message":...}}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(envelope{Success: false, Error: r.Err})
	}
	return json.Marshal(envelope{Success: true, Result: r.Payload})
}
