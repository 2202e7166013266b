package server

import (
	"github.com/sema-ai/commsgate/internal/dispatch"
	"github.com/sema-ai/commsgate/internal/safety"
)

// DispatchRequest is the body of POST /v1/dispatch. UserInput is the
// raw conversational text that produced the operation call; it is what
// the safety layer evaluates.
type DispatchRequest struct {
	Operation string        `json:"operation"`
	Arguments dispatch.Args `json:"arguments"`
	UserInput string        `json:"user_input"`
}

// DispatchResponse wraps the operation result with the request identity
// and the safety verdict for the triggering input.
type DispatchResponse struct {
	RequestID string          `json:"request_id"`
	Safety    safety.Result   `json:"safety"`
	Dispatch  dispatch.Result `json:"dispatch"`
}

// SafetyCheckRequest is the body of POST /v1/safety/check.
type SafetyCheckRequest struct {
	Text string `json:"text"`

	// Strict enables strict scoring regardless of the client default.
	Strict bool `json:"strict,omitempty"`

	// Report includes the human-readable evaluation report.
	Report bool `json:"report,omitempty"`
}

// SafetyCheckResponse carries the verdict and the optional report.
type SafetyCheckResponse struct {
	safety.Result
	Report string `json:"report,omitempty"`
}

// OperationsResponse lists the callable operation names.
type OperationsResponse struct {
	Operations []string `json:"operations"`
}

// ErrorResp is the uniform HTTP-level error body (auth, malformed
// requests). Operation failures travel inside the dispatch envelope
// instead.
type ErrorResp struct {
	Detail string `json:"detail"`
}
