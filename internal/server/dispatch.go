package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sema-ai/commsgate/internal/audit"
	"github.com/sema-ai/commsgate/internal/dispatch"
	"github.com/sema-ai/commsgate/internal/safety"
)

// handleDispatch implements POST /v1/dispatch: safety evaluation of the
// triggering user input, rate limiting for sensitive operations, then
// engine dispatch. Every attempt produces exactly one audit event.
func (d *Dependencies) handleDispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()

	var req DispatchRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Operation == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "operation is required"})
		return
	}

	client := clientFromContext(r.Context())
	if client == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResp{Detail: "missing client context"})
		return
	}

	verdict := d.evaluatorFor(client.StrictSafety).Evaluate(req.UserInput)

	var result dispatch.Result
	switch {
	case !verdict.Safe && client.SafetyMode == "block":
		result = dispatch.Fail(dispatch.FailSafetyViolation, "%s", verdict.Message)

	case d.rateLimited(r, client.ClientID, req.Operation):
		result = dispatch.Fail(dispatch.FailRateLimited,
			"rate limit exceeded for operation %q", req.Operation)

	default:
		result = d.Engine.Dispatch(r.Context(), req.Operation, req.Arguments)
	}

	d.writeAuditEvent(requestID, &req, verdict, result, time.Since(start))

	writeJSON(w, http.StatusOK, DispatchResponse{
		RequestID: requestID,
		Safety:    verdict,
		Dispatch:  result,
	})
}

// rateLimited checks the limiter for sensitive operations. Limiter
// backend failures fail open: a degraded Redis must not take down
// dispatch, and the audit trail still records every attempt.
func (d *Dependencies) rateLimited(r *http.Request, clientID, operation string) bool {
	op, ok := d.Engine.Registry().Lookup(operation)
	if !ok || !op.Sensitive {
		return false
	}

	allowed, err := d.Limiter.Allow(r.Context(), clientID, operation)
	if err != nil {
		d.Logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
		return false
	}
	return !allowed
}

func (d *Dependencies) writeAuditEvent(requestID string, req *DispatchRequest, verdict safety.Result, result dispatch.Result, latency time.Duration) {
	if d.Writer == nil {
		return
	}

	event := &audit.DispatchEvent{
		RequestID:       requestID,
		Timestamp:       time.Now().UTC(),
		Operation:       req.Operation,
		UserTextPreview: safety.MaskPII(audit.TruncatePreview(req.UserInput, audit.PreviewLength)),
		SafetyScore:     verdict.Score,
		SafetySafe:      verdict.Safe,
		FlaggedPatterns: verdict.FlaggedPatterns,
		Outcome:         "success",
		LatencyMs:       float64(latency.Microseconds()) / 1000.0,
	}
	if op, ok := d.Engine.Registry().Lookup(req.Operation); ok {
		event.MaskedArguments = op.MaskedArgs(req.Arguments)
	}
	if result.Err != nil {
		event.Outcome = string(result.Err.Kind)
		event.ErrorMessage = result.Err.Message
	}

	d.Writer.Write(event)
}
