// Package server exposes the dispatch engine and safety evaluator over
// HTTP. All operation surfaces require a Bearer API key; the uniform
// result envelope travels in the response body and HTTP status codes are
// reserved for transport-level problems.
package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sema-ai/commsgate/internal/audit"
	"github.com/sema-ai/commsgate/internal/auth"
	"github.com/sema-ai/commsgate/internal/dispatch"
	"github.com/sema-ai/commsgate/internal/ratelimit"
	"github.com/sema-ai/commsgate/internal/safety"
)

// Dependencies holds shared state injected into all HTTP handlers.
type Dependencies struct {
	Engine  *dispatch.Engine
	Auth    auth.Authenticator
	Limiter ratelimit.Limiter
	Writer  audit.EventWriter
	Policy  safety.Policy
	Logger  *zap.Logger

	// Evaluators at both strictness levels; which one runs is the
	// authenticated client's choice.
	standard *safety.Evaluator
	strict   *safety.Evaluator
}

// NewRouter builds the HTTP mux with all routes wired up.
func NewRouter(deps *Dependencies) http.Handler {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NoopLimiter{}
	}
	deps.standard = safety.NewEvaluator(deps.Policy, deps.Logger)

	strictPolicy := deps.Policy
	strictPolicy.StrictMode = true
	deps.strict = safety.NewEvaluator(strictPolicy, deps.Logger)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/dispatch", deps.authMiddleware(deps.handleDispatch))
	mux.HandleFunc("POST /v1/safety/check", deps.authMiddleware(deps.handleSafetyCheck))
	mux.HandleFunc("GET /v1/operations", deps.authMiddleware(deps.handleListOperations))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return requestLogging(mux, deps.Logger)
}

// evaluatorFor picks the evaluator matching the client's strictness.
func (d *Dependencies) evaluatorFor(strict bool) *safety.Evaluator {
	if strict {
		return d.strict
	}
	return d.standard
}
