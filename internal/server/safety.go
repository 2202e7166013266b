package server

import (
	"net/http"
)

// handleSafetyCheck implements POST /v1/safety/check: evaluate text
// without dispatching anything.
func (d *Dependencies) handleSafetyCheck(w http.ResponseWriter, r *http.Request) {
	var req SafetyCheckRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}

	client := clientFromContext(r.Context())
	strict := req.Strict || (client != nil && client.StrictSafety)
	evaluator := d.evaluatorFor(strict)

	resp := SafetyCheckResponse{Result: evaluator.Evaluate(req.Text)}
	if req.Report {
		resp.Report = evaluator.Report(req.Text)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListOperations implements GET /v1/operations.
func (d *Dependencies) handleListOperations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OperationsResponse{
		Operations: d.Engine.Registry().Names(),
	})
}
