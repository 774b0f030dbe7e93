// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jwpang/cardwise/internal/domain/pairing"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// CombinationDependencies defines the interface for two-card search.
type CombinationDependencies interface {
	Pairings(ctx context.Context, vec spend.Vector, milesRate float64, topN int) ([]pairing.Pair, error)
}

// CombinationsHandler handles two-card combination requests.
type CombinationsHandler struct {
	deps CombinationDependencies
}

// NewCombinationsHandler creates a new combinations handler.
func NewCombinationsHandler(deps CombinationDependencies) *CombinationsHandler {
	return &CombinationsHandler{deps: deps}
}

// combinationsRequest extends the spend body with a result limit.
type combinationsRequest struct {
	spendRequest
	Top int `json:"top,omitempty"`
}

// HandleCombinations handles POST /combinations requests. Every unordered
// card pair is evaluated with the spend split between the two cards; the
// response lists the best pairs first.
func (h *CombinationsHandler) HandleCombinations(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_combinations"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req combinationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Top < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	vec, err := req.vector()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	pairs, err := h.deps.Pairings(r.Context(), vec, req.MilesRate, req.Top)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pairs)
}
