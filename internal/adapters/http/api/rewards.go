// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jwpang/cardwise/internal/domain/reward"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// RewardDependencies defines the interface for single-card evaluation.
type RewardDependencies interface {
	Rewards(ctx context.Context, vec spend.Vector, milesRate float64) ([]reward.Result, error)
}

// RewardsHandler handles reward evaluation requests.
type RewardsHandler struct {
	deps RewardDependencies
}

// NewRewardsHandler creates a new rewards handler.
func NewRewardsHandler(deps RewardDependencies) *RewardsHandler {
	return &RewardsHandler{deps: deps}
}

// HandleRewards handles POST /rewards requests. The body carries a monthly
// spend profile; the response is every catalog card's result, best first.
func (h *RewardsHandler) HandleRewards(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rewards"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req spendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	vec, err := req.vector()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	results, err := h.deps.Rewards(r.Context(), vec, req.MilesRate)
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
