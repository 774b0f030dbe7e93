// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/jwpang/cardwise/internal/domain/catalog"
)

// CardDependencies defines the interface for catalog listing.
type CardDependencies interface {
	Cards(ctx context.Context) (string, []catalog.Card, error)
}

// CardsHandler handles catalog listing requests.
type CardsHandler struct {
	deps CardDependencies
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(deps CardDependencies) *CardsHandler {
	return &CardsHandler{deps: deps}
}

type cardsResponse struct {
	Version string         `json:"version"`
	Cards   []catalog.Card `json:"cards"`
}

// HandleCards handles GET /cards requests.
func (h *CardsHandler) HandleCards(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_cards"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	version, cards, err := h.deps.Cards(r.Context())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cardsResponse{Version: version, Cards: cards})
}
