// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	app "github.com/jwpang/cardwise/internal/app"
	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/pairing"
	"github.com/jwpang/cardwise/internal/domain/reward"
	"github.com/jwpang/cardwise/internal/domain/spend"
	"github.com/jwpang/cardwise/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Rewards evaluates every card in the catalog against a spend profile.
	Rewards(ctx context.Context, vec spend.Vector, milesRate float64) ([]reward.Result, error)

	// Pairings searches two-card combinations and returns the top ranked pairs.
	Pairings(ctx context.Context, vec spend.Vector, milesRate float64, topN int) ([]pairing.Pair, error)

	// Cards lists the loaded catalog.
	Cards(ctx context.Context) (string, []catalog.Card, error)

	// Reload re-reads the catalog source and returns the new version.
	Reload(ctx context.Context) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	rewardsHandler      *RewardsHandler
	combinationsHandler *CombinationsHandler
	cardsHandler        *CardsHandler
	reloadHandler       *ReloadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		rewardsHandler:      NewRewardsHandler(deps),
		combinationsHandler: NewCombinationsHandler(deps),
		cardsHandler:        NewCardsHandler(deps),
		reloadHandler:       NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rewards", MetricsMiddleware(s.rewardsHandler.HandleRewards, "rewards"))
	mux.HandleFunc("/combinations", MetricsMiddleware(s.combinationsHandler.HandleCombinations, "combinations"))
	mux.HandleFunc("/cards", MetricsMiddleware(s.cardsHandler.HandleCards, "cards"))
	mux.HandleFunc("/catalog/reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
}

// spendRequest is the shared body shape for POST /rewards and POST /combinations.
// Category names follow the catalog vocabulary; unknown names are rejected.
type spendRequest struct {
	Spend     map[string]float64 `json:"spend"`
	MilesRate float64            `json:"miles_rate,omitempty"`
}

func (s spendRequest) vector() (spend.Vector, error) {
	if len(s.Spend) == 0 {
		return spend.Vector{}, errors.New("missing spend")
	}
	amounts := make(map[spend.Category]float64, len(s.Spend))
	for name, amt := range s.Spend {
		amounts[spend.Category(name)] = amt
	}
	vec, err := spend.NewVector(amounts)
	if err != nil {
		return spend.Vector{}, err
	}
	return vec, nil
}

type versionResponse struct {
	Version string `json:"version"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeUpstreamError translates service-layer failures to HTTP statuses.
// A not-yet-started service is a 503 so load balancers retry elsewhere.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, app.ErrNotStarted) {
		writeError(w, http.StatusServiceUnavailable, "not_ready", Wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}
