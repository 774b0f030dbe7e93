// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jwpang/cardwise/internal/adapters/catalogfile"
	"github.com/jwpang/cardwise/internal/adapters/resultcache"
	"github.com/jwpang/cardwise/internal/domain/allocate"
	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/pairing"
	"github.com/jwpang/cardwise/internal/domain/reward"
	"github.com/jwpang/cardwise/internal/domain/spend"
	"github.com/jwpang/cardwise/pkg/logger"
	"github.com/jwpang/cardwise/pkg/metrics"
)

// Service wires the reward engine, the allocator, and the combination
// search behind one façade the HTTP API and the CLI both consume.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine   *reward.Engine
	alloc    *allocate.Allocator
	searcher *pairing.Searcher
	catalog  *catalog.Catalog

	// Result memoization
	rewardsCache *resultcache.Cache[[]reward.Result]
	pairsCache   *resultcache.Cache[[]pairing.Pair]

	// Configuration
	catalogPath string
	milesRate   float64
	maxResults  int
	parallelism int
	cacheSize   int

	// State
	started  bool
	loadedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalogPath points the service at a YAML catalog file. Empty
// keeps the built-in catalog.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		s.catalogPath = path
	}
}

// WithMilesRate sets the default dollar value of one mile.
func WithMilesRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.milesRate = rate
		}
	}
}

// WithMaxResults caps how many ranked results calls return.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithSearchParallelism bounds concurrent pair allocations.
func WithSearchParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithCacheSize bounds the result caches.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		milesRate:   0.02,
		maxResults:  50,
		parallelism: runtime.NumCPU(),
		cacheSize:   4096,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the catalog and wires the engine components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting cardwise service")

	cat, err := s.loadCatalog(ctx)
	if err != nil {
		metrics.RecordCatalogLoadError()
		return fmt.Errorf("initial catalog load: %w", err)
	}
	s.catalog = cat
	s.loadedAt = time.Now()

	s.engine = reward.New(reward.WithMilesRate(s.milesRate))
	s.alloc = allocate.New(s.engine)
	s.searcher = pairing.NewSearcher(s.alloc, pairing.WithParallelism(s.parallelism))
	s.rewardsCache = resultcache.New[[]reward.Result](resultcache.WithMaxSize(s.cacheSize))
	s.pairsCache = resultcache.New[[]pairing.Pair](resultcache.WithMaxSize(s.cacheSize))

	metrics.RecordCatalogReload()
	metrics.UpdateCatalogCards(len(cat.Cards))
	metrics.UpdateCatalogLoadedAt(s.loadedAt.Unix())

	s.started = true
	s.logger.Info(ctx, "cardwise service started",
		logger.String("catalogVersion", cat.Version),
		logger.Int("cards", len(cat.Cards)),
		logger.Int("parallelism", s.parallelism),
	)
	return nil
}

// Stop shuts the service down. Nothing here holds goroutines or
// sockets; stopping just blocks further calls.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "cardwise service stopped")
}

func (s *Service) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if s.catalogPath == "" {
		return catalogfile.Default(), nil
	}
	return catalogfile.Load(ctx, s.catalogPath)
}

// Reload replaces the active catalog and flushes every memoized
// result. The swap is atomic: concurrent reads see either the old or
// the new catalog, never a mix.
func (s *Service) Reload(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return "", ErrNotStarted
	}
	cat, err := s.loadCatalog(ctx)
	if err != nil {
		metrics.RecordCatalogLoadError()
		s.logger.Error(ctx, "catalog reload failed", logger.Error(err))
		return "", err
	}
	s.catalog = cat
	s.loadedAt = time.Now()
	s.rewardsCache.Invalidate()
	s.pairsCache.Invalidate()

	metrics.RecordCatalogReload()
	metrics.UpdateCatalogCards(len(cat.Cards))
	metrics.UpdateCatalogLoadedAt(s.loadedAt.Unix())

	s.logger.Info(ctx, "catalog reloaded",
		logger.String("catalogVersion", cat.Version),
		logger.Int("cards", len(cat.Cards)),
	)
	return cat.Version, nil
}

// snapshot returns the active catalog and components under a read lock.
func (s *Service) snapshot() (*catalog.Catalog, *reward.Engine, *pairing.Searcher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, nil, ErrNotStarted
	}
	return s.catalog, s.engine, s.searcher, nil
}

// Rewards evaluates every card against the vector and returns the
// ranked results, memoized per (catalog version, vector, miles rate).
func (s *Service) Rewards(ctx context.Context, vec spend.Vector, milesRate float64) ([]reward.Result, error) {
	cat, engine, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if milesRate <= 0 {
		milesRate = s.milesRate
	}

	key := resultcache.NewKey(cat.Version, vec, milesRate)
	if cached, ok := s.rewardsCache.Get(key); ok {
		metrics.RecordCalculation()
		return cached, nil
	}

	start := time.Now()
	results, err := engine.EvaluateAll(ctx, cat, vec, milesRate)
	if err != nil && len(results) == 0 {
		metrics.RecordCalculationError()
		return nil, err
	}
	if err != nil {
		// Partial failure: serve the cards that computed and flag the rest.
		metrics.RecordCalculationError()
		s.logger.Warn(ctx, "some cards failed to evaluate", logger.Error(err))
	}
	if len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	metrics.RecordCalculation()
	metrics.RecordCalculationLatency(float64(time.Since(start).Milliseconds()))
	s.rewardsCache.Put(key, results)
	return results, nil
}

// Pairings searches every two-card combination for the vector and
// returns the top pairs, memoized like Rewards.
func (s *Service) Pairings(ctx context.Context, vec spend.Vector, milesRate float64, topN int) ([]pairing.Pair, error) {
	cat, _, searcher, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	if milesRate <= 0 {
		milesRate = s.milesRate
	}
	if topN <= 0 || topN > s.maxResults {
		topN = s.maxResults
	}

	key := resultcache.NewKey("pairs:"+cat.Version, vec, milesRate)
	if cached, ok := s.pairsCache.Get(key); ok {
		metrics.RecordPairSearch()
		return pairing.Top(cached, topN), nil
	}

	start := time.Now()
	pairs, err := searcher.Search(ctx, cat, vec, milesRate)
	if err != nil {
		return nil, err
	}

	metrics.RecordPairSearch()
	metrics.RecordPairsEvaluated(len(pairs))
	metrics.RecordPairSearchLatency(float64(time.Since(start).Milliseconds()))
	s.pairsCache.Put(key, pairs)
	return pairing.Top(pairs, topN), nil
}

// Cards returns the active catalog's cards and version.
func (s *Service) Cards(ctx context.Context) (string, []catalog.Card, error) {
	cat, _, _, err := s.snapshot()
	if err != nil {
		return "", nil, err
	}
	cards := make([]catalog.Card, len(cat.Cards))
	copy(cards, cat.Cards)
	return cat.Version, cards, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"milesRate":   s.milesRate,
		"maxResults":  s.maxResults,
		"parallelism": s.parallelism,
	}
	if s.started {
		stats["catalogVersion"] = s.catalog.Version
		stats["cards"] = len(s.catalog.Cards)
		stats["catalogLoadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
		stats["cachedRewards"] = s.rewardsCache.Len()
		stats["cachedPairings"] = s.pairsCache.Len()
	}
	return stats
}
