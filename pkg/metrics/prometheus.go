// Package metrics provides Prometheus metrics for the cardwise service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every Prometheus metric the service emits.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Engine metrics
	calculationsTotal  prometheus.Counter
	calculationErrors  prometheus.Counter
	calculationLatency prometheus.Histogram

	// Combination search metrics
	pairSearchesTotal prometheus.Counter
	pairsEvaluated    prometheus.Counter
	pairSearchLatency prometheus.Histogram

	// Result cache metrics
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheFlushes   prometheus.Counter
	cacheSize      prometheus.Gauge

	// Catalog metrics
	catalogReloads    prometheus.Counter
	catalogLoadErrors prometheus.Counter
	catalogCards      prometheus.Gauge
	catalogLoadedUnix prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cardwise",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.calculationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculations_total",
		Help:      "Total number of reward calculations served",
	})
	m.calculationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculation_errors_total",
		Help:      "Total number of reward calculations that failed",
	})
	m.calculationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculation_duration_milliseconds",
		Help:      "Latency of full-catalog reward calculations",
		Buckets:   m.histogramBuckets,
	})

	m.pairSearchesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pair_searches_total",
		Help:      "Total number of two-card combination searches served",
	})
	m.pairsEvaluated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_evaluated_total",
		Help:      "Total number of card pairs allocated and scored",
	})
	m.pairSearchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pair_search_duration_milliseconds",
		Help:      "Latency of combination searches",
		Buckets:   m.histogramBuckets,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_cache_hits_total",
		Help:      "Total number of result cache hits",
	})
	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_cache_misses_total",
		Help:      "Total number of result cache misses",
	})
	m.cacheFlushes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_cache_flushes_total",
		Help:      "Total number of whole-cache invalidations",
	})
	m.cacheSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "result_cache_entries",
		Help:      "Current number of cached results",
	})

	m.catalogReloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_reloads_total",
		Help:      "Total number of successful catalog reloads",
	})
	m.catalogLoadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_load_errors_total",
		Help:      "Total number of failed catalog loads",
	})
	m.catalogCards = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_cards",
		Help:      "Number of cards in the active catalog",
	})
	m.catalogLoadedUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_loaded_timestamp_seconds",
		Help:      "Unix time of the last successful catalog load",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordCalculation increments the calculations counter.
func RecordCalculation() {
	globalManager.calculationsTotal.Inc()
}

// RecordCalculationError increments the calculation errors counter.
func RecordCalculationError() {
	globalManager.calculationErrors.Inc()
}

// RecordCalculationLatency records a calculation's latency in milliseconds.
func RecordCalculationLatency(latencyMs float64) {
	globalManager.calculationLatency.Observe(latencyMs)
}

// RecordPairSearch increments the pair searches counter.
func RecordPairSearch() {
	globalManager.pairSearchesTotal.Inc()
}

// RecordPairsEvaluated adds to the evaluated pairs counter.
func RecordPairsEvaluated(n int) {
	globalManager.pairsEvaluated.Add(float64(n))
}

// RecordPairSearchLatency records a search's latency in milliseconds.
func RecordPairSearchLatency(latencyMs float64) {
	globalManager.pairSearchLatency.Observe(latencyMs)
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheFlush increments the whole-cache invalidation counter.
func RecordCacheFlush() {
	globalManager.cacheFlushes.Inc()
}

// UpdateCacheSize sets the current cached entry count.
func UpdateCacheSize(n int) {
	globalManager.cacheSize.Set(float64(n))
}

// RecordCatalogReload increments the catalog reload counter.
func RecordCatalogReload() {
	globalManager.catalogReloads.Inc()
}

// RecordCatalogLoadError increments the catalog load error counter.
func RecordCatalogLoadError() {
	globalManager.catalogLoadErrors.Inc()
}

// UpdateCatalogCards sets the active catalog's card count.
func UpdateCatalogCards(n int) {
	globalManager.catalogCards.Set(float64(n))
}

// UpdateCatalogLoadedAt sets the unix time of the last catalog load.
func UpdateCatalogLoadedAt(unix int64) {
	globalManager.catalogLoadedUnix.Set(float64(unix))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the custom registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
