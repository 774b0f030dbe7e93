// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at a YAML card catalog. Empty means the
	// built-in catalog.
	CatalogPath string `koanf:"catalog_path"`

	// MilesRate is the default dollar value of one mile.
	MilesRate float64 `koanf:"miles_rate"`

	// MaxResults caps how many ranked results an API response carries.
	MaxResults int `koanf:"max_results"`

	// SearchParallelism bounds concurrent pair allocations in the
	// combination search.
	SearchParallelism int `koanf:"search_parallelism"`

	// CacheSize bounds the result cache entry count.
	CacheSize int `koanf:"cache_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		CatalogPath:       "",
		MilesRate:         0.02,
		MaxResults:        50,
		SearchParallelism: runtime.NumCPU(),
		CacheSize:         4096,
	}
}
