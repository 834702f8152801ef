// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON for log shippers.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory assessment queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of assessment workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the job deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the history store.
	ShardCount int `koanf:"shard_count"`

	// MaxHistoryLimit caps GET /history?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// KNNNeighbors sets the neighbor count for the supervised risk model.
	KNNNeighbors int `koanf:"knn_neighbors"`

	// Contamination is the expected anomaly fraction for the statistical
	// anomaly baseline, in (0,1).
	Contamination float64 `koanf:"contamination"`

	// MaxRecommendations caps the recommendation list length.
	MaxRecommendations int `koanf:"max_recommendations"`

	// VelocityWindowDays is the default look-back window for score
	// velocity queries.
	VelocityWindowDays int `koanf:"velocity_window_days"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use
// (e.g., loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:           "info",
		LogJSON:            false,
		Addr:               ":8000",
		QueueSize:          100_000,
		WorkerCount:        runtime.NumCPU() * 4,
		DedupeSize:         500_000,
		ShardCount:         8,
		MaxHistoryLimit:    100,
		KNNNeighbors:       5,
		Contamination:      0.1,
		MaxRecommendations: 5,
		VelocityWindowDays: 30,
	}
	return c
}
