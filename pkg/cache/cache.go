// Package cache stores serialized parse and analysis results keyed by a hash
// of the chart source.
//
// The engine recomputes everything from scratch on each call, which is cheap
// for a single chart. The cache exists for the outer surfaces: the watcher
// and the HTTP server see the same source many times, and a shared Redis
// cache lets several server instances skip repeat work.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default time-to-live per entry kind.
const (
	// TTLParse applies to parse results. They depend on the source only.
	TTLParse = 7 * 24 * time.Hour

	// TTLAnalysis applies to analysis results. Risk flags depend on the
	// current date, which is part of the key, so a day is enough.
	TTLAnalysis = 24 * time.Hour
)

// Keyer builds cache keys. Implementations must fold every option that
// changes the cached value into the key.
type Keyer interface {
	ParseKey(sourceHash string) string
	AnalysisKey(sourceHash string, opts AnalysisKeyOpts) string
}

// AnalysisKeyOpts are the inputs besides the source that shape an analysis.
type AnalysisKeyOpts struct {
	Today              string  `json:"today"`
	LongDurationFactor float64 `json:"long_duration_factor"`
	MinSectionSize     int     `json:"min_section_size"`
	BehindThreshold    int     `json:"behind_threshold"`
}

// DefaultKeyer produces "parse:<hash>" and "analysis:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ParseKey returns the key of a parse result.
func (DefaultKeyer) ParseKey(sourceHash string) string {
	return hashKey("parse", sourceHash)
}

// AnalysisKey returns the key of an analysis result.
func (DefaultKeyer) AnalysisKey(sourceHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", sourceHash, opts)
}
