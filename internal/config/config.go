package config

import (
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/ganttsync/pkg/cache"
	"github.com/matzehuels/ganttsync/pkg/errors"
	"github.com/matzehuels/ganttsync/pkg/views"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Default values.
const (
	DefaultLogLevel     = "info"
	DefaultCacheBackend = BackendFile
	DefaultServerAddr   = "127.0.0.1:8080"
	DefaultMaxBodyBytes = 2 << 20
	DefaultDebounce     = 150 * time.Millisecond
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds the full configuration.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Server ServerConfig `toml:"server"`
	Watch  WatchConfig  `toml:"watch"`
	Risk   RiskConfig   `toml:"risk"`

	// Files lists the config files that were read, in load order.
	Files []string `toml:"-"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level      string `toml:"level"`
	Timestamps bool   `toml:"timestamps"`
}

// CacheConfig selects and tunes the result cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Empty means the user cache dir.
	Dir string `toml:"dir"`
	// Namespace prefixes every key, so several projects can share a backend.
	Namespace string `toml:"namespace"`
}

// RedisConfig is used when the cache backend is redis.
type RedisConfig struct {
	Addr        string   `toml:"addr"`
	Password    string   `toml:"password"`
	DB          int      `toml:"db"`
	Prefix      string   `toml:"prefix"`
	DialTimeout Duration `toml:"dial_timeout"`
}

// ServerConfig configures "ganttsync serve".
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// WatchConfig configures "ganttsync watch".
type WatchConfig struct {
	// Debounce is how long the watcher waits for writes to settle.
	Debounce Duration `toml:"debounce"`
}

// RiskConfig tunes the risk heuristics. Zero values take the engine
// defaults.
type RiskConfig struct {
	LongDurationFactor float64 `toml:"long_duration_factor"`
	MinSectionSize     int     `toml:"min_section_size"`
	BehindThreshold    int     `toml:"behind_threshold"`
}

// Duration is a time.Duration written as a Go duration string ("150ms").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	risk := views.DefaultRiskOptions()
	return &Config{
		Log:   LogConfig{Level: DefaultLogLevel, Timestamps: true},
		Cache: CacheConfig{Backend: DefaultCacheBackend},
		Redis: RedisConfig{
			Prefix:      cache.DefaultRedisPrefix,
			DialTimeout: Duration{5 * time.Second},
		},
		Server: ServerConfig{
			Addr:         DefaultServerAddr,
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Watch: WatchConfig{Debounce: Duration{DefaultDebounce}},
		Risk: RiskConfig{
			LongDurationFactor: risk.LongDurationFactor,
			MinSectionSize:     risk.MinSectionSize,
			BehindThreshold:    risk.BehindThreshold,
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if !slices.Contains(logLevels, c.Log.Level) {
		return invalid("log.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Log.Level)
	}

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return invalid("redis.addr is required when cache.backend is %q", BackendRedis)
		}
	default:
		return invalid("cache.backend must be %s, %s or %s, got %q", BackendFile, BackendRedis, BackendNone, c.Cache.Backend)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return invalid("server.max_body_bytes must be positive")
	}
	if c.Watch.Debounce.Duration < 0 {
		return invalid("watch.debounce must not be negative")
	}
	if c.Risk.LongDurationFactor < 0 || c.Risk.MinSectionSize < 0 || c.Risk.BehindThreshold < 0 {
		return invalid("risk settings must not be negative")
	}
	return nil
}

// RiskOptions converts the [risk] table for the engine. Today is left
// empty for the caller to fill.
func (c *Config) RiskOptions() views.RiskOptions {
	return views.RiskOptions{
		LongDurationFactor: c.Risk.LongDurationFactor,
		MinSectionSize:     c.Risk.MinSectionSize,
		BehindThreshold:    c.Risk.BehindThreshold,
	}
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}
