package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ganttsync/pkg/cache"
	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeParse    = "parse"
	keyTypeAnalysis = "analysis"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching and logging behave the same.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner. Cache failures are logged and
// otherwise ignored: a run never fails because the cache is down.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// ParseWithCacheInfo runs the parse stage with caching and returns cache hit
// info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, src string, refresh bool) (*Parsed, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.ParseKey(cache.HashSource(src))

	if !refresh {
		var cached Parsed
		if r.load(ctx, keyTypeParse, key, &cached) {
			return &cached, true, nil
		}
	}

	start := time.Now()
	p := Parse(src)
	elapsed := time.Since(start)
	observability.Engine().OnParse(ctx, len(p.Chart.Tasks), elapsed)
	r.Logger.Debug("parsed chart",
		"tasks", len(p.Chart.Tasks),
		"sections", len(p.Chart.Sections),
		"warnings", len(p.Resolution.Warnings),
		"duration", elapsed)

	r.store(ctx, keyTypeParse, key, p, cache.TTLParse)
	return p, false, nil
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Parse(ctx context.Context, src string) (*Parsed, error) {
	p, _, err := r.ParseWithCacheInfo(ctx, src, false)
	return p, err
}

// Analyze runs both stages with caching. The analysis is keyed by the
// source hash and the risk options, including the reference date.
func (r *Runner) Analyze(ctx context.Context, src string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Risk.Today == "" {
		opts.Risk.Today = calendar.Today()
	}
	hash := cache.HashSource(src)
	key := r.Keyer.AnalysisKey(hash, opts.keyOpts())

	var result *Result
	if !opts.Refresh {
		var cached Result
		if r.load(ctx, keyTypeAnalysis, key, &cached) {
			result = &cached
			result.CacheInfo.AnalysisHit = true
		}
	}

	if result == nil {
		parseStart := time.Now()
		parsed, parseHit, err := r.ParseWithCacheInfo(ctx, src, opts.Refresh)
		if err != nil {
			observability.Engine().OnAnalyze(ctx, observability.AnalysisStats{}, 0, err)
			return nil, err
		}
		parseTime := time.Since(parseStart)

		analyzeStart := time.Now()
		result = Analyze(parsed, opts)
		result.SourceHash = hash
		result.Stats.ParseTime = parseTime
		result.Stats.AnalyzeTime = time.Since(analyzeStart)
		result.CacheInfo.ParseHit = parseHit

		r.store(ctx, keyTypeAnalysis, key, result, cache.TTLAnalysis)
	}

	result.Stats.TaskCount = len(result.Tasks)
	result.Rows = rows(result, opts.Assignees)

	stats := observability.AnalysisStats{
		Tasks:    len(result.Tasks),
		Warnings: len(result.Report.Warnings),
		Cycles:   len(result.Report.Cycles),
		Critical: len(result.Report.CriticalSet),
		Risks:    len(result.Risks),
	}
	observability.Engine().OnAnalyze(ctx, stats, result.Stats.ParseTime+result.Stats.AnalyzeTime, nil)
	r.Logger.Debug("analyzed chart",
		"tasks", stats.Tasks,
		"cycles", stats.Cycles,
		"critical", stats.Critical,
		"risks", stats.Risks,
		"cached", result.CacheInfo.AnalysisHit)
	if result.Report.HasCycles() {
		r.Logger.Warn("dependency cycles found", "count", stats.Cycles)
	}
	return result, nil
}

// load reads and decodes a cache entry. It reports false on a miss, on a
// backend failure and on an undecodable entry (which is removed).
func (r *Runner) load(ctx context.Context, keyType, key string, v any) bool {
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.Logger.Debug("dropping unreadable cache entry", "type", keyType, "err", err)
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
