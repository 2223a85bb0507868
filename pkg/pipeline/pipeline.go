// Package pipeline runs the chart engine end to end for the CLI, the HTTP
// server and the watcher.
//
// The stages are:
//
//  1. Parse: split source into tasks, directives and sections, then resolve
//     relative timing into dates
//  2. Analyze: cycles, critical path and slack, conflicts, risk flags
//
// Each stage is a pure function ([Parse], [Analyze]). [Runner] adds what the
// outer surfaces need on top: a result cache keyed by source hash, logging
// and observability hooks.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Analyze(ctx, src, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Report.Path)
package pipeline

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/ganttsync/pkg/analysis"
	"github.com/matzehuels/ganttsync/pkg/cache"
	"github.com/matzehuels/ganttsync/pkg/errors"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
	"github.com/matzehuels/ganttsync/pkg/views"
)

// Format constants for exported results.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatYAML: true,
}

// Options configures an analysis run.
type Options struct {
	// Risk tunes the risk heuristics. Zero fields take defaults; an empty
	// Today is filled with the current date before the cache is consulted.
	Risk views.RiskOptions

	// Assignees restricts Result.Rows to tasks assigned to any of these
	// names. Empty keeps every row.
	Assignees []string

	// Refresh skips cache reads. Results are still written.
	Refresh bool
}

// Parsed is the output of the parse stage.
type Parsed struct {
	Chart      gantt.Chart         `json:"chart" yaml:"chart"`
	Resolution schedule.Resolution `json:"resolution" yaml:"resolution"`
}

// Result contains everything derived from one source.
type Result struct {
	SourceHash string                  `json:"sourceHash" yaml:"sourceHash"`
	Directives gantt.Directives        `json:"directives" yaml:"directives"`
	Sections   []gantt.Section         `json:"sections" yaml:"sections"`
	Tasks      []schedule.ResolvedTask `json:"tasks" yaml:"tasks"`
	Report     analysis.Report         `json:"analysis" yaml:"analysis"`
	Risks      map[string]views.Risk   `json:"risks" yaml:"risks"`
	Assignees  []string                `json:"assignees" yaml:"assignees"`

	// Rows is the section-grouped view after assignee filtering. It is
	// derived per call and never cached.
	Rows []views.Row `json:"-" yaml:"-"`

	Stats     Stats     `json:"-" yaml:"-"`
	CacheInfo CacheInfo `json:"-" yaml:"-"`
}

// Stats holds timing and size information for a run.
type Stats struct {
	ParseTime   time.Duration
	AnalyzeTime time.Duration
	TaskCount   int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	ParseHit    bool
	AnalysisHit bool
}

// ValidateFormat checks if a format string is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of: %s)", format, formatList())
	}
	return nil
}

func formatList() string {
	return strings.Join(slices.Sorted(maps.Keys(ValidFormats)), ", ")
}

// keyOpts folds the options that shape a cached analysis into a key.
func (o Options) keyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		Today:              o.Risk.Today,
		LongDurationFactor: o.Risk.LongDurationFactor,
		MinSectionSize:     o.Risk.MinSectionSize,
		BehindThreshold:    o.Risk.BehindThreshold,
	}
}
