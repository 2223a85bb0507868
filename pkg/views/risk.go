// Package views derives read-only presentations of a resolved chart: risk
// flags with human-readable reasons, section-grouped rows, and assignee
// filtering.
package views

import (
	"fmt"
	"slices"

	"github.com/matzehuels/ganttsync/pkg/analysis"
	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// Flag names one risk heuristic.
type Flag string

const (
	FlagOverdue          Flag = "overdue"
	FlagUnassignedActive Flag = "unassigned-active"
	FlagLongDuration     Flag = "long-duration"
	FlagBehindSchedule   Flag = "behind-schedule"
)

// Risk lists the flags raised for one task, each with a reason at the same
// index.
type Risk struct {
	Flags   []Flag   `json:"flags" yaml:"flags"`
	Reasons []string `json:"reasons" yaml:"reasons"`
}

// Has reports whether f was raised.
func (r Risk) Has(f Flag) bool { return slices.Contains(r.Flags, f) }

func (r *Risk) add(f Flag, format string, args ...any) {
	r.Flags = append(r.Flags, f)
	r.Reasons = append(r.Reasons, fmt.Sprintf(format, args...))
}

// RiskOptions tunes the heuristics.
type RiskOptions struct {
	// Today is the reference date. Empty means the current UTC date.
	Today string
	// LongDurationFactor flags tasks longer than this multiple of their
	// section's median duration.
	LongDurationFactor float64
	// MinSectionSize is the number of sized tasks a section needs before
	// its median is meaningful.
	MinSectionSize int
	// BehindThreshold is the number of percentage points elapsed time may
	// run ahead of progress.
	BehindThreshold int
}

// DefaultRiskOptions returns the standard thresholds.
func DefaultRiskOptions() RiskOptions {
	return RiskOptions{
		LongDurationFactor: 2,
		MinSectionSize:     3,
		BehindThreshold:    25,
	}
}

func (o RiskOptions) withDefaults() RiskOptions {
	d := DefaultRiskOptions()
	if o.Today == "" {
		o.Today = calendar.Today()
	}
	if o.LongDurationFactor <= 0 {
		o.LongDurationFactor = d.LongDurationFactor
	}
	if o.MinSectionSize <= 0 {
		o.MinSectionSize = d.MinSectionSize
	}
	if o.BehindThreshold <= 0 {
		o.BehindThreshold = d.BehindThreshold
	}
	return o
}

// ComputeRiskFlags evaluates every heuristic and returns the tasks with at
// least one flag, keyed by label. Vertical markers are never flagged.
func ComputeRiskFlags(tasks []schedule.ResolvedTask, opts RiskOptions) map[string]Risk {
	opts = opts.withDefaults()
	medians := sectionMedians(tasks, opts.MinSectionSize)
	out := make(map[string]Risk)

	for _, t := range tasks {
		if t.IsVertMarker {
			continue
		}
		var r Risk
		end := t.ResolvedEndDate
		if end == "" {
			end = t.EndDate
		}

		if end != "" && end < opts.Today && !t.IsDone() {
			r.add(FlagOverdue, "ended %s, %d days ago, and is not done", end, calendar.DaysBetween(end, opts.Today))
		}
		if t.Has(gantt.StatusActive) && t.Assignee == "" {
			r.add(FlagUnassignedActive, "active task has no assignee")
		}
		if m, ok := medians[t.Section]; ok && !t.IsMilestone {
			if d := analysis.Duration(t); float64(d) > opts.LongDurationFactor*m {
				r.add(FlagLongDuration, "%d days is more than %.0fx the section median of %.1f days", d, opts.LongDurationFactor, m)
			}
		}
		if elapsed, ok := elapsedPercent(t, opts.Today); ok && t.Progress != nil && !t.IsDone() {
			if gap := elapsed - *t.Progress; gap > opts.BehindThreshold {
				r.add(FlagBehindSchedule, "%d%% of the time has elapsed but progress is %d%%", elapsed, *t.Progress)
			}
		}

		if len(r.Flags) > 0 {
			out[t.Label] = r
		}
	}
	return out
}

func sectionMedians(tasks []schedule.ResolvedTask, minSize int) map[string]float64 {
	bySection := make(map[string][]int)
	for _, t := range tasks {
		if t.IsVertMarker || t.IsMilestone {
			continue
		}
		if d := analysis.Duration(t); d > 0 {
			bySection[t.Section] = append(bySection[t.Section], d)
		}
	}
	medians := make(map[string]float64, len(bySection))
	for s, ds := range bySection {
		if len(ds) < minSize {
			continue
		}
		medians[s] = median(ds)
	}
	return medians
}

func median(ds []int) float64 {
	s := slices.Clone(ds)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return float64(s[n/2])
	}
	return float64(s[n/2-1]+s[n/2]) / 2
}

// elapsedPercent returns how much of a resolved task's span lies before
// today, clamped to 0..100.
func elapsedPercent(t schedule.ResolvedTask, today string) (int, bool) {
	if !t.Resolved {
		return 0, false
	}
	span := calendar.DaysBetween(t.ResolvedStartDate, t.ResolvedEndDate)
	if span <= 0 {
		return 0, false
	}
	done := calendar.DaysBetween(t.ResolvedStartDate, today)
	return max(0, min(100, done*100/span)), true
}
