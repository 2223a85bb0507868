package gantt

import (
	"slices"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/calendar"
)

// Status is one of the status tokens a task line may carry.
type Status string

const (
	StatusDone   Status = "done"
	StatusActive Status = "active"
	StatusCrit   Status = "crit"
)

// Statuses lists the status tokens in canonical order.
var Statuses = []Status{StatusDone, StatusActive, StatusCrit}

// IsStatus reports whether s names a status token.
func IsStatus(s string) bool {
	return slices.Contains(Statuses, Status(strings.ToLower(s)))
}

// Task is one declared task line.
type Task struct {
	Label   string `json:"label" yaml:"label"`
	IDToken string `json:"id,omitempty" yaml:"id,omitempty"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	StartDate    string   `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	DurationDays int      `json:"durationDays" yaml:"durationDays"`
	AfterDeps    []string `json:"afterDeps,omitempty" yaml:"afterDeps,omitempty"`

	StatusTokens []Status `json:"status,omitempty" yaml:"status,omitempty"`
	IsMilestone  bool     `json:"milestone,omitempty" yaml:"milestone,omitempty"`
	IsVertMarker bool     `json:"vert,omitempty" yaml:"vert,omitempty"`

	Assignee string `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Link     string `json:"link,omitempty" yaml:"link,omitempty"`
	Progress *int   `json:"progress,omitempty" yaml:"progress,omitempty"`

	LineIndex       int    `json:"lineIndex" yaml:"lineIndex"`
	Indent          string `json:"indent,omitempty" yaml:"indent,omitempty"`
	HasExplicitDate bool   `json:"hasExplicitDate" yaml:"hasExplicitDate"`

	// LinkLines holds the indices of click lines that target this task.
	LinkLines []int `json:"linkLines,omitempty" yaml:"linkLines,omitempty"`
}

// Key returns the identifier used in graph outputs: the id token when
// present, otherwise the label.
func (t Task) Key() string {
	if t.IDToken != "" {
		return t.IDToken
	}
	return t.Label
}

// Has reports whether the task carries status s.
func (t Task) Has(s Status) bool { return slices.Contains(t.StatusTokens, s) }

// IsDone reports whether the task is marked done.
func (t Task) IsDone() bool { return t.Has(StatusDone) }

// Compound returns the derived compound status used for styling:
// "doneCrit", "activeCrit", a single status name, or "".
func (t Task) Compound() string {
	switch {
	case t.Has(StatusDone) && t.Has(StatusCrit):
		return "doneCrit"
	case t.Has(StatusActive) && t.Has(StatusCrit):
		return "activeCrit"
	case t.Has(StatusDone):
		return string(StatusDone)
	case t.Has(StatusActive):
		return string(StatusActive)
	case t.Has(StatusCrit):
		return string(StatusCrit)
	}
	return ""
}

// Assignees splits the assignee field into trimmed names.
func (t Task) Assignees() []string {
	return splitNames(t.Assignee)
}

// Schedulable reports whether the task takes part in dependency analysis.
func (t Task) Schedulable() bool { return !t.IsVertMarker }

// TodayMarker describes the todayMarker directive.
type TodayMarker struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Style   string `json:"style,omitempty" yaml:"style,omitempty"`
}

// Directives holds chart-wide settings.
type Directives struct {
	Title       string           `json:"title,omitempty" yaml:"title,omitempty"`
	DateFormat  string           `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty"`
	AxisFormat  string           `json:"axisFormat,omitempty" yaml:"axisFormat,omitempty"`
	Excludes    []string         `json:"excludes,omitempty" yaml:"excludes,omitempty"`
	Includes    []string         `json:"includes,omitempty" yaml:"includes,omitempty"`
	Weekend     calendar.Weekend `json:"weekend" yaml:"weekend"`
	DisplayMode string           `json:"displayMode,omitempty" yaml:"displayMode,omitempty"`
	TodayMarker TodayMarker      `json:"todayMarker" yaml:"todayMarker"`

	// Lines maps a directive keyword to the index of its first line.
	Lines map[string]int `json:"-" yaml:"-"`
}

// DefaultDirectives returns the settings of a chart without directives.
func DefaultDirectives() Directives {
	return Directives{
		Weekend:     calendar.WeekendSaturdaySunday,
		TodayMarker: TodayMarker{Enabled: true},
		Lines:       map[string]int{},
	}
}

// Calendar returns the working-day calendar described by the directives.
func (d Directives) Calendar() calendar.Calendar {
	return calendar.Calendar{
		Excludes: d.Excludes,
		Includes: d.Includes,
		Weekend:  d.Weekend,
	}
}

// IsCompact reports whether displayMode is compact.
func (d Directives) IsCompact() bool { return strings.EqualFold(d.DisplayMode, "compact") }

// Section is a declared section header.
type Section struct {
	Name      string `json:"name" yaml:"name"`
	LineIndex int    `json:"lineIndex" yaml:"lineIndex"`
}

// Chart is the complete result of parsing a source string.
type Chart struct {
	Tasks      []Task     `json:"tasks" yaml:"tasks"`
	Directives Directives `json:"directives" yaml:"directives"`
	Sections   []Section  `json:"sections" yaml:"sections"`
}

// NormalizeAssignee trims names, drops empties and case-insensitive
// duplicates (first spelling wins) and joins them with ", ".
func NormalizeAssignee(s string) string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range splitNames(s) {
		k := strings.ToLower(name)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, name)
	}
	return strings.Join(out, ", ")
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// DeriveID turns a label into an id-like slug: lower case, runs of other
// characters collapsed to "-".
func DeriveID(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
