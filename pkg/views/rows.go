package views

import (
	"slices"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// RowKind distinguishes section markers from task rows.
type RowKind string

const (
	RowSection RowKind = "section"
	RowTask    RowKind = "task"
)

// Row is one line of a tabular chart view. Task is set for task rows only.
type Row struct {
	Kind    RowKind                `json:"kind" yaml:"kind"`
	Section string                 `json:"section,omitempty" yaml:"section,omitempty"`
	Task    *schedule.ResolvedTask `json:"task,omitempty" yaml:"task,omitempty"`
}

// BuildRows interleaves a section marker before each run of tasks that
// share a named section.
func BuildRows(tasks []schedule.ResolvedTask) []Row {
	rows := make([]Row, 0, len(tasks))
	current := ""
	for i := range tasks {
		t := &tasks[i]
		if t.Section != "" && (i == 0 || t.Section != current) {
			rows = append(rows, Row{Kind: RowSection, Section: t.Section})
		}
		current = t.Section
		rows = append(rows, Row{Kind: RowTask, Section: t.Section, Task: t})
	}
	return rows
}

// Assignable is anything carrying comma-separated assignees.
type Assignable interface {
	Assignees() []string
}

// MatchesAssignee reports whether any of names matches the selection
// case-insensitively. An empty selection matches everything.
func MatchesAssignee(names, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, n := range names {
		for _, s := range selected {
			if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(s)) {
				return true
			}
		}
	}
	return false
}

// FilterTasksByAssignee keeps tasks with at least one selected assignee.
// An empty selection returns tasks unchanged.
func FilterTasksByAssignee[T Assignable](tasks []T, selected []string) []T {
	if len(selected) == 0 {
		return tasks
	}
	var out []T
	for _, t := range tasks {
		if MatchesAssignee(t.Assignees(), selected) {
			out = append(out, t)
		}
	}
	return out
}

// FilterRowsByAssignee keeps task rows with a selected assignee and the
// section markers that still head at least one kept task. An empty
// selection returns rows unchanged.
func FilterRowsByAssignee(rows []Row, selected []string) []Row {
	if len(selected) == 0 {
		return rows
	}
	var out []Row
	for _, r := range rows {
		switch r.Kind {
		case RowSection:
			out = append(out, r)
		case RowTask:
			if r.Task != nil && MatchesAssignee(r.Task.Assignees(), selected) {
				out = append(out, r)
			}
		}
	}
	return dropEmptySections(out)
}

func dropEmptySections(rows []Row) []Row {
	out := rows[:0:0]
	for i, r := range rows {
		if r.Kind == RowSection && (i+1 == len(rows) || rows[i+1].Kind == RowSection) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Assignees returns the distinct assignee names across tasks, first
// spelling kept, sorted case-insensitively.
func Assignees[T Assignable](tasks []T) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tasks {
		for _, n := range t.Assignees() {
			if k := strings.ToLower(n); !seen[k] {
				seen[k] = true
				names = append(names, n)
			}
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names
}
