// Package schedule resolves relative task timing into concrete dates.
//
// A task may be anchored by an explicit start date, by "after" references to
// other tasks, or (duration-only tasks) by the end of the task declared
// before it. [ResolveDependencies] computes a start and end date for every
// task it can, in dependency order rather than source order, and never
// fails: dangling references and cycles degrade to partial results and are
// reported as warnings.
package schedule

import (
	"fmt"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
)

// ResolvedTask is a parsed task with its computed dates.
type ResolvedTask struct {
	gantt.Task `yaml:",inline"`

	ResolvedStartDate string `json:"resolvedStartDate,omitempty" yaml:"resolvedStartDate,omitempty"`
	ResolvedEndDate   string `json:"resolvedEndDate,omitempty" yaml:"resolvedEndDate,omitempty"`

	// Resolved is true when both dates are known.
	Resolved bool `json:"resolved" yaml:"resolved"`
}

// WarningKind classifies resolver warnings.
type WarningKind string

const (
	WarningDanglingRef WarningKind = "dangling-reference"
	WarningCycle       WarningKind = "cycle"
)

// Warning describes a reference the resolver had to skip.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Task    string      `json:"task" yaml:"task"`
	Ref     string      `json:"ref" yaml:"ref"`
	Message string      `json:"message" yaml:"message"`
}

// Resolution is the output of ResolveDependencies.
type Resolution struct {
	Tasks    []ResolvedTask `json:"tasks" yaml:"tasks"`
	Warnings []Warning      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Lookup finds a resolved task by dependency reference.
func (r Resolution) Lookup(ref string) (ResolvedTask, bool) {
	i := gantt.IndexOfRef(r.Plain(), ref)
	if i < 0 {
		return ResolvedTask{}, false
	}
	return r.Tasks[i], true
}

// Plain returns the underlying parsed tasks.
func (r Resolution) Plain() []gantt.Task {
	tasks := make([]gantt.Task, len(r.Tasks))
	for i, t := range r.Tasks {
		tasks[i] = t.Task
	}
	return tasks
}

const (
	unvisited = iota
	visiting
	done
)

type resolver struct {
	tasks []gantt.Task
	cal   calendar.Calendar
	state []int
	start []string
	end   []string
	out   *Resolution
	seen  map[Warning]bool
}

// ResolveDependencies computes start and end dates for tasks.
//
// The start of a task with "after" references is the latest end among the
// references that could be resolved. A task without a start and without
// references begins where the previous task ends. The end is the explicit
// end date, or the start advanced by the duration in working days.
// Milestones and vertical markers end on their start.
//
// The input slice is not modified.
func ResolveDependencies(tasks []gantt.Task, d gantt.Directives) Resolution {
	r := &resolver{
		tasks: tasks,
		cal:   d.Calendar(),
		state: make([]int, len(tasks)),
		start: make([]string, len(tasks)),
		end:   make([]string, len(tasks)),
		out:   &Resolution{Tasks: make([]ResolvedTask, len(tasks))},
		seen:  make(map[Warning]bool),
	}
	for i := range tasks {
		r.resolve(i)
	}
	for i, t := range tasks {
		r.out.Tasks[i] = ResolvedTask{
			Task:              t,
			ResolvedStartDate: r.start[i],
			ResolvedEndDate:   r.end[i],
			Resolved:          r.start[i] != "" && r.end[i] != "",
		}
	}
	return *r.out
}

func (r *resolver) resolve(i int) {
	if r.state[i] != unvisited {
		return
	}
	r.state[i] = visiting
	t := r.tasks[i]

	start := t.StartDate
	switch {
	case start != "":
	case len(t.AfterDeps) > 0:
		for _, ref := range t.AfterDeps {
			j := gantt.IndexOfRef(r.tasks, ref)
			if j < 0 {
				r.warn(WarningDanglingRef, t, ref, "%q references unknown task %q", t.Label, ref)
				continue
			}
			if j == i || r.state[j] == visiting {
				r.warn(WarningCycle, t, ref, "%q is part of a dependency cycle through %q", t.Label, ref)
				continue
			}
			r.resolve(j)
			if e := r.end[j]; e > start {
				start = e
			}
		}
	default:
		if p := r.previous(i); p >= 0 && r.state[p] != visiting {
			r.resolve(p)
			start = r.end[p]
		}
	}

	end := t.EndDate
	if end == "" && start != "" {
		if t.IsMilestone || t.IsVertMarker || t.DurationDays == 0 {
			end = start
		} else {
			end = r.cal.AddWorkingDays(start, t.DurationDays)
		}
	}

	r.start[i], r.end[i] = start, end
	r.state[i] = done
}

func (r *resolver) previous(i int) int {
	for p := i - 1; p >= 0; p-- {
		if !r.tasks[p].IsVertMarker {
			return p
		}
	}
	return -1
}

func (r *resolver) warn(kind WarningKind, t gantt.Task, ref, format string, args ...any) {
	w := Warning{Kind: kind, Task: t.Label, Ref: ref}
	if r.seen[w] {
		return
	}
	r.seen[w] = true
	w.Message = fmt.Sprintf(format, args...)
	r.out.Warnings = append(r.out.Warnings, w)
}
