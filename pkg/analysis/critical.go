package analysis

import (
	"slices"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// CriticalPath is the result of the forward and backward scheduling passes.
type CriticalPath struct {
	// CriticalSet holds connected tasks with zero slack.
	CriticalSet Set `json:"criticalSet" yaml:"criticalSet"`
	// ConnectedSet holds tasks that have a dependency or a dependent.
	ConnectedSet Set `json:"connectedSet" yaml:"connectedSet"`
	// SlackByTask maps task key to days of slack. Tasks on or downstream of
	// a cycle have no entry.
	SlackByTask map[string]int `json:"slackByTask" yaml:"slackByTask"`
	// Path is one longest dependency chain, dependency first.
	Path []string `json:"path,omitempty" yaml:"path,omitempty"`
	// ProjectDays is the length of the longest chain in days.
	ProjectDays int `json:"projectDays" yaml:"projectDays"`
}

// Duration returns the length of a task in calendar days: the distance
// between its resolved dates, or its declared duration when unresolved.
func Duration(t schedule.ResolvedTask) int {
	if t.Resolved {
		return max(calendar.DaysBetween(t.ResolvedStartDate, t.ResolvedEndDate), 0)
	}
	if t.IsMilestone {
		return 0
	}
	return t.DurationDays
}

// ComputeCriticalPath runs a forward pass (earliest finish along the
// longest path from any root) and a backward pass anchored at the overall
// project end. Slack is latest start minus earliest start. A task is
// critical when its slack is zero and it is connected; isolated tasks are
// never critical.
func ComputeCriticalPath(tasks []schedule.ResolvedTask) CriticalPath {
	g := BuildGraph(tasks)
	cp := CriticalPath{
		CriticalSet:  Set{},
		ConnectedSet: Set{},
		SlackByTask:  map[string]int{},
	}

	dur := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		dur[n.ID] = Duration(tasks[n.Meta[MetaIndex].(int)])
		if g.IsConnected(n.ID) {
			cp.ConnectedSet[n.ID] = true
		}
	}

	// Cycle members and their descendants are missing from order.
	order, _ := g.TopologicalSort()

	es := make(map[string]int, len(order))
	ef := make(map[string]int, len(order))
	prev := make(map[string]string, len(order))
	for _, id := range order {
		start := 0
		for _, p := range g.Parents(id) {
			if f, ok := ef[p]; ok && (f > start || prev[id] == "") {
				start = f
				prev[id] = p
			}
		}
		es[id] = start
		ef[id] = start + dur[id]
		cp.ProjectDays = max(cp.ProjectDays, ef[id])
	}

	ls := make(map[string]int, len(order))
	for _, id := range slices.Backward(order) {
		finish := cp.ProjectDays
		for _, c := range g.Children(id) {
			if s, ok := ls[c]; ok && s < finish {
				finish = s
			}
		}
		ls[id] = finish - dur[id]
	}

	end, endFinish := "", -1
	for _, id := range order {
		slack := max(ls[id]-es[id], 0)
		cp.SlackByTask[id] = slack
		if slack != 0 || !cp.ConnectedSet[id] {
			continue
		}
		cp.CriticalSet[id] = true
		if ef[id] > endFinish {
			end, endFinish = id, ef[id]
		}
	}

	for id := end; id != ""; id = prev[id] {
		cp.Path = append(cp.Path, id)
	}
	slices.Reverse(cp.Path)
	return cp
}
