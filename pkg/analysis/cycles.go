package analysis

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// DetectCycles returns every distinct dependency cycle reachable by a
// depth-first walk from each task in source order. A cycle is the ordered
// label sequence starting at the task where the walk re-entered the
// recursion stack. Rotations of an already reported cycle are dropped.
// The result is empty for an acyclic chart.
func DetectCycles(tasks []schedule.ResolvedTask) [][]string {
	pt := plain(tasks)
	deps := make([][]int, len(pt))
	for _, e := range dependencyEdges(pt) {
		deps[e.to] = append(deps[e.to], e.from)
	}

	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(pt))
	var stack []int
	seen := make(map[string]bool)
	cycles := [][]string{}

	var dfs func(i int)
	dfs = func(i int) {
		color[i] = gray
		stack = append(stack, i)
		for _, j := range deps[i] {
			switch color[j] {
			case white:
				dfs(j)
			case gray:
				at := slices.Index(stack, j)
				members := slices.Clone(stack[at:])
				if key := canonical(members); !seen[key] {
					seen[key] = true
					labels := make([]string, len(members))
					for k, m := range members {
						labels[k] = pt[m].Label
					}
					cycles = append(cycles, labels)
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[i] = black
	}

	for i, t := range pt {
		if color[i] == white && !t.IsVertMarker {
			dfs(i)
		}
	}
	return cycles
}

// canonical identifies a cycle independent of its starting point.
func canonical(members []int) string {
	start := 0
	for k, m := range members {
		if m < members[start] {
			start = k
		}
	}
	parts := make([]string, len(members))
	for k := range members {
		parts[k] = strconv.Itoa(members[(start+k)%len(members)])
	}
	return strings.Join(parts, ",")
}

// CycleMembers returns the keys of every task on a reported cycle.
func CycleMembers(tasks []schedule.ResolvedTask, cycles [][]string) Set {
	pt := plain(tasks)
	members := Set{}
	for _, c := range cycles {
		for _, label := range c {
			for _, t := range pt {
				if t.Label == label {
					members[t.Key()] = true
				}
			}
		}
	}
	return members
}
