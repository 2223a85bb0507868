package analysis

import "github.com/matzehuels/ganttsync/pkg/schedule"

// Report bundles every analysis of one resolved chart.
type Report struct {
	CriticalPath `yaml:",inline"`

	Cycles    [][]string         `json:"cycles" yaml:"cycles"`
	Conflicts []Conflict         `json:"conflicts" yaml:"conflicts"`
	Warnings  []schedule.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Depth maps task key to dependency depth (0 for roots).
	Depth map[string]int `json:"depth" yaml:"depth"`
}

// Analyze runs cycle detection, the critical path passes and conflict
// detection over a resolution. Resolver warnings are carried along.
func Analyze(res schedule.Resolution) Report {
	g := BuildGraph(res.Tasks)
	depth := make(map[string]int, g.NodeCount())
	for _, n := range g.Nodes() {
		depth[n.ID] = n.Row
	}
	return Report{
		CriticalPath: ComputeCriticalPath(res.Tasks),
		Cycles:       DetectCycles(res.Tasks),
		Conflicts:    DetectConflicts(res.Tasks),
		Warnings:     res.Warnings,
		Depth:        depth,
	}
}

// HasCycles reports whether any dependency cycle was found.
func (r Report) HasCycles() bool { return len(r.Cycles) > 0 }
