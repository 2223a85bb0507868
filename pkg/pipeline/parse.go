package pipeline

import (
	"github.com/matzehuels/ganttsync/pkg/analysis"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
	"github.com/matzehuels/ganttsync/pkg/views"
)

// Parse runs the parse stage: grammar, then dependency resolution.
func Parse(src string) *Parsed {
	chart := gantt.Parse(src)
	return &Parsed{
		Chart:      chart,
		Resolution: schedule.ResolveDependencies(chart.Tasks, chart.Directives),
	}
}

// Analyze runs the analysis stage over a parse result. opts.Risk.Today
// should already be set; an empty value means the current date.
func Analyze(p *Parsed, opts Options) *Result {
	tasks := p.Resolution.Tasks
	return &Result{
		Directives: p.Chart.Directives,
		Sections:   p.Chart.Sections,
		Tasks:      tasks,
		Report:     analysis.Analyze(p.Resolution),
		Risks:      views.ComputeRiskFlags(tasks, opts.Risk),
		Assignees:  views.Assignees(tasks),
	}
}

// rows derives the filtered row view of a result.
func rows(r *Result, assignees []string) []views.Row {
	return views.FilterRowsByAssignee(views.BuildRows(r.Tasks), assignees)
}
