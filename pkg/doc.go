// Package pkg holds the libraries behind ganttsync, a round-trip engine for
// Gantt chart source text.
//
// # Overview
//
// A chart is plain text. ganttsync reads it into a task model, derives a
// schedule and an analysis from that model, and writes edits back into the
// text by splicing whole lines, so comments and formatting the edit does not
// touch survive unchanged.
//
// The libraries fall into three groups:
//
//  1. Engine: [gantt] (parsing), [schedule] (dependency resolution),
//     [analysis] (cycles, critical path, conflicts), [views] (risk flags and
//     assignee filtering) and [mutate] (line-splicing edits)
//  2. Support: [calendar] (working-day arithmetic), [source] (line
//     documents) and [dag] (the task graph)
//  3. Infrastructure: [pipeline] (cached end-to-end runs), [cache],
//     [errors], [io], [observability] and [buildinfo]
//
// # Data Flow
//
//	chart text
//	    ↓
//	[gantt] package (tasks, directives, sections)
//	    ↓
//	[schedule] package (resolved dates, warnings)
//	    ↓
//	[analysis] + [views] packages (report, risk flags, rows)
//
//	chart text + task + edit
//	    ↓
//	[mutate] package
//	    ↓
//	new chart text
//
// # Quick Start
//
//	src, _ := io.ReadSource("plan.mmd")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Analyze(ctx, src, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, label := range result.Report.Path {
//	    fmt.Println(label)
//	}
//
// The engine packages never fail on malformed input: unreadable lines are
// skipped and unresolvable tasks are reported as warnings. Errors appear
// only at the edges, in [io], [cache] and the command-line and HTTP
// surfaces under internal/.
//
// [gantt]: github.com/matzehuels/ganttsync/pkg/gantt
// [schedule]: github.com/matzehuels/ganttsync/pkg/schedule
// [analysis]: github.com/matzehuels/ganttsync/pkg/analysis
// [views]: github.com/matzehuels/ganttsync/pkg/views
// [mutate]: github.com/matzehuels/ganttsync/pkg/mutate
// [calendar]: github.com/matzehuels/ganttsync/pkg/calendar
// [source]: github.com/matzehuels/ganttsync/pkg/source
// [dag]: github.com/matzehuels/ganttsync/pkg/dag
// [pipeline]: github.com/matzehuels/ganttsync/pkg/pipeline
// [cache]: github.com/matzehuels/ganttsync/pkg/cache
// [errors]: github.com/matzehuels/ganttsync/pkg/errors
// [io]: github.com/matzehuels/ganttsync/pkg/io
// [observability]: github.com/matzehuels/ganttsync/pkg/observability
// [buildinfo]: github.com/matzehuels/ganttsync/pkg/buildinfo
package pkg
