// Package cli implements the ganttsync command-line interface.
//
// Commands read a chart file, run it through a [pipeline.Runner] and either
// print what was derived or write an edited source back in place. The CLI
// is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - parse: Print tasks, sections and resolved dates
//   - analyze: Critical path, slack, conflicts, cycles and risk flags
//   - edit: Line-level edits (status, dates, dependencies, sections...)
//   - watch: Re-analyze a file whenever it is saved
//   - serve: Expose the engine over HTTP
//   - tui: Browse and toggle tasks interactively
//   - cache, config: Inspect the result cache and the effective settings
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Without it
// the level comes from the [log] table of the configuration.
//
// [pipeline.Runner]: github.com/matzehuels/ganttsync/pkg/pipeline.Runner
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Analyzed 42 tasks (3ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
