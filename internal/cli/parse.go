package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	gsio "github.com/matzehuels/ganttsync/pkg/io"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
	"github.com/matzehuels/ganttsync/pkg/schedule"
	"github.com/matzehuels/ganttsync/pkg/views"
)

// outputOpts are the flags shared by commands that print a model.
type outputOpts struct {
	format string // text, json or yaml
	output string // file path; empty prints to stdout
}

func (o *outputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", pipeline.FormatText, "output format: text, json, yaml")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write structured output to a file instead of stdout")
}

func (o *outputOpts) validate() error {
	if err := pipeline.ValidateFormat(o.format); err != nil {
		return err
	}
	if o.output != "" && o.format == pipeline.FormatText {
		return fmt.Errorf("--output needs --format json or yaml")
	}
	return nil
}

// emit writes v in the structured format, or calls text for the text
// format.
func (o *outputOpts) emit(cmd *cobra.Command, v any, text func(io.Writer)) error {
	out := cmd.OutOrStdout()
	switch {
	case o.format == pipeline.FormatText:
		text(out)
		return nil
	case o.output != "":
		if err := gsio.ExportFile(o.output, o.format, v); err != nil {
			return err
		}
		printSuccess(out, "Exported %s", o.format)
		printFile(out, o.output)
		return nil
	}
	return gsio.Write(out, o.format, v)
}

// parseCommand creates the parse command.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		opts    outputOpts
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a chart and print its tasks with resolved dates",
		Long: `Parse reads a chart, resolves relative timing (after-clauses, durations,
excluded days) into calendar dates and prints the result.

Use "-" as FILE to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			src, err := c.readSource(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			parsed, hit, err := runner.ParseWithCacheInfo(cmd.Context(), src, refresh)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Parsed %d tasks", len(parsed.Chart.Tasks)))

			return opts.emit(cmd, parsed, func(w io.Writer) {
				printParsed(w, parsed, hit)
				if args[0] != "-" {
					fmt.Fprintln(w)
					printNextStep(w, "Analyze the schedule", appName+" analyze "+args[0])
				}
			})
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	return cmd
}

// readSource reads a chart from path, or from stdin for "-".
func (c *CLI) readSource(path string) (string, error) {
	if path == "-" {
		return gsio.ReadSourceFrom(c.stdin)
	}
	return gsio.ReadSource(path)
}

func printParsed(w io.Writer, p *pipeline.Parsed, cached bool) {
	d := p.Chart.Directives
	if d.Title != "" {
		fmt.Fprintln(w, StyleTitle.Render(d.Title))
	}
	printStats(w, len(p.Chart.Tasks), len(p.Chart.Sections), cached)

	if len(p.Resolution.Tasks) > 0 {
		fmt.Fprintln(w, taskTable(views.BuildRows(p.Resolution.Tasks), nil))
	}
	printWarnings(w, p.Resolution.Warnings)
}

// taskTable renders section and task rows. critical, when set, highlights
// the rows of those task keys.
func taskTable(viewRows []views.Row, critical map[string]bool) string {
	var (
		rows [][]string
		hot  []bool
	)
	for _, r := range viewRows {
		if r.Kind == views.RowSection {
			rows = append(rows, []string{styleSection.Render(r.Section), "", "", "", "", "", ""})
			hot = append(hot, false)
			continue
		}
		t := r.Task
		days := "—"
		if t.Resolved || t.DurationDays > 0 {
			days = strconv.Itoa(t.DurationDays)
		}
		rows = append(rows, []string{
			t.Label,
			orDash(t.IDToken),
			orDash(t.ResolvedStartDate),
			orDash(t.ResolvedEndDate),
			days,
			formatStatus(t.Task),
			orDash(t.Assignee),
		})
		hot = append(hot, critical[t.Key()])
	}
	return renderTable(
		[]string{"Task", "ID", "Start", "End", "Days", "Status", "Assignee"},
		rows,
		func(row int) bool { return row >= 0 && row < len(hot) && hot[row] },
	)
}

func printWarnings(w io.Writer, warnings []schedule.Warning) {
	for _, wn := range warnings {
		printWarning(w, "%s", wn.Message)
	}
}
