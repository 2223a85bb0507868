package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttsync/pkg/errors"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	outputOpts
	today     string   // reference date for risk flags
	assignees []string // restrict the task table to these people
	refresh   bool     // ignore cached results
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Report critical path, slack, conflicts, cycles and risks",
		Long: `Analyze resolves a chart and reports on its schedule:

  - the critical path and the slack of every other task
  - tasks whose explicit start falls before a dependency ends
  - dependency cycles and references that could not be resolved
  - risk flags (overdue, unassigned active work, unusually long tasks,
    progress behind elapsed time)

Risk thresholds come from the [risk] table of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if err := errors.ValidateDate("today", opts.today); err != nil {
				return err
			}
			src, err := c.readSource(args[0])
			if err != nil {
				return err
			}
			return c.runAnalyze(cmd, src, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.today, "today", "", "reference date (YYYY-MM-DD, default: current date)")
	cmd.Flags().StringSliceVarP(&opts.assignees, "assignee", "a", nil, "only list tasks assigned to these people (repeatable)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, src string, opts *analyzeOpts) error {
	runner, err := c.newRunner(cmd.Context())
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Risk:      c.Config.RiskOptions(),
		Assignees: opts.assignees,
		Refresh:   opts.refresh,
	}
	popts.Risk.Today = opts.today

	var spin *Spinner
	if opts.format == pipeline.FormatText {
		spin = newSpinnerWithContext(cmd.Context(), cmd.ErrOrStderr(), "Analyzing schedule...")
		spin.Start()
	}
	prog := newProgress(c.Logger)
	result, err := runner.Analyze(cmd.Context(), src, popts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d tasks", result.Stats.TaskCount))

	return opts.emit(cmd, result, func(w io.Writer) {
		printAnalysis(w, result)
	})
}

func printAnalysis(w io.Writer, r *pipeline.Result) {
	if r.Directives.Title != "" {
		fmt.Fprintln(w, StyleTitle.Render(r.Directives.Title))
	}
	printStats(w, len(r.Tasks), len(r.Sections), r.CacheInfo.AnalysisHit)

	if len(r.Rows) > 0 {
		fmt.Fprintln(w, taskTable(r.Rows, r.Report.CriticalSet))
	}

	rep := r.Report
	printHeading(w, "Critical path")
	if len(rep.Path) == 0 {
		printInfo(w, "No schedulable tasks")
	} else {
		printKeyValue(w, "Length", fmt.Sprintf("%d days", rep.ProjectDays))
		printKeyValue(w, "Path", strings.Join(rep.Path, " "+iconArrow+" "))
	}

	var slack [][]string
	for _, t := range r.Tasks {
		s, ok := rep.SlackByTask[t.Key()]
		if !ok || s == 0 {
			continue
		}
		slack = append(slack, []string{t.Label, strconv.Itoa(s)})
	}
	if len(slack) > 0 {
		printHeading(w, "Slack")
		fmt.Fprintln(w, renderTable([]string{"Task", "Days"}, slack, nil))
	}

	if len(rep.Conflicts) > 0 {
		printHeading(w, "Conflicts")
		var rows [][]string
		for _, cf := range rep.Conflicts {
			rows = append(rows, []string{cf.TaskLabel, cf.DepLabel, strconv.Itoa(cf.OverlapDays)})
		}
		fmt.Fprintln(w, renderTable([]string{"Task", "Starts before", "Overlap"}, rows, nil))
	}

	if rep.HasCycles() {
		printHeading(w, "Cycles")
		for _, cycle := range rep.Cycles {
			printError(w, "%s", strings.Join(cycle, " "+iconArrow+" "))
		}
	}

	var risks [][]string
	for _, t := range r.Tasks {
		risk, ok := r.Risks[t.Label]
		if !ok {
			continue
		}
		for i, f := range risk.Flags {
			label := t.Label
			if i > 0 {
				label = ""
			}
			risks = append(risks, []string{label, string(f), risk.Reasons[i]})
		}
	}
	if len(risks) > 0 {
		printHeading(w, "Risks")
		fmt.Fprintln(w, renderTable([]string{"Task", "Flag", "Reason"}, risks, nil))
	}

	if len(rep.Warnings) > 0 {
		printHeading(w, "Warnings")
		printWarnings(w, rep.Warnings)
	}
}
