package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttsync/internal/watch"
	gsio "github.com/matzehuels/ganttsync/pkg/io"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-analyze a chart every time it is saved",
		Long: `Watch prints an analysis summary for FILE and again after every save.
Bursts of writes are folded into one run; the interval is watch.debounce
in the configuration. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (c *CLI) runWatch(ctx context.Context, out io.Writer, path string) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	w, err := watch.NewWatcher(path, c.Config.Watch.Debounce.Duration)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	c.Logger.Info("watching", "file", w.Path, "debounce", c.Config.Watch.Debounce.Duration)
	c.summarize(ctx, out, runner, path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-w.Changes:
			if !ok {
				return nil
			}
			if change.Removed {
				printWarning(out, "%s was removed; waiting for it to come back", path)
				continue
			}
			c.summarize(ctx, out, runner, path)
		case err, ok := <-w.Errors:
			if ok {
				c.Logger.Warn("watch error", "err", err)
			}
		}
	}
}

// summarize analyzes the file and prints a short report. Failures are
// printed, not returned, so the watch keeps running.
func (c *CLI) summarize(ctx context.Context, out io.Writer, runner *pipeline.Runner, path string) {
	src, err := gsio.ReadSource(path)
	if err != nil {
		printError(out, "%v", err)
		return
	}
	r, err := runner.Analyze(ctx, src, pipeline.Options{Risk: c.Config.RiskOptions()})
	if err != nil {
		printError(out, "%v", err)
		return
	}
	printWatchSummary(out, r)
}

func printWatchSummary(w io.Writer, r *pipeline.Result) {
	rep := r.Report
	parts := []string{
		fmt.Sprintf("%d tasks", len(r.Tasks)),
		fmt.Sprintf("%d days", rep.ProjectDays),
		fmt.Sprintf("%d critical", len(rep.CriticalSet)),
	}
	if n := len(rep.Conflicts); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d conflicts", n)))
	}
	if n := len(rep.Cycles); n > 0 {
		parts = append(parts, StyleCritical.Render(fmt.Sprintf("%d cycles", n)))
	}
	if n := len(r.Risks); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d at risk", n)))
	}
	if n := len(rep.Warnings); n > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d warnings", n)))
	}
	printSuccess(w, "%s", strings.Join(parts, StyleDim.Render(" · ")))
	if len(rep.Path) > 0 {
		printDetail(w, "critical: %s", strings.Join(rep.Path, " "+iconArrow+" "))
	}
}
