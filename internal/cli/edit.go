package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttsync/pkg/gantt"
	gsio "github.com/matzehuels/ganttsync/pkg/io"
	"github.com/matzehuels/ganttsync/pkg/mutate"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
)

// editOpts holds the flags shared by every edit subcommand.
type editOpts struct {
	line   int    // 1-based line the task is expected on; 0 means anywhere
	dryRun bool   // print the edited source instead of writing it
	output string // write the edited source here instead of in place
}

// editCommand creates the edit command and its subcommands.
func (c *CLI) editCommand() *cobra.Command {
	opts := &editOpts{}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a chart file in place",
		Long: `Edit applies one change to a chart file. Only the lines the change concerns
are rewritten; everything else is kept byte for byte.

Tasks are named by label or id. When two tasks share a label, --line picks
the one on that line.

Some edits change more than the field they touch, for example setting a
start date on a task that follows another. Those are reported as notices.`,
	}

	cmd.PersistentFlags().IntVar(&opts.line, "line", 0, "line number the task is on (1-based)")
	cmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "print the edited chart instead of writing it")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "write the edited chart to this file")

	cmd.AddCommand(c.editStatusCommand(opts))
	cmd.AddCommand(c.editClearStatusCommand(opts))
	cmd.AddCommand(c.editMilestoneCommand(opts))
	cmd.AddCommand(c.editUpdateCommand(opts))
	cmd.AddCommand(c.editDepsCommand(opts))
	cmd.AddCommand(c.editInsertCommand(opts))
	cmd.AddCommand(c.editDeleteCommand(opts))
	cmd.AddCommand(c.editMoveCommand(opts))
	cmd.AddCommand(c.editDragCommand(opts))
	cmd.AddCommand(c.editRenameSectionCommand(opts))
	cmd.AddCommand(c.editAddSectionCommand(opts))
	cmd.AddCommand(c.editSetCommand(opts))

	return cmd
}

// =============================================================================
// Status
// =============================================================================

func (c *CLI) editStatusCommand(opts *editOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "status FILE TASK done|active|crit",
		Short: "Toggle a status tag on a task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{
				Op:     pipeline.OpToggleStatus,
				Task:   args[1],
				Status: gantt.Status(strings.ToLower(args[2])),
			})
		},
	}
}

func (c *CLI) editClearStatusCommand(opts *editOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-status FILE TASK",
		Short: "Remove done, active and crit from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{Op: pipeline.OpClearStatus, Task: args[1]})
		},
	}
}

func (c *CLI) editMilestoneCommand(opts *editOpts) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "milestone FILE TASK",
		Short: "Turn a task into a milestone, or back with --off",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{
				Op:        pipeline.OpToggleMilestone,
				Task:      args[1],
				Milestone: !off,
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "clear the milestone marker")
	return cmd
}

// =============================================================================
// Fields and Dependencies
// =============================================================================

func (c *CLI) editUpdateCommand(opts *editOpts) *cobra.Command {
	var (
		patch    string
		label    string
		start    string
		end      string
		duration int
		assignee string
		notes    string
		link     string
		progress int
	)

	cmd := &cobra.Command{
		Use:   "update FILE TASK",
		Short: "Change a task's label, dates, duration or metadata",
		Long: `Update patches fields of one task. Fields come from flags, from a JSON
patch file (--patch, "-" for stdin), or both; flags win.

Setting --start on a task that follows another replaces the dependency with
the date. --end wins over --duration. A negative --progress removes it.

Patch example:

  {"startDate": "2024-03-01", "durationDays": 5, "assignee": "ana"}`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u mutate.Update
			if patch != "" {
				var err error
				if u, err = decodePatchFile(c.stdin, patch, gsio.DecodeUpdate); err != nil {
					return err
				}
			}
			f := cmd.Flags()
			if f.Changed("label") {
				u.Label = &label
			}
			if f.Changed("start") {
				u.StartDate = &start
			}
			if f.Changed("end") {
				u.EndDate = &end
			}
			if f.Changed("duration") {
				u.DurationDays = &duration
			}
			if f.Changed("assignee") {
				u.Assignee = &assignee
			}
			if f.Changed("notes") {
				u.Notes = &notes
			}
			if f.Changed("link") {
				u.Link = &link
			}
			if f.Changed("progress") {
				u.Progress = &progress
			}
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{Op: pipeline.OpUpdate, Task: args[1], Update: u})
		},
	}

	cmd.Flags().StringVar(&patch, "patch", "", "JSON patch file (\"-\" for stdin)")
	cmd.Flags().StringVar(&label, "label", "", "new label")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in days")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee (empty removes)")
	cmd.Flags().StringVar(&notes, "notes", "", "notes (empty removes)")
	cmd.Flags().StringVar(&link, "link", "", "link URL (empty removes)")
	cmd.Flags().IntVar(&progress, "progress", 0, "progress percentage (negative removes)")
	return cmd
}

func (c *CLI) editDepsCommand(opts *editOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "deps FILE TASK [REF...]",
		Short: "Replace the tasks a task follows",
		Long: `Deps rewrites a task's after-clause to the given references, in order.
With no references the clause is removed; a task left without any timing
is anchored to today.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{
				Op:    pipeline.OpSetDependencies,
				Task:  args[1],
				After: args[2:],
			})
		},
	}
}

// =============================================================================
// Structure
// =============================================================================

func (c *CLI) editInsertCommand(opts *editOpts) *cobra.Command {
	var (
		patch string
		nt    mutate.NewTask
		after []string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "insert FILE ANCHOR",
		Short: "Insert a new task below another",
		Long: `Insert adds a task directly below ANCHOR, in the same section. Without
dates the new task follows the anchor and lasts one day. Ids and labels
already in use get a numeric suffix.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := nt
			if patch != "" {
				decoded, err := decodePatchFile(c.stdin, patch, gsio.DecodeNewTask)
				if err != nil {
					return err
				}
				task = mergeNewTask(decoded, nt)
			}
			if len(after) > 0 {
				task.After = after
			}
			for _, s := range tags {
				task.Status = append(task.Status, gantt.Status(strings.ToLower(s)))
			}
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{Op: pipeline.OpInsert, Task: args[1], NewTask: task})
		},
	}

	cmd.Flags().StringVar(&patch, "patch", "", "JSON task file (\"-\" for stdin)")
	cmd.Flags().StringVar(&nt.Label, "label", "", "label (default \""+mutate.DefaultNewLabel+"\")")
	cmd.Flags().StringVar(&nt.ID, "id", "", "task id")
	cmd.Flags().StringVar(&nt.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&nt.EndDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&nt.DurationDays, "duration", 0, "duration in days")
	cmd.Flags().StringSliceVar(&after, "after", nil, "tasks to follow (repeatable)")
	cmd.Flags().StringSliceVar(&tags, "status", nil, "status tags: done, active, crit (repeatable)")
	cmd.Flags().StringVar(&nt.Assignee, "assignee", "", "assignee")
	return cmd
}

// mergeNewTask overlays the non-zero fields of flags on a decoded task.
func mergeNewTask(base, flags mutate.NewTask) mutate.NewTask {
	if flags.Label != "" {
		base.Label = flags.Label
	}
	if flags.ID != "" {
		base.ID = flags.ID
	}
	if flags.StartDate != "" {
		base.StartDate = flags.StartDate
	}
	if flags.EndDate != "" {
		base.EndDate = flags.EndDate
	}
	if flags.DurationDays != 0 {
		base.DurationDays = flags.DurationDays
	}
	if flags.Assignee != "" {
		base.Assignee = flags.Assignee
	}
	return base
}

func (c *CLI) editDeleteCommand(opts *editOpts) *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "delete FILE TASK",
		Short: "Delete a task and its click lines",
		Long: `Delete removes a task line and the click lines that only target it.

With --cascade the tasks that follow it are detached first and anchored to
the dates they resolved to, so none of them is left without timing.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{Op: pipeline.OpDelete, Task: args[1], Cascade: cascade})
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "detach dependent tasks first")
	return cmd
}

func (c *CLI) editMoveCommand(opts *editOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "move FILE TASK SECTION",
		Short: "Move a task to the end of a section",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{Op: pipeline.OpMove, Task: args[1], Section: args[2]})
		},
	}
}

func (c *CLI) editDragCommand(opts *editOpts) *cobra.Command {
	var (
		days int
		mode string
	)
	cmd := &cobra.Command{
		Use:   "drag FILE TASK --days N",
		Short: "Shift a task, or one of its edges, by N days",
		Long: `Drag shifts a task like a pointer drag on a timeline would. --mode move
shifts both dates, resize-start and resize-end move one edge. A task that
follows another gets an explicit start date.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{
				Op:        pipeline.OpDrag,
				Task:      args[1],
				DeltaDays: days,
				Mode:      mutate.DragMode(mode),
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days to shift (negative moves earlier)")
	cmd.Flags().StringVar(&mode, "mode", string(mutate.DragMove), "move, resize-start or resize-end")
	_ = cmd.MarkFlagRequired("days")
	return cmd
}

func (c *CLI) editRenameSectionCommand(opts *editOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-section FILE OLD NEW",
		Short: "Rename a section",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{Op: pipeline.OpRenameSection, Section: args[1], NewName: args[2]})
		},
	}
}

func (c *CLI) editAddSectionCommand(opts *editOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "add-section FILE NAME",
		Short: "Append an empty section",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args[0], opts, pipeline.Edit{Op: pipeline.OpAddSection, Section: args[1]})
		},
	}
}

func (c *CLI) editSetCommand(opts *editOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "set FILE DIRECTIVE [VALUE]",
		Short: "Set or remove a chart directive",
		Long: `Set writes a directive such as title, dateFormat, excludes, weekend or
todayMarker. Without VALUE the directive is removed.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := pipeline.Edit{Op: pipeline.OpSetDirective, Keyword: args[1]}
			if len(args) == 3 {
				e.Value = args[2]
			}
			return c.runEdit(cmd, args[0], opts, e)
		},
	}
}

// =============================================================================
// Execution
// =============================================================================

// runEdit applies e to the file and writes the result back, or prints it
// for --dry-run and for stdin input.
func (c *CLI) runEdit(cmd *cobra.Command, path string, opts *editOpts, e pipeline.Edit) error {
	if opts.line > 0 {
		idx := opts.line - 1
		e.LineIndex = &idx
	}
	if err := e.Validate(); err != nil {
		return err
	}

	src, err := c.readSource(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cmd.Context())
	if err != nil {
		return err
	}
	defer runner.Close()

	r, err := runner.Apply(cmd.Context(), src, e)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.dryRun || (path == "-" && opts.output == "") {
		_, err := io.WriteString(out, r.Source)
		return err
	}

	what := describeEdit(e)
	if !r.Changed {
		printEditResult(out, what, r)
		return nil
	}
	dest := path
	if opts.output != "" {
		dest = opts.output
	}
	if err := gsio.WriteSource(dest, r.Source); err != nil {
		return err
	}
	printEditResult(out, what, r)
	printFile(out, dest)
	return nil
}

// describeEdit names an edit for status output.
func describeEdit(e pipeline.Edit) string {
	switch e.Op {
	case pipeline.OpToggleStatus:
		return fmt.Sprintf("Toggled %s on %q", e.Status, e.Task)
	case pipeline.OpClearStatus:
		return fmt.Sprintf("Cleared status of %q", e.Task)
	case pipeline.OpToggleMilestone:
		if e.Milestone {
			return fmt.Sprintf("Marked %q as milestone", e.Task)
		}
		return fmt.Sprintf("Unmarked milestone %q", e.Task)
	case pipeline.OpUpdate:
		return fmt.Sprintf("Updated %q", e.Task)
	case pipeline.OpSetDependencies:
		return fmt.Sprintf("Set dependencies of %q", e.Task)
	case pipeline.OpInsert:
		return fmt.Sprintf("Inserted task after %q", e.Task)
	case pipeline.OpDelete:
		return fmt.Sprintf("Deleted %q", e.Task)
	case pipeline.OpMove:
		return fmt.Sprintf("Moved %q to %q", e.Task, e.Section)
	case pipeline.OpDrag:
		return fmt.Sprintf("Dragged %q by %d days", e.Task, e.DeltaDays)
	case pipeline.OpRenameSection:
		return fmt.Sprintf("Renamed section %q", e.Section)
	case pipeline.OpAddSection:
		return fmt.Sprintf("Added section %q", e.Section)
	case pipeline.OpSetDirective:
		return fmt.Sprintf("Set %s", e.Keyword)
	}
	return string(e.Op)
}

// decodePatchFile opens path ("-" for stdin) and decodes it with decode.
func decodePatchFile[T any](stdin io.Reader, path string, decode func(io.Reader) (T, error)) (T, error) {
	if path == "-" {
		return decode(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("open patch: %w", err)
	}
	defer f.Close()
	return decode(f)
}
