package pipeline

import (
	"context"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/errors"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/mutate"
	"github.com/matzehuels/ganttsync/pkg/observability"
	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// Op names an edit understood by [Runner.Apply].
type Op string

const (
	OpToggleStatus    Op = "toggle-status"
	OpClearStatus     Op = "clear-status"
	OpToggleMilestone Op = "toggle-milestone"
	OpUpdate          Op = "update"
	OpSetDependencies Op = "set-dependencies"
	OpInsert          Op = "insert"
	OpDelete          Op = "delete"
	OpMove            Op = "move"
	OpDrag            Op = "drag"
	OpRenameSection   Op = "rename-section"
	OpAddSection      Op = "add-section"
	OpSetDirective    Op = "set-directive"
)

// Ops lists every edit in the order they are documented.
var Ops = []Op{
	OpToggleStatus, OpClearStatus, OpToggleMilestone, OpUpdate,
	OpSetDependencies, OpInsert, OpDelete, OpMove, OpDrag,
	OpRenameSection, OpAddSection, OpSetDirective,
}

// NeedsTask reports whether op acts on a single task.
func (op Op) NeedsTask() bool {
	switch op {
	case OpRenameSection, OpAddSection, OpSetDirective:
		return false
	}
	return true
}

// Edit is one edit request. Only the fields of the chosen Op are read.
type Edit struct {
	Op Op `json:"op"`

	// Task names the target by label or id. LineIndex, when set, pins the
	// line the caller saw; the label still has to match there.
	Task      string `json:"task,omitempty"`
	LineIndex *int   `json:"lineIndex,omitempty"`

	Status    gantt.Status    `json:"status,omitempty"`
	Milestone bool            `json:"milestone,omitempty"`
	Update    mutate.Update   `json:"update,omitzero"`
	After     []string        `json:"after,omitempty"`
	NewTask   mutate.NewTask  `json:"newTask,omitzero"`
	Cascade   bool            `json:"cascade,omitempty"`
	Section   string          `json:"section,omitempty"`
	NewName   string          `json:"newName,omitempty"`
	Keyword   string          `json:"keyword,omitempty"`
	Value     string          `json:"value,omitempty"`
	DeltaDays int             `json:"deltaDays,omitempty"`
	Mode      mutate.DragMode `json:"mode,omitempty"`
}

// Validate checks the fields the op needs. The mutators themselves ignore
// bad input; Validate turns it into errors for the outer surfaces.
func (e Edit) Validate() error {
	switch e.Op {
	case OpToggleStatus:
		if !gantt.IsStatus(string(e.Status)) {
			return errors.New(errors.ErrCodeInvalidInput, "status must be done, active or crit, got %q", e.Status)
		}
	case OpUpdate:
		if e.Update.IsEmpty() {
			return errors.New(errors.ErrCodeInvalidInput, "update has no fields")
		}
		if e.Update.StartDate != nil {
			if err := errors.ValidateDate("startDate", *e.Update.StartDate); err != nil {
				return err
			}
		}
		if e.Update.EndDate != nil {
			if err := errors.ValidateDate("endDate", *e.Update.EndDate); err != nil {
				return err
			}
		}
		if e.Update.Link != nil && *e.Update.Link != "" {
			if err := errors.ValidateURL(*e.Update.Link); err != nil {
				return err
			}
		}
	case OpInsert:
		if err := errors.ValidateDate("startDate", e.NewTask.StartDate); err != nil {
			return err
		}
		if err := errors.ValidateDate("endDate", e.NewTask.EndDate); err != nil {
			return err
		}
	case OpMove, OpAddSection:
		if strings.TrimSpace(e.Section) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "section is required")
		}
	case OpRenameSection:
		if strings.TrimSpace(e.Section) == "" || strings.TrimSpace(e.NewName) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "section and newName are required")
		}
	case OpSetDirective:
		if _, ok := gantt.CanonicalDirective(e.Keyword); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "unknown directive %q", e.Keyword)
		}
	case OpDrag:
		switch e.Mode {
		case mutate.DragMove, mutate.DragResizeStart, mutate.DragResizeEnd:
		default:
			return errors.New(errors.ErrCodeInvalidInput, "drag mode must be move, resize-start or resize-end, got %q", e.Mode)
		}
	case OpClearStatus, OpToggleMilestone, OpSetDependencies, OpDelete:
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown edit %q", e.Op)
	}
	if e.Op.NeedsTask() && strings.TrimSpace(e.Task) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "%s needs a task", e.Op)
	}
	return nil
}

// Apply validates and performs one edit on src. A task that cannot be found
// is an ErrCodeTaskNotFound error; a task that moved between lookup and edit
// is not, and yields an unchanged result like every mutator.
func (r *Runner) Apply(ctx context.Context, src string, e Edit) (mutate.Result, error) {
	if err := ctx.Err(); err != nil {
		return mutate.Result{}, err
	}
	if err := e.Validate(); err != nil {
		return mutate.Result{}, err
	}

	var (
		task     gantt.Task
		resolved []schedule.ResolvedTask
		tasks    []gantt.Task
	)
	if e.Op.NeedsTask() {
		p, err := r.Parse(ctx, src)
		if err != nil {
			return mutate.Result{}, err
		}
		tasks = p.Chart.Tasks
		resolved = p.Resolution.Tasks
		var ok bool
		if task, ok = FindTask(tasks, e.Task, e.LineIndex); !ok {
			return mutate.Result{}, errors.New(errors.ErrCodeTaskNotFound, "no task %q", e.Task)
		}
	}

	var res mutate.Result
	switch e.Op {
	case OpToggleStatus:
		res = mutate.ToggleStatus(src, task, e.Status)
	case OpClearStatus:
		res = mutate.ClearStatus(src, task)
	case OpToggleMilestone:
		res = mutate.ToggleMilestone(src, task, e.Milestone)
	case OpUpdate:
		res = mutate.UpdateTask(src, task, e.Update)
	case OpSetDependencies:
		res = mutate.UpdateDependency(src, task, e.After)
	case OpInsert:
		res = mutate.InsertTaskAfter(src, task, e.NewTask)
	case OpDelete:
		if e.Cascade {
			res = mutate.DeleteTaskAndReferences(src, tasks, resolved, task)
		} else {
			res = mutate.DeleteTask(src, task)
			if affected := mutate.FindAllDependentTasks(tasks, task); res.Changed && len(affected) > 0 {
				r.Logger.Warn("deleted task had dependents; their references now dangle",
					"task", task.Label, "affected", labels(affected))
			}
		}
	case OpMove:
		res = mutate.MoveTaskToSection(src, task, e.Section)
	case OpDrag:
		rt, ok := resolvedFor(resolved, task)
		if !ok || !rt.Resolved {
			return mutate.Result{}, errors.New(errors.ErrCodeInvalidInput, "task %q has no resolved dates to drag", task.Label)
		}
		res = mutate.DragTask(src, rt, e.DeltaDays, e.Mode)
	case OpRenameSection:
		res = mutate.RenameSection(src, e.Section, e.NewName)
	case OpAddSection:
		res = mutate.AddSection(src, e.Section)
	case OpSetDirective:
		res = mutate.SetDirective(src, e.Keyword, e.Value)
	}

	observability.Engine().OnMutate(ctx, string(e.Op), res.Changed, string(res.Notice))
	r.Logger.Debug("applied edit", "op", e.Op, "task", task.Label, "changed", res.Changed, "notice", res.Notice)
	return res, nil
}

// FindTask looks a task up by label or reference. With a line index the
// task on that line wins when its label or id matches ref.
func FindTask(tasks []gantt.Task, ref string, lineIndex *int) (gantt.Task, bool) {
	if lineIndex != nil {
		for _, t := range tasks {
			if t.LineIndex == *lineIndex && (strings.EqualFold(t.Label, strings.TrimSpace(ref)) || gantt.RefersTo(t, ref)) {
				return t, true
			}
		}
	}
	if t, ok := gantt.FindTaskByLabel(tasks, ref); ok {
		return t, true
	}
	return gantt.FindTaskByRef(tasks, ref)
}

func resolvedFor(resolved []schedule.ResolvedTask, t gantt.Task) (schedule.ResolvedTask, bool) {
	for _, rt := range resolved {
		if rt.LineIndex == t.LineIndex {
			return rt, true
		}
	}
	return schedule.ResolvedTask{}, false
}

func labels(tasks []gantt.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Label
	}
	return out
}
