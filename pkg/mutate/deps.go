package mutate

import (
	"slices"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
	"github.com/matzehuels/ganttsync/pkg/source"
)

// UpdateDependency rewrites the task's after-clause to refs, in order.
// Blank, duplicate and self references are dropped.
//
// Clearing the list of a task that has no explicit start anchors it to
// today's date (or its end date, if that is earlier) so that it keeps a
// defined schedule; the result carries NoticeAnchoredToday.
func UpdateDependency(src string, task gantt.Task, refs []string) Result {
	return editLine(src, task, func(live gantt.Task, tl *gantt.TaskLine) Notice {
		var clean []string
		for _, r := range refs {
			r = strings.TrimSpace(r)
			if r == "" || slices.Contains(clean, r) || gantt.RefersTo(live, r) {
				continue
			}
			clean = append(clean, r)
		}
		hadDeps := tl.HasAfter()
		tl.SetAfter(clean)
		if len(clean) > 0 || !hadDeps || tl.Start != "" {
			return NoticeNone
		}
		anchor := today()
		if calendar.IsISO(tl.End) && tl.End < anchor {
			anchor = tl.End
		}
		tl.Start = anchor
		return NoticeAnchoredToday
	})
}

// FindDependentTasks returns the tasks that name task in their after
// references, in source order.
func FindDependentTasks(tasks []gantt.Task, task gantt.Task) []gantt.Task {
	target := indexOf(tasks, task)
	if target < 0 {
		return nil
	}
	var out []gantt.Task
	for _, i := range directDependents(tasks, target) {
		out = append(out, tasks[i])
	}
	return out
}

// FindAllDependentTasks returns the transitive closure of
// FindDependentTasks, in source order, without task itself.
func FindAllDependentTasks(tasks []gantt.Task, task gantt.Task) []gantt.Task {
	target := indexOf(tasks, task)
	if target < 0 {
		return nil
	}
	seen := map[int]bool{target: true}
	queue := []int{target}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, i := range directDependents(tasks, curr) {
			if !seen[i] {
				seen[i] = true
				queue = append(queue, i)
			}
		}
	}
	var out []gantt.Task
	for i, t := range tasks {
		if seen[i] && i != target {
			out = append(out, t)
		}
	}
	return out
}

func directDependents(tasks []gantt.Task, target int) []int {
	var out []int
	for i, t := range tasks {
		if i == target {
			continue
		}
		for _, ref := range t.AfterDeps {
			if gantt.IndexOfRef(tasks, ref) == target {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// RemoveDependencyReferences strips every reference to task from the
// after-clauses of its direct dependents. A dependent left without
// references and without an explicit start is anchored at the start it
// resolved to before the edit (NoticeAnchoredResolved), or today when that
// is unknown (NoticeAnchoredToday).
//
// Call it before DeleteTask so no task is left without timing. tasks is the
// caller's parse and only serves to identify task; the source is re-parsed.
func RemoveDependencyReferences(src string, tasks []gantt.Task, resolved []schedule.ResolvedTask, task gantt.Task) Result {
	if i := indexOf(tasks, task); i >= 0 {
		task = tasks[i]
	}
	live, all, ok := locate(src, task)
	if !ok {
		return unchanged(src)
	}
	target := indexOf(all, live)
	deps := directDependents(all, target)
	if len(deps) == 0 {
		return unchanged(src)
	}

	doc := source.Split(src)
	notice := NoticeNone
	for _, i := range deps {
		dep := all[i]
		line, _ := doc.Line(dep.LineIndex)
		tl, ok := gantt.ParseTaskLine(line)
		if !ok {
			continue
		}
		var kept []string
		for _, ref := range tl.After() {
			if gantt.IndexOfRef(all, ref) != target {
				kept = append(kept, ref)
			}
		}
		tl.SetAfter(kept)
		if len(kept) == 0 && tl.Start == "" {
			if start := resolvedStart(resolved, dep); start != "" {
				tl.Start = start
				notice = notice.stronger(NoticeAnchoredResolved)
			} else {
				tl.Start = today()
				notice = notice.stronger(NoticeAnchoredToday)
			}
		}
		doc.Replace(dep.LineIndex, tl.String())
	}
	return changed(doc, notice)
}

func resolvedStart(resolved []schedule.ResolvedTask, t gantt.Task) string {
	plain := schedule.Resolution{Tasks: resolved}.Plain()
	if i := indexOf(plain, t); i >= 0 {
		return resolved[i].ResolvedStartDate
	}
	return ""
}

// DeleteTaskAndReferences detaches the task's dependents with
// RemoveDependencyReferences and then deletes it. The notice is the one
// the detaching produced.
func DeleteTaskAndReferences(src string, tasks []gantt.Task, resolved []schedule.ResolvedTask, task gantt.Task) Result {
	detached := RemoveDependencyReferences(src, tasks, resolved, task)
	r := DeleteTask(detached.Source, task)
	if !r.Changed {
		return unchanged(src)
	}
	r.Notice = detached.Notice
	return r
}
