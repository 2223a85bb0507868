// Package mutate applies structural edits to chart source text.
//
// Every mutator takes the current source and a previously parsed task,
// re-parses the source to find that task's live line, and splices whole
// lines. Lines the edit does not concern are returned byte for byte.
//
// # Locating Tasks
//
// A task is found at its recorded line index when the label there still
// matches; otherwise the first task with the same label (case-insensitive)
// is used. When neither works the edit is dropped and the source comes back
// unchanged with [Result.Changed] false. Mutators never return errors for
// such races.
//
// # Notices
//
// Some edits change meaning beyond the field that was touched: replacing an
// after-clause with a date, or anchoring a task that lost all its timing.
// Those set [Result.Notice] so callers can tell the user.
package mutate

import (
	"strings"
	"time"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/source"
)

// Notice flags an edit with side effects the caller should surface.
type Notice string

const (
	NoticeNone Notice = ""
	// NoticePromotedToExplicit: a task whose start came from another task
	// was given a fixed start date.
	NoticePromotedToExplicit Notice = "promoted-to-explicit"
	// NoticeAnchoredToday: a task lost its dependencies and was pinned to
	// today's date.
	NoticeAnchoredToday Notice = "anchored-today"
	// NoticeAnchoredResolved: a task lost its dependencies and was pinned to
	// its previously resolved start.
	NoticeAnchoredResolved Notice = "anchored-resolved"
)

var noticeMessages = map[Notice]string{
	NoticePromotedToExplicit: "Task now has a fixed date; its dependency was removed.",
	NoticeAnchoredToday:      "Task had no remaining dependencies and was anchored to today.",
	NoticeAnchoredResolved:   "Dependent tasks were anchored to their current start dates.",
}

// Message returns the user-facing text for n, or "".
func (n Notice) Message() string { return noticeMessages[n] }

// stronger keeps the most informative of two notices.
func (n Notice) stronger(o Notice) Notice {
	rank := map[Notice]int{NoticeNone: 0, NoticeAnchoredToday: 1, NoticeAnchoredResolved: 2, NoticePromotedToExplicit: 3}
	if rank[o] > rank[n] {
		return o
	}
	return n
}

// Result is the outcome of a mutator.
type Result struct {
	Source  string `json:"source"`
	Changed bool   `json:"changed"`
	Notice  Notice `json:"notice,omitempty"`
	// Target is the label of the task created or moved, when relevant.
	Target string `json:"target,omitempty"`
}

// now supplies today's date; tests replace it.
var now = time.Now

func today() string { return calendar.FormatISO(now()) }

func unchanged(src string) Result { return Result{Source: src} }

func changed(doc *source.Document, notice Notice) Result {
	return Result{Source: doc.String(), Changed: true, Notice: notice}
}

// locate re-parses src and returns the live counterpart of task.
func locate(src string, task gantt.Task) (gantt.Task, []gantt.Task, bool) {
	tasks := gantt.ParseTasks(src)
	i := indexOf(tasks, task)
	if i < 0 {
		return gantt.Task{}, tasks, false
	}
	return tasks[i], tasks, true
}

func indexOf(tasks []gantt.Task, task gantt.Task) int {
	for i, t := range tasks {
		if t.LineIndex == task.LineIndex && strings.EqualFold(t.Label, task.Label) {
			return i
		}
	}
	for i, t := range tasks {
		if strings.EqualFold(t.Label, strings.TrimSpace(task.Label)) {
			return i
		}
	}
	return -1
}

// editLine rewrites the line of task through fn. A rewrite that produces
// the same text reports no change.
func editLine(src string, task gantt.Task, fn func(live gantt.Task, tl *gantt.TaskLine) Notice) Result {
	live, _, ok := locate(src, task)
	if !ok {
		return unchanged(src)
	}
	doc := source.Split(src)
	line, _ := doc.Line(live.LineIndex)
	tl, ok := gantt.ParseTaskLine(line)
	if !ok {
		return unchanged(src)
	}
	notice := fn(live, &tl)
	out := tl.String()
	if out == line || !readsBack(out, tl.Label) {
		return unchanged(src)
	}
	doc.Replace(live.LineIndex, out)
	r := changed(doc, notice)
	r.Target = tl.Label
	return r
}

// readsBack reports whether line parses as a task declaration labelled
// label.
func readsBack(line, label string) bool {
	tl, ok := gantt.ParseTaskLine(line)
	return ok && tl.Label == label
}

// cleanText strips characters that would break the line grammar out of a
// free-text metadata value.
func cleanText(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ", "|", "/", "%%", "%").Replace(s)
	return strings.TrimSpace(s)
}

// cleanLabel additionally removes the colon that ends a label.
func cleanLabel(s string) string {
	return cleanText(strings.ReplaceAll(s, ":", " -"))
}
