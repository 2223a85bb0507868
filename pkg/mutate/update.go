package mutate

import (
	"strconv"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// Update is a partial edit of one task. Nil fields are left alone.
type Update struct {
	Label        *string `json:"label,omitempty"`
	StartDate    *string `json:"startDate,omitempty"`
	EndDate      *string `json:"endDate,omitempty"`
	DurationDays *int    `json:"durationDays,omitempty"`
	Assignee     *string `json:"assignee,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	Link         *string `json:"link,omitempty"`
	// Progress sets the percentage; a negative value removes it.
	Progress *int `json:"progress,omitempty"`
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool { return u == Update{} }

// UpdateTask patches fields on the task's own line.
//
// A start date on a task that had none pins it: an after-clause in the
// start slot is dropped, and a duration-only task stops following the task
// above it. The result then carries NoticePromotedToExplicit. An end date
// wins over a duration when both are given. Invalid dates are ignored.
func UpdateTask(src string, task gantt.Task, u Update) Result {
	if u.IsEmpty() {
		return unchanged(src)
	}
	return editLine(src, task, func(live gantt.Task, tl *gantt.TaskLine) Notice {
		notice := NoticeNone
		if u.Label != nil {
			if l := cleanLabel(*u.Label); l != "" {
				tl.Label = l
			}
		}
		if u.StartDate != nil && calendar.IsISO(*u.StartDate) {
			if live.StartDate == "" {
				notice = NoticePromotedToExplicit
			}
			tl.Start = *u.StartDate
		}
		switch {
		case u.EndDate != nil && calendar.IsISO(*u.EndDate):
			tl.End = *u.EndDate
		case u.DurationDays != nil && *u.DurationDays >= 0:
			tl.End = gantt.FormatDuration(*u.DurationDays)
		}
		if u.Assignee != nil {
			tl.SetMeta(gantt.MetaAssignee, gantt.NormalizeAssignee(cleanText(*u.Assignee)))
		}
		if u.Notes != nil {
			tl.SetMeta(gantt.MetaNotes, cleanText(*u.Notes))
		}
		if u.Link != nil {
			tl.SetMeta(gantt.MetaLink, cleanText(*u.Link))
		}
		if u.Progress != nil {
			if p := *u.Progress; p < 0 {
				tl.SetMeta(gantt.MetaProgress, "")
			} else {
				tl.SetMeta(gantt.MetaProgress, strconv.Itoa(min(p, 100)))
			}
		}
		return notice
	})
}

// DragMode selects what a drag gesture changes.
type DragMode string

const (
	DragMove        DragMode = "move"
	DragResizeStart DragMode = "resize-start"
	DragResizeEnd   DragMode = "resize-end"
)

// DragTask shifts a resolved task by deltaDays calendar days. Moving keeps
// the length; resizing moves one edge and never lets it cross the other.
// Dragging a task whose start came from an after-clause or from the task
// above it promotes it to an explicit date. Resizing the end of a
// duration-only task pins its start too, since a lone date would read as a
// start.
func DragTask(src string, task schedule.ResolvedTask, deltaDays int, mode DragMode) Result {
	if deltaDays == 0 || !task.Resolved {
		return unchanged(src)
	}
	start, end := task.ResolvedStartDate, task.ResolvedEndDate
	var u Update

	switch mode {
	case DragMove:
		s := calendar.ShiftISODate(start, deltaDays)
		u.StartDate = &s
		if task.EndDate != "" && !task.IsMilestone {
			e := calendar.ShiftISODate(end, deltaDays)
			u.EndDate = &e
		}
	case DragResizeStart:
		s := calendar.ShiftISODate(start, deltaDays)
		if s > end {
			s = end
		}
		u.StartDate = &s
		u.EndDate = &end
	case DragResizeEnd:
		e := calendar.ShiftISODate(end, deltaDays)
		if e < start {
			e = start
		}
		u.EndDate = &e
		if task.StartDate == "" && len(task.AfterDeps) == 0 {
			u.StartDate = &start
		}
	default:
		return unchanged(src)
	}
	return UpdateTask(src, task.Task, u)
}
