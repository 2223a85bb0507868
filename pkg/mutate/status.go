package mutate

import (
	"strings"

	"github.com/matzehuels/ganttsync/pkg/gantt"
)

// ToggleStatus adds status to the task line, or removes it when present.
func ToggleStatus(src string, task gantt.Task, status gantt.Status) Result {
	if !gantt.IsStatus(string(status)) {
		return unchanged(src)
	}
	tag := strings.ToLower(string(status))
	return editLine(src, task, func(_ gantt.Task, tl *gantt.TaskLine) Notice {
		if tl.HasTag(tag) {
			tl.RemoveTag(tag)
		} else {
			tl.AddTag(tag)
		}
		return NoticeNone
	})
}

// ClearStatus removes done, active and crit from the task line.
func ClearStatus(src string, task gantt.Task) Result {
	return editLine(src, task, func(_ gantt.Task, tl *gantt.TaskLine) Notice {
		for _, s := range gantt.Statuses {
			tl.RemoveTag(string(s))
		}
		return NoticeNone
	})
}

// ToggleMilestone sets or clears the milestone marker. Becoming a milestone
// replaces any end date or duration with "0d"; leaving it turns "0d" into
// "1d".
func ToggleMilestone(src string, task gantt.Task, isMilestone bool) Result {
	return editLine(src, task, func(_ gantt.Task, tl *gantt.TaskLine) Notice {
		if isMilestone {
			tl.AddTag(gantt.TagMilestone)
			if tl.Start != "" || tl.End != "" {
				tl.End = "0d"
			}
			return NoticeNone
		}
		tl.RemoveTag(gantt.TagMilestone)
		if d, ok := gantt.ParseDuration(tl.End); ok && d == 0 {
			tl.End = "1d"
		}
		return NoticeNone
	})
}
