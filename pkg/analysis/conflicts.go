package analysis

import (
	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
)

// Conflict records an explicit start that falls before the end of a task
// it depends on.
type Conflict struct {
	TaskLabel   string `json:"taskLabel" yaml:"taskLabel"`
	DepLabel    string `json:"depLabel" yaml:"depLabel"`
	OverlapDays int    `json:"overlapDays" yaml:"overlapDays"`
}

// DetectConflicts checks every task with an explicit start date against
// the resolved end of each dependency. Equal dates are not a conflict.
func DetectConflicts(tasks []schedule.ResolvedTask) []Conflict {
	pt := plain(tasks)
	conflicts := []Conflict{}
	for i, t := range pt {
		if t.IsVertMarker || t.StartDate == "" {
			continue
		}
		seen := make(map[int]bool)
		for _, ref := range t.AfterDeps {
			j := gantt.IndexOfRef(pt, ref)
			if j < 0 || j == i || seen[j] || pt[j].IsVertMarker {
				continue
			}
			seen[j] = true
			end := tasks[j].ResolvedEndDate
			if end == "" {
				continue
			}
			if overlap := calendar.DaysBetween(t.StartDate, end); overlap > 0 {
				conflicts = append(conflicts, Conflict{
					TaskLabel:   t.Label,
					DepLabel:    pt[j].Label,
					OverlapDays: overlap,
				})
			}
		}
	}
	return conflicts
}
