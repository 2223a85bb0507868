package mutate

import (
	"strconv"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/source"
)

// NewTask describes a task created by InsertTaskAfter. Zero fields take
// defaults derived from the anchor.
type NewTask struct {
	Label        string         `json:"label,omitempty"`
	ID           string         `json:"id,omitempty"`
	StartDate    string         `json:"startDate,omitempty"`
	EndDate      string         `json:"endDate,omitempty"`
	DurationDays int            `json:"durationDays,omitempty"`
	After        []string       `json:"after,omitempty"`
	Status       []gantt.Status `json:"status,omitempty"`
	Assignee     string         `json:"assignee,omitempty"`
}

// DefaultNewLabel is used when NewTask.Label is empty.
const DefaultNewLabel = "New task"

// InsertTaskAfter inserts a task line directly below anchor, with the same
// indent and therefore in the same section.
//
// The id is the requested one, or the anchor's id (or derived id) followed
// by "_2", "_3"... until unused. A label already in use gets " 2", " 3"...
// appended. Without a start date or references the task follows the
// anchor; without an end it lasts one day.
func InsertTaskAfter(src string, anchor gantt.Task, nt NewTask) Result {
	live, tasks, ok := locate(src, anchor)
	if !ok {
		return unchanged(src)
	}

	base := gantt.DeriveID(live.Label)
	if live.IDToken != "" {
		base = live.IDToken
	}
	var id string
	if want := strings.TrimSpace(nt.ID); want != "" && gantt.IndexOfRef(tasks, want) < 0 && !strings.ContainsAny(want, ", \t") {
		id = want
	} else {
		for n := 2; ; n++ {
			if id = base + "_" + strconv.Itoa(n); gantt.IndexOfRef(tasks, id) < 0 {
				break
			}
		}
	}

	label := cleanLabel(nt.Label)
	if label == "" {
		label = DefaultNewLabel
	}
	if _, taken := gantt.FindTaskByLabel(tasks, label); taken {
		for n := 2; ; n++ {
			candidate := label + " " + strconv.Itoa(n)
			if _, taken := gantt.FindTaskByLabel(tasks, candidate); !taken {
				label = candidate
				break
			}
		}
	}

	tl := gantt.TaskLine{Indent: live.Indent, Label: label, Sep: " :", ID: id}
	for _, s := range nt.Status {
		if gantt.IsStatus(string(s)) {
			tl.AddTag(strings.ToLower(string(s)))
		}
	}
	if calendar.IsISO(nt.StartDate) {
		tl.Start = nt.StartDate
	}
	tl.SetAfter(nt.After)
	switch {
	case calendar.IsISO(nt.EndDate):
		tl.End = nt.EndDate
	case nt.DurationDays > 0:
		tl.End = gantt.FormatDuration(nt.DurationDays)
	}
	if tl.Start == "" {
		tl.SetAfter([]string{base})
	}
	if tl.End == "" {
		tl.End = "1d"
	}
	if a := gantt.NormalizeAssignee(cleanText(nt.Assignee)); a != "" {
		tl.SetMeta(gantt.MetaAssignee, a)
	}

	out := tl.String()
	if !readsBack(out, label) {
		return unchanged(src)
	}
	doc := source.Split(src)
	doc.Insert(live.LineIndex+1, out)
	r := changed(doc, NoticeNone)
	r.Target = label
	return r
}

// DeleteTask removes the task line and the click lines that target only
// this task. Dependents are not touched; see RemoveDependencyReferences.
func DeleteTask(src string, task gantt.Task) Result {
	live, _, ok := locate(src, task)
	if !ok {
		return unchanged(src)
	}
	doc := source.Split(src)
	drop := []int{live.LineIndex}
	for _, i := range live.LinkLines {
		line, _ := doc.Line(i)
		if ids, ok := gantt.IsClickLine(line); ok && len(ids) == 1 {
			drop = append(drop, i)
		}
	}
	doc.DeleteSet(drop...)
	r := changed(doc, NoticeNone)
	r.Target = live.Label
	return r
}

// MoveTaskToSection moves the task line to the end of the named section's
// block, creating the section at the end of the document when it does not
// exist. The line itself is moved verbatim.
func MoveTaskToSection(src string, task gantt.Task, section string) Result {
	section = cleanText(section)
	live, _, ok := locate(src, task)
	if !ok || section == "" || strings.EqualFold(live.Section, section) {
		return unchanged(src)
	}

	doc := source.Split(src)
	line, _ := doc.Line(live.LineIndex)
	doc.Delete(live.LineIndex, 1)

	lines := doc.Lines()
	header := -1
	for i, l := range lines {
		if name, ok := gantt.SectionHeader(l); ok && strings.EqualFold(name, section) {
			header = i
			break
		}
	}
	if header < 0 {
		hl, ok := sectionLine(sectionIndent(lines), section)
		if !ok {
			return unchanged(src)
		}
		doc.Append(hl, line)
	} else {
		doc.Insert(blockEnd(lines, header), line)
	}
	r := changed(doc, NoticeNone)
	r.Target = live.Label
	return r
}

// blockEnd returns the index just past the last content line of the
// section starting at header. Trailing blank and click lines stay below.
func blockEnd(lines []string, header int) int {
	end := len(lines)
	for i := header + 1; i < len(lines); i++ {
		if _, ok := gantt.SectionHeader(lines[i]); ok {
			end = i
			break
		}
	}
	for end > header+1 {
		l := lines[end-1]
		if _, click := gantt.IsClickLine(l); strings.TrimSpace(l) != "" && !click {
			break
		}
		end--
	}
	return end
}

// sectionLine renders a section header and reports whether it reads back
// as a header for name.
func sectionLine(indent, name string) (string, bool) {
	l := indent + "section " + name
	got, ok := gantt.SectionHeader(l)
	return l, ok && got == name
}

func sectionIndent(lines []string) string {
	for _, l := range lines {
		if _, ok := gantt.SectionHeader(l); ok {
			return source.Indent(l)
		}
	}
	for _, l := range lines {
		if _, ok := gantt.ParseTaskLine(l); ok {
			return source.Indent(l)
		}
	}
	return "    "
}

// RenameSection rewrites every header named oldName (case-insensitive).
// Task lines do not repeat their section, so nothing else changes.
func RenameSection(src, oldName, newName string) Result {
	newName = cleanText(newName)
	if newName == "" {
		return unchanged(src)
	}
	doc := source.Split(src)
	touched := false
	for i, l := range doc.Lines() {
		name, ok := gantt.SectionHeader(l)
		if !ok || !strings.EqualFold(name, strings.TrimSpace(oldName)) {
			continue
		}
		out, ok := sectionLine(source.Indent(l), newName)
		if !ok {
			return unchanged(src)
		}
		if out != l {
			doc.Replace(i, out)
			touched = true
		}
	}
	if !touched {
		return unchanged(src)
	}
	r := changed(doc, NoticeNone)
	r.Target = newName
	return r
}

// AddSection appends an empty section header unless one with the same name
// exists.
func AddSection(src, name string) Result {
	name = cleanText(name)
	if name == "" {
		return unchanged(src)
	}
	for _, s := range gantt.GetSections(src) {
		if strings.EqualFold(s.Name, name) {
			return unchanged(src)
		}
	}
	doc := source.Split(src)
	hl, ok := sectionLine(sectionIndent(doc.Lines()), name)
	if !ok {
		return unchanged(src)
	}
	doc.Append(hl)
	r := changed(doc, NoticeNone)
	r.Target = name
	return r
}

// SetDirective sets a chart directive. The first existing line for the
// keyword is rewritten and any repeats are removed; a missing directive is
// inserted before the first section or task. An empty value removes every
// line of the directive.
func SetDirective(src, keyword, value string) Result {
	kw, ok := gantt.CanonicalDirective(keyword)
	if !ok {
		return unchanged(src)
	}
	value = cleanText(value)
	doc := source.Split(src)
	lines := doc.Lines()

	var found []int
	for i, l := range lines {
		if k, _, ok := gantt.DirectiveOf(l); ok && k == kw {
			found = append(found, i)
		}
	}

	if value == "" {
		if len(found) == 0 {
			return unchanged(src)
		}
		doc.DeleteSet(found...)
		return changed(doc, NoticeNone)
	}

	if len(found) > 0 {
		first := found[0]
		out := source.Indent(lines[first]) + kw + " " + value
		if out == lines[first] && len(found) == 1 {
			return unchanged(src)
		}
		doc.Replace(first, out)
		doc.DeleteSet(found[1:]...)
		return changed(doc, NoticeNone)
	}

	at := directiveInsertAt(lines)
	indent := "    "
	if at < len(lines) && strings.TrimSpace(lines[at]) != "" {
		indent = source.Indent(lines[at])
	}
	doc.Insert(at, indent+kw+" "+value)
	return changed(doc, NoticeNone)
}

// directiveInsertAt returns the index of the first section or task line, or
// the index after the "gantt" header when there is neither.
func directiveInsertAt(lines []string) int {
	header := -1
	for i, l := range lines {
		if header < 0 && strings.EqualFold(strings.TrimSpace(l), "gantt") {
			header = i
		}
		if _, ok := gantt.SectionHeader(l); ok {
			return i
		}
		if _, ok := gantt.ParseTaskLine(l); ok {
			return i
		}
	}
	if header >= 0 {
		return header + 1
	}
	return len(lines)
}
