package gantt

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/calendar"
)

// Tag keywords that may lead a task's item list.
const (
	TagMilestone = "milestone"
	TagVert      = "vert"
)

// Metadata keys understood by the parser. Other keys round-trip untouched.
const (
	MetaAssignee = "assignee"
	MetaNotes    = "notes"
	MetaLink     = "link"
	MetaProgress = "progress"
)

var (
	durationRe = regexp.MustCompile(`^(\d+)([dw])$`)
	afterRe    = regexp.MustCompile(`(?i)^after\s+(.+)$`)
)

// MetaField is one "key: value" pair of trailing metadata. A segment that is
// not of that form is kept with an empty Key and its text in Value.
type MetaField struct {
	Key   string
	Value string
}

// TaskLine is the editable form of a single task declaration.
//
// ParseTaskLine followed by String reproduces a canonically formatted line;
// fields a caller leaves alone keep their original text.
type TaskLine struct {
	Indent string
	Label  string
	Sep    string   // text between label and first item, including the colon
	Tags   []string // leading status and marker items, in order
	ID     string
	Start  string // raw start item: ISO date or "after a b"
	End    string // raw end item: ISO date or duration
	Extra  []string
	Meta   []MetaField
}

// ParseTaskLine splits a task declaration. It reports false for lines that
// are not task declarations.
func ParseTaskLine(line string) (TaskLine, bool) {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	body := line[len(indent):]
	if body == "" || strings.HasPrefix(body, "%%") || IsKeywordLine(body) {
		return TaskLine{}, false
	}
	colon := strings.IndexByte(body, ':')
	if colon <= 0 {
		return TaskLine{}, false
	}
	label := strings.TrimRight(body[:colon], " \t")
	if label == "" {
		return TaskLine{}, false
	}
	rest := body[colon+1:]
	sepEnd := colon + 1 + len(rest) - len(strings.TrimLeft(rest, " \t"))
	tl := TaskLine{
		Indent: indent,
		Label:  label,
		Sep:    body[len(label):sepEnd],
	}
	rest = body[sepEnd:]

	itemsPart, metaPart, hasMeta := strings.Cut(rest, "%%")
	if hasMeta {
		tl.Meta = parseMeta(metaPart)
	}

	var items []string
	for _, it := range strings.Split(itemsPart, ",") {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	for len(items) > 0 && isTag(items[0]) {
		tl.Tags = append(tl.Tags, strings.ToLower(items[0]))
		items = items[1:]
	}
	if len(items) > 0 && !IsTimingItem(items[0]) {
		tl.ID = items[0]
		items = items[1:]
	}
	switch {
	case len(items) == 1:
		if calendar.IsISO(items[0]) || afterRe.MatchString(items[0]) {
			tl.Start = items[0]
		} else {
			tl.End = items[0]
		}
	case len(items) >= 2:
		tl.Start, tl.End = items[0], items[1]
		if len(items) > 2 {
			tl.Extra = items[2:]
		}
	}
	return tl, true
}

// IsTimingItem reports whether item is a date, an after-clause or a duration.
func IsTimingItem(item string) bool {
	return calendar.IsISO(item) || afterRe.MatchString(item) || durationRe.MatchString(item)
}

// ParseDuration converts "3d" or "2w" into days.
func ParseDuration(item string) (int, bool) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(item))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if m[2] == "w" {
		n *= 7
	}
	return n, true
}

// FormatDuration renders a day count as a duration item.
func FormatDuration(days int) string {
	return strconv.Itoa(max(days, 0)) + "d"
}

func isTag(item string) bool {
	s := strings.ToLower(item)
	return IsStatus(s) || s == TagMilestone || s == TagVert
}

func parseMeta(s string) []MetaField {
	var fields []MetaField
	for _, seg := range strings.Split(s, "|") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, value, ok := strings.Cut(seg, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.ContainsAny(key, " \t") {
			fields = append(fields, MetaField{Value: seg})
			continue
		}
		fields = append(fields, MetaField{Key: strings.ToLower(key), Value: strings.TrimSpace(value)})
	}
	return fields
}

// After returns the references of every after-clause on the line. The
// clause normally occupies the start slot; an explicitly dated task may
// carry one as a trailing item.
func (l TaskLine) After() []string {
	var refs []string
	for _, item := range l.timingItems() {
		if m := afterRe.FindStringSubmatch(item); m != nil {
			refs = append(refs, strings.Fields(m[1])...)
		}
	}
	return refs
}

func (l TaskLine) timingItems() []string {
	return append([]string{l.Start, l.End}, l.Extra...)
}

// SetAfter replaces all after-clauses with one listing refs. The clause goes
// into the start slot unless that slot holds an explicit date. An empty
// list removes the clauses.
func (l *TaskLine) SetAfter(refs []string) {
	if afterRe.MatchString(l.Start) {
		l.Start = ""
	}
	if afterRe.MatchString(l.End) {
		l.End = ""
	}
	l.Extra = slices.DeleteFunc(l.Extra, afterRe.MatchString)
	if len(l.Extra) == 0 {
		l.Extra = nil
	}
	if len(refs) == 0 {
		return
	}
	clause := "after " + strings.Join(refs, " ")
	if l.Start == "" {
		l.Start = clause
		return
	}
	l.Extra = append(l.Extra, clause)
}

// HasAfter reports whether the line carries an after-clause.
func (l TaskLine) HasAfter() bool { return len(l.After()) > 0 }

// HasTag reports whether tag leads the item list.
func (l TaskLine) HasTag(tag string) bool { return slices.Contains(l.Tags, tag) }

// AddTag appends tag unless present. Status tags are kept ahead of the
// milestone and vert markers.
func (l *TaskLine) AddTag(tag string) {
	if l.HasTag(tag) {
		return
	}
	if IsStatus(tag) {
		if i := slices.IndexFunc(l.Tags, func(t string) bool { return !IsStatus(t) }); i >= 0 {
			l.Tags = slices.Insert(l.Tags, i, tag)
			return
		}
	}
	l.Tags = append(l.Tags, tag)
}

// RemoveTag drops every occurrence of tag.
func (l *TaskLine) RemoveTag(tag string) {
	l.Tags = slices.DeleteFunc(l.Tags, func(t string) bool { return t == tag })
}

// MetaValue returns the value stored under key.
func (l TaskLine) MetaValue(key string) (string, bool) {
	for _, f := range l.Meta {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// SetMeta stores value under key, replacing an existing field in place.
// An empty value removes the field.
func (l *TaskLine) SetMeta(key, value string) {
	key = strings.ToLower(key)
	if value == "" {
		l.Meta = slices.DeleteFunc(l.Meta, func(f MetaField) bool { return f.Key == key })
		return
	}
	for i := range l.Meta {
		if l.Meta[i].Key == key {
			l.Meta[i].Value = value
			return
		}
	}
	l.Meta = append(l.Meta, MetaField{Key: key, Value: value})
}

// Items returns the comma-separated items in source order.
func (l TaskLine) Items() []string {
	items := slices.Clone(l.Tags)
	if l.ID != "" {
		items = append(items, l.ID)
	}
	if l.Start != "" {
		items = append(items, l.Start)
	}
	if l.End != "" {
		items = append(items, l.End)
	}
	return append(items, l.Extra...)
}

// String renders the line.
func (l TaskLine) String() string {
	sep := l.Sep
	if sep == "" {
		sep = " :"
	}
	var b strings.Builder
	b.WriteString(l.Indent)
	b.WriteString(l.Label)
	b.WriteString(sep)
	b.WriteString(strings.Join(l.Items(), ", "))
	if len(l.Meta) > 0 {
		parts := make([]string, len(l.Meta))
		for i, f := range l.Meta {
			if f.Key == "" {
				parts[i] = f.Value
			} else {
				parts[i] = f.Key + ": " + f.Value
			}
		}
		b.WriteString(" %% ")
		b.WriteString(strings.Join(parts, " | "))
	}
	return b.String()
}

// Task converts the line into a Task. Dates that depend on neighbouring
// lines (duration-only items) are left to the resolver.
func (l TaskLine) Task() Task {
	t := Task{
		Label:   l.Label,
		IDToken: l.ID,
		Indent:  l.Indent,
	}
	for _, tag := range l.Tags {
		switch tag {
		case TagMilestone:
			t.IsMilestone = true
		case TagVert:
			t.IsVertMarker = true
		default:
			if s := Status(tag); !t.Has(s) {
				t.StatusTokens = append(t.StatusTokens, s)
			}
		}
	}

	if calendar.IsISO(l.Start) {
		t.StartDate = l.Start
	}
	t.AfterDeps = l.After()
	if calendar.IsISO(l.End) {
		t.EndDate = l.End
		if t.StartDate != "" {
			t.DurationDays = max(calendar.DaysBetween(t.StartDate, t.EndDate), 0)
		}
	} else if d, ok := ParseDuration(l.End); ok {
		t.DurationDays = d
	}
	t.HasExplicitDate = t.StartDate != "" || t.EndDate != ""

	for _, f := range l.Meta {
		switch f.Key {
		case MetaAssignee:
			t.Assignee = NormalizeAssignee(f.Value)
		case MetaNotes:
			t.Notes = f.Value
		case MetaLink:
			t.Link = f.Value
		case MetaProgress:
			if p, err := strconv.Atoi(strings.TrimSuffix(f.Value, "%")); err == nil {
				p = max(0, min(p, 100))
				t.Progress = &p
			}
		}
	}
	return t
}
