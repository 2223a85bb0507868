package gantt

import (
	"regexp"
	"strings"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/source"
)

// Directive keywords as written in source.
const (
	DirectiveTitle       = "title"
	DirectiveDateFormat  = "dateFormat"
	DirectiveAxisFormat  = "axisFormat"
	DirectiveExcludes    = "excludes"
	DirectiveIncludes    = "includes"
	DirectiveWeekend     = "weekend"
	DirectiveDisplayMode = "displayMode"
	DirectiveTodayMarker = "todayMarker"
)

var directiveKeywords = map[string]string{
	"title":       DirectiveTitle,
	"dateformat":  DirectiveDateFormat,
	"axisformat":  DirectiveAxisFormat,
	"excludes":    DirectiveExcludes,
	"includes":    DirectiveIncludes,
	"weekend":     DirectiveWeekend,
	"displaymode": DirectiveDisplayMode,
	"todaymarker": DirectiveTodayMarker,
}

// Keywords that are not directives. A line starting with one is a keyword
// line only when its argument has the keyword's shape; see keywordLine.
var reservedKeywords = map[string]bool{
	"gantt":             true,
	"section":           true,
	"click":             true,
	"acctitle":          true,
	"accdescr":          true,
	"tickinterval":      true,
	"inclusiveenddates": true,
	"topaxis":           true,
	"weekday":           true,
}

var (
	clickRe     = regexp.MustCompile(`(?i)^click\s+(\S+)(?:\s+href\s+"([^"]*)")?`)
	listSplitRe = regexp.MustCompile(`[,\s]+`)
)

// IsDirective reports whether keyword names a directive understood by the
// parser.
func IsDirective(keyword string) bool {
	_, ok := directiveKeywords[strings.ToLower(keyword)]
	return ok
}

// CanonicalDirective returns the source spelling of a directive keyword.
func CanonicalDirective(keyword string) (string, bool) {
	kw, ok := directiveKeywords[strings.ToLower(keyword)]
	return kw, ok
}

func splitKeyword(body string) (keyword, arg string) {
	kw := body
	if i := strings.IndexAny(body, " \t"); i >= 0 {
		kw, arg = body[:i], body[i+1:]
	}
	return strings.ToLower(strings.TrimSuffix(kw, ":")), strings.TrimSpace(arg)
}

// keywordLine splits body into keyword and argument and reports whether it
// is a keyword line. The first word selects the keyword; the argument must
// then have that keyword's shape. Otherwise the line is read as a task, so
// labels such as "Weekend deploy" or "Section review" keep working.
func keywordLine(body string) (kw, arg string, ok bool) {
	kw, arg = splitKeyword(strings.TrimSpace(body))
	if !reservedKeywords[kw] && directiveKeywords[kw] == "" {
		return kw, arg, false
	}
	switch kw {
	case "weekend":
		ok = calendar.IsWeekendValue(arg)
	case "weekday":
		_, ok = calendar.ParseWeekday(arg)
	case "gantt", "topaxis", "inclusiveenddates":
		ok = arg == ""
	case "section":
		ok = arg != "" && !hasTimingItems(body)
	case "click":
		ok = clickRe.MatchString(strings.TrimSpace(body)) && !hasTimingItems(body)
	default:
		ok = !hasTimingItems(body)
	}
	return kw, arg, ok
}

// hasTimingItems reports whether body has the "<label> :<items>" shape of a
// task declaration with at least one date, after-clause or duration.
func hasTimingItems(body string) bool {
	colon := strings.IndexByte(body, ':')
	if colon <= 0 {
		return false
	}
	items, _, _ := strings.Cut(body[colon+1:], "%%")
	for _, it := range strings.Split(items, ",") {
		if IsTimingItem(strings.TrimSpace(it)) {
			return true
		}
	}
	return false
}

// IsKeywordLine reports whether line is a keyword or directive line rather
// than a task declaration.
func IsKeywordLine(line string) bool {
	_, _, ok := keywordLine(line)
	return ok
}

// DirectiveOf returns the canonical keyword and argument of a directive
// line.
func DirectiveOf(line string) (keyword, arg string, ok bool) {
	kw, arg, isKw := keywordLine(line)
	if !isKw {
		return "", "", false
	}
	keyword, ok = directiveKeywords[kw]
	return keyword, arg, ok
}

// IsClickLine reports whether line is a click line, returning the ids it
// targets.
func IsClickLine(line string) ([]string, bool) {
	if kw, _, ok := keywordLine(line); !ok || kw != "click" {
		return nil, false
	}
	m := clickRe.FindStringSubmatch(strings.TrimSpace(line))
	return strings.Split(m[1], ","), true
}

// SectionHeader returns the section name declared by line.
func SectionHeader(line string) (string, bool) {
	kw, arg, ok := keywordLine(line)
	if !ok || kw != "section" {
		return "", false
	}
	return arg, true
}

type clickLine struct {
	index int
	href  string
}

// Parse scans src once and returns its tasks, directives and sections.
func Parse(src string) Chart {
	chart := Chart{Directives: DefaultDirectives()}
	clicks := make(map[string][]clickLine)
	seen := make(map[string]bool)
	section := ""

	for i, line := range source.Lines(src) {
		body := strings.TrimSpace(line)
		if body == "" || strings.HasPrefix(body, "%%") {
			continue
		}
		kw, arg, isKw := keywordLine(body)
		switch {
		case !isKw:
		case kw == "section":
			section = arg
			if k := strings.ToLower(arg); !seen[k] {
				seen[k] = true
				chart.Sections = append(chart.Sections, Section{Name: arg, LineIndex: i})
			}
			continue
		case kw == "click":
			m := clickRe.FindStringSubmatch(body)
			for _, id := range strings.Split(m[1], ",") {
				if id = strings.TrimSpace(id); id != "" {
					clicks[id] = append(clicks[id], clickLine{index: i, href: m[2]})
				}
			}
			continue
		case directiveKeywords[kw] != "":
			chart.Directives.apply(directiveKeywords[kw], arg, i)
			continue
		default:
			continue
		}

		tl, ok := ParseTaskLine(line)
		if !ok {
			continue
		}
		t := tl.Task()
		t.Section = section
		t.LineIndex = i
		chart.Tasks = append(chart.Tasks, t)
	}

	for i := range chart.Tasks {
		t := &chart.Tasks[i]
		if t.IDToken == "" {
			continue
		}
		for _, c := range clicks[t.IDToken] {
			t.LinkLines = append(t.LinkLines, c.index)
			if t.Link == "" && c.href != "" {
				t.Link = c.href
			}
		}
	}
	return chart
}

func (d *Directives) apply(keyword, arg string, line int) {
	if d.Lines == nil {
		d.Lines = make(map[string]int)
	}
	if _, ok := d.Lines[keyword]; !ok {
		d.Lines[keyword] = line
	}
	switch keyword {
	case DirectiveTitle:
		d.Title = arg
	case DirectiveDateFormat:
		d.DateFormat = arg
	case DirectiveAxisFormat:
		d.AxisFormat = arg
	case DirectiveExcludes:
		d.Excludes = append(d.Excludes, splitList(arg)...)
	case DirectiveIncludes:
		d.Includes = append(d.Includes, splitList(arg)...)
	case DirectiveWeekend:
		d.Weekend = calendar.ParseWeekend(arg)
	case DirectiveDisplayMode:
		d.DisplayMode = arg
	case DirectiveTodayMarker:
		if strings.EqualFold(arg, "off") {
			d.TodayMarker = TodayMarker{}
		} else {
			d.TodayMarker = TodayMarker{Enabled: true, Style: arg}
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range listSplitRe.Split(s, -1) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseTasks returns the task declarations of src in source order.
func ParseTasks(src string) []Task { return Parse(src).Tasks }

// ParseDirectives returns the chart-wide settings of src.
func ParseDirectives(src string) Directives { return Parse(src).Directives }

// GetSections returns every section header in source order, deduplicated
// case-insensitively with the first spelling kept.
func GetSections(src string) []Section { return Parse(src).Sections }

// FindTaskByLabel returns the first task whose label matches
// case-insensitively.
func FindTaskByLabel(tasks []Task, label string) (Task, bool) {
	label = strings.TrimSpace(label)
	for _, t := range tasks {
		if strings.EqualFold(t.Label, label) {
			return t, true
		}
	}
	return Task{}, false
}

// FindTaskByRef resolves a dependency reference. Exact id tokens win, then
// case-insensitive ids, labels and derived ids.
func FindTaskByRef(tasks []Task, ref string) (Task, bool) {
	if i := IndexOfRef(tasks, ref); i >= 0 {
		return tasks[i], true
	}
	return Task{}, false
}

// IndexOfRef is FindTaskByRef returning a slice index, or -1.
func IndexOfRef(tasks []Task, ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}
	for i, t := range tasks {
		if t.IDToken == ref {
			return i
		}
	}
	for i, t := range tasks {
		if t.IDToken != "" && strings.EqualFold(t.IDToken, ref) {
			return i
		}
	}
	for i, t := range tasks {
		if strings.EqualFold(t.Label, ref) {
			return i
		}
	}
	slug := strings.ToLower(ref)
	for i, t := range tasks {
		if DeriveID(t.Label) == slug {
			return i
		}
	}
	return -1
}

// RefersTo reports whether ref names t.
func RefersTo(t Task, ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if t.IDToken != "" && strings.EqualFold(t.IDToken, ref) {
		return true
	}
	return strings.EqualFold(t.Label, ref) || DeriveID(t.Label) == strings.ToLower(ref)
}
