package gantt

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ganttsync/pkg/calendar"
)

const sample = `gantt
    title Release plan
    dateFormat YYYY-MM-DD
    excludes weekends, 2024-01-10
    weekend friday
    %% planning
    section Design
    Wireframes :done, wf, 2024-01-01, 2024-01-05 %% assignee: Alice, bob, alice | progress: 100
    Review :milestone, after wf, 0d
    section Build
    Build UI :crit, ui, after wf, 3d %% notes: first cut | owner: ops
    Polish :2d
    Launch :vert, 2024-02-01

    click ui href "https://example.com/ui"
`

func intPtr(n int) *int { return &n }

func TestParseTasks(t *testing.T) {
	got := ParseTasks(sample)
	want := []Task{
		{
			Label: "Wireframes", IDToken: "wf", Section: "Design",
			StartDate: "2024-01-01", EndDate: "2024-01-05", DurationDays: 4,
			StatusTokens: []Status{StatusDone},
			Assignee:     "Alice, bob", Progress: intPtr(100),
			LineIndex: 7, Indent: "    ", HasExplicitDate: true,
		},
		{
			Label: "Review", Section: "Design",
			AfterDeps:   []string{"wf"},
			IsMilestone: true,
			LineIndex:   8, Indent: "    ",
		},
		{
			Label: "Build UI", IDToken: "ui", Section: "Build",
			DurationDays: 3, AfterDeps: []string{"wf"},
			StatusTokens: []Status{StatusCrit},
			Notes:        "first cut", Link: "https://example.com/ui",
			LineIndex: 10, Indent: "    ", LinkLines: []int{14},
		},
		{
			Label: "Polish", Section: "Build", DurationDays: 2,
			LineIndex: 11, Indent: "    ",
		},
		{
			Label: "Launch", Section: "Build", StartDate: "2024-02-01",
			IsVertMarker: true, LineIndex: 12, Indent: "    ", HasExplicitDate: true,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTasks() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDirectives(t *testing.T) {
	d := ParseDirectives(sample)

	if d.Title != "Release plan" {
		t.Errorf("Title = %q, want %q", d.Title, "Release plan")
	}
	if d.DateFormat != "YYYY-MM-DD" {
		t.Errorf("DateFormat = %q", d.DateFormat)
	}
	if diff := cmp.Diff([]string{"weekends", "2024-01-10"}, d.Excludes); diff != "" {
		t.Errorf("Excludes mismatch (-want +got):\n%s", diff)
	}
	if d.Weekend != calendar.WeekendFridaySaturday {
		t.Errorf("Weekend = %q, want %q", d.Weekend, calendar.WeekendFridaySaturday)
	}
	if !d.TodayMarker.Enabled {
		t.Error("TodayMarker should default to enabled")
	}
	if got := d.Lines[DirectiveExcludes]; got != 3 {
		t.Errorf("Lines[excludes] = %d, want 3", got)
	}
}

func TestParseDirectivesVariants(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(Directives) bool
	}{
		{"defaults", "gantt\n", func(d Directives) bool {
			return d.Weekend == calendar.WeekendSaturdaySunday && d.TodayMarker.Enabled && !d.IsCompact()
		}},
		{"excludes accumulate", "excludes monday\nexcludes 2024-05-01 2024-05-02\n", func(d Directives) bool {
			return cmp.Equal(d.Excludes, []string{"monday", "2024-05-01", "2024-05-02"})
		}},
		{"today marker off", "todayMarker off\n", func(d Directives) bool {
			return !d.TodayMarker.Enabled
		}},
		{"today marker style", "todayMarker stroke-width:5px\n", func(d Directives) bool {
			return d.TodayMarker.Enabled && d.TodayMarker.Style == "stroke-width:5px"
		}},
		{"compact", "displayMode compact\n", func(d Directives) bool { return d.IsCompact() }},
		{"includes", "includes 2024-01-06\n", func(d Directives) bool {
			return cmp.Equal(d.Includes, []string{"2024-01-06"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d := ParseDirectives(tt.src); !tt.check(d) {
				t.Errorf("ParseDirectives(%q) = %+v", tt.src, d)
			}
		})
	}
}

func TestParseIgnoresNoise(t *testing.T) {
	src := "gantt\n\n%% comment: not a task\nthis line is junk\n: no label\ntitle A: B\n    T :1d\n"
	tasks := ParseTasks(src)
	if len(tasks) != 1 {
		t.Fatalf("ParseTasks() returned %d tasks, want 1: %+v", len(tasks), tasks)
	}
	if tasks[0].Label != "T" || tasks[0].LineIndex != 6 {
		t.Errorf("task = %+v", tasks[0])
	}
}

func TestParseKeywordLikeLabels(t *testing.T) {
	tests := []struct {
		line  string
		label string
	}{
		{"Weekend deploy :w1, 2024-01-06, 1d", "Weekend deploy"},
		{"Weekday standups :w2, after w1, 2d", "Weekday standups"},
		{"Clickstream ETL :c1, 2024-01-08, 3d", "Clickstream ETL"},
		{"Click tracking :c2, after c1, 1d", "Click tracking"},
		{"topAxis cleanup :t1, 2024-01-02, 1d", "topAxis cleanup"},
		{"inclusiveEndDates fix :i1, 1d", "inclusiveEndDates fix"},
		{"Section review :s1, 2024-01-03, 2d", "Section review"},
		{"Title page :tp, 2024-01-04, 1d", "Title page"},
		{"Excludes audit :ex, 2d", "Excludes audit"},
		{"Gantt export :g1, 1w", "Gantt export"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			chart := Parse("gantt\n    weekend friday\n    section Ops\n    " + tt.line + "\n")
			if len(chart.Tasks) != 1 {
				t.Fatalf("Parse() returned %d tasks, want 1", len(chart.Tasks))
			}
			if got := chart.Tasks[0]; got.Label != tt.label || got.Section != "Ops" || got.LineIndex != 3 {
				t.Errorf("task = %+v", got)
			}
			if chart.Directives.Weekend != calendar.WeekendFridaySaturday {
				t.Errorf("Weekend = %q, want the directive's value", chart.Directives.Weekend)
			}
			if len(chart.Directives.Excludes) != 0 || chart.Directives.Title != "" {
				t.Errorf("task line leaked into directives: %+v", chart.Directives)
			}
			if len(chart.Sections) != 1 {
				t.Errorf("sections = %+v", chart.Sections)
			}
		})
	}
}

func TestKeywordLinesNeedTheirShape(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"weekend friday", true},
		{"weekend saturday", true},
		{"weekend deploy :w1, 1d", false},
		{"weekday monday", true},
		{"weekday standups :w2, 1d", false},
		{"topAxis", true},
		{"topAxis cleanup :t1, 1d", false},
		{"inclusiveEndDates", true},
		{"section Build: phase 2", true},
		{"section review :s1, 2024-01-03, 2d", false},
		{"click ui href \"https://example.com\"", true},
		{"click tracking :c2, 1d", false},
		{"axisFormat %H:%M", true},
		{"title Release: phase 2", true},
		{"Weekend deploy :w1, 2024-01-06, 1d", false},
	}
	for _, tt := range tests {
		if got := IsKeywordLine(tt.line); got != tt.want {
			t.Errorf("IsKeywordLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestGetSections(t *testing.T) {
	src := "gantt\nsection Design\nA :1d\nsection build\nsection BUILD\nsection Design\nsection\n"
	want := []Section{
		{Name: "Design", LineIndex: 1},
		{Name: "build", LineIndex: 3},
	}
	if diff := cmp.Diff(want, GetSections(src)); diff != "" {
		t.Errorf("GetSections() mismatch (-want +got):\n%s", diff)
	}
}

func TestFindTaskByLabel(t *testing.T) {
	tasks := ParseTasks(sample)

	got, ok := FindTaskByLabel(tasks, "build ui")
	if !ok || got.LineIndex != 10 {
		t.Errorf("FindTaskByLabel(build ui) = %+v, %v", got, ok)
	}
	if _, ok := FindTaskByLabel(tasks, "missing"); ok {
		t.Error("FindTaskByLabel(missing) should not match")
	}

	dup := []Task{{Label: "Same", LineIndex: 1}, {Label: "same", LineIndex: 2}}
	if got, _ := FindTaskByLabel(dup, "SAME"); got.LineIndex != 1 {
		t.Errorf("first match should win, got line %d", got.LineIndex)
	}
}

func TestFindTaskByRef(t *testing.T) {
	tasks := ParseTasks(sample)
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"wf", "Wireframes", true},
		{"UI", "Build UI", true},
		{"Polish", "Polish", true},
		{"build-ui", "Build UI", true},
		{"nope", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := FindTaskByRef(tasks, tt.ref)
		if ok != tt.ok || got.Label != tt.want {
			t.Errorf("FindTaskByRef(%q) = %q, %v, want %q, %v", tt.ref, got.Label, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeAssignee(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Alice", "Alice"},
		{" alice ,Bob,ALICE, ", "alice, Bob"},
		{",,", ""},
	}
	for _, tt := range tests {
		if got := NormalizeAssignee(tt.in); got != tt.want {
			t.Errorf("NormalizeAssignee(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Build UI", "build-ui"},
		{"  Design / Review!  ", "design-review"},
		{"task_1", "task_1"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DeriveID(tt.in); got != tt.want {
			t.Errorf("DeriveID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTaskCompound(t *testing.T) {
	tests := []struct {
		tokens []Status
		want   string
	}{
		{nil, ""},
		{[]Status{StatusDone}, "done"},
		{[]Status{StatusCrit, StatusActive}, "activeCrit"},
		{[]Status{StatusDone, StatusCrit}, "doneCrit"},
	}
	for _, tt := range tests {
		if got := (Task{StatusTokens: tt.tokens}).Compound(); got != tt.want {
			t.Errorf("Compound(%v) = %q, want %q", tt.tokens, got, tt.want)
		}
	}
}
