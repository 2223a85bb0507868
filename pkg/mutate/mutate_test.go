package mutate

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/ganttsync/pkg/calendar"
	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/schedule"
	"github.com/matzehuels/ganttsync/pkg/source"
)

const plan = `gantt
    title Plan
    dateFormat YYYY-MM-DD
    %% keep me
    section Design
    Wireframes :wf, 2024-01-01, 2024-01-05
    Review :milestone, rv, after wf, 0d

    section Build
    Build UI :ui, after wf, 3d %% assignee: Alice
    Polish :after ui, 2d
    click ui href "https://example.com"
`

func find(t *testing.T, src, label string) gantt.Task {
	t.Helper()
	task, ok := gantt.FindTaskByLabel(gantt.ParseTasks(src), label)
	if !ok {
		t.Fatalf("task %q not found", label)
	}
	return task
}

// changedLines returns the indices at which two equal-length sources differ.
func changedLines(t *testing.T, before, after string) []int {
	t.Helper()
	a, b := source.Lines(before), source.Lines(after)
	if len(a) != len(b) {
		t.Fatalf("line count changed: %d -> %d", len(a), len(b))
	}
	var out []int
	for i := range a {
		if a[i] != b[i] {
			out = append(out, i)
		}
	}
	return out
}

func line(src string, i int) string {
	l, _ := source.Split(src).Line(i)
	return l
}

func fixNow(t *testing.T, iso string) {
	t.Helper()
	ts, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		t.Fatal(err)
	}
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestNoOpUpdateRoundTrip(t *testing.T) {
	before := gantt.ParseTasks(plan)
	for _, task := range before {
		r := UpdateTask(plan, task, Update{})
		if r.Changed || r.Source != plan {
			t.Errorf("UpdateTask(%q, {}) changed the source", task.Label)
		}
		same := task.Label
		r = UpdateTask(plan, task, Update{Label: &same})
		if r.Changed {
			t.Errorf("relabelling %q to itself reported a change", task.Label)
		}
		if diff := cmp.Diff(before, gantt.ParseTasks(r.Source)); diff != "" {
			t.Errorf("reparse mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestToggleStatusEndToEnd(t *testing.T) {
	src := `gantt
    section Design
    Wireframes :2024-01-01, 2024-01-05
    section Build
    Build UI :after Wireframes, 3d
`
	task := find(t, src, "Build UI")
	r := ToggleStatus(src, task, gantt.StatusDone)
	if !r.Changed {
		t.Fatal("ToggleStatus reported no change")
	}
	if got := changedLines(t, src, r.Source); !cmp.Equal(got, []int{4}) {
		t.Fatalf("changed lines = %v, want [4]", got)
	}
	l := line(r.Source, 4)
	if l != "    Build UI :done, after Wireframes, 3d" {
		t.Errorf("line = %q", l)
	}
	if n := strings.Count(l, "done"); n != 1 {
		t.Errorf("done appears %d times", n)
	}
	if !find(t, r.Source, "Build UI").IsDone() {
		t.Error("reparsed task is not done")
	}

	back := ToggleStatus(r.Source, find(t, r.Source, "Build UI"), gantt.StatusDone)
	if back.Source != src {
		t.Errorf("second toggle did not restore the source:\n%s", back.Source)
	}
}

func TestToggleStatusRejectsUnknown(t *testing.T) {
	r := ToggleStatus(plan, find(t, plan, "Polish"), gantt.Status("blocked"))
	if r.Changed || r.Source != plan {
		t.Error("unknown status changed the source")
	}
}

func TestClearStatus(t *testing.T) {
	src := "gantt\n    X :done, crit, milestone, x, 2024-01-01, 0d\n"
	r := ClearStatus(src, find(t, src, "X"))
	if want := "    X :milestone, x, 2024-01-01, 0d"; line(r.Source, 1) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 1), want)
	}
}

func TestToggleMilestone(t *testing.T) {
	r := ToggleMilestone(plan, find(t, plan, "Polish"), true)
	if want := "    Polish :milestone, after ui, 0d"; line(r.Source, 10) != want {
		t.Errorf("on: line = %q, want %q", line(r.Source, 10), want)
	}
	if !find(t, r.Source, "Polish").IsMilestone {
		t.Error("Polish is not a milestone after toggling on")
	}

	r = ToggleMilestone(plan, find(t, plan, "Review"), false)
	if want := "    Review :rv, after wf, 1d"; line(r.Source, 6) != want {
		t.Errorf("off: line = %q, want %q", line(r.Source, 6), want)
	}

	r = ToggleMilestone(plan, find(t, plan, "Review"), true)
	if r.Changed {
		t.Error("turning an existing milestone on reported a change")
	}
}

func TestUpdateTaskPromotesToExplicit(t *testing.T) {
	start := "2024-02-01"
	r := UpdateTask(plan, find(t, plan, "Build UI"), Update{StartDate: &start})
	if r.Notice != NoticePromotedToExplicit {
		t.Errorf("notice = %q, want %q", r.Notice, NoticePromotedToExplicit)
	}
	if r.Notice.Message() == "" {
		t.Error("notice has no message")
	}
	if want := "    Build UI :ui, 2024-02-01, 3d %% assignee: Alice"; line(r.Source, 9) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 9), want)
	}
	if got := changedLines(t, plan, r.Source); !cmp.Equal(got, []int{9}) {
		t.Errorf("changed lines = %v, want [9]", got)
	}

	r = UpdateTask(plan, find(t, plan, "Wireframes"), Update{StartDate: &start})
	if r.Notice != NoticeNone {
		t.Errorf("explicit task notice = %q, want none", r.Notice)
	}
}

func TestDragChainedTaskPromotes(t *testing.T) {
	src := "gantt\n    A :a, 2024-01-01, 3d\n    B :b, 2d\n"
	chart := gantt.Parse(src)
	res := schedule.ResolveDependencies(chart.Tasks, chart.Directives)
	b, ok := res.Lookup("b")
	if !ok || !b.Resolved {
		t.Fatal("b not resolved")
	}

	tests := []struct {
		name  string
		delta int
		mode  DragMode
		want  string
	}{
		{"move", 3, DragMove, "    B :b, 2024-01-07, 2d"},
		{"resize start", 1, DragResizeStart, "    B :b, 2024-01-05, " + b.ResolvedEndDate},
		{"resize end", 1, DragResizeEnd, "    B :b, " + b.ResolvedStartDate + ", " + calendar.ShiftISODate(b.ResolvedEndDate, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DragTask(src, b, tt.delta, tt.mode)
			if !r.Changed {
				t.Fatal("drag did not change the source")
			}
			if r.Notice != NoticePromotedToExplicit {
				t.Errorf("notice = %q, want %q", r.Notice, NoticePromotedToExplicit)
			}
			if got := line(r.Source, 2); got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
			if got := find(t, r.Source, "B"); !got.HasExplicitDate || got.StartDate == "" {
				t.Errorf("reparsed task has no explicit start: %+v", got)
			}
		})
	}
}

func TestUpdateTaskFields(t *testing.T) {
	label := "Build: UI"
	end := "2024-01-20"
	dur := 9
	who := "bob, Bob ,carol"
	notes := "split | later"
	progress := 150
	r := UpdateTask(plan, find(t, plan, "Build UI"), Update{
		Label:        &label,
		EndDate:      &end,
		DurationDays: &dur,
		Assignee:     &who,
		Notes:        &notes,
		Progress:     &progress,
	})
	want := "    Build - UI :ui, after wf, 2024-01-20 %% assignee: bob, carol | notes: split / later | progress: 100"
	if got := line(r.Source, 9); got != want {
		t.Errorf("line = %q\nwant   %q", got, want)
	}
	if r.Target != "Build - UI" {
		t.Errorf("target = %q", r.Target)
	}

	none := -1
	empty := ""
	task := find(t, r.Source, "Build - UI")
	r = UpdateTask(r.Source, task, Update{Progress: &none, Notes: &empty, Assignee: &empty})
	if want := "    Build - UI :ui, after wf, 2024-01-20"; line(r.Source, 9) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 9), want)
	}
}

func TestKeywordLikeLabelsSurviveReparse(t *testing.T) {
	for _, label := range []string{"Weekend prep", "section x", "weekday monday", "click here", "Title page"} {
		t.Run(label, func(t *testing.T) {
			l := label
			r := UpdateTask(plan, find(t, plan, "Polish"), Update{Label: &l})
			if !r.Changed {
				t.Fatal("rename did not change the source")
			}
			got := find(t, r.Source, label)
			if got.Section != "Build" || got.LineIndex != 10 {
				t.Errorf("renamed task = %+v", got)
			}
			if n := len(gantt.ParseTasks(r.Source)); n != 4 {
				t.Errorf("task count = %d, want 4", n)
			}

			r = InsertTaskAfter(plan, find(t, plan, "Polish"), NewTask{Label: label})
			if _, ok := gantt.FindTaskByLabel(gantt.ParseTasks(r.Source), label); !ok {
				t.Errorf("inserted task %q not found after reparse:\n%s", label, r.Source)
			}
		})
	}
}

func TestSectionNamesMustReadBack(t *testing.T) {
	bad := "Later :x, 2024-01-01, 1d"
	if r := AddSection(plan, bad); r.Changed {
		t.Errorf("AddSection(%q) changed the source:\n%s", bad, r.Source)
	}
	if r := RenameSection(plan, "Build", bad); r.Changed {
		t.Errorf("RenameSection(%q) changed the source:\n%s", bad, r.Source)
	}
	if r := MoveTaskToSection(plan, find(t, plan, "Polish"), bad); r.Changed {
		t.Errorf("MoveTaskToSection(%q) changed the source:\n%s", bad, r.Source)
	}
	if r := AddSection(plan, "Weekend work"); !r.Changed || len(gantt.GetSections(r.Source)) != 3 {
		t.Errorf("AddSection(Weekend work) = %+v", r)
	}
}

func TestUpdateTaskIgnoresInvalidDates(t *testing.T) {
	bad := "next week"
	r := UpdateTask(plan, find(t, plan, "Wireframes"), Update{StartDate: &bad, EndDate: &bad})
	if r.Changed {
		t.Errorf("invalid dates changed the source:\n%s", r.Source)
	}
}

func TestStaleTarget(t *testing.T) {
	gone := gantt.Task{Label: "Gone", LineIndex: 5}
	two := 2
	mutators := map[string]func() Result{
		"update":    func() Result { return UpdateTask(plan, gone, Update{DurationDays: &two}) },
		"status":    func() Result { return ToggleStatus(plan, gone, gantt.StatusDone) },
		"clear":     func() Result { return ClearStatus(plan, gone) },
		"milestone": func() Result { return ToggleMilestone(plan, gone, true) },
		"deps":      func() Result { return UpdateDependency(plan, gone, []string{"wf"}) },
		"insert":    func() Result { return InsertTaskAfter(plan, gone, NewTask{}) },
		"delete":    func() Result { return DeleteTask(plan, gone) },
		"move":      func() Result { return MoveTaskToSection(plan, gone, "Build") },
		"cascade":   func() Result { return RemoveDependencyReferences(plan, nil, nil, gone) },
	}
	for name, fn := range mutators {
		t.Run(name, func(t *testing.T) {
			r := fn()
			if r.Changed || r.Source != plan {
				t.Error("stale target changed the source")
			}
		})
	}
}

func TestLabelFallbackAfterConcurrentEdit(t *testing.T) {
	old := find(t, plan, "Polish")
	edited := strings.Replace(plan, "gantt\n", "gantt\n    %% new comment\n", 1)
	r := ToggleStatus(edited, old, gantt.StatusActive)
	if want := "    Polish :active, after ui, 2d"; line(r.Source, 11) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 11), want)
	}
	if got := changedLines(t, edited, r.Source); !cmp.Equal(got, []int{11}) {
		t.Errorf("changed lines = %v, want [11]", got)
	}
}

func TestUpdateDependency(t *testing.T) {
	tests := []struct {
		name  string
		label string
		refs  []string
		want  string
	}{
		{"replace", "Polish", []string{"wf", "ui"}, "    Polish :after wf ui, 2d"},
		{"drops self and duplicates", "Polish", []string{"wf", "Polish", " ", "wf"}, "    Polish :after wf, 2d"},
		{"keeps explicit start", "Wireframes", []string{"ui"}, "    Wireframes :wf, 2024-01-01, 2024-01-05, after ui"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := find(t, plan, tt.label)
			r := UpdateDependency(plan, task, tt.refs)
			if got := line(r.Source, task.LineIndex); got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
			if r.Notice != NoticeNone {
				t.Errorf("notice = %q", r.Notice)
			}
		})
	}
}

func TestUpdateDependencyAnchorsToday(t *testing.T) {
	fixNow(t, "2024-06-01")
	r := UpdateDependency(plan, find(t, plan, "Polish"), nil)
	if r.Notice != NoticeAnchoredToday {
		t.Errorf("notice = %q, want %q", r.Notice, NoticeAnchoredToday)
	}
	if want := "    Polish :2024-06-01, 2d"; line(r.Source, 10) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 10), want)
	}
	polish := find(t, r.Source, "Polish")
	if polish.StartDate == "" && len(polish.AfterDeps) == 0 {
		t.Error("Polish was left without timing")
	}
}

func TestFindDependentTasks(t *testing.T) {
	tasks := gantt.ParseTasks(plan)
	wf := find(t, plan, "Wireframes")

	labels := func(ts []gantt.Task) []string {
		var out []string
		for _, task := range ts {
			out = append(out, task.Label)
		}
		return out
	}
	if got, want := labels(FindDependentTasks(tasks, wf)), []string{"Review", "Build UI"}; !cmp.Equal(got, want) {
		t.Errorf("direct = %v, want %v", got, want)
	}
	if got, want := labels(FindAllDependentTasks(tasks, wf)), []string{"Review", "Build UI", "Polish"}; !cmp.Equal(got, want) {
		t.Errorf("transitive = %v, want %v", got, want)
	}
	if got := FindAllDependentTasks(tasks, find(t, plan, "Polish")); len(got) != 0 {
		t.Errorf("Polish dependents = %v, want none", labels(got))
	}
}

func TestDeleteCascadeLeavesTiming(t *testing.T) {
	chart := gantt.Parse(plan)
	res := schedule.ResolveDependencies(chart.Tasks, chart.Directives)
	wf := find(t, plan, "Wireframes")

	r := RemoveDependencyReferences(plan, chart.Tasks, res.Tasks, wf)
	if r.Notice != NoticeAnchoredResolved {
		t.Errorf("notice = %q, want %q", r.Notice, NoticeAnchoredResolved)
	}
	if got := changedLines(t, plan, r.Source); !cmp.Equal(got, []int{6, 9}) {
		t.Errorf("changed lines = %v, want [6 9]", got)
	}
	if want := "    Review :milestone, rv, 2024-01-05, 0d"; line(r.Source, 6) != want {
		t.Errorf("Review = %q, want %q", line(r.Source, 6), want)
	}
	if want := "    Build UI :ui, 2024-01-05, 3d %% assignee: Alice"; line(r.Source, 9) != want {
		t.Errorf("Build UI = %q, want %q", line(r.Source, 9), want)
	}

	r = DeleteTask(r.Source, wf)
	if !r.Changed {
		t.Fatal("DeleteTask reported no change")
	}
	after := gantt.Parse(r.Source)
	if _, ok := gantt.FindTaskByLabel(after.Tasks, "Wireframes"); ok {
		t.Error("Wireframes still present")
	}
	for _, task := range after.Tasks {
		if task.StartDate == "" && len(task.AfterDeps) == 0 && task.DurationDays == 0 && !task.IsMilestone {
			t.Errorf("%s has no timing", task.Label)
		}
	}
	for _, rt := range schedule.ResolveDependencies(after.Tasks, after.Directives).Tasks {
		if !rt.Resolved {
			t.Errorf("%s does not resolve after delete", rt.Label)
		}
	}
}

func TestDeleteTaskAndReferences(t *testing.T) {
	chart := gantt.Parse(plan)
	res := schedule.ResolveDependencies(chart.Tasks, chart.Directives)

	r := DeleteTaskAndReferences(plan, chart.Tasks, res.Tasks, find(t, plan, "Wireframes"))
	if !r.Changed || r.Notice != NoticeAnchoredResolved {
		t.Fatalf("result = changed %v notice %q, want changed with %q", r.Changed, r.Notice, NoticeAnchoredResolved)
	}
	if r.Target != "Wireframes" {
		t.Errorf("target = %q, want Wireframes", r.Target)
	}
	if want := "    Review :milestone, rv, 2024-01-05, 0d"; line(r.Source, 5) != want {
		t.Errorf("line 5 = %q, want %q", line(r.Source, 5), want)
	}

	stale := gantt.Task{Label: "Nope", LineIndex: 99}
	if r := DeleteTaskAndReferences(plan, chart.Tasks, res.Tasks, stale); r.Changed || r.Source != plan {
		t.Error("stale target changed the source")
	}
}

func TestRemoveDependencyReferencesAnchorsTodayWithoutResolution(t *testing.T) {
	fixNow(t, "2024-06-01")
	r := RemoveDependencyReferences(plan, nil, nil, find(t, plan, "Build UI"))
	if r.Notice != NoticeAnchoredToday {
		t.Errorf("notice = %q, want %q", r.Notice, NoticeAnchoredToday)
	}
	if want := "    Polish :2024-06-01, 2d"; line(r.Source, 10) != want {
		t.Errorf("Polish = %q, want %q", line(r.Source, 10), want)
	}
}

func TestDeleteTaskRemovesOwnClickLines(t *testing.T) {
	r := DeleteTask(plan, find(t, plan, "Build UI"))
	want := strings.Replace(plan, "    Build UI :ui, after wf, 3d %% assignee: Alice\n", "", 1)
	want = strings.Replace(want, "    click ui href \"https://example.com\"\n", "", 1)
	if diff := cmp.Diff(want, r.Source); diff != "" {
		t.Errorf("DeleteTask mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertTaskAfter(t *testing.T) {
	r := InsertTaskAfter(plan, find(t, plan, "Build UI"), NewTask{})
	if want := "    New task :ui_2, after ui, 1d"; line(r.Source, 10) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 10), want)
	}
	if r.Target != DefaultNewLabel {
		t.Errorf("target = %q", r.Target)
	}
	added := find(t, r.Source, "New task")
	if added.Section != "Build" {
		t.Errorf("section = %q, want Build", added.Section)
	}

	r = InsertTaskAfter(r.Source, find(t, r.Source, "Build UI"), NewTask{})
	if want := "    New task 2 :ui_3, after ui, 1d"; line(r.Source, 10) != want {
		t.Errorf("second insert = %q, want %q", line(r.Source, 10), want)
	}

	r = InsertTaskAfter(plan, find(t, plan, "Polish"), NewTask{Label: "Wireframes", DurationDays: 4, Assignee: "dan"})
	if want := "    Wireframes 2 :polish_2, after polish, 4d %% assignee: dan"; line(r.Source, 11) != want {
		t.Errorf("slug insert = %q, want %q", line(r.Source, 11), want)
	}
}

func TestInsertTaskAfterExplicitFields(t *testing.T) {
	r := InsertTaskAfter(plan, find(t, plan, "Wireframes"), NewTask{
		Label:     "Outline",
		ID:        "outline",
		StartDate: "2024-01-02",
		EndDate:   "2024-01-04",
		Status:    []gantt.Status{gantt.StatusActive},
	})
	if want := "    Outline :active, outline, 2024-01-02, 2024-01-04"; line(r.Source, 6) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 6), want)
	}

	// A taken id falls back to the generated one.
	r = InsertTaskAfter(plan, find(t, plan, "Wireframes"), NewTask{ID: "ui"})
	if want := "    New task :wf_2, after wf, 1d"; line(r.Source, 6) != want {
		t.Errorf("line = %q, want %q", line(r.Source, 6), want)
	}
}

func TestMoveTaskToSection(t *testing.T) {
	r := MoveTaskToSection(plan, find(t, plan, "Polish"), "design")
	want := `gantt
    title Plan
    dateFormat YYYY-MM-DD
    %% keep me
    section Design
    Wireframes :wf, 2024-01-01, 2024-01-05
    Review :milestone, rv, after wf, 0d
    Polish :after ui, 2d

    section Build
    Build UI :ui, after wf, 3d %% assignee: Alice
    click ui href "https://example.com"
`
	if diff := cmp.Diff(want, r.Source); diff != "" {
		t.Errorf("move mismatch (-want +got):\n%s", diff)
	}
	if got := find(t, r.Source, "Polish").Section; got != "Design" {
		t.Errorf("section = %q, want Design", got)
	}

	r = MoveTaskToSection(plan, find(t, plan, "Wireframes"), "QA")
	lines := source.Lines(r.Source)
	if got := lines[len(lines)-2:]; !cmp.Equal(got, []string{"    section QA", "    Wireframes :wf, 2024-01-01, 2024-01-05"}) {
		t.Errorf("tail = %q", got)
	}

	if r := MoveTaskToSection(plan, find(t, plan, "Polish"), "Build"); r.Changed {
		t.Error("moving into the current section reported a change")
	}
}

func TestSections(t *testing.T) {
	r := RenameSection(plan, "build", "Implementation")
	if got := changedLines(t, plan, r.Source); !cmp.Equal(got, []int{8}) {
		t.Errorf("changed lines = %v, want [8]", got)
	}
	if got := find(t, r.Source, "Polish").Section; got != "Implementation" {
		t.Errorf("Polish section = %q", got)
	}
	if r := RenameSection(plan, "Nope", "X"); r.Changed {
		t.Error("renaming a missing section reported a change")
	}

	if r := AddSection(plan, "DESIGN"); r.Changed {
		t.Error("adding an existing section reported a change")
	}
	r = AddSection(plan, "QA")
	if !strings.HasSuffix(r.Source, "    section QA\n") {
		t.Errorf("section not appended:\n%s", r.Source)
	}
}

func TestSetDirective(t *testing.T) {
	r := SetDirective(plan, "Title", "Roadmap")
	if got := changedLines(t, plan, r.Source); !cmp.Equal(got, []int{1}) {
		t.Errorf("changed lines = %v, want [1]", got)
	}
	if got := gantt.ParseDirectives(r.Source).Title; got != "Roadmap" {
		t.Errorf("title = %q", got)
	}

	r = SetDirective(plan, "excludes", "weekends")
	if want := "    excludes weekends"; line(r.Source, 4) != want {
		t.Errorf("inserted = %q, want %q", line(r.Source, 4), want)
	}
	if line(r.Source, 5) != "    section Design" {
		t.Errorf("directive not placed before the first section")
	}

	r = SetDirective(plan, "title", "")
	if strings.Contains(r.Source, "title") {
		t.Error("title not removed")
	}

	dup := "gantt\n    title A\n    title B\n    A :a, 2024-01-01, 1d\n"
	r = SetDirective(dup, "title", "C")
	if want := "gantt\n    title C\n    A :a, 2024-01-01, 1d\n"; r.Source != want {
		t.Errorf("dedupe = %q, want %q", r.Source, want)
	}

	if r := SetDirective(plan, "colour", "red"); r.Changed {
		t.Error("unknown directive changed the source")
	}
	if r := SetDirective("gantt\n", "title", "T"); r.Source != "gantt\n    title T\n" {
		t.Errorf("empty chart = %q", r.Source)
	}
}

func TestDragTask(t *testing.T) {
	chart := gantt.Parse(plan)
	res := schedule.ResolveDependencies(chart.Tasks, chart.Directives)
	lookup := func(ref string) schedule.ResolvedTask {
		rt, ok := res.Lookup(ref)
		if !ok {
			t.Fatalf("%s not resolved", ref)
		}
		return rt
	}

	tests := []struct {
		name  string
		ref   string
		delta int
		mode  DragMode
		line  int
		want  string
	}{
		{"move dependent", "ui", 3, DragMove, 9, "    Build UI :ui, 2024-01-08, 3d %% assignee: Alice"},
		{"move explicit", "wf", 7, DragMove, 5, "    Wireframes :wf, 2024-01-08, 2024-01-12"},
		{"resize end", "wf", 2, DragResizeEnd, 5, "    Wireframes :wf, 2024-01-01, 2024-01-07"},
		{"resize end clamps", "wf", -10, DragResizeEnd, 5, "    Wireframes :wf, 2024-01-01, 2024-01-01"},
		{"resize start clamps", "wf", 10, DragResizeStart, 5, "    Wireframes :wf, 2024-01-05, 2024-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DragTask(plan, lookup(tt.ref), tt.delta, tt.mode)
			if got := line(r.Source, tt.line); got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
		})
	}

	if r := DragTask(plan, lookup("wf"), 0, DragMove); r.Changed {
		t.Error("zero delta changed the source")
	}
	if r := DragTask(plan, lookup("wf"), 1, DragMode("spin")); r.Changed {
		t.Error("unknown mode changed the source")
	}
}
