package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/ganttsync/pkg/gantt"
	"github.com/matzehuels/ganttsync/pkg/mutate"
)

func TestPrintEditResult(t *testing.T) {
	tests := []struct {
		name   string
		result mutate.Result
		want   []string
	}{
		{
			name:   "unchanged",
			result: mutate.Result{},
			want:   []string{"No changes: Edited"},
		},
		{
			name:   "target",
			result: mutate.Result{Changed: true, Target: "QA"},
			want:   []string{iconSuccess, "Edited", iconArrow, "QA"},
		},
		{
			name:   "notice",
			result: mutate.Result{Changed: true, Notice: mutate.NoticeAnchoredToday},
			want:   []string{"Edited", mutate.NoticeAnchoredToday.Message()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printEditResult(&buf, "Edited", tt.result)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output %q missing %q", buf.String(), w)
				}
			}
		})
	}
}

func TestFormatStatus(t *testing.T) {
	task := gantt.Task{StatusTokens: []gantt.Status{gantt.StatusDone, gantt.StatusCrit}, IsMilestone: true}
	got := formatStatus(task)
	for _, want := range []string{"done", "crit", iconMilestone} {
		if !strings.Contains(got, want) {
			t.Errorf("formatStatus = %q, missing %q", got, want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Task", "Days"}, [][]string{{"Build UI", "3"}, {"Docs", "2"}}, nil)
	for _, want := range []string{"Task", "Days", "Build UI", "Docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestOrDash(t *testing.T) {
	if orDash("") != "—" || orDash("x") != "x" {
		t.Error("orDash")
	}
}
