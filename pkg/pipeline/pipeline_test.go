package pipeline

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/ganttsync/pkg/cache"
	"github.com/matzehuels/ganttsync/pkg/observability"
	"github.com/matzehuels/ganttsync/pkg/views"
)

const chart = `gantt
    title Release
    section Design
    Wireframes :wf, 2024-01-01, 2024-01-05 %% assignee: Alice
    section Build
    Build UI :ui, after wf, 3d %% assignee: Bob
    Polish :after ui, 2d
`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// memCache is an in-memory Cache that counts operations.
type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	sets    int
	failGet error
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet != nil {
		return nil, false, c.failGet
	}
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var fixedRisk = views.RiskOptions{Today: "2024-01-08"}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"yaml", false},
		{"JSON", true}, // case-sensitive
		{"svg", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseStage(t *testing.T) {
	p := Parse(chart)
	if got := len(p.Chart.Tasks); got != 3 {
		t.Fatalf("tasks = %d, want 3", got)
	}
	ui, ok := p.Resolution.Lookup("ui")
	if !ok || ui.ResolvedStartDate != "2024-01-05" {
		t.Errorf("ui start = %q, want 2024-01-05", ui.ResolvedStartDate)
	}
}

func TestRunnerAnalyze(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Analyze(context.Background(), chart, Options{Risk: fixedRisk})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.SourceHash != cache.HashSource(chart) {
		t.Errorf("SourceHash = %s", res.SourceHash)
	}
	if res.Directives.Title != "Release" {
		t.Errorf("Title = %q", res.Directives.Title)
	}
	if got, want := res.Report.CriticalSet.Sorted(), []string{"Polish", "ui", "wf"}; !cmp.Equal(got, want) {
		t.Errorf("critical = %v, want %v", got, want)
	}
	if got, want := res.Assignees, []string{"Alice", "Bob"}; !cmp.Equal(got, want) {
		t.Errorf("assignees = %v, want %v", got, want)
	}
	// Wireframes ended before 2024-01-08 and is not done.
	if !res.Risks["Wireframes"].Has(views.FlagOverdue) {
		t.Errorf("Wireframes not flagged overdue: %+v", res.Risks)
	}
	if res.Stats.TaskCount != 3 {
		t.Errorf("TaskCount = %d", res.Stats.TaskCount)
	}
	if res.CacheInfo.AnalysisHit || res.CacheInfo.ParseHit {
		t.Error("null cache reported a hit")
	}
}

func TestRunnerAssigneeRows(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Analyze(context.Background(), chart, Options{Risk: fixedRisk, Assignees: []string{"bob"}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var got []string
	for _, row := range res.Rows {
		if row.Kind == views.RowSection {
			got = append(got, "section "+row.Section)
		} else {
			got = append(got, row.Task.Label)
		}
	}
	if want := []string{"section Build", "Build UI"}; !cmp.Equal(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if len(res.Tasks) != 3 {
		t.Error("filtering rows must not drop tasks")
	}
}

func TestRunnerCachesAnalysis(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	first, err := r.Analyze(ctx, chart, Options{Risk: fixedRisk})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if first.CacheInfo.AnalysisHit {
		t.Error("first run should miss")
	}
	if mc.sets != 2 {
		t.Errorf("sets = %d, want 2 (parse and analysis)", mc.sets)
	}

	second, err := r.Analyze(ctx, chart, Options{Risk: fixedRisk})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !second.CacheInfo.AnalysisHit {
		t.Error("second run should hit")
	}
	opts := cmpopts.EquateEmpty()
	if diff := cmp.Diff(first.Tasks, second.Tasks, opts); diff != "" {
		t.Errorf("cached tasks mismatch (-fresh +cached):\n%s", diff)
	}
	if diff := cmp.Diff(first.Report, second.Report, opts); diff != "" {
		t.Errorf("cached report mismatch (-fresh +cached):\n%s", diff)
	}
	if len(second.Rows) == 0 {
		t.Error("rows should be derived on a cache hit")
	}

	// A different reference date is a different analysis, but the parse
	// result is reused.
	third, _ := r.Analyze(ctx, chart, Options{Risk: views.RiskOptions{Today: "2024-02-01"}})
	if third.CacheInfo.AnalysisHit || !third.CacheInfo.ParseHit {
		t.Errorf("cache info = %+v, want parse hit only", third.CacheInfo)
	}
}

func TestRunnerRefreshSkipsRead(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	_, _ = r.Analyze(ctx, chart, Options{Risk: fixedRisk})
	gets := mc.gets
	res, err := r.Analyze(ctx, chart, Options{Risk: fixedRisk, Refresh: true})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if mc.gets != gets {
		t.Errorf("refresh read the cache %d times", mc.gets-gets)
	}
	if res.CacheInfo.AnalysisHit || res.CacheInfo.ParseHit {
		t.Error("refresh reported a hit")
	}
}

func TestRunnerDropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	key := r.Keyer.AnalysisKey(cache.HashSource(chart), Options{Risk: fixedRisk}.keyOpts())
	mc.data[key] = []byte("{truncated")

	res, err := r.Analyze(ctx, chart, Options{Risk: fixedRisk})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.CacheInfo.AnalysisHit {
		t.Error("corrupt entry served as a hit")
	}
	if string(mc.data[key]) == "{truncated" {
		t.Error("corrupt entry was not replaced")
	}
}

func TestRunnerIgnoresCacheFailure(t *testing.T) {
	mc := newMemCache()
	mc.failGet = errors.New("boom")
	r := NewRunner(mc, nil, quietLogger())

	res, err := r.Analyze(context.Background(), chart, Options{Risk: fixedRisk})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Tasks) != 3 {
		t.Errorf("tasks = %d, want 3", len(res.Tasks))
	}
}

func TestRunnerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, quietLogger())
	if _, err := r.Analyze(ctx, chart, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze error = %v, want context.Canceled", err)
	}
}

type countingHooks struct {
	observability.NoopEngineHooks
	mu       sync.Mutex
	parses   int
	analyses int
	mutates  []string
	last     observability.AnalysisStats
}

func (h *countingHooks) OnParse(context.Context, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parses++
}

func (h *countingHooks) OnAnalyze(_ context.Context, s observability.AnalysisStats, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.analyses++
	h.last = s
}

func (h *countingHooks) OnMutate(_ context.Context, op string, changed bool, notice string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if changed {
		h.mutates = append(h.mutates, op+":"+notice)
	}
}

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetEngineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(newMemCache(), nil, quietLogger())
	for range 2 {
		if _, err := r.Analyze(context.Background(), chart, Options{Risk: fixedRisk}); err != nil {
			t.Fatalf("Analyze: %v", err)
		}
	}
	if hooks.parses != 1 {
		t.Errorf("parses = %d, want 1", hooks.parses)
	}
	if hooks.analyses != 2 {
		t.Errorf("analyses = %d, want 2", hooks.analyses)
	}
	if hooks.last.Tasks != 3 || hooks.last.Critical != 3 {
		t.Errorf("stats = %+v", hooks.last)
	}
}
