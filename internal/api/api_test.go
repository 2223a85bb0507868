package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ganttsync/pkg/observability"
	"github.com/matzehuels/ganttsync/pkg/pipeline"
)

const chart = "gantt\n    title Release\n    section Build\n    Build UI :ui, 2024-01-01, 3d %% assignee: Bob\n    Polish :after ui, 2d\n"

func newTestServer(t *testing.T, maxBody int64) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger, Config{MaxBodyBytes: maxBody})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func errorCode(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("%s = %q, want a UUID", RequestIDHeader, resp.Header.Get(RequestIDHeader))
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t, 0)
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("%s = %q, want %q", RequestIDHeader, got, id)
	}
}

func TestParse(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, out := post(t, ts, "/v1/parse", map[string]string{"source": chart})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}
	c, _ := out["chart"].(map[string]any)
	tasks, _ := c["tasks"].([]any)
	if len(tasks) != 2 {
		t.Errorf("tasks = %d, want 2", len(tasks))
	}
}

func TestAnalyze(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, out := post(t, ts, "/v1/analyze", map[string]any{
		"source":    chart,
		"today":     "2024-01-02",
		"assignees": []string{"bob"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}
	analysis, _ := out["analysis"].(map[string]any)
	if crit, _ := analysis["criticalSet"].([]any); len(crit) != 2 {
		t.Errorf("criticalSet = %v, want both tasks", analysis["criticalSet"])
	}
	rows, _ := out["rows"].([]any)
	// The section row plus Build UI; Polish has no assignee.
	if len(rows) != 2 {
		t.Errorf("rows = %v, want section and one task", rows)
	}
}

func TestAnalyzeRejectsBadToday(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, out := post(t, ts, "/v1/analyze", map[string]any{"source": chart, "today": "tomorrow"})
	if resp.StatusCode != http.StatusBadRequest || errorCode(out) != "INVALID_DATE" {
		t.Errorf("status = %d code = %q, want 400 INVALID_DATE", resp.StatusCode, errorCode(out))
	}
}

func TestEdit(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, out := post(t, ts, "/v1/edit/update", map[string]any{
		"source": chart,
		"task":   "Polish",
		"update": map[string]any{"startDate": "2024-02-01"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}
	if out["changed"] != true {
		t.Error("changed = false")
	}
	if out["notice"] != "promoted-to-explicit" {
		t.Errorf("notice = %v", out["notice"])
	}
	if msg, _ := out["message"].(string); msg == "" {
		t.Error("missing notice message")
	}
	if src, _ := out["source"].(string); !strings.Contains(src, "    Polish :2024-02-01, 2d\n") {
		t.Errorf("source = %q", src)
	}
}

func TestEditInsert(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, out := post(t, ts, "/v1/edit/insert", map[string]any{
		"source":  chart,
		"task":    "ui",
		"newTask": map[string]any{"label": "QA", "durationDays": 2},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}
	if src, _ := out["source"].(string); !strings.Contains(src, "    QA :ui_2, after ui, 2d\n") {
		t.Errorf("source = %q", src)
	}
}

func TestEditErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown task", "/v1/edit/clear-status", map[string]any{"source": chart, "task": "Launch"}, http.StatusNotFound, "TASK_NOT_FOUND"},
		{"unknown op", "/v1/edit/explode", map[string]any{"source": chart, "task": "ui"}, http.StatusBadRequest, "UNSUPPORTED"},
		{"schema violation", "/v1/edit/update", map[string]any{"source": chart, "task": "ui", "update": map[string]any{"colour": "red"}}, http.StatusBadRequest, "INVALID_PATCH"},
		{"unknown field", "/v1/edit/update", map[string]any{"source": chart, "tsak": "ui"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"null byte", "/v1/edit/clear-status", map[string]any{"source": "gantt\x00", "task": "ui"}, http.StatusBadRequest, "INVALID_INPUT"},
	}
	ts := newTestServer(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != tt.status || errorCode(out) != tt.code {
				t.Errorf("status = %d code = %q, want %d %s", resp.StatusCode, errorCode(out), tt.status, tt.code)
			}
		})
	}
}

func TestSchemaProblemsAreReported(t *testing.T) {
	ts := newTestServer(t, 0)
	_, out := post(t, ts, "/v1/edit/update", map[string]any{
		"source": chart,
		"task":   "ui",
		"update": map[string]any{"endDate": "soon"},
	})
	e, _ := out["error"].(map[string]any)
	problems, _ := e["problems"].([]any)
	if len(problems) == 0 {
		t.Fatalf("no problems in %v", out)
	}
}

func TestBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, 64)
	resp, out := post(t, ts, "/v1/parse", map[string]string{"source": strings.Repeat("x", 200)})
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413 (%v)", resp.StatusCode, out)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, 0)
	resp, err := http.Get(ts.URL + "/v2/nothing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t, 0)
	post(t, ts, "/v1/parse", map[string]string{"source": chart})
	post(t, ts, "/v1/edit/clear-status", map[string]string{"source": chart, "task": "nope"})

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != 200 || hooks.statuses[1] != 404 {
		t.Errorf("statuses = %v, want [200 404]", hooks.statuses)
	}
}

func TestStartStop(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, logger), logger, Config{Addr: "127.0.0.1:0"})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
