package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/jobtimeline/pkg/buildinfo"
	"github.com/matzehuels/jobtimeline/pkg/cache"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/pipeline"
	"github.com/matzehuels/jobtimeline/pkg/storage"
)

const workflowJSON = `{
  "jobs": [
    {"entityName": "extract", "submitTime": 0, "elapsedTime": 50, "status": true},
    {"entityName": "load", "submitTime": 50, "elapsedTime": 50, "status": false}
  ],
  "dag": {"extract": ["load"]}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := pipeline.NewRunner(c, nil, storage.NewMemoryStore(), nil)
	ts := httptest.NewServer(New(Config{Runner: runner}).Handler())
	t.Cleanup(func() {
		ts.Close()
		runner.Close()
	})
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" || body["version"] != buildinfo.Get().Version || body["commit"] == "" {
		t.Errorf("health body = %v", body)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request ID = %q, want abc-123", got)
	}
}

func TestLayout(t *testing.T) {
	ts := newTestServer(t)
	body := `{"workflow": ` + workflowJSON + `, "width": 600}`

	resp := post(t, ts, "/v1/layout", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %+v", resp.StatusCode, decodeError(t, resp))
	}
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	var lr LayoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lr.Layout.VizType != graph.VizTypeTimeline {
		t.Errorf("viz type = %q, want timeline", lr.Layout.VizType)
	}
	if len(lr.Layout.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(lr.Layout.Nodes))
	}
	if len(lr.Layout.Hash) != 64 {
		t.Errorf("hash = %q, want 64 hex chars", lr.Layout.Hash)
	}

	again := post(t, ts, "/v1/layout", body)
	if got := again.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}

	stored := get(t, ts, "/v1/layouts/"+lr.Layout.Hash)
	if stored.StatusCode != http.StatusOK {
		t.Fatalf("stored status = %d, want 200", stored.StatusCode)
	}
	var l graph.Layout
	if err := json.NewDecoder(stored.Body).Decode(&l); err != nil {
		t.Fatalf("decode stored: %v", err)
	}
	if l.Hash != lr.Layout.Hash {
		t.Errorf("stored hash = %q, want %q", l.Hash, lr.Layout.Hash)
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"workflow":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"workflow": ` + workflowJSON + `, "colour": "red"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing workflow", `{"width": 600}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"input path", `{"input": "/etc/passwd"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad width", `{"workflow": ` + workflowJSON + `, "width": -5}`, http.StatusBadRequest, "INVALID_OPTIONS"},
		{"width below axis floor", `{"workflow": ` + workflowJSON + `, "width": 60}`, http.StatusBadRequest, "INVALID_OPTIONS"},
		{"too many ticks", `{"workflow": ` + workflowJSON + `, "tick_count": 5000000}`, http.StatusBadRequest, "INVALID_OPTIONS"},
		{"missing name", `{"workflow": {"jobs": [{"submitTime": 1}], "dag": {}}}`, http.StatusBadRequest, "INVALID_WORKFLOW"},
	}

	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/layout", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decodeError(t, resp)
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", e.Code, tt.code, e.Message)
			}
			if e.RequestID == "" {
				t.Error("missing request_id")
			}
		})
	}
}

func TestRenderSingleFormat(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/render", `{"workflow": `+workflowJSON+`, "formats": ["svg"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %+v", resp.StatusCode, decodeError(t, resp))
	}
	if got := resp.Header.Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", got)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Errorf("body is not SVG: %.80s", buf.String())
	}
	if resp.Header.Get("X-Layout-Hash") == "" {
		t.Error("missing X-Layout-Hash")
	}
}

func TestRenderSeveralFormats(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/render", `{"workflow": `+workflowJSON+`, "formats": ["svg", "json"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %+v", resp.StatusCode, decodeError(t, resp))
	}
	var rr RenderResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Contains(rr.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	if _, err := graph.UnmarshalLayout(rr.Artifacts["json"]); err != nil {
		t.Errorf("json artifact is not a layout: %v", err)
	}
	if rr.Lanes != 2 {
		t.Errorf("lanes = %d, want 2", rr.Lanes)
	}
}

func TestStoredLayoutErrors(t *testing.T) {
	ts := newTestServer(t)

	resp := get(t, ts, "/v1/layouts/not-a-hash")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid hash status = %d, want 400", resp.StatusCode)
	}

	resp = get(t, ts, "/v1/layouts/"+strings.Repeat("a", 64))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown hash status = %d, want 404", resp.StatusCode)
	}
	if e := decodeError(t, resp); e.Code != "LAYOUT_NOT_FOUND" {
		t.Errorf("code = %q, want LAYOUT_NOT_FOUND", e.Code)
	}
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t)

	if resp := get(t, ts, "/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", resp.StatusCode)
	}
	if resp := get(t, ts, "/v1/layout"); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/layout status = %d, want 405", resp.StatusCode)
	}
}

func TestBodyLimit(t *testing.T) {
	c := cache.NewNullCache()
	runner := pipeline.NewRunner(c, nil, nil, nil)
	ts := httptest.NewServer(New(Config{Runner: runner, MaxBodyBytes: 64}).Handler())
	defer ts.Close()

	resp := post(t, ts, "/v1/layout", `{"workflow": `+workflowJSON+`}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
