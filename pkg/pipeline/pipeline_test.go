package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/jobtimeline/pkg/cache"
	apperr "github.com/matzehuels/jobtimeline/pkg/errors"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/storage"
	"github.com/matzehuels/jobtimeline/pkg/timeline"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

func sampleWorkflow() *workflow.Workflow {
	return &workflow.Workflow{
		Name: "etl",
		Jobs: []workflow.Job{
			{EntityName: "extract", SubmitTime: 0, ElapsedTime: 50, Status: true},
			{EntityName: "load", SubmitTime: 50, ElapsedTime: 50},
		},
		DAG: workflow.DAG{
			{Source: "extract", Targets: []string{"load"}},
			{Source: "load", Targets: []string{"report"}},
		},
	}
}

const sampleJSON = `{
  "jobs": [
    {"entityName": "extract", "submitTime": 0, "elapsedTime": 50, "status": true},
    {"entityName": "load", "submitTime": 50, "elapsedTime": 50, "status": false}
  ],
  "dag": {"extract": ["load"], "load": ["report"]}
}`

func newTestRunner(t *testing.T) (*Runner, *storage.MemoryStore) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	store := storage.NewMemoryStore()
	return NewRunner(c, nil, store, nil), store
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateVizType(t *testing.T) {
	tests := []struct {
		vizType string
		wantErr bool
	}{
		{"timeline", false},
		{"nodelink", false},
		{"tower", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVizType(tt.vizType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVizType(%q) error = %v, wantErr %v", tt.vizType, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender: %v", err)
	}

	if opts.VizType != DefaultVizType {
		t.Errorf("VizType = %q, want %q", opts.VizType, DefaultVizType)
	}
	if opts.Width != DefaultWidth {
		t.Errorf("Width = %v, want %v", opts.Width, DefaultWidth)
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}
	if diff := cmp.Diff(timeline.DefaultOptions(), opts.TimelineOptions()); diff != "" {
		t.Errorf("default TimelineOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("missing input should fail")
	}

	opts = Options{Input: "etl.json", InputFormat: "xml"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("unknown input format should fail")
	}

	opts = Options{Workflow: sampleWorkflow()}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("inline workflow should pass: %v", err)
	}
}

func TestOptionsValidateForLayoutRejectsBadGeometry(t *testing.T) {
	opts := Options{NodeHeight: -1}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("negative node height should fail")
	}

	opts = Options{Width: 60}
	if err := opts.ValidateForLayout(); !errors.Is(err, timeline.ErrInvalidOptions) {
		t.Errorf("width too narrow for a job bar: err = %v, want ErrInvalidOptions", err)
	}

	opts = Options{TickCount: timeline.MaxTickCount + 1}
	if err := opts.ValidateForLayout(); !errors.Is(err, timeline.ErrInvalidOptions) {
		t.Errorf("tick count over the bound: err = %v, want ErrInvalidOptions", err)
	}

	opts = Options{VizType: "tower"}
	if err := opts.ValidateForLayout(); err == nil {
		t.Error("unknown viz type should fail")
	}
}

func TestTimelineOptionsOverrides(t *testing.T) {
	m := timeline.Margins{Top: 1, Bottom: 2, Left: 3, Right: 4}
	opts := Options{
		Width:         1000,
		Height:        300,
		NodeHeight:    40,
		LabelFontSize: 20,
		MaxLabelWidth: 260,
		AxisPadding:   10,
		Padding:       5,
		Margins:       &m,
		TickCount:     4,
	}
	got := opts.TimelineOptions()
	want := timeline.Options{
		Width:         1000,
		Height:        300,
		NodeHeight:    40,
		LabelFontSize: 20,
		MaxLabelWidth: 260,
		AxisPadding:   10,
		SVGPadding:    5,
		Margins:       m,
		TickCount:     4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("TimelineOptions mismatch (-want +got):\n%s", diff)
	}
}

func TestLayoutHash(t *testing.T) {
	base := Options{}
	base.SetLayoutDefaults()

	h := LayoutHash("abc", base)
	if err := apperr.ValidateHash(h); err != nil {
		t.Fatalf("LayoutHash is not a valid hash: %v", err)
	}
	if again := LayoutHash("abc", base); again != h {
		t.Errorf("LayoutHash not stable: %s vs %s", h, again)
	}
	if other := LayoutHash("abd", base); other == h {
		t.Error("different workflows should hash differently")
	}

	wide := base
	wide.Width = 1200
	if LayoutHash("abc", wide) == h {
		t.Error("different widths should hash differently")
	}

	// Render-only settings do not change the layout.
	titled := base
	titled.Title = "nightly"
	titled.Formats = []string{FormatPNG}
	if LayoutHash("abc", titled) != h {
		t.Error("render options should not change the layout hash")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nightly.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	wf, err := Load(context.Background(), Options{Input: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if wf.Name != "nightly" {
		t.Errorf("Name = %q, want %q", wf.Name, "nightly")
	}
	if len(wf.Jobs) != 2 {
		t.Errorf("len(Jobs) = %d, want 2", len(wf.Jobs))
	}
}

func TestLoadFormatOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.txt")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), Options{Input: path}); !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("Load without format = %v, want INVALID_FORMAT", err)
	}
	if _, err := Load(context.Background(), Options{Input: path, InputFormat: "json"}); err != nil {
		t.Errorf("Load with format override: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"jobs": [{"submitTime": 1}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts Options
		code apperr.Code
	}{
		{"missing file", Options{Input: filepath.Join(dir, "nope.json")}, apperr.ErrCodeFileNotFound},
		{"missing entity name", Options{Input: bad}, apperr.ErrCodeInvalidWorkflow},
		{"control character", Options{Workflow: &workflow.Workflow{
			Jobs: []workflow.Job{{EntityName: "a\x00b"}},
		}}, apperr.ErrCodeInvalidWorkflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), tt.opts)
			if got := apperr.CodeOf(err); got != tt.code {
				t.Errorf("Load() code = %q (%v), want %q", got, err, tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r, store := newTestRunner(t)
	opts := Options{Workflow: sampleWorkflow(), Formats: []string{FormatSVG, FormatJSON, FormatDOT}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}
	wantStats := Stats{Jobs: 2, Finished: 1, Sources: 2, Links: 2, Lanes: 2}
	gotStats := first.Stats
	gotStats.LoadTime, gotStats.LayoutTime, gotStats.RenderTime = 0, 0, 0
	if diff := cmp.Diff(wantStats, gotStats); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}

	if first.Layout.Title != "etl" {
		t.Errorf("Layout.Title = %q, want %q", first.Layout.Title, "etl")
	}
	if err := apperr.ValidateHash(first.Layout.Hash); err != nil {
		t.Errorf("Layout.Hash: %v", err)
	}
	if err := apperr.ValidateHash(first.WorkflowHash); err != nil {
		t.Errorf("WorkflowHash: %v", err)
	}
	if !bytes.HasPrefix(first.Artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact does not start with <svg: %.40q", first.Artifacts[FormatSVG])
	}
	if !strings.HasPrefix(string(first.Artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %.40q, want digraph", first.Artifacts[FormatDOT])
	}
	fromJSON, err := graph.UnmarshalLayout(first.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if diff := cmp.Diff(first.Layout, fromJSON); diff != "" {
		t.Errorf("json artifact mismatch (-want +got):\n%s", diff)
	}

	saved, err := store.GetLayout(ctx, first.Layout.Hash)
	if err != nil {
		t.Fatalf("layout not saved: %v", err)
	}
	if diff := cmp.Diff(first.Layout, saved); diff != "" {
		t.Errorf("saved layout mismatch (-want +got):\n%s", diff)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Layout, second.Layout); diff != "" {
		t.Errorf("cached layout mismatch (-want +got):\n%s", diff)
	}

	// Refresh bypasses both caches.
	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v, want misses", third.CacheInfo)
	}
}

func TestExecuteMissingInput(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{})
	if !apperr.Is(err, apperr.ErrCodeInvalidOptions) {
		t.Errorf("Execute() = %v, want INVALID_OPTIONS", err)
	}
}

func TestCorruptCachedLayoutIsRecomputed(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)
	wf := sampleWorkflow()
	opts := Options{}
	opts.SetLayoutDefaults()

	wfHash, err := WorkflowHash(wf)
	if err != nil {
		t.Fatal(err)
	}
	key := r.Keyer.LayoutKey(wfHash, opts.LayoutKeyOpts())
	if err := r.Cache.Set(ctx, key, []byte("{not json"), cache.TTLLayout); err != nil {
		t.Fatal(err)
	}

	l, hit, err := r.ComputeLayoutWithCacheInfo(ctx, wf, opts)
	if err != nil {
		t.Fatalf("ComputeLayoutWithCacheInfo: %v", err)
	}
	if hit {
		t.Error("corrupt entry should count as a miss")
	}
	if len(l.Nodes) != 2 {
		t.Errorf("len(Nodes) = %d, want 2", len(l.Nodes))
	}

	// The fresh layout replaced the corrupt entry.
	if _, hit, _ := r.ComputeLayoutWithCacheInfo(ctx, wf, opts); !hit {
		t.Error("recomputed layout should be cached")
	}
}

func TestNodelinkLayout(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil, nil)
	opts := Options{VizType: graph.VizTypeNodelink, Formats: []string{FormatDOT, FormatJSON}}

	l, err := r.ComputeLayout(ctx, sampleWorkflow(), opts)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}
	if !l.IsNodelink() || l.Engine != DefaultEngine {
		t.Errorf("layout = %s/%s, want nodelink/%s", l.VizType, l.Engine, DefaultEngine)
	}
	if !strings.Contains(l.DOT, `"report"`) {
		t.Errorf("DOT should mention the unobserved job:\n%s", l.DOT)
	}

	artifacts, err := r.Render(ctx, l, nil, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(artifacts[FormatDOT]) != l.DOT {
		t.Error("dot artifact should be the layout's DOT string")
	}
}

func TestRenderDotNeedsWorkflow(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil, nil)
	l, err := r.ComputeLayout(ctx, sampleWorkflow(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Render(ctx, l, nil, Options{Formats: []string{FormatDOT}})
	if !apperr.Is(err, apperr.ErrCodeUnsupported) {
		t.Errorf("Render(dot, nil workflow) = %v, want UNSUPPORTED", err)
	}
}

func TestRenderFromLayoutData(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil, nil)
	l, err := r.ComputeLayout(ctx, sampleWorkflow(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{Title: "nightly run", NoAxes: true}
	opts.SetRenderDefaults()
	artifacts, err := RenderFromLayoutData(ctx, data, opts)
	if err != nil {
		t.Fatalf("RenderFromLayoutData: %v", err)
	}
	svg := string(artifacts[FormatSVG])
	if !strings.Contains(svg, "<title>nightly run</title>") {
		t.Error("svg should carry the requested title")
	}
	if !strings.Contains(svg, `id="extract"`) {
		t.Error("svg should contain the extract node")
	}

	if _, err := RenderFromLayoutData(ctx, []byte(`{"viz_type":"tower"}`), opts); !apperr.Is(err, apperr.ErrCodeInvalidLayout) {
		t.Errorf("bad layout data = %v, want INVALID_LAYOUT", err)
	}
}

func TestStoredLayout(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRunner(t)

	if _, err := r.StoredLayout(ctx, "short"); !apperr.Is(err, apperr.ErrCodeInvalidHash) {
		t.Errorf("StoredLayout(short) = %v, want INVALID_HASH", err)
	}
	missing := strings.Repeat("0", 64)
	if _, err := r.StoredLayout(ctx, missing); !apperr.Is(err, apperr.ErrCodeLayoutNotFound) {
		t.Errorf("StoredLayout(missing) = %v, want LAYOUT_NOT_FOUND", err)
	}

	l, err := r.ComputeLayout(ctx, sampleWorkflow(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.StoredLayout(ctx, l.Hash)
	if err != nil {
		t.Fatalf("StoredLayout: %v", err)
	}
	if diff := cmp.Diff(l, got); diff != "" {
		t.Errorf("stored layout mismatch (-want +got):\n%s", diff)
	}

	noStore := NewRunner(nil, nil, nil, nil)
	if _, err := noStore.StoredLayout(ctx, l.Hash); !apperr.Is(err, apperr.ErrCodeUnavailable) {
		t.Errorf("StoredLayout without store = %v, want UNAVAILABLE", err)
	}
}
