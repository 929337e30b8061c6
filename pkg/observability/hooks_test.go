package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recordingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopStoreHooks
	mu     sync.Mutex
	events []string
}

func (r *recordingHooks) record(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingHooks) OnLayoutComplete(_ context.Context, vizType string, lanes int, _ time.Duration, _ error) {
	r.record(vizType)
}

func (r *recordingHooks) OnCacheMiss(_ context.Context, keyType string) { r.record("miss:" + keyType) }

func (r *recordingHooks) OnLayoutSaved(_ context.Context, hash string, _ error) {
	r.record("saved:" + hash)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	h := Installed()
	if _, ok := h.Pipeline.(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline = %T", h.Pipeline)
	}
	if _, ok := h.Cache.(NoopCacheHooks); !ok {
		t.Errorf("Cache = %T", h.Cache)
	}
	if _, ok := h.Store.(NoopStoreHooks); !ok {
		t.Errorf("Store = %T", h.Store)
	}
	if _, ok := h.HTTP.(NoopHTTPHooks); !ok {
		t.Errorf("HTTP = %T", h.HTTP)
	}

	ctx := context.Background()
	Pipeline().OnLayoutComplete(ctx, "timeline", 3, time.Second, nil)
	Cache().OnCacheError(ctx, "layout", "get", errors.New("down"))
	Store().OnLayoutFetched(ctx, "abc", nil)
	HTTP().OnError(ctx, "req-1", "POST", "/v1/layout", nil)
}

func TestInstallKeepsNoopForNilFields(t *testing.T) {
	rec := &recordingHooks{}
	Install(Hooks{Pipeline: rec, Store: rec})
	defer Reset()

	if Pipeline() != PipelineHooks(rec) {
		t.Error("Pipeline() did not return installed hooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T, want no-op", Cache())
	}

	ctx := context.Background()
	Pipeline().OnLayoutComplete(ctx, "timeline", 2, 0, nil)
	Store().OnLayoutSaved(ctx, "abc", nil)
	Cache().OnCacheMiss(ctx, "layout") // goes to the no-op

	want := []string{"timeline", "saved:abc"}
	if strings.Join(rec.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestInstallConcurrentWithReads(t *testing.T) {
	defer Reset()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Install(Hooks{Cache: &recordingHooks{}})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheHit(context.Background(), "artifact")
		}()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	NewLogHooks(logger).Register()
	defer Reset()

	ctx := context.Background()
	Pipeline().OnLayoutStart(ctx, "timeline", 12)
	Pipeline().OnLayoutComplete(ctx, "timeline", 4, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "layout")
	Store().OnLayoutSaved(ctx, "deadbeef", nil)
	HTTP().OnResponse(ctx, "req-7", "GET", "/healthz", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"layout start", "jobs=12", "lanes=4", "cache miss", "hash=deadbeef", "id=req-7", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
