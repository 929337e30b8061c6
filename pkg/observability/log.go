package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by logging at debug level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h for every event category.
func (h *LogHooks) Register() {
	Install(Hooks{Pipeline: h, Cache: h, Store: h, HTTP: h})
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("load start", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, jobCount int, d time.Duration, err error) {
	h.Logger.Debug("load complete", "source", source, "jobs", jobCount, "took", d, "err", err)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, vizType string, jobCount int) {
	h.Logger.Debug("layout start", "viz", vizType, "jobs", jobCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, vizType string, lanes int, d time.Duration, err error) {
	h.Logger.Debug("layout complete", "viz", vizType, "lanes", lanes, "took", d, "err", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render complete", "formats", formats, "took", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnCacheError(_ context.Context, keyType, op string, err error) {
	h.Logger.Debug("cache error", "type", keyType, "op", op, "err", err)
}

func (h *LogHooks) OnLayoutSaved(_ context.Context, hash string, err error) {
	h.Logger.Debug("layout saved", "hash", hash, "err", err)
}

func (h *LogHooks) OnLayoutFetched(_ context.Context, hash string, err error) {
	h.Logger.Debug("layout fetched", "hash", hash, "err", err)
}

func (h *LogHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.Logger.Debug("request", "id", requestID, "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "id", requestID, "method", method, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, requestID, method, path string, err error) {
	h.Logger.Debug("request failed", "id", requestID, "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ StoreHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
