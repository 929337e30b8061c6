// Package observability lets a host process watch the layout pipeline.
//
// Libraries in this module report events through the accessors [Pipeline],
// [Cache], [Store] and [HTTP]. Nothing is reported until a binary installs
// hooks with [Install]; until then every accessor returns a no-op.
//
//	observability.Install(observability.Hooks{Pipeline: myPipelineHooks{}})
//
// [LogHooks] forwards every event to a charmbracelet logger at debug level.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Hook Interfaces
// =============================================================================

// PipelineHooks receives load, layout and render events.
type PipelineHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, jobCount int, duration time.Duration, err error)

	// OnLayoutComplete reports the number of lanes packed; it is zero for
	// nodelink layouts and failed passes.
	OnLayoutStart(ctx context.Context, vizType string, jobCount int)
	OnLayoutComplete(ctx context.Context, vizType string, lanes int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
	// OnCacheError reports a failed backend call; op is "get" or "set".
	OnCacheError(ctx context.Context, keyType, op string, err error)
}

// StoreHooks receives layout store events.
type StoreHooks interface {
	OnLayoutSaved(ctx context.Context, hash string, err error)
	OnLayoutFetched(ctx context.Context, hash string, err error)
}

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, requestID, method, path string)
	OnResponse(ctx context.Context, requestID, method, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, requestID, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string)                                 {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, time.Duration, error)   {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)                  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)                 {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)             {}
func (NoopCacheHooks) OnCacheError(context.Context, string, string, error) {}

type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLayoutSaved(context.Context, string, error)   {}
func (NoopStoreHooks) OnLayoutFetched(context.Context, string, error) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// Hooks is the set of installed hooks. Nil fields stay no-ops.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	Store    StoreHooks
	HTTP     HTTPHooks
}

func (h Hooks) withDefaults() Hooks {
	if h.Pipeline == nil {
		h.Pipeline = NoopPipelineHooks{}
	}
	if h.Cache == nil {
		h.Cache = NoopCacheHooks{}
	}
	if h.Store == nil {
		h.Store = NoopStoreHooks{}
	}
	if h.HTTP == nil {
		h.HTTP = NoopHTTPHooks{}
	}
	return h
}

var installed atomic.Pointer[Hooks]

func init() { Reset() }

// Install replaces every installed hook at once. Call it at startup,
// before the pipeline or server runs.
func Install(h Hooks) {
	h = h.withDefaults()
	installed.Store(&h)
}

// Reset restores the no-op hooks.
func Reset() { Install(Hooks{}) }

// Installed returns the current hook set with no nil fields.
func Installed() Hooks { return *installed.Load() }

func Pipeline() PipelineHooks { return installed.Load().Pipeline }
func Cache() CacheHooks       { return installed.Load().Cache }
func Store() StoreHooks       { return installed.Load().Store }
func HTTP() HTTPHooks         { return installed.Load().HTTP }
