package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/jobtimeline/pkg/cache"
	apperr "github.com/matzehuels/jobtimeline/pkg/errors"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/observability"
	"github.com/matzehuels/jobtimeline/pkg/storage"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner holds no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  storage.Store // Optional; computed layouts are saved here
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and store.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// A nil store disables persistence.
func NewRunner(c cache.Cache, keyer cache.Keyer, store storage.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidOptions, err, "invalid options")
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	wf, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Workflow = wf
	result.Stats.LoadTime = time.Since(loadStart)
	ws := wf.Stats()
	result.Stats.Jobs = ws.Jobs
	result.Stats.Finished = ws.Finished
	result.Stats.Sources = ws.Sources
	result.Stats.Links = ws.Links

	r.Logger.Info("loaded workflow",
		"name", wf.Name,
		"jobs", ws.Jobs,
		"links", ws.Links,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, wf, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	if layout.IsTimeline() {
		result.Stats.Lanes = layout.MaxLane + 1
	}
	result.WorkflowHash, _ = WorkflowHash(wf)

	r.Logger.Info("computed layout",
		"viz", layout.VizType,
		"lanes", result.Stats.Lanes,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, wf, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the workflow named by opts.
func (r *Runner) Load(ctx context.Context, opts Options) (*workflow.Workflow, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "nothing to load")
	}
	return Load(ctx, opts)
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info. Fresh layouts are also saved to the runner's store.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, wf *workflow.Workflow, opts Options) (graph.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, apperr.Wrap(apperr.ErrCodeInvalidOptions, err, "invalid layout options")
	}

	wfHash, err := WorkflowHash(wf)
	if err != nil {
		return graph.Layout{}, false, apperr.Wrap(apperr.ErrCodeInvalidWorkflow, err, "cannot hash workflow")
	}
	cacheKey := r.Keyer.LayoutKey(wfHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, ok := r.cachedLayout(ctx, cacheKey); ok {
			return cached, true, nil
		}
	}

	layout, err := GenerateLayout(ctx, wf, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	layout.Hash = LayoutHash(wfHash, opts)

	if data, err := graph.MarshalLayout(layout); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "key", cacheKey, "err", err)
			observability.Cache().OnCacheError(ctx, "layout", "set", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	if r.Store != nil {
		err := r.Store.SaveLayout(ctx, layout)
		observability.Store().OnLayoutSaved(ctx, layout.Hash, err)
		if err != nil {
			return graph.Layout{}, false, apperr.Wrap(apperr.ErrCodeUnavailable, err, "cannot save layout")
		}
	}

	return layout, false, nil
}

// cachedLayout returns the layout under key if it is present and decodes.
// Undecodable entries are dropped.
func (r *Runner) cachedLayout(ctx context.Context, key string) (graph.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		observability.Cache().OnCacheError(ctx, "layout", "get", err)
		return graph.Layout{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		return graph.Layout{}, false
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		r.Logger.Warn("dropping cached layout", "key", key, "err", fmt.Errorf("%w: %v", cache.ErrCorrupt, err))
		_ = r.Cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return graph.Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return l, true
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, wf *workflow.Workflow, opts Options) (graph.Layout, error) {
	layout, _, err := r.ComputeLayoutWithCacheInfo(ctx, wf, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// wf may be nil when the dot format is not requested for a timeline layout.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, wf *workflow.Workflow, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, apperr.Wrap(apperr.ErrCodeInvalidOptions, err, "invalid render options")
	}

	// Compute cache key from layout data
	layoutData, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, apperr.Wrap(apperr.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil {
				observability.Cache().OnCacheError(ctx, "artifact", "get", err)
			}
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	rendered, err := RenderFromLayout(ctx, layout, wf, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			observability.Cache().OnCacheError(ctx, "artifact", "set", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, wf *workflow.Workflow, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, wf, opts)
	return artifacts, err
}

// StoredLayout fetches a saved layout by hash.
func (r *Runner) StoredLayout(ctx context.Context, hash string) (graph.Layout, error) {
	if err := apperr.ValidateHash(hash); err != nil {
		return graph.Layout{}, err
	}
	if r.Store == nil {
		return graph.Layout{}, apperr.New(apperr.ErrCodeUnavailable, "no layout store configured")
	}
	l, err := r.Store.GetLayout(ctx, hash)
	observability.Store().OnLayoutFetched(ctx, hash, err)
	if errors.Is(err, storage.ErrNotFound) {
		return graph.Layout{}, apperr.Wrap(apperr.ErrCodeLayoutNotFound, err, "layout %s not found", hash)
	}
	if err != nil {
		return graph.Layout{}, apperr.Wrap(apperr.ErrCodeUnavailable, err, "cannot read layout %s", hash)
	}
	return l, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
