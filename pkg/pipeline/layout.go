package pipeline

import (
	"context"
	"time"

	apperr "github.com/matzehuels/jobtimeline/pkg/errors"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/observability"
	"github.com/matzehuels/jobtimeline/pkg/render/nodelink"
	"github.com/matzehuels/jobtimeline/pkg/timeline"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout computes the layout document for any visualization type.
// The returned layout carries the workflow name as its title; Hash is left
// for the caller to fill in.
func GenerateLayout(ctx context.Context, wf *workflow.Workflow, opts Options) (graph.Layout, error) {
	observability.Pipeline().OnLayoutStart(ctx, opts.VizType, len(wf.Jobs))
	start := time.Now()

	var (
		l   graph.Layout
		err error
	)
	if opts.IsNodelink() {
		l = generateNodelinkLayout(wf, opts)
	} else {
		l, err = generateTimelineLayout(wf, opts)
	}
	lanes := 0
	if err == nil && l.IsTimeline() {
		lanes = l.MaxLane + 1
	}
	observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, lanes, time.Since(start), err)
	return l, err
}

// =============================================================================
// Timeline
// =============================================================================

func generateTimelineLayout(wf *workflow.Workflow, opts Options) (graph.Layout, error) {
	g, err := wf.Graph()
	if err != nil {
		return graph.Layout{}, apperr.Wrap(apperr.ErrCodeInvalidWorkflow, err, "invalid workflow")
	}
	tl, err := timeline.Compute(g, opts.TimelineOptions())
	if err != nil {
		return graph.Layout{}, apperr.Wrap(apperr.ErrCodeInvalidOptions, err, "invalid drawing options")
	}

	l := graph.FromTimeline(tl)
	l.Title = wf.Name
	if err := l.Validate(); err != nil {
		return graph.Layout{}, apperr.Wrap(apperr.ErrCodeInternal, err, "layout pass produced an invalid layout")
	}
	opts.Logger.Debug("packed lanes",
		"jobs", len(l.Nodes),
		"lanes", l.MaxLane+1,
		"edges", len(l.Edges),
		"stubs", len(l.Stubs))
	return l, nil
}

// =============================================================================
// Nodelink
// =============================================================================

func generateNodelinkLayout(wf *workflow.Workflow, opts Options) graph.Layout {
	return graph.Layout{
		VizType: graph.VizTypeNodelink,
		Title:   wf.Name,
		Width:   opts.Width,
		Height:  opts.Height,
		DOT:     nodelink.ToDOT(wf, nodelink.Options{Detailed: opts.Detailed}),
		Engine:  DefaultEngine,
	}
}
