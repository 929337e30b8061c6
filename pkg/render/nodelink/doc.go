// Package nodelink renders a workflow's dependency map as a node-link
// diagram.
//
// # Overview
//
// The timeline chart shows when jobs ran; this package shows how they are
// wired. Every name in the dag becomes a node, including names that were
// never observed as jobs.
//
// # Usage
//
// Convert a workflow to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(wf, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// PDF and PNG come from converting that SVG with [render.ToPDF] and
// [render.ToPNG]. Long-lived callers that want to release Graphviz can hold
// their own [Renderer] and Close it.
//
// # Node Styles
//
//   - Finished jobs: filled green boxes
//   - Unfinished jobs: white boxes
//   - Unobserved names: dashed grey ellipses
//
// Links between two finished jobs are solid; all others are dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
