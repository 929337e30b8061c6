// Package render provides output rendering for computed layouts.
//
// # Overview
//
// This package contains the rendering pipeline that turns layouts into
// visual outputs. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Timeline charts (in [sink] subpackage)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). Both subpackages use them.
//
//	svg := sink.RenderSVG(layout, opts...)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// When rsvg-convert is not on PATH the error wraps [ErrConverterMissing].
//
// # Timeline Charts
//
// The [sink] subpackage draws a serialized timeline layout: lanes of job
// boxes between two time axes, elbow links with arrowheads at their
// midpoint, dangling stubs for unobserved jobs and a label under each box.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the workflow's dependency map as a
// directed graph using Graphviz.
//
//	dot := nodelink.ToDOT(wf, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [sink]: github.com/matzehuels/jobtimeline/pkg/render/sink
// [nodelink]: github.com/matzehuels/jobtimeline/pkg/render/nodelink
package render
