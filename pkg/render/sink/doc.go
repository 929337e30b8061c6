// Package sink provides output format renderers for timeline layouts.
//
// # Overview
//
// A "sink" transforms a serialized [graph.Layout] into a final output
// format. This package provides renderers for:
//
//   - SVG: the timeline chart
//   - JSON: layout data export for external tools
//   - PDF: print-ready output (requires rsvg-convert)
//   - PNG: raster image output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] draws the chart inside a frame of the layout's width and
// height. The chart group is translated by the left and top margins; a
// time axis runs along its top edge and another along y = ChartHeight.
// Each job is a rect with class "node" (plus "finished" when done) and the
// job name as id. Links are three-point paths with the arrowhead drawn as
// a marker on the midpoint, "finished" or "unfinished" depending on the
// link. Dangling stubs end in a small circle. Labels are drawn twice: a
// thick light shadow first, then the text.
//
//	svg := sink.RenderSVG(layout,
//	    sink.WithTitle("nightly-etl"),
//	    sink.WithStylesheet(css),
//	)
//
// # SVG Options
//
//   - [WithTitle]: Adds a <title> element
//   - [WithStylesheet]: Replaces the built-in CSS
//   - [WithoutAxes]: Omits both time axes
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] generate SVG first, then convert via
// [render.ToPDF] and [render.ToPNG]:
//
//	pdf, err := sink.RenderPDF(layout, sink.WithPDFSVGOptions(opts...))
//	png, err := sink.RenderPNG(layout, sink.WithScale(2))
//
// [graph.Layout]: github.com/matzehuels/jobtimeline/pkg/graph.Layout
// [render.ToPDF]: github.com/matzehuels/jobtimeline/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/jobtimeline/pkg/render.ToPNG
package sink
