package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperr "github.com/matzehuels/jobtimeline/pkg/errors"
	"github.com/matzehuels/jobtimeline/pkg/graph"
	"github.com/matzehuels/jobtimeline/pkg/observability"
	"github.com/matzehuels/jobtimeline/pkg/render"
	"github.com/matzehuels/jobtimeline/pkg/render/nodelink"
	"github.com/matzehuels/jobtimeline/pkg/render/sink"
	"github.com/matzehuels/jobtimeline/pkg/workflow"
)

// RenderFromLayout renders every requested format from a layout document.
//
// The workflow is only needed for the dot format on timeline layouts; it
// may be nil otherwise, which lets stored layouts render without their
// source document.
func RenderFromLayout(ctx context.Context, l graph.Layout, wf *workflow.Workflow, opts Options) (map[string][]byte, error) {
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	var (
		artifacts map[string][]byte
		err       error
	)
	if l.IsNodelink() {
		artifacts, err = renderNodelink(ctx, l, opts)
	} else {
		artifacts, err = renderTimeline(l, wf, opts)
	}
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

// RenderFromLayoutData renders output from serialized layout data.
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	l, err := graph.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidLayout, err, "invalid layout document")
	}
	return RenderFromLayout(ctx, l, nil, opts)
}

// renderTimeline generates timeline outputs.
func renderTimeline(l graph.Layout, wf *workflow.Workflow, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(l, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(l)
		case FormatDOT:
			if wf == nil {
				return nil, apperr.New(apperr.ErrCodeUnsupported, "dot output needs the workflow document")
			}
			data = []byte(nodelink.ToDOT(wf, nodelink.Options{Detailed: opts.Detailed}))
		default:
			return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported timeline format: %s", format)
		}

		if err != nil {
			return nil, renderError(format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderNodelink generates node-link outputs from the DOT string.
func renderNodelink(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if l.DOT == "" {
		return nil, apperr.New(apperr.ErrCodeInvalidLayout, "nodelink layout missing DOT string")
	}
	artifacts := make(map[string][]byte, len(opts.Formats))

	// Graphviz runs once; PNG and PDF convert its SVG.
	var svg []byte
	graphvizSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, l.DOT)
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = graphvizSVG()
		case FormatPNG:
			if data, err = graphvizSVG(); err == nil {
				data, err = render.ToPNG(data, opts.Scale)
			}
		case FormatPDF:
			if data, err = graphvizSVG(); err == nil {
				data, err = render.ToPDF(data)
			}
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		case FormatDOT:
			data = []byte(l.DOT)
		default:
			return nil, apperr.New(apperr.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, renderError(format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption

	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.Stylesheet != "" {
		svgOpts = append(svgOpts, sink.WithStylesheet(opts.Stylesheet))
	}
	if opts.NoAxes {
		svgOpts = append(svgOpts, sink.WithoutAxes())
	}
	return svgOpts
}

func renderError(format string, err error) error {
	if apperr.CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, render.ErrConverterMissing) {
		return apperr.Wrap(apperr.ErrCodeUnavailable, err, "%s output needs rsvg-convert", format)
	}
	return apperr.Wrap(apperr.ErrCodeInternal, fmt.Errorf("render %s: %w", format, err), "cannot render %s", format)
}
