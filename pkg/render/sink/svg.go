package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/jobtimeline/pkg/graph"
)

// DefaultStylesheet is the CSS embedded in every chart unless replaced.
const DefaultStylesheet = `
    .axis path, .axis line { fill: none; stroke: #000; shape-rendering: crispEdges; }
    .axis text { font: 10px sans-serif; }
    rect.node { fill: #ddd; stroke: #888; stroke-width: 1px; }
    rect.node.finished { fill: #8fbf8f; stroke: #5f8f5f; }
    path.link { fill: none; stroke: #bbb; stroke-width: 2px; }
    path.link.finished { stroke: #5f8f5f; }
    line.stub { stroke: #999; stroke-width: 2px; }
    marker#finished { fill: #5f8f5f; }
    marker#unfinished { fill: #bbb; }
    marker#circle { fill: #fff; stroke: #999; stroke-width: 2px; }
    text.joblabel { text-anchor: middle; fill: #000; }
    text.joblabel.shadow { stroke: #fff; stroke-width: 3px; stroke-opacity: 0.8; }`

// tickLength is the length of an axis tick mark.
const tickLength = 6

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	stylesheet string
	axes       bool
}

// WithTitle adds a <title> element to the document.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithStylesheet replaces [DefaultStylesheet].
func WithStylesheet(css string) SVGOption { return func(r *svgRenderer) { r.stylesheet = css } }

// WithoutAxes omits the top and bottom time axes.
func WithoutAxes() SVGOption { return func(r *svgRenderer) { r.axes = false } }

// RenderSVG draws a timeline layout. The layout title is used when no
// [WithTitle] option is given.
func RenderSVG(l graph.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	if r.title == "" {
		r.title = l.Title
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	fmt.Fprintf(&buf, "  <style><![CDATA[%s\n  ]]></style>\n", escapeCDATA(r.stylesheet))
	renderDefs(&buf)

	fmt.Fprintf(&buf, `  <g transform="translate(%.1f,%.1f)">`+"\n", l.Margins.Left, l.Margins.Top)
	if r.axes {
		renderAxis(&buf, l, 0, tickLength)
		renderAxis(&buf, l, l.ChartHeight, -tickLength)
	}
	renderNodes(&buf, l)
	renderStubs(&buf, l)
	renderLinks(&buf, l)
	renderLabels(&buf, l)
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// escapeCDATA splits every "]]>" so the text cannot close its CDATA section.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{stylesheet: DefaultStylesheet, axes: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	for _, id := range []string{"finished", "unfinished"} {
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 -5 10 10" markerWidth="6" markerHeight="6" orient="auto"><path d="M0,-3L8,0L0,3"/></marker>`+"\n", id)
	}
	buf.WriteString(`    <marker id="circle" viewBox="-2 -2 18 18" markerWidth="10" markerHeight="10" refX="10" refY="5" orient="auto"><circle cx="5" cy="5" r="5"/></marker>` + "\n")
	buf.WriteString("  </defs>\n")
}

// renderAxis draws a horizontal axis at y with tick marks of length dir
// (positive points down).
func renderAxis(buf *bytes.Buffer, l graph.Layout, y, dir float64) {
	fmt.Fprintf(buf, `    <g class="x axis" transform="translate(0,%.1f)">`+"\n", y)
	fmt.Fprintf(buf, `      <path class="domain" d="M0,%.1fV0H%.1fV%.1f"/>`+"\n", dir, l.AvailableWidth, dir)
	textY := dir + 3*sign(dir)
	baseline := "hanging"
	if dir < 0 {
		baseline = "auto"
	}
	for _, t := range l.Ticks {
		fmt.Fprintf(buf, `      <g class="tick" transform="translate(%.1f,0)"><line y2="%.1f"/><text y="%.1f" text-anchor="middle" dominant-baseline="%s">%s</text></g>`+"\n",
			t.X, dir, textY, baseline, escapeXML(t.Label))
	}
	buf.WriteString("    </g>\n")
}

func renderNodes(buf *bytes.Buffer, l graph.Layout) {
	buf.WriteString("    <g class=\"nodes\">\n")
	for _, n := range l.Nodes {
		class := "node"
		if n.Finished {
			class += " finished"
		}
		fmt.Fprintf(buf, `      <rect id="%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			escapeXML(n.ID), class, n.X, n.Y, n.Width, n.Height)
	}
	buf.WriteString("    </g>\n")
}

func renderStubs(buf *bytes.Buffer, l graph.Layout) {
	if len(l.Stubs) == 0 {
		return
	}
	buf.WriteString("    <g class=\"stubs\">\n")
	for _, s := range l.Stubs {
		fmt.Fprintf(buf, `      <line class="stub %s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" marker-start="url(#circle)"/>`+"\n",
			s.Kind, s.Tip.X, s.Tip.Y, s.Base.X, s.Base.Y)
	}
	buf.WriteString("    </g>\n")
}

func renderLinks(buf *bytes.Buffer, l graph.Layout) {
	if len(l.Edges) == 0 {
		return
	}
	buf.WriteString("    <g class=\"links\">\n")
	for _, e := range l.Edges {
		if len(e.Path) != 3 {
			continue
		}
		class, marker := "link", "unfinished"
		if e.Finished {
			class, marker = "link finished", "finished"
		}
		p := e.Path
		fmt.Fprintf(buf, `      <path class="%s" d="M %.2f %.2f L %.2f %.2f L %.2f %.2f" marker-mid="url(#%s)" data-from="%s" data-to="%s"/>`+"\n",
			class, p[0].X, p[0].Y, p[1].X, p[1].Y, p[2].X, p[2].Y, marker, escapeXML(e.From), escapeXML(e.To))
	}
	buf.WriteString("    </g>\n")
}

func renderLabels(buf *bytes.Buffer, l graph.Layout) {
	buf.WriteString("    <g class=\"labels\">\n")
	for _, n := range l.Nodes {
		name := escapeXML(n.ID)
		for _, class := range []string{"joblabel shadow", "joblabel"} {
			fmt.Fprintf(buf, `      <text class="%s" x="%.2f" y="%.2f" style="font: %.0fpx sans-serif">%s</text>`+"\n",
				class, n.Label.X, n.Label.Y, l.LabelFontSize, name)
		}
	}
	buf.WriteString("    </g>\n")
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
