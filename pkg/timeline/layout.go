package timeline

import (
	"errors"
	"fmt"
)

// Default drawing parameters. They match a 14px label font; for other
// sizes scale them together (nodeHeight 15 / font 10 / label 120, or
// nodeHeight 40 / font 20 / label 260).
const (
	DefaultWidth         = 800.0
	DefaultNodeHeight    = 20.0
	DefaultLabelFontSize = 14.0
	DefaultMaxLabelWidth = 180.0
	DefaultAxisPadding   = 30.0
	DefaultSVGPadding    = 20.0
)

// Margins around the chart area inside the frame.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// DefaultMargins leaves room for axis labels on both sides.
var DefaultMargins = Margins{Top: 10, Bottom: 10, Left: 30, Right: 30}

// ErrInvalidOptions is returned by [Options.Validate] and [Compute] for
// unusable drawing parameters.
var ErrInvalidOptions = errors.New("invalid layout options")

// Options controls the geometry of a layout pass.
type Options struct {
	Width         float64 // Requested outer width, including SVGPadding
	Height        float64 // Optional viewport height; 0 means fit the chart
	NodeHeight    float64
	LabelFontSize float64
	MaxLabelWidth float64 // Label width reserved around narrow nodes
	AxisPadding   float64
	SVGPadding    float64 // Room kept free for scrollbars around the frame
	Margins       Margins
	TickCount     int
}

// DefaultOptions returns the standard drawing parameters.
func DefaultOptions() Options {
	return Options{
		Width:         DefaultWidth,
		NodeHeight:    DefaultNodeHeight,
		LabelFontSize: DefaultLabelFontSize,
		MaxLabelWidth: DefaultMaxLabelWidth,
		AxisPadding:   DefaultAxisPadding,
		SVGPadding:    DefaultSVGPadding,
		Margins:       DefaultMargins,
		TickCount:     DefaultTickCount,
	}
}

// Validate reports whether the options can produce a layout.
func (o Options) Validate() error {
	if o.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %v", ErrInvalidOptions, o.Width)
	}
	if o.NodeHeight <= 0 {
		return fmt.Errorf("%w: node height must be positive, got %v", ErrInvalidOptions, o.NodeHeight)
	}
	if o.MaxLabelWidth < 0 || o.AxisPadding < 0 || o.SVGPadding < 0 || o.LabelFontSize < 0 {
		return fmt.Errorf("%w: sizes must not be negative", ErrInvalidOptions)
	}
	if o.Height < 0 {
		return fmt.Errorf("%w: height must not be negative, got %v", ErrInvalidOptions, o.Height)
	}
	if o.TickCount < 0 || o.TickCount > MaxTickCount {
		return fmt.Errorf("%w: tick count must be in [0, %d], got %d", ErrInvalidOptions, MaxTickCount, o.TickCount)
	}
	// The width floor of a job bar must fit on the time axis.
	if floor := o.NodeHeight / 2; o.AvailableWidth() < floor {
		return fmt.Errorf("%w: width %v leaves a %v px time axis, need at least %v",
			ErrInvalidOptions, o.Width, o.AvailableWidth(), floor)
	}
	return nil
}

// FrameWidth is the drawable width once scroll padding is removed.
func (o Options) FrameWidth() float64 { return o.Width - o.SVGPadding }

// AvailableWidth is the width of the time axis. It is never negative.
func (o Options) AvailableWidth() float64 {
	return max(0, o.FrameWidth()-o.Margins.Left-o.Margins.Right)
}

// LaneParams returns the lane packing parameters implied by o.
func (o Options) LaneParams() LaneParams {
	return LaneParams{
		NodeHeight:    o.NodeHeight,
		MinLabelWidth: o.MaxLabelWidth,
		AxisPadding:   o.AxisPadding,
	}
}

// Label is where a node's name is drawn.
type Label struct {
	Node string  `json:"node"`
	X    float64 `json:"x"` // Text center
	Y    float64 `json:"y"` // Baseline
}

// RoutedEdge is an edge with its polyline.
type RoutedEdge struct {
	Edge
	Path Path
}

// Layout is the result of a layout pass. Coordinates are relative to the
// chart origin, which sits at (Margins.Left, Margins.Top) inside the frame.
type Layout struct {
	Options Options
	Scale   Scale

	FrameWidth     float64 // Outer width of the drawing
	FrameHeight    float64 // ChartHeight plus top and bottom margins
	ChartHeight    float64 // Axis-to-axis height
	ViewportHeight float64 // Visible height when Options.Height is set, else FrameHeight + SVGPadding
	AvailableWidth float64
	MaxLane        int

	Nodes       []*Node
	Edges       []RoutedEdge
	TargetStubs []Stub
	SourceStubs []Stub
	Labels      []Label
	Ticks       []Tick
}

// Compute runs a full layout pass over g, annotating its nodes in place.
//
// Running Compute twice on the same graph with the same options produces
// identical geometry.
func Compute(g *Graph, opts Options) (*Layout, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	avail := opts.AvailableWidth()
	scale := NewScale(g.Nodes, avail)
	params := opts.LaneParams()
	maxLane := AssignLanes(g.Nodes, g.Sources, scale, params)

	l := &Layout{
		Options:        opts,
		Scale:          scale,
		FrameWidth:     opts.FrameWidth(),
		ChartHeight:    ChartHeight(maxLane, params),
		AvailableWidth: avail,
		MaxLane:        maxLane,
		Nodes:          g.Nodes,
		Ticks:          Ticks(scale, opts.TickCount),
	}
	l.FrameHeight = l.ChartHeight + opts.Margins.Top + opts.Margins.Bottom
	l.ViewportHeight = l.FrameHeight + opts.SVGPadding
	if opts.Height > 0 {
		l.ViewportHeight = min(opts.Height, l.ViewportHeight)
	}

	l.Edges = make([]RoutedEdge, len(g.Edges))
	for i, e := range g.Edges {
		l.Edges[i] = RoutedEdge{Edge: e, Path: Route(e)}
	}

	stub := opts.NodeHeight / 2
	l.TargetStubs = make([]Stub, len(g.TargetMarkers))
	for i, n := range g.TargetMarkers {
		l.TargetStubs[i] = TargetStub(n, stub)
	}
	l.SourceStubs = make([]Stub, len(g.SourceMarkers))
	for i, n := range g.SourceMarkers {
		l.SourceStubs[i] = SourceStub(n, stub)
	}

	l.Labels = make([]Label, len(g.Nodes))
	for i, n := range g.Nodes {
		l.Labels[i] = LabelFor(n, avail, opts)
	}
	return l, nil
}

// LabelFor places a node label centered under the node, kept far enough
// from the chart edges that a label of MaxLabelWidth fits.
func LabelFor(n *Node, availableWidth float64, opts Options) Label {
	half := opts.MaxLabelWidth / 2
	x := n.X + n.W/2
	switch {
	case x < half:
		x = half
	case x > availableWidth-half:
		x = availableWidth - half
	}
	return Label{Node: n.Name, X: x, Y: n.Bottom() + opts.LabelFontSize}
}
