package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/matzehuels/jobtimeline/pkg/timeline"
)

// ErrInvalidLayout is returned by [Layout.Validate] and [UnmarshalLayout].
var ErrInvalidLayout = errors.New("invalid layout")

// boundsEpsilon absorbs float noise when checking node extents.
const boundsEpsilon = 1e-6

// =============================================================================
// Layout - Serialized Layout Pass
// =============================================================================

// Layout is the serialization format for a computed layout.
//
// Check VizType to determine which fields are populated:
//
//	Timeline ("timeline"):
//	  - Nodes, Edges, Stubs, Ticks: chart geometry
//	  - ChartHeight, AvailableWidth, Margins, MaxLane: frame layout
//	  - NodeHeight, LabelFontSize, MaxLabelWidth: drawing sizes
//
//	Nodelink ("nodelink"):
//	  - DOT: Graphviz DOT string for rendering
//	  - Engine: Graphviz layout engine (e.g., "dot")
//
// Width and Height are the frame size for both kinds.
type Layout struct {
	// Discriminator
	VizType string `json:"viz_type" bson:"viz_type"`

	// Identity
	Title string `json:"title,omitempty" bson:"title,omitempty"`
	Hash  string `json:"hash,omitempty" bson:"hash,omitempty"` // Workflow content and options

	// Frame
	Width          float64 `json:"width" bson:"width"`
	Height         float64 `json:"height" bson:"height"`
	ViewportHeight float64 `json:"viewport_height,omitempty" bson:"viewport_height,omitempty"`
	Padding        float64 `json:"padding,omitempty" bson:"padding,omitempty"`

	// Timeline-specific
	Margins        Margins `json:"margins,omitzero" bson:"margins,omitempty"`
	ChartHeight    float64 `json:"chart_height,omitempty" bson:"chart_height,omitempty"`
	AvailableWidth float64 `json:"available_width,omitempty" bson:"available_width,omitempty"`
	NodeHeight     float64 `json:"node_height,omitempty" bson:"node_height,omitempty"`
	LabelFontSize  float64 `json:"label_font_size,omitempty" bson:"label_font_size,omitempty"`
	MaxLabelWidth  float64 `json:"max_label_width,omitempty" bson:"max_label_width,omitempty"`
	Start          int64   `json:"start,omitempty" bson:"start,omitempty"`
	End            int64   `json:"end,omitempty" bson:"end,omitempty"`
	MaxLane        int     `json:"max_lane" bson:"max_lane"`
	Nodes          []Node  `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges          []Edge  `json:"edges,omitempty" bson:"edges,omitempty"`
	Stubs          []Stub  `json:"stubs,omitempty" bson:"stubs,omitempty"`
	Ticks          []Tick  `json:"ticks,omitempty" bson:"ticks,omitempty"`

	// Nodelink-specific
	DOT    string `json:"dot,omitempty" bson:"dot,omitempty"`
	Engine string `json:"engine,omitempty" bson:"engine,omitempty"`
}

// IsTimeline returns true if this is a timeline layout.
func (l *Layout) IsTimeline() bool { return l.VizType == VizTypeTimeline }

// IsNodelink returns true if this is a nodelink layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// Node returns the node with the given ID.
func (l *Layout) Node(id string) (*Node, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// Validate checks the structural invariants of the layout: lanes lie in
// [0, MaxLane], boxes lie inside the time axis, node IDs are unique, and
// edges and stubs only reference placed nodes.
func (l *Layout) Validate() error {
	switch l.VizType {
	case VizTypeNodelink:
		if l.DOT == "" {
			return fmt.Errorf("%w: nodelink layout must contain DOT string", ErrInvalidLayout)
		}
		return nil
	case VizTypeTimeline:
	default:
		return fmt.Errorf("%w: unknown viz type %q", ErrInvalidLayout, l.VizType)
	}

	if l.Width <= 0 || l.NodeHeight <= 0 {
		return fmt.Errorf("%w: width and node height must be positive", ErrInvalidLayout)
	}
	if l.MaxLane < 0 {
		return fmt.Errorf("%w: max lane %d is negative", ErrInvalidLayout, l.MaxLane)
	}

	seen := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidLayout, n.ID)
		}
		seen[n.ID] = true
		if n.Lane < 0 || n.Lane > l.MaxLane {
			return fmt.Errorf("%w: node %q lane %d outside [0, %d]", ErrInvalidLayout, n.ID, n.Lane, l.MaxLane)
		}
		if n.X < -boundsEpsilon || n.Right() > l.AvailableWidth+boundsEpsilon {
			return fmt.Errorf("%w: node %q spans [%g, %g] outside [0, %g]", ErrInvalidLayout, n.ID, n.X, n.Right(), l.AvailableWidth)
		}
	}
	for _, e := range l.Edges {
		if !seen[e.From] || !seen[e.To] {
			return fmt.Errorf("%w: edge %s->%s references unknown node", ErrInvalidLayout, e.From, e.To)
		}
		if len(e.Path) != 3 {
			return fmt.Errorf("%w: edge %s->%s has %d path points, want 3", ErrInvalidLayout, e.From, e.To, len(e.Path))
		}
	}
	for _, s := range l.Stubs {
		if !seen[s.Node] {
			return fmt.Errorf("%w: stub references unknown node %q", ErrInvalidLayout, s.Node)
		}
		if s.Kind != StubTarget && s.Kind != StubSource {
			return fmt.Errorf("%w: stub on %q has kind %q", ErrInvalidLayout, s.Node, s.Kind)
		}
	}
	return nil
}

// =============================================================================
// Conversion
// =============================================================================

// FromTimeline converts a layout pass into its serialization format.
// Nodes keep the order of l.Nodes, which is name order after a pass.
func FromTimeline(l *timeline.Layout) Layout {
	o := l.Options
	out := Layout{
		VizType:        VizTypeTimeline,
		Width:          l.FrameWidth,
		Height:         l.FrameHeight,
		ViewportHeight: l.ViewportHeight,
		Padding:        o.SVGPadding,
		Margins: Margins{
			Top:    o.Margins.Top,
			Bottom: o.Margins.Bottom,
			Left:   o.Margins.Left,
			Right:  o.Margins.Right,
		},
		ChartHeight:    l.ChartHeight,
		AvailableWidth: l.AvailableWidth,
		NodeHeight:     o.NodeHeight,
		LabelFontSize:  o.LabelFontSize,
		MaxLabelWidth:  o.MaxLabelWidth,
		Start:          l.Scale.Start,
		End:            l.Scale.End,
		MaxLane:        l.MaxLane,
		Nodes:          make([]Node, len(l.Nodes)),
		Edges:          make([]Edge, len(l.Edges)),
		Stubs:          make([]Stub, 0, len(l.TargetStubs)+len(l.SourceStubs)),
		Ticks:          make([]Tick, len(l.Ticks)),
	}

	labels := make(map[string]timeline.Label, len(l.Labels))
	for _, lb := range l.Labels {
		labels[lb.Node] = lb
	}
	for i, n := range l.Nodes {
		lb := labels[n.Name]
		out.Nodes[i] = Node{
			ID:          n.Name,
			SubmitTime:  n.SubmitTime,
			ElapsedTime: n.ElapsedTime,
			Finished:    n.Finished,
			Lane:        n.Lane,
			X:           n.X,
			Y:           n.Y,
			Width:       n.W,
			Height:      n.H,
			Label:       Point{X: lb.X, Y: lb.Y},
		}
	}
	for i, e := range l.Edges {
		path := make([]Point, len(e.Path))
		for j, p := range e.Path {
			path[j] = Point{X: p.X, Y: p.Y}
		}
		out.Edges[i] = Edge{From: e.Source.Name, To: e.Target.Name, Finished: e.Finished, Path: path}
	}
	for _, s := range l.TargetStubs {
		out.Stubs = append(out.Stubs, stubFrom(s, StubTarget))
	}
	for _, s := range l.SourceStubs {
		out.Stubs = append(out.Stubs, stubFrom(s, StubSource))
	}
	for i, t := range l.Ticks {
		out.Ticks[i] = Tick{Offset: t.Offset, X: t.X, Label: t.Label}
	}
	return out
}

func stubFrom(s timeline.Stub, kind string) Stub {
	return Stub{
		Node: s.Node,
		Kind: kind,
		Tip:  Point{X: s.Tip.X, Y: s.Tip.Y},
		Base: Point{X: s.Base.X, Y: s.Base.Y},
	}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
// A missing viz_type is read as a timeline layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.VizType == "" {
		l.VizType = VizTypeTimeline
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
