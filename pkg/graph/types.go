package graph

// =============================================================================
// Constants
// =============================================================================

// Visualization types.
const (
	VizTypeTimeline = "timeline"
	VizTypeNodelink = "nodelink"
)

// Stub kinds.
const (
	// StubTarget marks a node whose predecessor was never observed. It is
	// drawn left of the node.
	StubTarget = "target"
	// StubSource marks a node whose successor was never observed. It is
	// drawn right of the node.
	StubSource = "source"
)

// =============================================================================
// Geometry
// =============================================================================

// Point is a position in chart pixels.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Margins around the chart area inside the frame.
type Margins struct {
	Top    float64 `json:"top" bson:"top"`
	Bottom float64 `json:"bottom" bson:"bottom"`
	Left   float64 `json:"left" bson:"left"`
	Right  float64 `json:"right" bson:"right"`
}

// =============================================================================
// Node, Edge, Stub, Tick
// =============================================================================

// Node is a placed job.
type Node struct {
	ID          string  `json:"id" bson:"id"`
	SubmitTime  int64   `json:"submit_time" bson:"submit_time"`
	ElapsedTime int64   `json:"elapsed_time" bson:"elapsed_time"`
	Finished    bool    `json:"finished,omitempty" bson:"finished,omitempty"`
	Lane        int     `json:"lane" bson:"lane"`
	X           float64 `json:"x" bson:"x"`
	Y           float64 `json:"y" bson:"y"`
	Width       float64 `json:"width" bson:"width"`
	Height      float64 `json:"height" bson:"height"`
	Label       Point   `json:"label" bson:"label"` // Text center and baseline
}

// Right returns the x coordinate of the node's right edge.
func (n *Node) Right() float64 { return n.X + n.Width }

// Edge is a routed dependency between two placed nodes.
type Edge struct {
	From     string  `json:"from" bson:"from"`
	To       string  `json:"to" bson:"to"`
	Finished bool    `json:"finished,omitempty" bson:"finished,omitempty"`
	Path     []Point `json:"path" bson:"path"` // Start, midpoint, end
}

// Stub is a dangling dependency marker.
type Stub struct {
	Node string `json:"node" bson:"node"`
	Kind string `json:"kind" bson:"kind"` // StubTarget or StubSource
	Tip  Point  `json:"tip" bson:"tip"`
	Base Point  `json:"base" bson:"base"`
}

// Tick is a labelled axis position.
type Tick struct {
	Offset int64   `json:"offset" bson:"offset"`
	X      float64 `json:"x" bson:"x"`
	Label  string  `json:"label" bson:"label"`
}
