package timeline

// stubTick is the vertical offset between the two ends of a marker stub.
const stubTick = 3

// Point is a position in chart pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Path is a three-point elbow: start, midpoint, end.
type Path [3]Point

// Route returns the polyline for a dependency edge, from the source's right
// edge to the target's left edge.
//
// Endpoints in the same lane connect at mid-height. When the source lane is
// above the target lane the path leaves from the source's bottom edge;
// otherwise it enters at the target's bottom edge. The middle point is the
// mean of the two ends, which is where renderers put the arrowhead.
func Route(e Edge) Path {
	s, t := e.Source, e.Target
	x1, y1 := s.Right(), s.Y
	x2, y2 := t.X, t.Y
	switch {
	case y1 == y2:
		y1 += s.H / 2
		y2 += t.H / 2
	case y1 < y2:
		y1 += s.H
	default:
		y2 += t.H
	}
	return Path{
		{X: x1, Y: y1},
		{X: (x1 + x2) / 2, Y: (y1 + y2) / 2},
		{X: x2, Y: y2},
	}
}

// Stub is a short dangling line for a dependency on an unobserved job.
// Tip is the free end, drawn with a rounded marker; Base touches the node.
type Stub struct {
	Node string `json:"node"`
	Tip  Point  `json:"tip"`
	Base Point  `json:"base"`
}

// TargetStub returns the stub drawn left of n for an unobserved
// predecessor. length is normally half the node height.
func TargetStub(n *Node, length float64) Stub {
	return Stub{
		Node: n.Name,
		Tip:  Point{X: n.X - length, Y: n.Y},
		Base: Point{X: n.X, Y: n.Y + stubTick},
	}
}

// SourceStub returns the stub drawn right of n for an unobserved
// successor.
func SourceStub(n *Node, length float64) Stub {
	return Stub{
		Node: n.Name,
		Tip:  Point{X: n.Right() + length, Y: n.Bottom()},
		Base: Point{X: n.Right(), Y: n.Bottom() - stubTick},
	}
}
