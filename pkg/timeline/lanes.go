package timeline

import (
	"cmp"
	"slices"
)

// LaneParams holds the sizes that drive lane packing.
type LaneParams struct {
	NodeHeight    float64 // Box height; half of it is the minimum box width and lane spacing
	MinLabelWidth float64 // Collision width reserved for a node's label
	AxisPadding   float64 // Vertical offset of lane 0 below the top axis
}

// footprint is the horizontal extent a node claims in its lane.
type footprint struct {
	left, right float64
}

// packer tracks lane occupancy for a single layout pass.
type packer struct {
	ends  map[int]float64 // lane -> rightmost occupied effective edge
	lanes map[*Node]int   // nodes placed so far in this pass
	p     LaneParams
	width float64
}

// AssignLanes positions every node and returns the highest lane used.
//
// Nodes are sorted by name in place and visited in that order. For each
// node, X and W come from the scale, W is floored to NodeHeight/2, and a
// lane is chosen by the greedy rule described in the package docs. Y, H and
// Lane are then set from the lane. The chart height implied by the result
// is [ChartHeight].
func AssignLanes(nodes []*Node, sources SourceMap, s Scale, p LaneParams) int {
	slices.SortFunc(nodes, func(a, b *Node) int { return cmp.Compare(a.Name, b.Name) })

	pk := &packer{
		ends:  make(map[int]float64),
		lanes: make(map[*Node]int, len(nodes)),
		p:     p,
		width: s.Width,
	}

	maxLane := 0
	for _, n := range nodes {
		pk.measure(n, s)
		fp := pk.footprint(n)
		lane := pk.choose(sources[n.Name], fp)

		pk.lanes[n] = lane
		if end, ok := pk.ends[lane]; !ok || fp.right > end {
			pk.ends[lane] = fp.right
		}
		maxLane = max(maxLane, lane)

		n.Lane = lane
		n.Y = float64(lane)*2*p.NodeHeight + p.AxisPadding
		n.H = p.NodeHeight
	}
	return maxLane
}

// ChartHeight returns the drawing height for lanes 0..maxLane.
func ChartHeight(maxLane int, p LaneParams) float64 {
	return 2*p.AxisPadding + 2*p.NodeHeight*float64(maxLane+1)
}

// measure sets X and W from the scale and applies the minimum width.
func (pk *packer) measure(n *Node, s Scale) {
	n.X = s.At(n.SubmitTime)
	n.W = s.At(n.FinishTime()) - n.X

	floor := pk.p.NodeHeight / 2
	if n.W < floor {
		n.W = floor
		if n.X+n.W > pk.width {
			n.X = max(0, pk.width-n.W)
		}
	}
}

// footprint widens narrow boxes to the label width, centered on the box
// where it fits and pushed back inside [0, width] where it does not.
func (pk *packer) footprint(n *Node) footprint {
	x, w := n.X, n.W
	if w < pk.p.MinLabelWidth {
		w = pk.p.MinLabelWidth
		switch {
		case n.X+w > pk.width:
			x = pk.width - w
		case n.X > 0:
			x = n.X + (n.W-w)/2
		}
		x = max(0, x)
	}
	return footprint{left: x, right: x + w}
}

// choose returns the lane for a node with the given predecessors.
func (pk *packer) choose(preds []*Node, fp footprint) int {
	lane, reject := pk.start(preds)
	spacing := pk.p.NodeHeight / 2
	for {
		end, occupied := pk.ends[lane]
		if !occupied || (!reject[lane] && end+spacing < fp.left) {
			return lane
		}
		lane++
	}
}

// start picks the first lane to try and the lanes to skip.
//
// The search begins one lane above the latest-finishing predecessor; on a
// tie the predecessor seen last wins. A lane is rejected when two distinct
// predecessors sit in it. Predecessors not yet placed in this pass are
// ignored.
func (pk *packer) start(preds []*Node) (int, map[int]bool) {
	var (
		closest *Node
		owner   = make(map[int]*Node)
		reject  = make(map[int]bool)
	)
	for _, src := range preds {
		lane, placed := pk.lanes[src]
		if !placed {
			continue
		}
		if first, seen := owner[lane]; !seen {
			owner[lane] = src
		} else if first != src {
			reject[lane] = true
		}
		if closest == nil || src.FinishTime() >= closest.FinishTime() {
			closest = src
		}
	}
	if closest == nil {
		return 0, reject
	}
	return max(0, pk.lanes[closest]-1), reject
}
