package timeline

import "errors"

var (
	// ErrEmptyName is returned by [Build] when a job has no entity name.
	ErrEmptyName = errors.New("job name must not be empty")

	// ErrDuplicateName is returned by [Build] when two jobs share a name.
	// Names identify nodes within one layout pass and must be unique.
	ErrDuplicateName = errors.New("duplicate job name")

	// ErrNegativeElapsed is returned by [Build] when a job has a negative
	// elapsed time.
	ErrNegativeElapsed = errors.New("elapsed time must not be negative")
)

// Job is an observed job record as reported by the workflow history.
// Times are in milliseconds.
type Job struct {
	Name        string // Entity name, unique within a workflow
	SubmitTime  int64  // Submit timestamp (0 for jobs not yet submitted)
	ElapsedTime int64  // Run duration, non-negative
	Finished    bool   // Whether the job has completed
}

// Node is a job placed on the chart. The job fields are inputs; X, Y, W, H
// and Lane are written by [Compute] (or [AssignLanes]) and are only
// meaningful after a layout pass.
type Node struct {
	Name        string
	SubmitTime  int64
	ElapsedTime int64
	Finished    bool

	X, Y float64 // Top-left corner in chart pixels
	W, H float64 // Box size in pixels
	Lane int     // Lane index, >= 0
}

// FinishTime returns SubmitTime + ElapsedTime.
func (n *Node) FinishTime() int64 { return n.SubmitTime + n.ElapsedTime }

// Right returns the x coordinate of the node's right edge.
func (n *Node) Right() float64 { return n.X + n.W }

// Bottom returns the y coordinate of the node's bottom edge.
func (n *Node) Bottom() float64 { return n.Y + n.H }

// Edge is a dependency between two observed jobs.
type Edge struct {
	Source *Node
	Target *Node

	// Finished is true when both endpoints have finished. It only affects
	// styling.
	Finished bool
}

// SourceMap maps a node name to its direct predecessors in dependency
// order. The same predecessor may appear more than once.
type SourceMap map[string][]*Node

// Dependency lists the jobs that depend on Source.
type Dependency struct {
	Source  string
	Targets []string
}

// Dependencies is an ordered dependency map. Order matters: it fixes the
// order of edges, markers and predecessor lists.
type Dependencies []Dependency

// Graph is the input of a layout pass: nodes, resolved edges, the
// predecessor index and the dangling-dependency markers.
type Graph struct {
	Nodes []*Node
	Edges []Edge

	// Sources maps each target name to its observed predecessors.
	Sources SourceMap

	// TargetMarkers holds nodes that depend on an unobserved job. They are
	// drawn with a stub on their left side.
	TargetMarkers []*Node

	// SourceMarkers holds nodes that an unobserved job depends on. They are
	// drawn with a stub on their right side.
	SourceMarkers []*Node
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}
