package timeline

import "fmt"

// Build turns job records and a dependency map into a [Graph].
//
// Dependency endpoints are resolved by job name. When both ends resolve,
// an [Edge] is added and the source is appended to the target's entry in
// Graph.Sources. When only the target resolves, the target is recorded in
// Graph.TargetMarkers; when only the source resolves, the source is
// recorded in Graph.SourceMarkers. Pairs with neither end observed are
// dropped.
//
// Build returns an error wrapping [ErrEmptyName], [ErrDuplicateName] or
// [ErrNegativeElapsed] for malformed job records. Nodes keep the order of
// jobs; layout passes reorder them.
func Build(jobs []Job, deps Dependencies) (*Graph, error) {
	g := &Graph{
		Nodes:   make([]*Node, 0, len(jobs)),
		Sources: make(SourceMap),
	}

	index := make(map[string]*Node, len(jobs))
	for i, j := range jobs {
		if j.Name == "" {
			return nil, fmt.Errorf("job #%d: %w", i, ErrEmptyName)
		}
		if _, exists := index[j.Name]; exists {
			return nil, fmt.Errorf("job %q: %w", j.Name, ErrDuplicateName)
		}
		if j.ElapsedTime < 0 {
			return nil, fmt.Errorf("job %q: %w", j.Name, ErrNegativeElapsed)
		}
		n := &Node{
			Name:        j.Name,
			SubmitTime:  j.SubmitTime,
			ElapsedTime: j.ElapsedTime,
			Finished:    j.Finished,
		}
		index[j.Name] = n
		g.Nodes = append(g.Nodes, n)
	}

	for _, d := range deps {
		src := index[d.Source]
		for _, name := range d.Targets {
			g.link(src, index[name])
		}
	}
	return g, nil
}

func (g *Graph) link(src, dst *Node) {
	switch {
	case src == nil && dst == nil:
		return
	case src == nil:
		g.TargetMarkers = append(g.TargetMarkers, dst)
	case dst == nil:
		g.SourceMarkers = append(g.SourceMarkers, src)
	default:
		g.Edges = append(g.Edges, Edge{
			Source:   src,
			Target:   dst,
			Finished: src.Finished && dst.Finished,
		})
		g.Sources[dst.Name] = append(g.Sources[dst.Name], src)
	}
}
