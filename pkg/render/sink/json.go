package sink

import "github.com/matzehuels/jobtimeline/pkg/graph"

// RenderJSON exports the layout as indented JSON. The output reads back
// with [graph.UnmarshalLayout] and renders identically.
func RenderJSON(l graph.Layout) ([]byte, error) {
	return graph.MarshalLayout(l)
}
