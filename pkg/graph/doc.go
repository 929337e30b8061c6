// Package graph provides the serialization types for computed layouts.
//
// A [Layout] is the wire format for a finished layout pass: JSON files, API
// responses, cache entries and document store records all carry it. It
// holds everything a renderer needs, so a stored layout can be drawn again
// without the workflow it came from.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - pkg/timeline.Layout: in-memory result of a layout pass (node pointers)
//   - [Layout]: flat, tagged copy for JSON and BSON (this package)
//
// Use [FromTimeline] to convert. There is no way back; re-run the layout
// from the workflow instead.
//
// # Layout Kinds
//
// Layouts are discriminated by VizType:
//
//	graph.VizTypeTimeline   // lanes, boxes, routed edges, axis ticks
//	graph.VizTypeNodelink   // Graphviz DOT of the dependency graph
//
// # Serialization
//
//	data, _ := graph.MarshalLayout(layout)      // Layout → []byte
//	layout, _ := graph.UnmarshalLayout(data)    // []byte → Layout (validated)
//	graph.WriteLayoutFile(layout, "out.json")   // Layout → File
//	layout, _ = graph.ReadLayoutFile("out.json")
//
// # Concurrency
//
// All functions are safe for concurrent use. Layout values are plain data.
package graph
