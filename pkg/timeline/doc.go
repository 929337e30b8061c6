// Package timeline computes Gantt-style layouts for workflow DAGs.
//
// # Overview
//
// A workflow is a set of jobs, each with a submit time and an elapsed time,
// connected by job-to-job dependencies. This package places every job on a
// shared horizontal time axis and packs jobs that overlap in time into
// separate horizontal lanes, so that the resulting chart has no colliding
// boxes and causally related jobs stay close to each other.
//
// The package is pure computation: no I/O, no goroutines, no state kept
// between calls. Decoding inputs and drawing outputs live in other packages
// (see pkg/workflow and pkg/render).
//
// # Basic Usage
//
// Build a [Graph] from job records and a dependency map, then run a layout
// pass with [Compute]:
//
//	g, err := timeline.Build(jobs, timeline.Dependencies{
//	    {Source: "extract", Targets: []string{"transform"}},
//	})
//	if err != nil {
//	    return err
//	}
//	l, err := timeline.Compute(g, timeline.DefaultOptions())
//
// Every [Node] in g now carries X, Y, W, H and Lane. The returned [Layout]
// also holds edge polylines, dangling-dependency stubs and axis ticks.
//
// # Lane Assignment
//
// [AssignLanes] is a greedy interval packer. Nodes are visited in name
// order. Each node starts its lane search one lane above the lane of its
// latest-finishing predecessor and moves down until it finds a lane whose
// rightmost occupied edge (plus half a node height of spacing) lies left of
// the node's effective footprint. The effective footprint is the node box
// widened to the label width, so short jobs keep room for their labels.
//
// A lane holding two or more distinct predecessors of the node is skipped
// even when it has room. This keeps fan-in targets off the lanes where
// their inputs converge.
//
// # Dangling Dependencies
//
// Dependencies may name jobs that were never observed (not yet submitted,
// or filtered out). Such edges are not errors: [Build] records a marker on
// the observed end instead, and [Compute] turns markers into short stubs.
//
// # Concurrency
//
// A [Graph] is owned by the caller and mutated by [Compute]. Distinct graphs
// can be laid out concurrently; the same graph must not be.
package timeline
