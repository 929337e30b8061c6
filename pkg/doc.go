// Package pkg provides the core libraries for jobtimeline workflow visualization.
//
// # Overview
//
// jobtimeline draws a workflow run as a timeline: every job is a bar on a
// shared time axis, bars are packed into as few lanes as possible, and
// dependencies are routed as elbow arrows. The pkg directory is organized
// into four main areas:
//
//  1. [timeline] - Domain logic (graph building, lane packing, routing, ticks)
//  2. [workflow] - Input documents (JSON, YAML, TOML, Ambari split form)
//  3. [graph] and [render] - Serializable layouts and their renderers
//  4. [pipeline] - Orchestration (load → layout → render) with [cache] and [storage]
//
// # Architecture
//
// The typical data flow:
//
//	Workflow document (jobs + dag)
//	         ↓
//	    [workflow] package (read and validate)
//	         ↓
//	    [timeline] package (graph, lanes, edges, stubs, ticks)
//	         ↓
//	    [graph] package (layout document, JSON/BSON)
//	         ↓
//	    [render/sink] package (SVG/PDF/PNG/JSON output)
//
// # Quick Start
//
//	wf, _ := workflow.ReadFile("etl.json")
//	g, _ := wf.Graph()
//	tl, _ := timeline.Compute(g, timeline.DefaultOptions())
//	svg := sink.RenderSVG(graph.FromTimeline(tl))
//
// Or let the pipeline do the same with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{Input: "etl.json"})
//	os.WriteFile("etl.svg", result.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// [timeline] - Builds the job graph from records and the dependency map,
// scales times to pixels, packs jobs into lanes and routes edges.
//
// [workflow] - Workflow documents with order-preserving dependency maps.
//
// [graph] - The layout document shared by renderers, the cache and the
// document store.
//
// [render/sink] - Hand-written SVG with PDF and PNG through rsvg-convert.
//
// [render/nodelink] - Graphviz drawing of the dependency graph itself.
//
// [pipeline] - Load, layout and render with cache-aside lookups. Used by the
// CLI and the HTTP server alike.
//
// [cache] - File, Redis and null caches keyed by content hashes.
//
// [storage] - Saved layouts in memory, on disk or in MongoDB.
//
// [errors] - Coded errors shared by CLI and HTTP API.
//
// [observability] - Optional hooks for logging and metrics.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/timeline/...           # Specific package
//	go test -run Example                 # Examples only
//
// [timeline]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/timeline
// [workflow]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/workflow
// [graph]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/storage
// [errors]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/jobtimeline/pkg/observability
package pkg
