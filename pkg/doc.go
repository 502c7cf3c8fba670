// Package pkg provides the core libraries of grapplegraph.
//
// # Overview
//
// Grapplegraph reads databases of two-player grappling positions and the
// transitions between them, recognizes positions that are the same up to
// rotation, translation, mirroring and player swap, and deduplicates them
// into a directed move graph. The pkg directory is organized into:
//
//  1. Domain logic ([pose], [match], [relax], [movegraph])
//  2. Input and output ([catalog], [io], [render/nodelink])
//  3. Infrastructure ([cache], [store], [observability], [config])
//  4. Orchestration ([pipeline])
//
// # Architecture
//
// The typical data flow:
//
//	GrappleMap text database or JSON catalog
//	         ↓
//	    [catalog] package (parse records)
//	         ↓
//	    [pose] package (decode 276-character position codes)
//	         ↓
//	    [relax] package (optional limb-length cleanup)
//	         ↓
//	    [match] package (equivalence under the symmetry group)
//	         ↓
//	    [movegraph] package (deduplicated nodes and edges)
//	         ↓
//	    JSON/DOT/SVG output
//
// # Quick Start
//
// Build and render a move graph:
//
//	c, _ := catalog.Load("GrappleMap.txt")
//	g, report, _ := movegraph.Build(ctx, c, movegraph.BuildOptions{Workers: 4})
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, _ := nodelink.RenderSVG(ctx, dot)
//
// Compare two positions:
//
//	a, _ := pose.Decode(codeA)
//	b, _ := pose.Decode(codeB)
//	if t, ok := match.Match(a, b); ok {
//	    fmt.Println(t.Mirror, t.SwapPlayers)
//	}
//
// # Main Packages
//
// [pose] - Joints, positions, geometry primitives and the base-62 text
// codec with both scaling conventions.
//
// [match] - The equivalence matcher over the four-element symmetry group,
// joint metrics, and the canonical frame used as a bucket key.
//
// [relax] - Limb-length relaxation toward anatomical segment lengths.
//
// [movegraph] - The incremental deduplicating graph builder, its node
// indexes, and the catalog-to-graph build with its report.
//
// [pipeline] - Load, build and render with two-level caching, used by both
// the CLI and the HTTP server.
//
// [cache] - File, Redis and null cache backends keyed by content hash.
//
// [store] - Durable build records in MongoDB, or in memory for tests.
//
// [observability] - Hook interfaces with a Prometheus implementation.
//
// [pose]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/pose
// [match]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/match
// [relax]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/relax
// [movegraph]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/movegraph
// [catalog]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/catalog
// [io]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/grapplegraph/pkg/pipeline
package pkg
