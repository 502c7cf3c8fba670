// Package nodelink renders move graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render it to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
// Explicit positions are drawn as solid rounded boxes. Positions that were
// only inferred from transition endpoints are dashed and grey. Terminal
// nodes (no outgoing transitions) get a double outline. Edges are labelled
// with the transition description; reverse edges generated for
// bidirectional transitions are drawn dotted.
//
// # Options
//
//   - Detailed: node labels also carry the node id, tags and extra data.
//   - HideEdgeLabels: draw edges without transition descriptions.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
