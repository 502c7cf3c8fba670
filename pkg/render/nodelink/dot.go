package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/grapplegraph/pkg/movegraph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node id, tags and extra data to node labels.
	Detailed bool

	// HideEdgeLabels draws edges without transition descriptions.
	HideEdgeLabels bool
}

// ToDOT converts a move graph to Graphviz DOT source.
func ToDOT(g *movegraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	terminal := make(map[movegraph.NodeID]bool)
	for _, id := range g.Terminals() {
		terminal[id] = true
	}
	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), terminal[n.ID])
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		var attrs []string
		if !opts.HideEdgeLabels && e.Metadata.Description != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Metadata.Description))
		}
		if e.Reverse {
			attrs = append(attrs, "style=dotted")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n movegraph.Node, detailed bool) string {
	label := n.Metadata.Description
	if label == "" {
		label = fmt.Sprintf("#%d", n.ID)
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("id: %d", n.ID)}
	if len(n.Metadata.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(n.Metadata.Tags, " "))
	}
	for _, k := range slices.Sorted(maps.Keys(n.Extra)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, n.Extra[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n movegraph.Node, label string, terminal bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !n.IsExplicitPosition {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	if terminal {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// whose width and height equal the viewBox, so the SVG scales cleanly
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
