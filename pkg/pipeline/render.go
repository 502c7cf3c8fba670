package pipeline

import (
	"bytes"
	"context"
	"fmt"

	graphio "github.com/matzehuels/grapplegraph/pkg/io"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, g *movegraph.Graph, opts Options) (map[string][]byte, error) {
	nl := nodelink.Options{Detailed: opts.Detailed, HideEdgeLabels: opts.HideEdgeLabels}
	var dot string
	if opts.HasFormat(FormatDOT) || opts.HasFormat(FormatSVG) {
		dot = nodelink.ToDOT(g, nl)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = graphio.WriteJSON(g, &buf)
			data = buf.Bytes()
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
