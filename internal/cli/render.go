package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/grapplegraph/pkg/io"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output         string
	formats        string
	detailed       bool
	hideEdgeLabels bool
}

// renderCommand renders a graph written by build --format json.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a built move graph as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := []string{pipeline.FormatSVG}
			if flags.formats != "" {
				formats = parseFormats(flags.formats)
			}
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], formats, &flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file or base path (default: input path without extension)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show node ids, tags and extras")
	cmd.Flags().BoolVar(&flags.hideEdgeLabels, "hide-edge-labels", false, "omit transition descriptions on edges")

	return cmd
}

func runRender(ctx context.Context, input string, formats []string, flags *renderFlags) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	g, err := graphio.ImportJSON(input, movegraph.Options{})
	if err != nil {
		return err
	}
	logger.Infof("Loaded graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	prog := newProgress(logger)
	artifacts, err := pipeline.Render(ctx, g, pipeline.Options{
		Formats:        formats,
		Detailed:       flags.detailed,
		HideEdgeLabels: flags.hideEdgeLabels,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(artifacts)))

	base := basePath(flags.output, input)
	if _, ok := artifacts[pipeline.FormatJSON]; ok && base+".json" == input {
		// Never overwrite the input graph.
		base += ".rendered"
	}
	return writeArtifacts(base, artifacts)
}
