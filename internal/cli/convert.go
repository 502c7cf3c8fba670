package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/grapplegraph/pkg/catalog"
)

// convertCommand rewrites a catalog between the text and JSON formats.
func (c *CLI) convertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a catalog between the GrappleMap text and JSON formats",
		Long: `Convert reads a catalog and writes it back out. The format of each side
is chosen by extension: .json for the JSON record format, anything else for
the GrappleMap text database.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			if err := catalog.Save(args[1], cat); err != nil {
				return err
			}
			printSuccess("Converted %d positions and %d transitions", len(cat.Positions()), len(cat.Transitions()))
			printFile(args[1])
			return nil
		},
	}
}
