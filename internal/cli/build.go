package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapplegraph/pkg/config"
	"github.com/matzehuels/grapplegraph/pkg/pipeline"
)

// buildFlags holds the command-line flags for the build command. Flags
// left unset keep the configured values.
type buildFlags struct {
	output          string
	formats         string
	noCache         bool
	refresh         bool
	tolerance       float64
	metric          string
	convention      string
	index           string
	canonicalize    bool
	grid            float64
	workers         int
	relax           int
	detailed        bool
	hideEdgeLabels  bool
	showTransitions bool
}

func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [catalog]",
		Short: "Deduplicate a position database into a move graph",
		Long: `Build reads a GrappleMap text database (or a JSON catalog), merges every
position that is equivalent up to rotation, translation, mirroring and player
swap, and writes the resulting move graph.

Results are cached by the catalog's content hash and the build options, so
rebuilding an unchanged catalog is instant. Use --refresh to force a rebuild.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := flags.pipelineOptions(cmd, cfg)
			if err != nil {
				return err
			}
			opts.CatalogPath = args[0]
			return c.runBuild(cmd.Context(), cfg, opts, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file or base path (default: catalog path without extension)")
	f.StringVarP(&flags.formats, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the build cache")
	f.BoolVar(&flags.refresh, "refresh", false, "rebuild even when a cached graph exists")
	f.Float64Var(&flags.tolerance, "tolerance", 0, "match tolerance (default from config)")
	f.StringVar(&flags.metric, "metric", "", "joint metric: euclidean, squared-sum, abs-component")
	f.StringVar(&flags.convention, "convention", "", "codec convention: shift-xz, scale-all")
	f.StringVar(&flags.index, "index", "", "node index: linear, head-distance, canonical")
	f.BoolVar(&flags.canonicalize, "canonicalize", false, "store the canonical form of each node")
	f.Float64Var(&flags.grid, "grid", 0, "canonical key grid size")
	f.IntVarP(&flags.workers, "workers", "w", 0, "parallel match workers")
	f.IntVar(&flags.relax, "relax", 0, "relax limb lengths of transition frames for N iterations")
	f.BoolVar(&flags.detailed, "detailed", false, "show node ids, tags and extras in DOT and SVG")
	f.BoolVar(&flags.hideEdgeLabels, "hide-edge-labels", false, "omit transition descriptions on edges")
	f.BoolVar(&flags.showTransitions, "transitions", false, "list resolved transitions")

	return cmd
}

// pipelineOptions layers the changed flags over cfg.
func (f *buildFlags) pipelineOptions(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	opts := cfg.PipelineOptions()
	changed := cmd.Flags().Changed

	if changed("tolerance") {
		opts.Tolerance = f.tolerance
	}
	if changed("metric") {
		opts.Metric = f.metric
	}
	if changed("convention") {
		opts.Convention = f.convention
	}
	if changed("index") {
		opts.Index = f.index
	}
	if changed("canonicalize") {
		opts.Canonicalize = f.canonicalize
	}
	if changed("grid") {
		opts.Grid = f.grid
	}
	if changed("workers") {
		opts.Workers = f.workers
	}
	opts.RelaxIterations = f.relax
	opts.Refresh = f.refresh
	opts.Formats = parseFormats(f.formats)
	opts.Detailed = f.detailed
	opts.HideEdgeLabels = f.hideEdgeLabels

	if err := opts.ValidateForBuild(); err != nil {
		return opts, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c *CLI) runBuild(ctx context.Context, cfg config.Config, opts pipeline.Options, flags *buildFlags) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("closing cache", "err", err)
		}
	}()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Building move graph...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %s", opts.CatalogPath))

	source := sourceFresh
	switch {
	case result.CacheInfo.BuildHit:
		source = sourceCached
	case result.CacheInfo.StoreHit:
		source = sourceStored
	}
	report := result.Report

	printSuccess("Move graph for %s", opts.CatalogPath)
	printStats(graphStats{
		nodes:    report.Nodes,
		edges:    report.Edges,
		explicit: report.Explicit,
		skipped:  len(report.Skipped),
		source:   source,
	})
	printKeyValue("Build", report.BuildID)
	printKeyValue("Key", result.BuildKey)

	for _, s := range report.Skipped {
		if s.Line > 0 {
			printWarning("skipped %s %d (line %d, %q): %s", s.Kind, s.Index, s.Line, s.Description, s.Reason)
		} else {
			printWarning("skipped %s %d (%q): %s", s.Kind, s.Index, s.Description, s.Reason)
		}
	}

	if flags.showTransitions {
		printNewline()
		for _, t := range report.Transitions {
			printInfo("#%d %d %s %d  %s", t.Index, t.From, iconArrow, t.To, t.Description)
		}
	}

	if err := writeArtifacts(basePath(flags.output, opts.CatalogPath), result.Artifacts); err != nil {
		return err
	}
	if result.Artifacts[pipeline.FormatJSON] != nil {
		printNextStep("Explore it", fmt.Sprintf("%s browse %s.json", appName, basePath(flags.output, opts.CatalogPath)))
	}
	return nil
}

// writeArtifacts writes every artifact to base.<format> in format order.
func writeArtifacts(base string, artifacts map[string][]byte) error {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	for _, format := range formats {
		path := base + "." + format
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		printFile(path)
	}
	return nil
}
