package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/grapplegraph/internal/server"
	"github.com/matzehuels/grapplegraph/pkg/config"
	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/observability"
	"github.com/matzehuels/grapplegraph/pkg/store"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve exposes decode, encode, match, canonicalize, relax and build over
HTTP, plus stored graphs when a MongoDB store is configured. Prometheus
metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), cfg, addr, noCache)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the build cache")
	return cmd
}

func (c *CLI) serverOptions(ctx context.Context, cfg config.Config, noCache bool) (server.Options, error) {
	metric, err := match.ParseMetric(cfg.Match.Metric)
	if err != nil {
		return server.Options{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "match.metric")
	}
	codec, err := codecFor("", cfg)
	if err != nil {
		return server.Options{}, err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return server.Options{}, err
	}
	return server.Options{
		Runner:          runner,
		Store:           runner.Store,
		Build:           cfg.PipelineOptions(),
		Matcher:         match.Matcher{Tolerance: cfg.Match.Tolerance, Metric: metric},
		Codec:           codec,
		RelaxIterations: cfg.Relax.Iterations,
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          loggerFromContext(ctx),
	}, nil
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, addr string, noCache bool) error {
	opts, err := c.serverOptions(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer opts.Runner.Close(context.WithoutCancel(ctx))

	observability.NewPrometheus(prometheus.DefaultRegisterer).Register()

	printInfo("Serving on %s", addr)
	if opts.Store != nil {
		printDetail("graph store: %s/%s", cfg.Store.Database, store.DefaultCollection)
	}
	return server.New(opts).ListenAndServe(ctx, addr)
}
