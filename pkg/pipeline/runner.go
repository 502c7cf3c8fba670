package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/grapplegraph/pkg/cache"
	"github.com/matzehuels/grapplegraph/pkg/catalog"
	graphio "github.com/matzehuels/grapplegraph/pkg/io"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it, so caching behaves the same everywhere.
//
// The Runner keeps no per-run state. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // optional
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means cache.DefaultKeyer and a nil store disables persistence.
func NewRunner(c cache.Cache, keyer cache.Keyer, s store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: s, Logger: logger}
}

// cachedBuild is the cached form of a build result.
type cachedBuild struct {
	Graph  graphio.Document `json:"graph"`
	Report movegraph.Report `json:"report"`
}

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	c, err := Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.CatalogHash = c.Hash()
	result.Stats.LoadTime = time.Since(loadStart)
	r.Logger.Info("loaded catalog",
		"positions", len(c.Positions()),
		"transitions", len(c.Transitions()),
		"duration", result.Stats.LoadTime)

	// Stage 2: Build
	buildStart := time.Now()
	b, err := r.BuildWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = b.Graph
	result.Report = b.Report
	result.BuildKey = b.Key
	result.CacheInfo.BuildHit = b.CacheHit
	result.CacheInfo.StoreHit = b.StoreHit
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = b.Graph.NodeCount()
	result.Stats.EdgeCount = b.Graph.EdgeCount()
	r.Logger.Info("built move graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"skipped", len(b.Report.Skipped),
		"cached", b.CacheHit || b.StoreHit,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, b.Graph, b.Key, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildResult is the outcome of the build stage.
type BuildResult struct {
	Graph    *movegraph.Graph
	Report   *movegraph.Report
	Key      string
	CacheHit bool
	StoreHit bool
}

// BuildWithCacheInfo builds c, consulting the cache and then the store
// first unless opts.Refresh is set. Fresh results are written to both.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, c *catalog.Catalog, opts Options) (*BuildResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	bo, err := opts.BuildOptions()
	if err != nil {
		return nil, err
	}
	key := r.Keyer.BuildKey(c.Hash(), opts.BuildKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cb cachedBuild
			if err := json.Unmarshal(data, &cb); err == nil {
				if g, err := cb.Graph.Graph(bo.Graph); err == nil {
					return &BuildResult{Graph: g, Report: &cb.Report, Key: key, CacheHit: true}, nil
				}
			}
			r.Logger.Debug("discarding unreadable cache entry", "key", key)
		} else if err != nil {
			r.Logger.Warn("cache lookup failed", "key", key, "err", err)
		}

		if res, ok := r.loadStored(ctx, key, bo.Graph); ok {
			r.cacheBuild(ctx, key, res.Graph, res.Report)
			return res, nil
		}
	}

	g, report, err := movegraph.Build(ctx, c, bo)
	if err != nil {
		return nil, err
	}
	r.cacheBuild(ctx, key, g, report)
	r.saveStored(ctx, key, c.Hash(), opts, g, report)
	return &BuildResult{Graph: g, Report: report, Key: key}, nil
}

// Build is a convenience wrapper that discards the cache information.
func (r *Runner) Build(ctx context.Context, c *catalog.Catalog, opts Options) (*movegraph.Graph, error) {
	res, err := r.BuildWithCacheInfo(ctx, c, opts)
	if err != nil {
		return nil, err
	}
	return res.Graph, nil
}

func (r *Runner) cacheBuild(ctx context.Context, key string, g *movegraph.Graph, report *movegraph.Report) {
	data, err := json.Marshal(cachedBuild{Graph: graphio.FromGraph(g), Report: *report})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLBuild); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
}

func (r *Runner) loadStored(ctx context.Context, key string, gopts movegraph.Options) (*BuildResult, bool) {
	if r.Store == nil {
		return nil, false
	}
	rec, err := r.Store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.Logger.Warn("store lookup failed", "key", key, "err", err)
		}
		return nil, false
	}
	g, err := rec.Graph.Graph(gopts)
	if err != nil {
		r.Logger.Warn("discarding unreadable stored graph", "key", key, "err", err)
		return nil, false
	}
	report := &movegraph.Report{BuildID: rec.BuildID, Nodes: rec.Nodes, Edges: rec.Edges}
	return &BuildResult{Graph: g, Report: report, Key: key, StoreHit: true}, true
}

func (r *Runner) saveStored(ctx context.Context, key, catalogHash string, opts Options, g *movegraph.Graph, report *movegraph.Report) {
	if r.Store == nil {
		return
	}
	rec := store.Record{
		Key:         key,
		CatalogHash: catalogHash,
		BuildID:     report.BuildID,
		CreatedAt:   time.Now().UTC(),
		Options:     opts.BuildKeyOpts(),
		Nodes:       report.Nodes,
		Edges:       report.Edges,
		Graph:       graphio.FromGraph(g),
	}
	if err := r.Store.Save(ctx, rec); err != nil {
		r.Logger.Warn("store write failed", "key", key, "err", err)
	}
}

// RenderWithCacheInfo renders g in every requested format. The boolean
// reports whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *movegraph.Graph, buildKey string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(buildKey, opts.RenderKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.RenderKey(buildKey, opts.RenderKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLRender)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var errList []error
	if r.Cache != nil {
		errList = append(errList, r.Cache.Close())
	}
	if r.Store != nil {
		errList = append(errList, r.Store.Close(ctx))
	}
	return errors.Join(errList...)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
