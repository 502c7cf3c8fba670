// Package pipeline provides the load → build → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a catalog from a file or from inline content
//  2. Build: deduplicate the catalog's poses into a move graph
//  3. Render: produce DOT, SVG or JSON output of the graph
//
// Build and render results are cached by content: the build key combines
// the catalog hash with every option that affects the graph, and render
// keys extend the build key with the output options. An optional store
// keeps built graphs beyond the cache lifetime.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    CatalogPath: "GrappleMap.txt",
//	    Formats:      []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/grapplegraph/pkg/cache"
	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/relax"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	DefaultTolerance  = match.DefaultTolerance
	DefaultMetric     = "euclidean"
	DefaultConvention = "shift-xz"
	DefaultIndex      = "linear"
	DefaultGrid       = match.DefaultGrid
	DefaultWorkers    = 1

	// MaxWorkers bounds the parallel match phase.
	MaxWorkers = 64

	// MaxRelaxIterations bounds the limb relaxer.
	MaxRelaxIterations = 100
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// Catalog content formats.
const (
	CatalogText = "text"
	CatalogJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options: exactly one of CatalogPath and Catalog.
	CatalogPath   string `json:"catalog_path,omitempty"`
	Catalog       string `json:"catalog,omitempty"`
	CatalogFormat string `json:"catalog_format,omitempty"` // "text" (default) or "json"

	// Build options
	Tolerance       float64 `json:"tolerance,omitempty"`
	Metric          string  `json:"metric,omitempty"`
	Convention      string  `json:"convention,omitempty"`
	Index           string  `json:"index,omitempty"`
	Canonicalize    bool    `json:"canonicalize,omitempty"`
	Grid            float64 `json:"grid,omitempty"`
	Workers         int     `json:"workers,omitempty"`
	RelaxIterations int     `json:"relax_iterations,omitempty"` // 0 disables relaxing
	Refresh         bool    `json:"refresh,omitempty"`

	// Render options
	Formats        []string `json:"formats,omitempty"`
	Detailed       bool     `json:"detailed,omitempty"`
	HideEdgeLabels bool     `json:"hide_edge_labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Graph  *movegraph.Graph
	Report *movegraph.Report

	// CatalogHash is the content hash of the input catalog.
	CatalogHash string

	// BuildKey addresses the graph in the cache and the store.
	BuildKey string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks where each stage's result came from.
type CacheInfo struct {
	BuildHit  bool // build result came from the cache
	StoreHit  bool // build result came from the store
	RenderHit bool // all artifacts came from the cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults.
// Calling it again has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the catalog source.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.CatalogPath == "" && o.Catalog == "":
		return errs.New(errs.ErrCodeInvalidInput, "catalog_path or catalog is required")
	case o.CatalogPath != "" && o.Catalog != "":
		return errs.New(errs.ErrCodeInvalidInput, "catalog_path and catalog are mutually exclusive")
	}
	if o.CatalogFormat == "" {
		o.CatalogFormat = CatalogText
	}
	if o.CatalogFormat != CatalogText && o.CatalogFormat != CatalogJSON {
		return errs.New(errs.ErrCodeInvalidInput, "invalid catalog_format: %q (must be text or json)", o.CatalogFormat)
	}
	o.setLogger()
	return nil
}

// SetBuildDefaults fills unset build options.
func (o *Options) SetBuildDefaults() {
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Metric == "" {
		o.Metric = DefaultMetric
	}
	if o.Convention == "" {
		o.Convention = DefaultConvention
	}
	if o.Index == "" {
		o.Index = DefaultIndex
	}
	if o.Grid == 0 {
		o.Grid = DefaultGrid
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	o.setLogger()
}

// ValidateForBuild applies build defaults and validates build options.
func (o *Options) ValidateForBuild() error {
	o.SetBuildDefaults()
	if err := errs.ValidateTolerance(o.Tolerance); err != nil {
		return err
	}
	if err := errs.ValidateGrid(o.Grid); err != nil {
		return err
	}
	if err := errs.ValidateCount("workers", o.Workers, MaxWorkers); err != nil {
		return err
	}
	if o.RelaxIterations != 0 {
		if err := errs.ValidateCount("relax_iterations", o.RelaxIterations, MaxRelaxIterations); err != nil {
			return err
		}
	}
	_, err := o.BuildOptions()
	return err
}

// SetRenderDefaults fills unset render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	o.setLogger()
}

// ValidateForRender applies render defaults and validates formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// BuildOptions converts o to builder options. Names are parsed here, so
// an unknown metric, convention or index is reported as invalid input.
func (o *Options) BuildOptions() (movegraph.BuildOptions, error) {
	metric, err := match.ParseMetric(o.Metric)
	if err != nil {
		return movegraph.BuildOptions{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "metric")
	}
	conv, err := pose.ParseConvention(o.Convention)
	if err != nil {
		return movegraph.BuildOptions{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "convention")
	}
	index, err := movegraph.ParseIndexKind(o.Index)
	if err != nil {
		return movegraph.BuildOptions{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "index")
	}

	bo := movegraph.BuildOptions{
		Graph: movegraph.Options{
			Matcher:      match.Matcher{Tolerance: o.Tolerance, Metric: metric},
			Index:        index,
			Canonicalize: o.Canonicalize,
			Grid:         o.Grid,
		},
		Codec:   pose.Codec{Convention: conv},
		Workers: o.Workers,
		Logger:  o.Logger,
	}
	if o.RelaxIterations > 0 {
		bo.Relax = &relax.Options{Iterations: o.RelaxIterations}
	}
	return bo, nil
}

// BuildKeyOpts returns cache key options for the build stage.
func (o *Options) BuildKeyOpts() cache.BuildKeyOpts {
	return cache.BuildKeyOpts{
		Tolerance:       o.Tolerance,
		Metric:          o.Metric,
		Convention:      o.Convention,
		Index:           o.Index,
		Canonicalize:    o.Canonicalize,
		Grid:            o.Grid,
		RelaxIterations: o.RelaxIterations,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:         format,
		Detailed:       o.Detailed,
		HideEdgeLabels: o.HideEdgeLabels,
	}
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// String summarizes the build options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("tolerance=%g metric=%s convention=%s index=%s canonicalize=%t workers=%d relax=%d",
		o.Tolerance, o.Metric, o.Convention, o.Index, o.Canonicalize, o.Workers, o.RelaxIterations)
}
