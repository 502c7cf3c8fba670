package movegraph

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/grapplegraph/pkg/catalog"
	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/observability"
	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/relax"
)

// BuildOptions configures Build.
type BuildOptions struct {
	Graph Options

	// Codec decodes record codes.
	Codec pose.Codec

	// Workers bounds the parallel matching phase; < 1 means one.
	Workers int

	// Relax, when set, runs the limb relaxer on every non-explicit pose
	// before it is matched.
	Relax *relax.Options

	Logger *log.Logger
}

// SkippedRecord is a record Build could not use.
type SkippedRecord struct {
	Kind        string `json:"kind"` // "position" or "transition"
	Index       int    `json:"index"`
	Line        int    `json:"line,omitempty"`
	Description string `json:"description"`
	Reason      string `json:"reason"`

	Err error `json:"-"`
}

// ResolvedTransition records which nodes a transition record connects.
type ResolvedTransition struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	From        NodeID `json:"from"`
	To          NodeID `json:"to"`
	Line        int    `json:"line,omitempty"`
}

// Report summarizes a Build.
type Report struct {
	BuildID     string               `json:"buildId"`
	Nodes       int                  `json:"nodes"`
	Edges       int                  `json:"edges"`
	Explicit    int                  `json:"explicit"`
	Skipped     []SkippedRecord      `json:"skipped,omitempty"`
	Transitions []ResolvedTransition `json:"transitions"`
	Duration    time.Duration        `json:"duration"`
}

type pendingTransition struct {
	index      int
	rec        catalog.TransitionRecord
	start, end endpointRef
}

// endpointRef is either a candidate slot in the batch or a fixed node.
type endpointRef struct {
	slot int
	node NodeID
}

// Build constructs a move graph from c.
//
// Explicit positions are inserted first, in record order. Non-explicit
// position records follow. Then every transition's start and end poses
// are resolved, in record order, and an edge is added for it. A node id
// endpoint must name a node created by the position records. Records that
// fail to decode or refer to unknown nodes are skipped and reported; they
// never abort the build.
func Build(ctx context.Context, c *catalog.Catalog, opts BuildOptions) (*Graph, *Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	start := time.Now()
	report := &Report{BuildID: uuid.NewString()}
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, report.BuildID, c.Len())

	g, err := build(ctx, c, opts, logger, report)
	if g != nil {
		report.Nodes = g.NodeCount()
		report.Edges = g.EdgeCount()
	}
	report.Duration = time.Since(start)
	hooks.OnBuildComplete(ctx, report.BuildID, observability.BuildStats{
		Nodes:   report.Nodes,
		Edges:   report.Edges,
		Skipped: len(report.Skipped),
	}, report.Duration, err)
	if err != nil {
		return nil, report, err
	}
	logger.Debug("built move graph",
		"build", report.BuildID,
		"nodes", report.Nodes,
		"edges", report.Edges,
		"skipped", len(report.Skipped),
		"duration", report.Duration)
	return g, report, nil
}

func build(ctx context.Context, c *catalog.Catalog, opts BuildOptions, logger *log.Logger, report *Report) (*Graph, error) {
	g := New(opts.Graph)
	hooks := observability.Build()
	skip := func(kind string, i, line int, desc string, err error) {
		report.Skipped = append(report.Skipped, SkippedRecord{
			Kind: kind, Index: i, Line: line, Description: desc, Reason: err.Error(), Err: err,
		})
		logger.Warn("skipping record", "kind", kind, "index", i, "line", line, "description", desc, "err", err)
	}
	prepare := func(p pose.Position) pose.Position {
		if opts.Relax != nil {
			return relax.Relax(p, *opts.Relax)
		}
		return p
	}

	// Positions: explicit ones first, then the rest.
	var candidates []Candidate
	positions := c.Positions()
	for _, explicit := range []bool{true, false} {
		for i, rec := range positions {
			if rec.IsExplicitPosition != explicit {
				continue
			}
			p, err := opts.Codec.Decode(rec.Code)
			if err != nil {
				skip("position", i, rec.Line, rec.Description, errs.Wrap(errs.ErrCodeInvalidPosition, err, "decode position"))
				continue
			}
			if !explicit {
				p = prepare(p)
			}
			candidates = append(candidates, Candidate{
				Position: p,
				Metadata: Metadata{Description: rec.Description, Tags: rec.Tags, Properties: rec.Properties},
				Explicit: explicit,
			})
		}
	}
	res, err := g.ResolveAll(ctx, candidates, opts.Workers)
	if err != nil {
		return nil, err
	}
	for i, r := range res {
		hooks.OnResolve(ctx, r.Created)
		if candidates[i].Explicit {
			report.Explicit++
		}
	}

	// Transitions.
	candidates = candidates[:0]
	known := NodeID(g.NodeCount())
	resolveEndpoint := func(e catalog.Endpoint, desc string) (endpointRef, error) {
		if e.IsNode() {
			id := NodeID(*e.Node)
			if id < 0 || id >= known {
				return endpointRef{}, errs.Wrap(errs.ErrCodeNotFound, fmt.Errorf("%w: %d", ErrUnknownNode, id), "resolve endpoint")
			}
			return endpointRef{slot: -1, node: id}, nil
		}
		p, err := opts.Codec.Decode(e.Code)
		if err != nil {
			return endpointRef{}, errs.Wrap(errs.ErrCodeInvalidPosition, err, "decode endpoint")
		}
		candidates = append(candidates, Candidate{
			Position: prepare(p),
			Metadata: Metadata{Description: desc},
		})
		return endpointRef{slot: len(candidates) - 1}, nil
	}

	var pending []pendingTransition
	for i, rec := range c.Transitions() {
		mark := len(candidates)
		from, err := resolveEndpoint(rec.Start, rec.Description)
		if err == nil {
			var to endpointRef
			to, err = resolveEndpoint(rec.End, rec.Description)
			if err == nil {
				pending = append(pending, pendingTransition{index: i, rec: rec, start: from, end: to})
				continue
			}
		}
		candidates = candidates[:mark]
		skip("transition", i, rec.Line, rec.Description, err)
	}

	res, err = g.ResolveAll(ctx, candidates, opts.Workers)
	if err != nil {
		return nil, err
	}
	for _, r := range res {
		hooks.OnResolve(ctx, r.Created)
	}
	nodeOf := func(ref endpointRef) NodeID {
		if ref.slot < 0 {
			return ref.node
		}
		return res[ref.slot].ID
	}
	for _, t := range pending {
		from, to := nodeOf(t.start), nodeOf(t.end)
		meta := Metadata{Description: t.rec.Description, Tags: t.rec.Tags, Properties: t.rec.Properties}
		if err := g.AddEdge(from, to, meta); err != nil {
			return nil, err
		}
		report.Transitions = append(report.Transitions, ResolvedTransition{
			Index: t.index, Description: t.rec.Description, From: from, To: to, Line: t.rec.Line,
		})
	}
	return g, nil
}
