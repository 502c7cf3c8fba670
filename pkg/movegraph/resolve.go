package movegraph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// Candidate is one pose waiting to be resolved to a node.
type Candidate struct {
	Position pose.Position
	Metadata Metadata
	Explicit bool
}

// Resolution is the outcome of resolving a Candidate.
type Resolution struct {
	ID      NodeID
	Created bool
}

// ResolveAll resolves a batch of candidates in order.
//
// Matching against nodes that existed before the call runs on up to
// workers goroutines; the find-or-insert decisions are then committed
// one candidate at a time, checking nodes created earlier in the same
// batch. For IndexLinear and IndexHeadDistance the result is identical to
// calling InsertOrFind for each candidate in order. The graph is locked
// for writing for the whole call.
func (g *Graph) ResolveAll(ctx context.Context, candidates []Candidate, workers int) ([]Resolution, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	committed := NodeID(len(g.nodes))
	found := make([]NodeID, len(candidates))
	matched := make([]bool, len(candidates))

	if committed > 0 {
		eg, ctx := errgroup.WithContext(ctx)
		eg.SetLimit(max(workers, 1))
		for i, c := range candidates {
			if c.Explicit {
				continue
			}
			eg.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				found[i], matched[i] = g.findLocked(c.Position, 0, committed)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]Resolution, len(candidates))
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return out[:i], err
		}
		switch {
		case c.Explicit:
			out[i] = Resolution{ID: g.appendLocked(c.Position, c.Metadata, true), Created: true}
		case matched[i]:
			out[i] = Resolution{ID: found[i]}
		default:
			if id, ok := g.findLocked(c.Position, committed, NodeID(len(g.nodes))); ok {
				out[i] = Resolution{ID: id}
				continue
			}
			out[i] = Resolution{ID: g.appendLocked(c.Position, c.Metadata, false), Created: true}
		}
	}
	return out, nil
}
