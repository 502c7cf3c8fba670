package movegraph

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// IndexKind selects the candidate narrowing strategy of a Graph.
type IndexKind int

const (
	// IndexLinear compares a candidate with every node in id order.
	IndexLinear IndexKind = iota

	// IndexHeadDistance compares only with nodes whose squared head
	// distance is within the match tolerance, in id order. Results equal
	// IndexLinear's.
	IndexHeadDistance

	// IndexCanonical compares first with nodes sharing the candidate's
	// canonical key, then with all others in id order. When a candidate
	// matches several nodes, the lowest id in its own bucket wins over a
	// lower id elsewhere, so results can differ from IndexLinear's.
	IndexCanonical
)

var indexNames = map[IndexKind]string{
	IndexLinear:       "linear",
	IndexHeadDistance: "head-distance",
	IndexCanonical:    "canonical",
}

func (k IndexKind) String() string {
	if s, ok := indexNames[k]; ok {
		return s
	}
	return fmt.Sprintf("IndexKind(%d)", int(k))
}

// ParseIndexKind parses "linear", "head-distance" or "canonical".
func ParseIndexKind(s string) (IndexKind, error) {
	for k, name := range indexNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown index %q (want linear, head-distance or canonical)", s)
}

// index yields the ids in [from, to) a candidate should be tried against,
// in the order they should be tried.
type index interface {
	add(id NodeID, p pose.Position)
	order(p pose.Position, from, to NodeID) iter.Seq[NodeID]
}

func newIndex(opts Options) index {
	switch opts.Index {
	case IndexHeadDistance:
		tol := opts.Matcher.Tolerance
		if tol <= 0 {
			tol = match.DefaultTolerance
		}
		return &headDistanceIndex{tol: tol}
	case IndexCanonical:
		return &canonicalIndex{grid: opts.Grid, buckets: make(map[uint64][]NodeID)}
	default:
		return linearIndex{}
	}
}

func idRange(from, to NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for id := from; id < to; id++ {
			if !yield(id) {
				return
			}
		}
	}
}

// =============================================================================
// Linear
// =============================================================================

type linearIndex struct{}

func (linearIndex) add(NodeID, pose.Position) {}

func (linearIndex) order(_ pose.Position, from, to NodeID) iter.Seq[NodeID] {
	return idRange(from, to)
}

// =============================================================================
// Head distance
// =============================================================================

// windowSlack widens the search window so floating point noise in the
// stored distances never hides a node the matcher would accept.
const windowSlack = 1e-9

type headEntry struct {
	dist float64
	id   NodeID
}

type headDistanceIndex struct {
	tol     float64
	entries []headEntry // sorted by dist, then id
}

func (x *headDistanceIndex) add(id NodeID, p pose.Position) {
	e := headEntry{dist: pose.HeadDistSq(p), id: id}
	i := sort.Search(len(x.entries), func(i int) bool {
		c := x.entries[i]
		return c.dist > e.dist || (c.dist == e.dist && c.id > e.id)
	})
	x.entries = slices.Insert(x.entries, i, e)
}

func (x *headDistanceIndex) order(p pose.Position, from, to NodeID) iter.Seq[NodeID] {
	d := pose.HeadDistSq(p)
	lo := sort.Search(len(x.entries), func(i int) bool { return x.entries[i].dist >= d-x.tol-windowSlack })
	var ids []NodeID
	for _, e := range x.entries[lo:] {
		if e.dist > d+x.tol+windowSlack {
			break
		}
		if e.id >= from && e.id < to {
			ids = append(ids, e.id)
		}
	}
	slices.Sort(ids)
	return slices.Values(ids)
}

// =============================================================================
// Canonical
// =============================================================================

type canonicalIndex struct {
	grid    float64
	buckets map[uint64][]NodeID // ids ascending
}

func (x *canonicalIndex) add(id NodeID, p pose.Position) {
	k := match.Key(p, x.grid)
	x.buckets[k] = append(x.buckets[k], id)
}

func (x *canonicalIndex) order(p pose.Position, from, to NodeID) iter.Seq[NodeID] {
	bucket := x.buckets[match.Key(p, x.grid)]
	return func(yield func(NodeID) bool) {
		for _, id := range bucket {
			if id >= from && id < to && !yield(id) {
				return
			}
		}
		for id := from; id < to; id++ {
			if _, found := slices.BinarySearch(bucket, id); found {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}
