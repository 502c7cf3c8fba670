package movegraph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// Sentinel errors.
var (
	// ErrUnknownNode is returned for node ids that do not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrInvalidNode is returned when restored nodes are inconsistent.
	ErrInvalidNode = errors.New("invalid node")
)

// PropertyBidirectional marks a transition usable in both directions.
const PropertyBidirectional = "bidirectional"

// NodeID identifies a node. Ids are dense and start at 0.
type NodeID int

// Metadata describes a node or an edge.
type Metadata struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Properties  []string `json:"properties,omitempty"`
}

// HasProperty reports whether m carries property p.
func (m Metadata) HasProperty(p string) bool { return slices.Contains(m.Properties, p) }

// Node is a deduplicated position.
type Node struct {
	ID                 NodeID
	Position           pose.Position
	Metadata           Metadata
	IsExplicitPosition bool

	// Extra holds key/value enrichment added after creation by
	// collaborators such as taggers or the game simulation.
	Extra map[string]string
}

// Edge is a transition between two nodes.
type Edge struct {
	From, To NodeID
	Metadata Metadata

	// Reverse is set on edges generated for bidirectional transitions.
	Reverse bool
}

// Options configures a Graph.
type Options struct {
	// Matcher decides equivalence. The zero value uses the defaults.
	Matcher match.Matcher

	// Index selects how candidates are narrowed before matching.
	Index IndexKind

	// Canonicalize stores the canonical form of a pose as the node's
	// representative instead of the pose itself.
	Canonicalize bool

	// Grid is the canonical key grid used by IndexCanonical.
	Grid float64
}

// Graph is the deduplicated move graph. It is safe for concurrent use.
type Graph struct {
	opts Options

	mu    sync.RWMutex
	nodes []Node
	edges []Edge
	out   [][]int // per node, indexes into edges
	index index
}

// New returns an empty graph.
func New(opts Options) *Graph {
	return &Graph{opts: opts, index: newIndex(opts)}
}

// Options returns the options the graph was created with.
func (g *Graph) Options() Options { return g.opts }

// InsertOrFind resolves candidate to a node id. Explicit candidates always
// create a new node. Otherwise the first node, in index order, whose
// representative matches candidate is returned; if none does, a new node
// is created. The second result reports whether a node was created.
func (g *Graph) InsertOrFind(candidate pose.Position, meta Metadata, explicit bool) (NodeID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !explicit {
		if id, ok := g.findLocked(candidate, 0, NodeID(len(g.nodes))); ok {
			return id, false
		}
	}
	return g.appendLocked(candidate, meta, explicit), true
}

// Find returns the node candidate would resolve to, without inserting.
func (g *Graph) Find(candidate pose.Position) (NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.findLocked(candidate, 0, NodeID(len(g.nodes)))
}

// findLocked scans nodes with ids in [from, to).
func (g *Graph) findLocked(candidate pose.Position, from, to NodeID) (NodeID, bool) {
	for id := range g.index.order(candidate, from, to) {
		if g.opts.Matcher.Equivalent(g.nodes[id].Position, candidate) {
			return id, true
		}
	}
	return 0, false
}

func (g *Graph) appendLocked(p pose.Position, meta Metadata, explicit bool) NodeID {
	if g.opts.Canonicalize {
		p = match.Canonicalize(p).Position
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		ID:                 id,
		Position:           p,
		Metadata:           cloneMetadata(meta),
		IsExplicitPosition: explicit,
	})
	g.out = append(g.out, nil)
	g.index.add(id, p)
	return id
}

// AddEdge appends an edge from one node to another. A bidirectional
// transition also gets a reverse edge with the same metadata.
func (g *Graph) AddEdge(from, to NodeID, meta Metadata) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(from); err != nil {
		return err
	}
	if err := g.checkLocked(to); err != nil {
		return err
	}
	g.addEdgeLocked(Edge{From: from, To: to, Metadata: cloneMetadata(meta)})
	if meta.HasProperty(PropertyBidirectional) {
		g.addEdgeLocked(Edge{From: to, To: from, Metadata: cloneMetadata(meta), Reverse: true})
	}
	return nil
}

func (g *Graph) addEdgeLocked(e Edge) {
	g.out[e.From] = append(g.out[e.From], len(g.edges))
	g.edges = append(g.edges, e)
}

func (g *Graph) checkLocked(id NodeID) error {
	if id < 0 || int(id) >= len(g.nodes) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return nil
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id NodeID) (Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if err := g.checkLocked(id); err != nil {
		return Node{}, err
	}
	return cloneNode(g.nodes[id]), nil
}

// Nodes returns copies of all nodes in id order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = cloneNode(n)
	}
	return out
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.edges)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of edges, reverse edges included.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Outgoing returns the edges leaving id in insertion order.
func (g *Graph) Outgoing(id NodeID) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.checkLocked(id) != nil {
		return nil
	}
	out := make([]Edge, len(g.out[id]))
	for i, e := range g.out[id] {
		out[i] = g.edges[e]
	}
	return out
}

// Successors returns the distinct targets of id's outgoing edges, in the
// order they were first reached.
func (g *Graph) Successors(id NodeID) []NodeID {
	var succ []NodeID
	for _, e := range g.Outgoing(id) {
		if !slices.Contains(succ, e.To) {
			succ = append(succ, e.To)
		}
	}
	return succ
}

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id NodeID) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.checkLocked(id) != nil {
		return 0
	}
	return len(g.out[id])
}

// Terminals returns the nodes without outgoing edges, in id order.
func (g *Graph) Terminals() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var ids []NodeID
	for i, out := range g.out {
		if len(out) == 0 {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// SetExtra attaches enrichment data to a node. Only Extra changes; the
// node's position and metadata stay as created.
func (g *Graph) SetExtra(id NodeID, key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkLocked(id); err != nil {
		return err
	}
	n := &g.nodes[id]
	if n.Extra == nil {
		n.Extra = make(map[string]string)
	}
	n.Extra[key] = value
	return nil
}

// Restore rebuilds a graph from stored nodes and edges. Node ids must be
// 0..len(nodes)-1 in order and edges must refer to existing nodes.
// Representatives are indexed as stored.
func Restore(opts Options, nodes []Node, edges []Edge) (*Graph, error) {
	g := New(opts)
	for i, n := range nodes {
		if n.ID != NodeID(i) {
			return nil, fmt.Errorf("%w: node at index %d has id %d", ErrInvalidNode, i, n.ID)
		}
		id := NodeID(len(g.nodes))
		n = cloneNode(n)
		g.nodes = append(g.nodes, n)
		g.out = append(g.out, nil)
		g.index.add(id, n.Position)
	}
	for _, e := range edges {
		if err := g.checkLocked(e.From); err != nil {
			return nil, err
		}
		if err := g.checkLocked(e.To); err != nil {
			return nil, err
		}
		e.Metadata = cloneMetadata(e.Metadata)
		g.addEdgeLocked(e)
	}
	return g, nil
}

func cloneMetadata(m Metadata) Metadata {
	m.Tags = slices.Clone(m.Tags)
	m.Properties = slices.Clone(m.Properties)
	return m
}

func cloneNode(n Node) Node {
	n.Metadata = cloneMetadata(n.Metadata)
	n.Extra = maps.Clone(n.Extra)
	return n
}
