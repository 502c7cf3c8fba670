package io

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// Document is the serialized form of a move graph.
type Document struct {
	Nodes []NodeDoc `json:"nodes" bson:"nodes"`
	Edges []EdgeDoc `json:"edges" bson:"edges"`
}

// NodeDoc is one serialized node.
type NodeDoc struct {
	ID          int               `json:"id" bson:"id"`
	Description string            `json:"description" bson:"description"`
	Tags        []string          `json:"tags,omitempty" bson:"tags,omitempty"`
	Properties  []string          `json:"properties,omitempty" bson:"properties,omitempty"`
	Explicit    bool              `json:"explicit" bson:"explicit"`
	Code        string            `json:"code,omitempty" bson:"code,omitempty"`
	Coordinates [][3]float64      `json:"coordinates" bson:"coordinates"`
	Extra       map[string]string `json:"extra,omitempty" bson:"extra,omitempty"`
}

// EdgeDoc is one serialized edge.
type EdgeDoc struct {
	From        int      `json:"from" bson:"from"`
	To          int      `json:"to" bson:"to"`
	Description string   `json:"description" bson:"description"`
	Tags        []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Properties  []string `json:"properties,omitempty" bson:"properties,omitempty"`
	Reverse     bool     `json:"reverse,omitempty" bson:"reverse,omitempty"`
}

// FromGraph converts g to a Document.
func FromGraph(g *movegraph.Graph) Document {
	nodes := g.Nodes()
	edges := g.Edges()
	doc := Document{
		Nodes: make([]NodeDoc, len(nodes)),
		Edges: make([]EdgeDoc, len(edges)),
	}
	for i, n := range nodes {
		nd := NodeDoc{
			ID:          int(n.ID),
			Description: n.Metadata.Description,
			Tags:        n.Metadata.Tags,
			Properties:  n.Metadata.Properties,
			Explicit:    n.IsExplicitPosition,
			Coordinates: make([][3]float64, 0, pose.PlayerJointCount),
			Extra:       n.Extra,
		}
		if code, err := pose.Encode(n.Position); err == nil {
			nd.Code = code
		}
		for _, v := range n.Position.All() {
			nd.Coordinates = append(nd.Coordinates, [3]float64{v.X, v.Y, v.Z})
		}
		doc.Nodes[i] = nd
	}
	for i, e := range edges {
		doc.Edges[i] = EdgeDoc{
			From:        int(e.From),
			To:          int(e.To),
			Description: e.Metadata.Description,
			Tags:        e.Metadata.Tags,
			Properties:  e.Metadata.Properties,
			Reverse:     e.Reverse,
		}
	}
	return doc
}

// Graph rebuilds a move graph from d.
func (d Document) Graph(opts movegraph.Options) (*movegraph.Graph, error) {
	nodes := make([]movegraph.Node, len(d.Nodes))
	for i, nd := range d.Nodes {
		p, err := nd.position()
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", nd.ID, err)
		}
		nodes[i] = movegraph.Node{
			ID:       movegraph.NodeID(nd.ID),
			Position: p,
			Metadata: movegraph.Metadata{
				Description: nd.Description,
				Tags:        nd.Tags,
				Properties:  nd.Properties,
			},
			IsExplicitPosition: nd.Explicit,
			Extra:              nd.Extra,
		}
	}
	edges := make([]movegraph.Edge, len(d.Edges))
	for i, ed := range d.Edges {
		edges[i] = movegraph.Edge{
			From: movegraph.NodeID(ed.From),
			To:   movegraph.NodeID(ed.To),
			Metadata: movegraph.Metadata{
				Description: ed.Description,
				Tags:        ed.Tags,
				Properties:  ed.Properties,
			},
			Reverse: ed.Reverse,
		}
	}
	g, err := movegraph.Restore(opts, nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	return g, nil
}

func (nd NodeDoc) position() (pose.Position, error) {
	if len(nd.Coordinates) != pose.PlayerJointCount {
		return pose.Position{}, fmt.Errorf("%w: got %d coordinates, want %d",
			pose.ErrMissingJoint, len(nd.Coordinates), pose.PlayerJointCount)
	}
	coords := make(map[pose.PlayerJoint]r3.Vec, pose.PlayerJointCount)
	for i, k := range pose.PlayerJoints() {
		c := nd.Coordinates[i]
		coords[k] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}
	return pose.FromCoordinates(coords)
}
