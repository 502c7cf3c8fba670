package io

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/grapplegraph/pkg/catalog"
	"github.com/matzehuels/grapplegraph/pkg/movegraph"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

func buildFixture(t *testing.T, opts movegraph.Options) *movegraph.Graph {
	t.Helper()
	c, err := catalog.Load("../catalog/testdata/fixture.gm")
	if err != nil {
		t.Fatal(err)
	}
	g, _, err := movegraph.Build(context.Background(), c, movegraph.BuildOptions{Graph: opts})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts movegraph.Options
	}{
		{"plain", movegraph.Options{}},
		{"canonical", movegraph.Options{Canonicalize: true, Index: movegraph.IndexCanonical}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildFixture(t, tt.opts)

			var buf bytes.Buffer
			if err := WriteJSON(g, &buf); err != nil {
				t.Fatalf("WriteJSON: %v", err)
			}
			got, err := ReadJSON(&buf, tt.opts)
			if err != nil {
				t.Fatalf("ReadJSON: %v", err)
			}

			if !reflect.DeepEqual(got.Nodes(), g.Nodes()) {
				t.Error("nodes differ after round trip")
			}
			if !reflect.DeepEqual(got.Edges(), g.Edges()) {
				t.Error("edges differ after round trip")
			}
		})
	}
}

func TestFromGraph(t *testing.T) {
	g := buildFixture(t, movegraph.Options{})
	if err := g.SetExtra(2, "reward", "3"); err != nil {
		t.Fatal(err)
	}
	doc := FromGraph(g)

	if len(doc.Nodes) != 4 || len(doc.Edges) != 3 {
		t.Fatalf("got %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
	}
	n := doc.Nodes[0]
	if !n.Explicit || n.Description != "completed imanari roll" || len(n.Coordinates) != pose.PlayerJointCount {
		t.Errorf("node 0 = %+v", n)
	}
	if len(n.Code) != pose.EncodedSize {
		t.Errorf("code length = %d", len(n.Code))
	}
	if doc.Nodes[2].Extra["reward"] != "3" {
		t.Errorf("extra = %v", doc.Nodes[2].Extra)
	}
	if e := doc.Edges[2]; !e.Reverse || e.From != 3 || e.To != 1 {
		t.Errorf("reverse edge = %+v", e)
	}
}

func TestExportImport(t *testing.T) {
	g := buildFixture(t, movegraph.Options{})
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path, movegraph.Options{})
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got.NodeCount() != 4 || got.EdgeCount() != 3 {
		t.Errorf("imported %d nodes, %d edges", got.NodeCount(), got.EdgeCount())
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json"), movegraph.Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadJSONErrors(t *testing.T) {
	triple := "[0,1,0]"
	coords := "[" + strings.Repeat(triple+",", pose.PlayerJointCount-1) + triple + "]"

	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"malformed", `{"nodes": [`, nil},
		{"short coordinates", `{"nodes": [{"id": 0, "coordinates": [[0,0,0]]}], "edges": []}`, pose.ErrMissingJoint},
		{"id gap", `{"nodes": [{"id": 1, "coordinates": ` + coords + `}], "edges": []}`, movegraph.ErrInvalidNode},
		{"unknown edge node", `{"nodes": [{"id": 0, "coordinates": ` + coords + `}], "edges": [{"from": 0, "to": 3}]}`, movegraph.ErrUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input), movegraph.Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}
