package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/grapplegraph/pkg/movegraph"
)

// ReadJSON decodes a graph document from r and restores it with opts.
//
// ReadJSON returns an error if the JSON is malformed, a node does not
// carry exactly one coordinate triple per player joint, node ids are not
// 0..n-1 in order, or an edge references an unknown node. ReadJSON does
// not close r.
func ReadJSON(r io.Reader, opts movegraph.Options) (*movegraph.Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Graph(opts)
}

// ImportJSON reads a graph document from the file at path.
func ImportJSON(path string, opts movegraph.Options) (*movegraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f, opts)
}
