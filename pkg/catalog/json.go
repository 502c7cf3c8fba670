package catalog

import (
	"encoding/json"
	"io"

	errs "github.com/matzehuels/grapplegraph/pkg/errors"
)

type document struct {
	Positions   []PositionRecord   `json:"positions"`
	Transitions []TransitionRecord `json:"transitions"`
}

// ReadJSON parses a JSON catalog:
//
//	{
//	  "positions":   [{"code": "...", "description": "...", "tags": [], "properties": [], "isExplicitPosition": true}],
//	  "transitions": [{"startPosition": "..." | 0, "endPosition": "..." | 1, "description": "...", "tags": [], "properties": []}]
//	}
//
// Transition endpoints are either encoded positions or ids of nodes
// created earlier in the build.
func ReadJSON(r io.Reader) (*Catalog, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidCatalog, err, "decode JSON catalog")
	}
	return New(doc.Positions, doc.Transitions), nil
}

// WriteJSON writes c as an indented JSON catalog.
func WriteJSON(w io.Writer, c *Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Positions: c.positions, Transitions: c.transitions})
}
