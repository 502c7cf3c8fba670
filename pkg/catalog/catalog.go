// Package catalog holds the authored input records a move graph is built
// from.
//
// A [Catalog] is an immutable value: a list of position records and a
// list of transition records, loaded once and passed explicitly to the
// graph builder. Records keep their encoded positions as text; decoding
// happens at build time so that a single bad record can be reported and
// skipped without rejecting the whole catalog.
//
// Two on-disk formats are supported:
//
//   - The GrappleMap text database (see [ReadText]), where each record is
//     one or more description lines followed by positions written as four
//     indented lines each.
//   - A JSON document (see [ReadJSON]) with "positions" and "transitions"
//     arrays.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// Well-known record properties.
const (
	PropertyBidirectional = "bidirectional"
	PropertyDetailed      = "detailed"
)

// PositionRecord is one authored or imported pose.
type PositionRecord struct {
	Code               string   `json:"code"`
	Description        string   `json:"description"`
	Tags               []string `json:"tags,omitempty"`
	Properties         []string `json:"properties,omitempty"`
	IsExplicitPosition bool     `json:"isExplicitPosition"`
	Notes              []string `json:"notes,omitempty"`

	// Line is the 1-based source line of the record, or 0 if unknown.
	Line int `json:"-"`
}

// HasProperty reports whether the record carries property p.
func (r PositionRecord) HasProperty(p string) bool { return slices.Contains(r.Properties, p) }

// TransitionRecord is one authored movement between two poses.
type TransitionRecord struct {
	Start       Endpoint `json:"startPosition"`
	End         Endpoint `json:"endPosition"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Properties  []string `json:"properties,omitempty"`
	Notes       []string `json:"notes,omitempty"`

	// Frames holds every encoded frame of the movement, first to last,
	// when the source provided them. Start and End then repeat the first
	// and last frame.
	Frames []string `json:"frames,omitempty"`

	// Line is the 1-based source line of the record, or 0 if unknown.
	Line int `json:"-"`
}

// HasProperty reports whether the record carries property p.
func (r TransitionRecord) HasProperty(p string) bool { return slices.Contains(r.Properties, p) }

// Catalog is an immutable set of input records.
type Catalog struct {
	positions   []PositionRecord
	transitions []TransitionRecord
	hash        string
}

// New returns a catalog holding copies of the given records.
func New(positions []PositionRecord, transitions []TransitionRecord) *Catalog {
	c := &Catalog{
		positions:   slices.Clone(positions),
		transitions: slices.Clone(transitions),
	}
	c.hash = c.computeHash()
	return c
}

// Positions returns the position records in source order.
func (c *Catalog) Positions() []PositionRecord { return slices.Clone(c.positions) }

// Transitions returns the transition records in source order.
func (c *Catalog) Transitions() []TransitionRecord { return slices.Clone(c.transitions) }

// Len returns the total number of records.
func (c *Catalog) Len() int { return len(c.positions) + len(c.transitions) }

// Hash returns a content hash of the records, independent of the format
// they were read from.
func (c *Catalog) Hash() string { return c.hash }

func (c *Catalog) computeHash() string {
	data, _ := json.Marshal(document{Positions: c.positions, Transitions: c.transitions})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
