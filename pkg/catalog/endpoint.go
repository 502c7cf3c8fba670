package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Endpoint names one end of a transition: either an encoded position or
// the id of a node that already exists when the transition is resolved.
type Endpoint struct {
	Code string
	Node *int
}

// CodeEndpoint returns an endpoint holding an encoded position.
func CodeEndpoint(code string) Endpoint { return Endpoint{Code: code} }

// NodeEndpoint returns an endpoint referring to an existing node.
func NodeEndpoint(id int) Endpoint { return Endpoint{Node: &id} }

// IsNode reports whether e refers to a node id.
func (e Endpoint) IsNode() bool { return e.Node != nil }

func (e Endpoint) String() string {
	if e.Node != nil {
		return fmt.Sprintf("node %d", *e.Node)
	}
	return e.Code
}

// MarshalJSON writes a node id as a number and a code as a string.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	if e.Node != nil {
		return json.Marshal(*e.Node)
	}
	return json.Marshal(e.Code)
}

// UnmarshalJSON accepts a string code or an integer node id.
func (e *Endpoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = Endpoint{Code: s}
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("endpoint must be an encoded position or a node id: %w", err)
	}
	if id < 0 {
		return fmt.Errorf("negative node id %d", id)
	}
	*e = NodeEndpoint(id)
	return nil
}
