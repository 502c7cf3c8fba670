package pose

import (
	"fmt"
	"iter"

	"gonum.org/v1/gonum/spatial/r3"
)

// Position is a full two-player pose: one coordinate for each of the 46
// player joints. The zero value places every joint at the origin.
//
// Position is a value type; methods never modify the receiver.
type Position struct {
	coords [PlayerJointCount]r3.Vec
}

// FromCoordinates builds a Position from a raw coordinate map.
// Every one of the 46 keys must be present; the first missing key in
// encoding order is reported as a *MissingJointError. Keys outside the
// 46 valid ones are rejected. Coordinates are not range-checked.
func FromCoordinates(coords map[PlayerJoint]r3.Vec) (Position, error) {
	var p Position
	for k := range coords {
		if !k.Valid() {
			return Position{}, fmt.Errorf("invalid key %s", k)
		}
	}
	for i := range p.coords {
		k := playerJointAt(i)
		v, ok := coords[k]
		if !ok {
			return Position{}, &MissingJointError{Key: k}
		}
		p.coords[i] = v
	}
	return p, nil
}

// At returns the coordinate of k. It panics if k is not a valid key.
func (p Position) At(k PlayerJoint) r3.Vec {
	if !k.Valid() {
		panic(fmt.Sprintf("pose: invalid key %s", k))
	}
	return p.coords[k.Index()]
}

// Head returns the head coordinate of the given player.
func (p Position) Head(player int) r3.Vec {
	return p.At(PlayerJoint{Player: player, Joint: Head})
}

// With returns a copy of p where k is moved to v.
func (p Position) With(k PlayerJoint, v r3.Vec) Position {
	if !k.Valid() {
		panic(fmt.Sprintf("pose: invalid key %s", k))
	}
	p.coords[k.Index()] = v
	return p
}

// All iterates over every joint in encoding order.
func (p Position) All() iter.Seq2[PlayerJoint, r3.Vec] {
	return func(yield func(PlayerJoint, r3.Vec) bool) {
		for i, v := range p.coords {
			if !yield(playerJointAt(i), v) {
				return
			}
		}
	}
}

// Coordinates returns the position as a freshly allocated map.
func (p Position) Coordinates() map[PlayerJoint]r3.Vec {
	m := make(map[PlayerJoint]r3.Vec, PlayerJointCount)
	for k, v := range p.All() {
		m[k] = v
	}
	return m
}

// Centroid returns the mean of all 46 joint coordinates.
func (p Position) Centroid() r3.Vec {
	var sum r3.Vec
	for _, v := range p.coords {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1.0/PlayerJointCount, sum)
}

// MaxDeviation returns the largest per-joint Euclidean distance between
// p and q.
func (p Position) MaxDeviation(q Position) float64 {
	var worst float64
	for i := range p.coords {
		if d := r3.Norm(r3.Sub(p.coords[i], q.coords[i])); d > worst {
			worst = d
		}
	}
	return worst
}

// MarshalText encodes p with the default codec.
func (p Position) MarshalText() ([]byte, error) {
	s, err := Encode(p)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText decodes an encoded position, accepting the pretty-printed
// multi-line form as well.
func (p *Position) UnmarshalText(text []byte) error {
	q, err := DecodeFormatted(string(text))
	if err != nil {
		return err
	}
	*p = q
	return nil
}
