// Package posetest provides deterministic poses for tests.
package posetest

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// Sample returns a pseudo-random pose derived from seed. Player 0 stands
// around x = -0.5 and player 1 around x = 0.5; every coordinate lies
// within 1.0 of the vertical axis and between 0.05 and 1.8 in height, so
// the pose stays encodable after any yaw rotation.
func Sample(seed uint64) pose.Position {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	coords := make(map[pose.PlayerJoint]r3.Vec, pose.PlayerJointCount)
	for _, k := range pose.PlayerJoints() {
		cx := -0.5 + float64(k.Player)
		coords[k] = r3.Vec{
			X: cx + (rng.Float64()-0.5)*0.8,
			Y: 0.05 + rng.Float64()*1.75,
			Z: (rng.Float64() - 0.5) * 0.8,
		}
	}
	p, err := pose.FromCoordinates(coords)
	if err != nil {
		panic(err)
	}
	return p
}

// Quantize round-trips p through the default codec so the result is
// exactly representable.
func Quantize(p pose.Position) pose.Position {
	s, err := pose.Encode(p)
	if err != nil {
		panic(err)
	}
	q, err := pose.Decode(s)
	if err != nil {
		panic(err)
	}
	return q
}
