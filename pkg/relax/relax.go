// Package relax nudges interpolated poses back toward anatomical limb
// lengths.
//
// Relax is a bounded Gauss-Seidel pass, not a solver: each iteration moves
// the endpoints of every segment halfway toward its target length, in
// table order, updating coordinates in place so later segments see the
// earlier corrections. Limb lengths are only partially restored per call.
package relax

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// Segment is a limb between two joints of the same player.
type Segment struct {
	A, B   pose.Joint
	Length float64
}

// DefaultSegments lists the anatomical segments and their target lengths
// in authoring units. Each applies to both players.
var DefaultSegments = []Segment{
	{pose.LeftAnkle, pose.LeftKnee, 0.4},
	{pose.RightAnkle, pose.RightKnee, 0.4},
	{pose.LeftKnee, pose.LeftHip, 0.4},
	{pose.RightKnee, pose.RightHip, 0.4},
	{pose.LeftHip, pose.Core, 0.2},
	{pose.RightHip, pose.Core, 0.2},
	{pose.Core, pose.Neck, 0.4},
	{pose.Neck, pose.Head, 0.1},
	{pose.LeftShoulder, pose.LeftElbow, 0.3},
	{pose.RightShoulder, pose.RightElbow, 0.3},
	{pose.LeftElbow, pose.LeftWrist, 0.3},
	{pose.RightElbow, pose.RightWrist, 0.3},
}

// Bounds of the authoring volume every joint is clamped into.
var (
	Min = r3.Vec{X: -2, Y: 0, Z: -2}
	Max = r3.Vec{X: 2, Y: 2, Z: 2}
)

// Options configures Relax. The zero value runs one iteration over
// DefaultSegments with nothing pinned.
type Options struct {
	// Fixed pins one joint in place. Its segment partner then takes the
	// whole correction.
	Fixed *pose.PlayerJoint

	// Iterations is the number of passes; values < 1 mean one.
	Iterations int

	// Segments overrides DefaultSegments.
	Segments []Segment
}

// Relax returns p with limb lengths moved toward their targets.
func Relax(p pose.Position, opts Options) pose.Position {
	segments := opts.Segments
	if segments == nil {
		segments = DefaultSegments
	}
	iterations := max(opts.Iterations, 1)

	for range iterations {
		for _, s := range segments {
			for player := range pose.PlayerCount {
				p = relaxSegment(p, s, player, opts.Fixed)
			}
		}
		p = Clamp(p)
	}
	return p
}

func relaxSegment(p pose.Position, s Segment, player int, fixed *pose.PlayerJoint) pose.Position {
	ka := pose.PlayerJoint{Player: player, Joint: s.A}
	kb := pose.PlayerJoint{Player: player, Joint: s.B}
	va, vb := p.At(ka), p.At(kb)
	d := r3.Sub(vb, va)
	n := r3.Norm(d)
	if n == 0 {
		return p
	}
	// Positive when the segment is too long; moving a toward b shortens it.
	corr := r3.Scale((n-s.Length)/n, d)

	pinA := fixed != nil && *fixed == ka
	pinB := fixed != nil && *fixed == kb
	switch {
	case pinA && pinB:
		return p
	case pinA:
		return p.With(kb, r3.Sub(vb, corr))
	case pinB:
		return p.With(ka, r3.Add(va, corr))
	}
	half := r3.Scale(0.5, corr)
	return p.With(ka, r3.Add(va, half)).With(kb, r3.Sub(vb, half))
}

// Clamp moves every joint of p inside [Min, Max].
func Clamp(p pose.Position) pose.Position {
	for k, v := range p.All() {
		c := r3.Vec{
			X: min(max(v.X, Min.X), Max.X),
			Y: min(max(v.Y, Min.Y), Max.Y),
			Z: min(max(v.Z, Min.Z), Max.Z),
		}
		if c != v {
			p = p.With(k, c)
		}
	}
	return p
}

// SegmentLengths returns the current length of every segment for one
// player, in table order.
func SegmentLengths(p pose.Position, player int, segments []Segment) []float64 {
	if segments == nil {
		segments = DefaultSegments
	}
	out := make([]float64, len(segments))
	for i, s := range segments {
		a := p.At(pose.PlayerJoint{Player: player, Joint: s.A})
		b := p.At(pose.PlayerJoint{Player: player, Joint: s.B})
		out[i] = r3.Norm(r3.Sub(b, a))
	}
	return out
}
