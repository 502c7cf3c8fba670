package relax_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/pose/posetest"
	"github.com/matzehuels/grapplegraph/pkg/relax"
)

const eps = 1e-12

var (
	hip   = pose.PlayerJoint{Player: 0, Joint: pose.LeftHip}
	knee  = pose.PlayerJoint{Player: 0, Joint: pose.LeftKnee}
	thigh = []relax.Segment{{A: pose.LeftKnee, B: pose.LeftHip, Length: 0.4}}
)

// stretched places a thigh of length 0.8, twice its target.
func stretched() pose.Position {
	p := posetest.Sample(50)
	p = p.With(knee, r3.Vec{X: 0, Y: 0.5, Z: 0})
	return p.With(hip, r3.Vec{X: 0, Y: 1.3, Z: 0})
}

func TestRelaxSymmetric(t *testing.T) {
	p := stretched()
	q := relax.Relax(p, relax.Options{Segments: thigh})

	// Each endpoint moves a quarter of the current length toward the
	// other: half of the 0.4 excess.
	if d := r3.Norm(r3.Sub(q.At(knee), p.At(knee))); math.Abs(d-0.2) > eps {
		t.Errorf("knee moved %g, want 0.2", d)
	}
	if d := r3.Norm(r3.Sub(q.At(hip), p.At(hip))); math.Abs(d-0.2) > eps {
		t.Errorf("hip moved %g, want 0.2", d)
	}
	if q.At(knee).Y <= p.At(knee).Y || q.At(hip).Y >= p.At(hip).Y {
		t.Error("endpoints should move toward each other")
	}
	if got := relax.SegmentLengths(q, 0, thigh)[0]; math.Abs(got-0.4) > eps {
		t.Errorf("length after relax = %g, want 0.4", got)
	}
}

func TestRelaxPinned(t *testing.T) {
	p := stretched()
	q := relax.Relax(p, relax.Options{Segments: thigh, Fixed: &hip})

	if q.At(hip) != p.At(hip) {
		t.Errorf("pinned hip moved to %v", q.At(hip))
	}
	if d := r3.Norm(r3.Sub(q.At(knee), p.At(knee))); math.Abs(d-0.4) > eps {
		t.Errorf("knee moved %g, want the full 0.4", d)
	}
}

func TestRelaxLeavesOtherJoints(t *testing.T) {
	p := stretched()
	q := relax.Relax(p, relax.Options{Segments: thigh})
	for k, v := range p.All() {
		if k == hip || k == knee || k == (pose.PlayerJoint{Player: 1, Joint: pose.LeftHip}) ||
			k == (pose.PlayerJoint{Player: 1, Joint: pose.LeftKnee}) {
			continue
		}
		if q.At(k) != v {
			t.Errorf("%s moved", k)
		}
	}
}

func TestRelaxImprovesLimbs(t *testing.T) {
	p := posetest.Sample(51)
	before := limbError(p)
	q := relax.Relax(p, relax.Options{Iterations: 5})
	if after := limbError(q); after >= before {
		t.Errorf("limb error %g -> %g, want a decrease", before, after)
	}
}

func TestClamp(t *testing.T) {
	p := posetest.Sample(52)
	k := pose.PlayerJoint{Player: 1, Joint: pose.RightToe}
	p = p.With(k, r3.Vec{X: -3, Y: -0.5, Z: 2.5})
	q := relax.Clamp(p)
	if got, want := q.At(k), (r3.Vec{X: -2, Y: 0, Z: 2}); got != want {
		t.Errorf("clamped = %v, want %v", got, want)
	}

	// Relax clamps too.
	q = relax.Relax(p, relax.Options{Segments: []relax.Segment{}})
	if q.At(k).Y != 0 {
		t.Errorf("Relax did not clamp: %v", q.At(k))
	}
}

func TestRelaxZeroLengthSegment(t *testing.T) {
	p := posetest.Sample(53)
	p = p.With(hip, p.At(knee))
	q := relax.Relax(p, relax.Options{Segments: thigh})
	if q.At(hip) != p.At(hip) || q.At(knee) != p.At(knee) {
		t.Error("coincident endpoints have no direction and should not move")
	}
}

func limbError(p pose.Position) float64 {
	var sum float64
	for player := range pose.PlayerCount {
		for i, l := range relax.SegmentLengths(p, player, nil) {
			sum += math.Abs(l - relax.DefaultSegments[i].Length)
		}
	}
	return sum
}
