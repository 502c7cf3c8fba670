package pose_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/pose/posetest"
)

const eps = 1e-9

func TestAngle(t *testing.T) {
	tests := []struct {
		v    r2.Vec
		want float64
	}{
		{r2.Vec{X: 0, Y: 1}, 0},
		{r2.Vec{X: 1, Y: 0}, math.Pi / 2},
		{r2.Vec{X: -1, Y: 0}, -math.Pi / 2},
		{r2.Vec{X: 0, Y: -1}, math.Pi},
	}
	for _, tt := range tests {
		if got := pose.Angle(tt.v); math.Abs(got-tt.want) > eps {
			t.Errorf("Angle(%v) = %g, want %g", tt.v, got, tt.want)
		}
	}
}

func TestYawRotationAddsAngle(t *testing.T) {
	v := r3.Vec{X: 0.3, Y: 0.7, Z: -0.4}
	for _, theta := range []float64{0.1, 1, -2, 3} {
		rotated := pose.YawRotation(theta).Rotate(v)
		if math.Abs(rotated.Y-v.Y) > eps {
			t.Errorf("theta %g: height changed", theta)
		}
		got := pose.Angle(pose.XZ(rotated)) - pose.Angle(pose.XZ(v))
		if d := math.Remainder(got-theta, 2*math.Pi); math.Abs(d) > eps {
			t.Errorf("theta %g: angle moved by %g", theta, got)
		}
	}
}

func TestReorientationInverse(t *testing.T) {
	r := pose.Reorientation{Offset: r3.Vec{X: 0.2, Y: 0.1, Z: -0.3}, Yaw: 0.8}
	p := posetest.Sample(11)
	back := pose.Apply(r.Inverse(), pose.Apply(r, p))
	if d := p.MaxDeviation(back); d > eps {
		t.Errorf("inverse deviated by %g", d)
	}
	if !(pose.Reorientation{Yaw: 2 * math.Pi}).IsIdentity(eps) {
		t.Error("full turn should be identity")
	}
	if r.IsIdentity(eps) {
		t.Error("r is not identity")
	}
	v := r3.Vec{X: 1}
	if got, want := r.Transform(v), pose.Apply(r, p.With(pose.PlayerJoint{}, v)).At(pose.PlayerJoint{}); r3.Norm(r3.Sub(got, want)) > eps {
		t.Errorf("Transform = %v, Apply = %v", got, want)
	}
}

func TestMirror(t *testing.T) {
	p := posetest.Sample(12)
	m := pose.Mirror(p)

	left := pose.PlayerJoint{Player: 0, Joint: pose.LeftKnee}
	right := pose.PlayerJoint{Player: 0, Joint: pose.RightKnee}
	if got, src := m.At(right), p.At(left); got.X != -src.X || got.Y != src.Y || got.Z != src.Z {
		t.Errorf("mirrored right knee = %v, want reflection of %v", got, src)
	}
	head := pose.PlayerJoint{Player: 1, Joint: pose.Head}
	if got, src := m.At(head), p.At(head); got.X != -src.X {
		t.Errorf("mirrored head = %v, want reflection of %v", got, src)
	}
	if pose.Mirror(m) != p {
		t.Error("Mirror should be an involution")
	}
	if math.Abs(pose.HeadDistSq(m)-pose.HeadDistSq(p)) > eps {
		t.Error("Mirror changed head distance")
	}
}

func TestMirrorTable(t *testing.T) {
	for _, j := range pose.Joints() {
		if j.Mirror().Mirror() != j {
			t.Errorf("%s: mirror is not an involution", j)
		}
	}
	for _, j := range []pose.Joint{pose.Core, pose.Neck, pose.Head} {
		if j.Mirror() != j {
			t.Errorf("%s should map to itself", j)
		}
	}
	if pose.LeftFingers.Mirror() != pose.RightFingers {
		t.Error("LeftFingers should mirror to RightFingers")
	}
}

func TestSwapPlayers(t *testing.T) {
	p := posetest.Sample(13)
	s := pose.SwapPlayers(p)
	for _, j := range pose.Joints() {
		a := pose.PlayerJoint{Player: 0, Joint: j}
		b := pose.PlayerJoint{Player: 1, Joint: j}
		if s.At(a) != p.At(b) || s.At(b) != p.At(a) {
			t.Fatalf("%s not swapped", j)
		}
	}
	if pose.SwapPlayers(s) != p {
		t.Error("SwapPlayers should be an involution")
	}
}

func TestHeadDistSqInvariant(t *testing.T) {
	p := posetest.Sample(14)
	r := pose.Reorientation{Offset: r3.Vec{X: 0.5, Z: 0.25}, Yaw: -1.3}
	if d := pose.HeadDistSq(pose.Apply(r, p)) - pose.HeadDistSq(p); math.Abs(d) > eps {
		t.Errorf("reorientation changed head distance by %g", d)
	}
	if d := pose.Heading(pose.Apply(r, p)) - pose.Heading(p); math.Abs(math.Remainder(d-r.Yaw, 2*math.Pi)) > eps {
		t.Errorf("heading moved by %g, want %g", d, r.Yaw)
	}
}

func TestCentroidAndTranslate(t *testing.T) {
	p := posetest.Sample(15)
	d := r3.Vec{X: 0.1, Y: 0.2, Z: 0.3}
	got := pose.Translate(p, d).Centroid()
	want := r3.Add(p.Centroid(), d)
	if r3.Norm(r3.Sub(got, want)) > eps {
		t.Errorf("centroid = %v, want %v", got, want)
	}
}

func TestFromCoordinates(t *testing.T) {
	coords := posetest.Sample(16).Coordinates()
	p, err := pose.FromCoordinates(coords)
	if err != nil {
		t.Fatalf("FromCoordinates: %v", err)
	}
	if len(p.Coordinates()) != pose.PlayerJointCount {
		t.Errorf("got %d coordinates", len(p.Coordinates()))
	}

	missing := pose.PlayerJoint{Player: 1, Joint: pose.RightWrist}
	delete(coords, missing)
	delete(coords, pose.PlayerJoint{Player: 1, Joint: pose.Head})
	_, err = pose.FromCoordinates(coords)
	var me *pose.MissingJointError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, want *MissingJointError", err)
	}
	if me.Key != missing {
		t.Errorf("missing key = %s, want %s", me.Key, missing)
	}
	if !errors.Is(err, pose.ErrMissingJoint) {
		t.Error("should match ErrMissingJoint")
	}

	coords[missing] = r3.Vec{}
	coords[pose.PlayerJoint{Player: 1, Joint: pose.Head}] = r3.Vec{}
	coords[pose.PlayerJoint{Player: 2, Joint: pose.Head}] = r3.Vec{}
	if _, err := pose.FromCoordinates(coords); err == nil {
		t.Error("expected error for player 2")
	}
}

func TestParsePlayerJoint(t *testing.T) {
	for _, k := range pose.PlayerJoints() {
		got, err := pose.ParsePlayerJoint(k.String())
		if err != nil || got != k {
			t.Errorf("ParsePlayerJoint(%q) = %v, %v", k.String(), got, err)
		}
	}
	for _, s := range []string{"", "Head", "p2.Head", "p0.Tail", "x0.Head"} {
		if _, err := pose.ParsePlayerJoint(s); err == nil {
			t.Errorf("ParsePlayerJoint(%q) should fail", s)
		}
	}
}
