package pose

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the vertical axis. Poses are gravity aligned, so every
// supported rotation is about Up.
var Up = r3.Vec{Y: 1}

// XZ projects v onto the horizontal plane. The result's X is v.X and its
// Y is v.Z.
func XZ(v r3.Vec) r2.Vec { return r2.Vec{X: v.X, Y: v.Z} }

// Angle returns the heading of a horizontal vector produced by XZ.
// Heading 0 points along +z and a YawRotation by theta adds theta.
func Angle(v r2.Vec) float64 { return math.Atan2(v.X, v.Y) }

// YawRotation returns the rotation about Up by theta radians.
func YawRotation(theta float64) r3.Rotation { return r3.NewRotation(theta, Up) }

// Reorientation rotates about Up by Yaw, then translates by Offset.
type Reorientation struct {
	Offset r3.Vec  `json:"offset"`
	Yaw    float64 `json:"yaw"`
}

// Transform maps a single point through r.
func (r Reorientation) Transform(v r3.Vec) r3.Vec {
	if r.Yaw != 0 {
		v = YawRotation(r.Yaw).Rotate(v)
	}
	return r3.Add(v, r.Offset)
}

// Inverse returns the reorientation undoing r.
func (r Reorientation) Inverse() Reorientation {
	back := YawRotation(-r.Yaw).Rotate(r.Offset)
	return Reorientation{Offset: r3.Scale(-1, back), Yaw: -r.Yaw}
}

// IsIdentity reports whether r leaves points in place within eps.
func (r Reorientation) IsIdentity(eps float64) bool {
	yaw := math.Remainder(r.Yaw, 2*math.Pi)
	return math.Abs(yaw) <= eps && r3.Norm(r.Offset) <= eps
}

// Apply returns p with every joint mapped through r.
func Apply(r Reorientation, p Position) Position {
	rot := YawRotation(r.Yaw)
	var q Position
	for i, v := range p.coords {
		q.coords[i] = r3.Add(rot.Rotate(v), r.Offset)
	}
	return q
}

// Translate returns p shifted by d.
func Translate(p Position, d r3.Vec) Position {
	for i := range p.coords {
		p.coords[i] = r3.Add(p.coords[i], d)
	}
	return p
}

// Mirror reflects p through the x = 0 plane. Each joint takes the negated
// coordinate of its left/right counterpart, so the reflected pose is
// anatomically consistent.
func Mirror(p Position) Position {
	var q Position
	for i, v := range p.coords {
		k := playerJointAt(i)
		dst := PlayerJoint{Player: k.Player, Joint: k.Joint.Mirror()}
		q.coords[dst.Index()] = r3.Vec{X: -v.X, Y: v.Y, Z: v.Z}
	}
	return q
}

// SwapPlayers exchanges the labels of the two players.
func SwapPlayers(p Position) Position {
	var q Position
	copy(q.coords[:JointCount], p.coords[JointCount:])
	copy(q.coords[JointCount:], p.coords[:JointCount])
	return q
}

// HeadDistSq returns the squared distance between the two players' heads.
// Rotation about Up, translation, mirroring and swapping preserve it.
func HeadDistSq(p Position) float64 {
	return r3.Norm2(r3.Sub(p.Head(1), p.Head(0)))
}

// Heading returns the horizontal angle of the vector from player 0's head
// to player 1's head.
func Heading(p Position) float64 {
	return Angle(XZ(r3.Sub(p.Head(1), p.Head(0))))
}
