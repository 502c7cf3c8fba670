package match

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// DefaultGrid is the cell size Key rounds canonical coordinates to.
const DefaultGrid = 0.1

// Canonical is a pose moved into the standard frame.
type Canonical struct {
	// Position is the pose in the standard frame.
	Position pose.Position

	// Reorientation maps the input pose into the standard frame. When
	// Mirrored is set, Position is the mirror of the reoriented input.
	Reorientation pose.Reorientation

	// Mirrored reports whether a left/right flip was needed to put
	// player 1's head at non-negative x.
	Mirrored bool
}

// Canonicalize centers p on its centroid, turns it so the horizontal
// vector from player 0's head to player 1's head has heading 0, and
// mirrors it if player 1's head would otherwise sit at negative x.
func Canonicalize(p pose.Position) Canonical {
	c := p.Centroid()
	yaw := -pose.Heading(p)
	r := pose.Reorientation{
		Yaw:    yaw,
		Offset: r3.Scale(-1, pose.YawRotation(yaw).Rotate(c)),
	}
	q := pose.Apply(r, p)
	mirrored := q.Head(1).X < 0
	if mirrored {
		q = pose.Mirror(q)
	}
	return Canonical{Position: q, Reorientation: r, Mirrored: mirrored}
}

// Key hashes the canonical form of p rounded to grid (DefaultGrid when
// grid <= 0). The player labels are not part of the frame, so a pose and
// its player swap share a key.
func Key(p pose.Position, grid float64) uint64 {
	if grid <= 0 {
		grid = DefaultGrid
	}
	k0 := gridHash(Canonicalize(p).Position, grid)
	k1 := gridHash(Canonicalize(pose.SwapPlayers(p)).Position, grid)
	return min(k0, k1)
}

func gridHash(p pose.Position, grid float64) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, v := range p.All() {
		for _, d := range [3]float64{v.X, v.Y, v.Z} {
			binary.LittleEndian.PutUint64(buf[:], uint64(int64(math.Round(d/grid))))
			h.Write(buf[:])
		}
	}
	return h.Sum64()
}
