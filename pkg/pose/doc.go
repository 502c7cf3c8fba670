// Package pose models two-player grappling poses and their text encoding.
//
// A [Position] is a total mapping from [PlayerJoint] (player 0 or 1, one of
// 23 [Joint] landmarks) to a 3D coordinate. Positions are immutable values:
// every transform returns a new Position.
//
// # Construction
//
// There are exactly two ways to build a Position:
//
//	p, err := pose.Decode(code)              // from a 276-character encoded string
//	p, err := pose.FromCoordinates(coords)   // from a raw coordinate map
//
// # Encoding
//
// The encoded form is 276 symbols from the 62-character alphabet
// a-z, A-Z, 0-9. Each coordinate is two base-62 digits holding an integer
// in [0,4000) that is divided by 1000. Under the default [ShiftXZ]
// convention x and z are then shifted by -2 while y is kept as is:
//
//	s, err := pose.Encode(p)       // lossy to 1/1000 per axis
//	text, err := pose.Format(p)    // 4 indented lines, GrappleMap style
//
// # Geometry
//
// Only vertical-axis symmetry is modeled: [Apply] rotates about +Y then
// translates, [Mirror] reflects left/right (negating x and swapping joint
// sides), and [SwapPlayers] relabels the two players.
//
// # Concurrency
//
// Every function in this package is pure and safe for concurrent use.
package pose
