// Package match decides whether two poses show the same physical position.
//
// Two poses are equivalent when one maps onto the other, joint by joint
// within a tolerance, under a rotation about the vertical axis plus a
// translation, optionally combined with a left/right mirror and a swap of
// the player labels. [Matcher.Match] searches those four symmetries in a
// fixed order and returns the first that fits:
//
//	identity, mirror, swap, mirror+swap
//
// The order is part of the contract: callers that deduplicate poses rely
// on it to get the same answer on every run.
//
// # Properties
//
// Equivalence is reflexive and symmetric. It is not transitive: it is a
// threshold on a continuous error, so a ~ b and b ~ c do not imply a ~ c.
// Callers that bucket poses must not assume otherwise.
//
// # Canonical form
//
// [Canonicalize] moves a pose into a standard frame (centroid at the
// origin, player 0 to player 1 heading along +z, player 1's head at
// non-negative x) and [Key] hashes it on a fixed grid. Equal keys are a
// strong hint of equivalence, not proof; unequal keys prove nothing
// because grid rounding splits near-identical poses at cell borders.
package match
