package match

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/grapplegraph/pkg/observability"
	"github.com/matzehuels/grapplegraph/pkg/pose"
)

// DefaultTolerance is used when Matcher.Tolerance is not positive.
const DefaultTolerance = 0.05

// CompositeTransform is the symmetry element relating two equivalent
// poses. Apply maps the first pose onto the second: reorient, then mirror,
// then swap players.
type CompositeTransform struct {
	Reorientation pose.Reorientation `json:"reorientation"`
	Mirror        bool               `json:"mirror"`
	SwapPlayers   bool               `json:"swapPlayers"`
}

// Apply maps p through t.
func (t CompositeTransform) Apply(p pose.Position) pose.Position {
	q := pose.Apply(t.Reorientation, p)
	if t.Mirror {
		q = pose.Mirror(q)
	}
	if t.SwapPlayers {
		q = pose.SwapPlayers(q)
	}
	return q
}

type symmetry struct {
	mirror, swap bool
}

// symmetries in search order.
var symmetries = [...]symmetry{
	{mirror: false, swap: false},
	{mirror: true, swap: false},
	{mirror: false, swap: true},
	{mirror: true, swap: true},
}

func (s symmetry) apply(p pose.Position) pose.Position {
	if s.mirror {
		p = pose.Mirror(p)
	}
	if s.swap {
		p = pose.SwapPlayers(p)
	}
	return p
}

// Matcher tests pose equivalence. The zero value uses DefaultTolerance,
// the Euclidean metric and the globally registered match hooks.
// A Matcher is immutable after construction and safe for concurrent use.
type Matcher struct {
	// Tolerance bounds both the head distance prefilter and the per-joint
	// error. Values <= 0 select DefaultTolerance.
	Tolerance float64

	// Metric compares aligned joints.
	Metric Metric

	// Hooks receives match events. Nil uses observability.Match().
	Hooks observability.MatchHooks
}

// Default is the matcher used by the package-level functions.
var Default = Matcher{}

// Match reports whether a and b are equivalent using Default.
func Match(a, b pose.Position) (CompositeTransform, bool) { return Default.Match(a, b) }

// Equivalent reports whether a and b are equivalent using Default.
func Equivalent(a, b pose.Position) bool { return Default.Equivalent(a, b) }

func (m Matcher) tolerance() float64 {
	if m.Tolerance > 0 {
		return m.Tolerance
	}
	return DefaultTolerance
}

func (m Matcher) hooks() observability.MatchHooks {
	if m.Hooks != nil {
		return m.Hooks
	}
	return observability.Match()
}

// Match finds the first symmetry, in the order identity, mirror, swap,
// mirror+swap, under which a aligns with b. Pairs whose squared head
// distances differ by more than the tolerance are rejected without any
// alignment attempt.
func (m Matcher) Match(a, b pose.Position) (CompositeTransform, bool) {
	hooks := m.hooks()
	if !m.headsCompatible(a, b) {
		hooks.OnPrefilterReject()
		return CompositeTransform{}, false
	}
	for _, s := range symmetries {
		r, ok := m.SolveRigidAlignment(a, s.apply(b))
		hooks.OnAlignmentSolve(ok)
		if ok {
			return CompositeTransform{Reorientation: r, Mirror: s.mirror, SwapPlayers: s.swap}, true
		}
	}
	return CompositeTransform{}, false
}

// Equivalent reports whether Match succeeds.
func (m Matcher) Equivalent(a, b pose.Position) bool {
	_, ok := m.Match(a, b)
	return ok
}

func (m Matcher) headsCompatible(a, b pose.Position) bool {
	return math.Abs(pose.HeadDistSq(a)-pose.HeadDistSq(b)) <= m.tolerance()
}

// SolveRigidAlignment computes the reorientation that turns a's heading
// into b's and lands a's player 0 head on b's, then reports whether every
// joint of the reoriented a is within tolerance of b.
func (m Matcher) SolveRigidAlignment(a, b pose.Position) (pose.Reorientation, bool) {
	r := Align(a, b)
	aligned := pose.Apply(r, a)
	tol := m.tolerance()
	for k, v := range aligned.All() {
		if !m.Metric.Within(v, b.At(k), tol) {
			return r, false
		}
	}
	return r, true
}

// Align returns the reorientation used by SolveRigidAlignment without
// checking the fit.
func Align(a, b pose.Position) pose.Reorientation {
	yaw := pose.Heading(b) - pose.Heading(a)
	offset := r3.Sub(b.Head(0), pose.YawRotation(yaw).Rotate(a.Head(0)))
	return pose.Reorientation{Offset: offset, Yaw: yaw}
}
