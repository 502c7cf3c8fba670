package match

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Metric decides whether two joint coordinates agree within a tolerance.
type Metric int

const (
	// Euclidean accepts when the distance between the points is at most
	// the tolerance.
	Euclidean Metric = iota

	// SquaredSum accepts when the squared distance is below the tolerance.
	SquaredSum

	// AbsComponent compares component magnitudes: it accepts when the norm
	// of |a| - |b| is below the tolerance. It cannot tell a point from
	// its reflection through any axis.
	AbsComponent
)

var metricNames = map[Metric]string{
	Euclidean:    "euclidean",
	SquaredSum:   "squared-sum",
	AbsComponent: "abs-component",
}

func (m Metric) String() string {
	if s, ok := metricNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric parses a metric name as printed by String.
func ParseMetric(s string) (Metric, error) {
	for m, name := range metricNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q (want euclidean, squared-sum or abs-component)", s)
}

// Within reports whether a and b agree within tol.
func (m Metric) Within(a, b r3.Vec, tol float64) bool {
	switch m {
	case SquaredSum:
		return r3.Norm2(r3.Sub(a, b)) < tol
	case AbsComponent:
		d := r3.Vec{
			X: math.Abs(a.X) - math.Abs(b.X),
			Y: math.Abs(a.Y) - math.Abs(b.Y),
			Z: math.Abs(a.Z) - math.Abs(b.Z),
		}
		return r3.Norm(d) < tol
	default:
		return r3.Norm(r3.Sub(a, b)) <= tol
	}
}
