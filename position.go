package keyframe

import (
	"fmt"
	"math"
)

// Position is a point in the (time, value) plane of a curve, or an offset
// within it. The unit of T depends on the [Space] it was obtained in.
type Position struct {
	T float64
	V float64
}

// Pos returns the position (t, v).
func Pos(t, v float64) Position {
	return Position{T: t, V: v}
}

func (p Position) String() string {
	return fmt.Sprintf("(%g, %g)", p.T, p.V)
}

func (p Position) Add(o Position) Position {
	return Position{
		T: p.T + o.T,
		V: p.V + o.V,
	}
}

// Sub computes p−o.
func (p Position) Sub(o Position) Position {
	return Position{
		T: p.T - o.T,
		V: p.V - o.V,
	}
}

func (p Position) Mul(f float64) Position {
	return Position{
		T: p.T * f,
		V: p.V * f,
	}
}

// Lerp linearly interpolates between two positions.
func (p Position) Lerp(o Position, t float64) Position {
	// p + t * (o-p)
	return p.Add(o.Sub(p).Mul(t))
}

// Slope returns the slope of the line from the origin to p.
func (p Position) Slope() float64 {
	return p.V / p.T
}

// IsInf reports whether at least one of t and v is infinite.
func (p Position) IsInf() bool {
	return math.IsInf(p.T, 0) || math.IsInf(p.V, 0)
}

// IsNaN reports whether at least one of t and v is NaN.
func (p Position) IsNaN() bool {
	return math.IsNaN(p.T) || math.IsNaN(p.V)
}

func (p Position) finite() bool {
	return !p.IsInf() && !p.IsNaN()
}
