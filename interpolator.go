package keyframe

import "strings"

// Hints describes which tangent terms an [Interpolator] consumes. Lo refers
// to the From tangent of the span's lower key, Hi to the Into tangent of its
// upper key.
type Hints uint8

const (
	UseSlopeLo Hints = 1 << iota
	UseSlopeHi
	UseAccelLo
	UseAccelHi
)

// Has reports whether all hints in o are set in h.
func (h Hints) Has(o Hints) bool {
	return h&o == o
}

func (h Hints) String() string {
	if h == 0 {
		return "0"
	}
	var parts []string
	for _, x := range []struct {
		h    Hints
		name string
	}{
		{UseSlopeLo, "UseSlopeLo"},
		{UseSlopeHi, "UseSlopeHi"},
		{UseAccelLo, "UseAccelLo"},
		{UseAccelHi, "UseAccelHi"},
	} {
		if h&x.h != 0 {
			parts = append(parts, x.name)
		}
	}
	return strings.Join(parts, "|")
}

// Handle holds the slope and accel of a tangent in [SpaceKey], that is, as
// the first and second derivative of the value with respect to the
// normalized parameter u ∈ [0, 1] of the span being interpolated.
type Handle struct {
	Slope float64
	Accel float64
}

// Bisection is the result of splitting a span at some u. Into and From are
// the tangents of the new key, each normalized to the sub-span on its side.
type Bisection struct {
	Value float64
	Into  Handle
	From  Handle
}

// An Interpolator computes the values of a span from the values of its two
// keys and the handles of the tangents facing into the span.
//
// Interpolators must be stateless and safe for concurrent use.
type Interpolator interface {
	// Name returns the name the interpolator is registered under.
	Name() string
	// Hints reports which tangent terms Evaluate and Bisect use.
	Hints() Hints
	// DefaultSlope and DefaultAccel return the [SpaceKey] values of
	// tangents of newly created keys.
	DefaultSlope() float64
	DefaultAccel() float64
	// Evaluate returns the value at u ∈ [0, 1].
	Evaluate(vlo, vhi float64, lo, hi Handle, u float64) float64
	// Bisect returns the value and tangents of a key inserted at u ∈ (0,
	// 1). Interpolators that use tangents must split the span without
	// changing its shape, given that the handles of the two outer tangents
	// are rescaled to the new sub-spans (by u and 1-u for slopes, and
	// their squares for accels).
	Bisect(vlo, vhi float64, lo, hi Handle, u float64) Bisection
}

// SampleBisect is a Bisect implementation for interpolators that don't use
// tangents. It samples ip at u and gives the new key ip's default tangents.
func SampleBisect(ip Interpolator, vlo, vhi float64, lo, hi Handle, u float64) Bisection {
	def := Handle{Slope: ip.DefaultSlope(), Accel: ip.DefaultAccel()}
	return Bisection{
		Value: ip.Evaluate(vlo, vhi, lo, hi, u),
		Into:  def,
		From:  def,
	}
}

var (
	// Step holds the lower key's value through the span.
	Step Interpolator = stepInterpolator{}
	// StepNext takes the upper key's value immediately after the lower key.
	StepNext Interpolator = stepNextInterpolator{}
	// Linear interpolates linearly between the two values.
	Linear Interpolator = linearInterpolator{}
	// Cubic is a cubic Hermite span shaped by the slopes of both tangents.
	Cubic Interpolator = cubicInterpolator{}
	// Quintic is a Hermite span of degree five, matching the slopes and
	// accels of both tangents.
	Quintic Interpolator = quinticInterpolator{}
)

type noTangents struct{}

func (noTangents) Hints() Hints          { return 0 }
func (noTangents) DefaultSlope() float64 { return 0 }
func (noTangents) DefaultAccel() float64 { return 0 }

type stepInterpolator struct{ noTangents }

func (stepInterpolator) Name() string { return "Step" }

func (stepInterpolator) Evaluate(vlo, vhi float64, _, _ Handle, u float64) float64 {
	if u < 1 {
		return vlo
	}
	return vhi
}

func (ip stepInterpolator) Bisect(vlo, vhi float64, lo, hi Handle, u float64) Bisection {
	return SampleBisect(ip, vlo, vhi, lo, hi, u)
}

type stepNextInterpolator struct{ noTangents }

func (stepNextInterpolator) Name() string { return "StepNext" }

func (stepNextInterpolator) Evaluate(vlo, vhi float64, _, _ Handle, u float64) float64 {
	if u > 0 {
		return vhi
	}
	return vlo
}

func (ip stepNextInterpolator) Bisect(vlo, vhi float64, lo, hi Handle, u float64) Bisection {
	return SampleBisect(ip, vlo, vhi, lo, hi, u)
}

type linearInterpolator struct{ noTangents }

func (linearInterpolator) Name() string { return "Linear" }

func (linearInterpolator) Evaluate(vlo, vhi float64, _, _ Handle, u float64) float64 {
	return vlo + (vhi-vlo)*u
}

func (ip linearInterpolator) Bisect(vlo, vhi float64, lo, hi Handle, u float64) Bisection {
	return SampleBisect(ip, vlo, vhi, lo, hi, u)
}

type cubicInterpolator struct{}

func (cubicInterpolator) Name() string          { return "Cubic" }
func (cubicInterpolator) Hints() Hints          { return UseSlopeLo | UseSlopeHi }
func (cubicInterpolator) DefaultSlope() float64 { return 0 }
func (cubicInterpolator) DefaultAccel() float64 { return 0 }

func (cubicInterpolator) Evaluate(vlo, vhi float64, lo, hi Handle, u float64) float64 {
	return hermiteBez(vlo, vhi, lo.Slope, hi.Slope).Eval(u).V
}

func (cubicInterpolator) Bisect(vlo, vhi float64, lo, hi Handle, u float64) Bisection {
	l, r := hermiteBez(vlo, vhi, lo.Slope, hi.Slope).Split(u)
	return Bisection{
		Value: l.P3.V,
		Into:  Handle{Slope: l.endSlope()},
		From:  Handle{Slope: r.startSlope()},
	}
}

type quinticInterpolator struct{}

func (quinticInterpolator) Name() string          { return "Quintic" }
func (quinticInterpolator) Hints() Hints          { return UseSlopeLo | UseSlopeHi | UseAccelLo | UseAccelHi }
func (quinticInterpolator) DefaultSlope() float64 { return 0 }
func (quinticInterpolator) DefaultAccel() float64 { return 0 }

func (quinticInterpolator) Evaluate(vlo, vhi float64, lo, hi Handle, u float64) float64 {
	v, _, _ := quinticHermite(vlo, vhi, lo, hi).eval(u)
	return v
}

func (quinticInterpolator) Bisect(vlo, vhi float64, lo, hi Handle, u float64) Bisection {
	v, d1, d2 := quinticHermite(vlo, vhi, lo, hi).eval(u)
	mu := 1 - u
	return Bisection{
		Value: v,
		Into:  Handle{Slope: d1 * u, Accel: d2 * u * u},
		From:  Handle{Slope: d1 * mu, Accel: d2 * mu * mu},
	}
}

// quintic holds the coefficients of c0 + c1 u + … + c5 u⁵.
type quintic [6]float64

// quinticHermite returns the polynomial with the given values, first and
// second derivatives at u = 0 and u = 1.
func quinticHermite(vlo, vhi float64, lo, hi Handle) quintic {
	h := vhi - vlo
	m0, m1 := lo.Slope, hi.Slope
	a0, a1 := lo.Accel, hi.Accel
	return quintic{
		vlo,
		m0,
		0.5 * a0,
		10*h - 6*m0 - 4*m1 - 1.5*a0 + 0.5*a1,
		-15*h + 8*m0 + 7*m1 + 1.5*a0 - a1,
		6*h - 3*m0 - 3*m1 - 0.5*a0 + 0.5*a1,
	}
}

// eval returns the polynomial and its first two derivatives at u.
func (q quintic) eval(u float64) (v, d1, d2 float64) {
	v = q[0] + u*(q[1]+u*(q[2]+u*(q[3]+u*(q[4]+u*q[5]))))
	d1 = q[1] + u*(2*q[2]+u*(3*q[3]+u*(4*q[4]+u*5*q[5])))
	d2 = 2*q[2] + u*(6*q[3]+u*(12*q[4]+u*20*q[5]))
	return v, d1, d2
}
