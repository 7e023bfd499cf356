package keyframe

import (
	"fmt"
	"testing"
)

func TestStepInterpolators(t *testing.T) {
	tests := []struct {
		ip   Interpolator
		u    float64
		want float64
	}{
		{Step, 0, 1},
		{Step, 0.5, 1},
		{Step, 0.999, 1},
		{Step, 1, 3},
		{StepNext, 0, 1},
		{StepNext, 0.001, 3},
		{StepNext, 1, 3},
	}
	for _, tt := range tests {
		if got := tt.ip.Evaluate(1, 3, Handle{}, Handle{}, tt.u); got != tt.want {
			t.Errorf("%s at %g: got %g, want %g", tt.ip.Name(), tt.u, got, tt.want)
		}
	}
}

func TestLinearInterpolator(t *testing.T) {
	// Tangents must be ignored.
	lo, hi := Handle{Slope: 100, Accel: 7}, Handle{Slope: -3}
	for _, u := range []float64{0, 0.25, 0.5, 1} {
		want := 1 + 4*u
		if got := Linear.Evaluate(1, 5, lo, hi, u); got != want {
			t.Errorf("at %g: got %g, want %g", u, got, want)
		}
	}
}

func TestInterpolatorEndpoints(t *testing.T) {
	lo, hi := Handle{Slope: 3, Accel: -2}, Handle{Slope: -1, Accel: 4}
	for _, ip := range []Interpolator{Step, StepNext, Linear, Cubic, Quintic} {
		if got := ip.Evaluate(2, -5, lo, hi, 0); got != 2 {
			t.Errorf("%s: got %g at u=0, want 2", ip.Name(), got)
		}
		if got := ip.Evaluate(2, -5, lo, hi, 1); !near(got, -5, 1e-12) {
			t.Errorf("%s: got %g at u=1, want -5", ip.Name(), got)
		}
	}
}

func TestQuinticHermiteDerivatives(t *testing.T) {
	lo, hi := Handle{Slope: 3, Accel: -2}, Handle{Slope: -1, Accel: 4}
	q := quinticHermite(2, -5, lo, hi)
	v, d1, d2 := q.eval(0)
	if v != 2 || d1 != 3 || d2 != -2 {
		t.Errorf("at 0: got (%g, %g, %g), want (2, 3, -2)", v, d1, d2)
	}
	v, d1, d2 = q.eval(1)
	if !near(v, -5, 1e-12) || !near(d1, -1, 1e-12) || !near(d2, 4, 1e-12) {
		t.Errorf("at 1: got (%g, %g, %g), want (-5, -1, 4)", v, d1, d2)
	}
}

func TestCubicMatchesSlopes(t *testing.T) {
	const delta = 1e-7
	lo, hi := Handle{Slope: 2}, Handle{Slope: -4}
	d0 := (Cubic.Evaluate(1, 2, lo, hi, delta) - Cubic.Evaluate(1, 2, lo, hi, 0)) / delta
	d1 := (Cubic.Evaluate(1, 2, lo, hi, 1) - Cubic.Evaluate(1, 2, lo, hi, 1-delta)) / delta
	if !near(d0, 2, 1e-5) {
		t.Errorf("got start slope %g, want 2", d0)
	}
	if !near(d1, -4, 1e-5) {
		t.Errorf("got end slope %g, want -4", d1)
	}
}

func TestBisectPreservesShape(t *testing.T) {
	const vlo, vhi = 1.0, -2.0
	lo, hi := Handle{Slope: 4, Accel: 3}, Handle{Slope: 1.5, Accel: -6}
	for _, ip := range []Interpolator{Cubic, Quintic} {
		for _, at := range []float64{0.25, 0.5, 0.7} {
			t.Run(fmt.Sprintf("%s/%g", ip.Name(), at), func(t *testing.T) {
				b := ip.Bisect(vlo, vhi, lo, hi, at)
				if want := ip.Evaluate(vlo, vhi, lo, hi, at); !near(b.Value, want, 1e-12) {
					t.Fatalf("got value %g, want %g", b.Value, want)
				}
				mu := 1 - at
				left := Handle{Slope: lo.Slope * at, Accel: lo.Accel * at * at}
				right := Handle{Slope: hi.Slope * mu, Accel: hi.Accel * mu * mu}
				const n = 10
				for i := range n + 1 {
					s := float64(i) / n
					want := ip.Evaluate(vlo, vhi, lo, hi, s*at)
					if got := ip.Evaluate(vlo, b.Value, left, b.Into, s); !near(got, want, 1e-9) {
						t.Errorf("left(%g): got %g, want %g", s, got, want)
					}
					want = ip.Evaluate(vlo, vhi, lo, hi, at+s*mu)
					if got := ip.Evaluate(b.Value, vhi, b.From, right, s); !near(got, want, 1e-9) {
						t.Errorf("right(%g): got %g, want %g", s, got, want)
					}
				}
			})
		}
	}
}

func TestSampleBisect(t *testing.T) {
	b := Linear.Bisect(0, 10, Handle{Slope: 1}, Handle{Slope: 1}, 0.5)
	diff(t, Bisection{Value: 5}, b)
}

func TestHintsString(t *testing.T) {
	tests := []struct {
		h    Hints
		want string
	}{
		{0, "0"},
		{UseSlopeLo, "UseSlopeLo"},
		{Cubic.Hints(), "UseSlopeLo|UseSlopeHi"},
		{Quintic.Hints(), "UseSlopeLo|UseSlopeHi|UseAccelLo|UseAccelHi"},
	}
	for _, tt := range tests {
		if got := tt.h.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
	if !Quintic.Hints().Has(UseSlopeHi | UseAccelLo) {
		t.Error("Quintic should use the upper slope and lower accel")
	}
	if Cubic.Hints().Has(UseAccelLo) {
		t.Error("Cubic shouldn't use accels")
	}
}
