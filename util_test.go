package keyframe

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func near(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func sec(s float64) Time {
	return FromSeconds(s)
}

// newTestKey creates a key with the built-in interpolators, failing the test
// if that isn't possible.
func newTestKey(t *testing.T, time Time, value float64, interpolator string, opts ...KeyOption) *Key {
	t.Helper()
	k, err := NewKey(nil, time, value, interpolator, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return k
}

// newTestCurve returns a curve with keys at the given times and values.
func newTestCurve(t *testing.T, interpolator string, pts ...Position) *Curve {
	t.Helper()
	c := NewCurve(nil)
	for _, p := range pts {
		if evicted := c.AddKey(newTestKey(t, sec(p.T), p.V, interpolator), false); evicted != nil {
			t.Fatalf("unexpected clash at %v", p.T)
		}
	}
	return c
}

func keyTimes(c *Curve) []Time {
	var out []Time
	for k := range c.Keys() {
		out = append(out, k.Time())
	}
	return out
}
