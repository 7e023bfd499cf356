package keyframe

import (
	"errors"
	"math"
	"slices"
	"testing"
)

type smoothstepInterpolator struct{ noTangents }

func (smoothstepInterpolator) Name() string { return "Smoothstep" }

func (smoothstepInterpolator) Evaluate(vlo, vhi float64, _, _ Handle, u float64) float64 {
	return vlo + (vhi-vlo)*u*u*(3-2*u)
}

func (ip smoothstepInterpolator) Bisect(vlo, vhi float64, lo, hi Handle, u float64) Bisection {
	return SampleBisect(ip, vlo, vhi, lo, hi, u)
}

func names(r *Registry) []string {
	var out []string
	for ip := range r.All() {
		out = append(out, ip.Name())
	}
	return out
}

func TestBuiltins(t *testing.T) {
	r := Builtins()
	diff(t, []string{"Step", "StepNext", "Linear", "Cubic", "Quintic"}, names(r))
	if got := r.Default(); got != Linear {
		t.Errorf("got default %s, want Linear", got.Name())
	}
	ip, err := r.Get("Cubic")
	if err != nil {
		t.Fatal(err)
	}
	if ip != Cubic {
		t.Errorf("got %s, want Cubic", ip.Name())
	}
	if _, err := r.Get("Bouncy"); !errors.Is(err, ErrUnknownInterpolator) {
		t.Errorf("got error %v, want ErrUnknownInterpolator", err)
	}
	if Builtins() != r {
		t.Error("Builtins returned a different registry")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if r.Default() != nil {
		t.Error("empty registry has a default")
	}
	if err := r.Add(Step, false); err != nil {
		t.Fatal(err)
	}
	if r.Default() != Step {
		t.Error("first interpolator should become the default")
	}
	if err := r.Add(smoothstepInterpolator{}, true); err != nil {
		t.Fatal(err)
	}
	if got := r.Default().Name(); got != "Smoothstep" {
		t.Errorf("got default %s, want Smoothstep", got)
	}
	if err := r.Add(Step, false); !errors.Is(err, ErrDuplicateInterpolator) {
		t.Errorf("got error %v, want ErrDuplicateInterpolator", err)
	}
	r.Freeze()
	if err := r.Add(Linear, false); !errors.Is(err, ErrFrozen) {
		t.Errorf("got error %v, want ErrFrozen", err)
	}
	if ip, ok := r.At(1); r.Len() != 2 || !ok || ip.Name() != "Smoothstep" {
		t.Errorf("unexpected contents %v", names(r))
	}
	for _, i := range []int{-1, 2} {
		if ip, ok := r.At(i); ok || ip != nil {
			t.Errorf("At(%d) = %v, %t, want nothing", i, ip, ok)
		}
	}
}

func TestNewBuiltinRegistry(t *testing.T) {
	r := NewBuiltinRegistry()
	diff(t, names(Builtins()), names(r))
	if r.Default() != Linear {
		t.Errorf("got default %s, want Linear", r.Default().Name())
	}
	if err := r.Add(smoothstepInterpolator{}, false); err != nil {
		t.Fatal(err)
	}
	if slices.Contains(names(Builtins()), "Smoothstep") {
		t.Error("adding to a copy modified the built-in registry")
	}
}

func TestCustomInterpolator(t *testing.T) {
	r := NewBuiltinRegistry()
	if err := r.Add(smoothstepInterpolator{}, false); err != nil {
		t.Fatal(err)
	}
	c := NewCurve(r)
	k0, err := NewKey(r, sec(0), 0, "Smoothstep")
	if err != nil {
		t.Fatal(err)
	}
	k1, err := NewKey(r, sec(1), 1, "")
	if err != nil {
		t.Fatal(err)
	}
	c.AddKey(k0, false)
	c.AddKey(k1, false)
	if got, want := c.Evaluate(sec(0.25)), 0.25*0.25*2.5; math.Abs(got-want) > 1e-12 {
		t.Errorf("got %g, want %g", got, want)
	}
	if err := k1.SetInterpolator("Smoothstep"); err != nil {
		t.Error(err)
	}
	// Keys created with the built-in registry can't use it.
	k2 := newTestKey(t, sec(2), 0, "Linear")
	if err := k2.SetInterpolator("Smoothstep"); !errors.Is(err, ErrUnknownInterpolator) {
		t.Errorf("got error %v, want ErrUnknownInterpolator", err)
	}
}
