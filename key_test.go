package keyframe

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestNewKey(t *testing.T) {
	k, err := NewKey(nil, sec(1), 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if k.Interpolator() != Linear {
		t.Errorf("got %s, want the default interpolator", k.Interpolator().Name())
	}
	if k.Parent() != nil || k.TieMode() != TieManual {
		t.Errorf("unexpected new key %v", k)
	}
	if _, err := NewKey(nil, 0, 0, "Bouncy"); !errors.Is(err, ErrUnknownInterpolator) {
		t.Errorf("got error %v, want ErrUnknownInterpolator", err)
	}

	k = newTestKey(t, 0, 0, "Cubic",
		WithTieMode(TieSlope),
		WithSlope(Into, 3, SpaceSpan),
		WithAccel(From, 2, SpaceKey),
		WithAutoMode(Into, AutoFlat))
	if k.TieMode() != TieSlope {
		t.Errorf("got tie mode %v, want Slope", k.TieMode())
	}
	if got := k.Into().SlopeSpace(); got != SpaceSpan {
		t.Errorf("got slope space %v, want SpaceSpan", got)
	}
	if got := k.Into().AutoMode(); got != AutoFlat {
		t.Errorf("got auto mode %v, want Flat", got)
	}
}

func TestKeySetters(t *testing.T) {
	k := newTestKey(t, sec(1), 2, "Linear")
	if evicted := k.SetTime(sec(3)); evicted != nil || k.Time() != sec(3) {
		t.Errorf("moving a detached key: got %v, time %v", evicted, k.Time())
	}
	k.SetValue(4)
	if k.Value() != 4 {
		t.Errorf("got value %g, want 4", k.Value())
	}
	if err := k.SetInterpolator("Bouncy"); !errors.Is(err, ErrUnknownInterpolator) {
		t.Errorf("got error %v, want ErrUnknownInterpolator", err)
	}
	if k.Interpolator() != Linear {
		t.Error("failed SetInterpolator changed the interpolator")
	}
	if err := k.SetInterpolator("Step"); err != nil || k.Interpolator() != Step {
		t.Errorf("SetInterpolator: %v", err)
	}
}

func TestKeyNeighbours(t *testing.T) {
	c := newTestCurve(t, "Linear", Pos(0, 0), Pos(1, 0), Pos(2, 0))
	k0, k1, k2 := c.GetKey(sec(0)), c.GetKey(sec(1)), c.GetKey(sec(2))
	if k1.PrevKey() != k0 || k1.NextKey() != k2 {
		t.Error("wrong neighbours of middle key")
	}
	if k0.PrevKey() != nil || k2.NextKey() != nil {
		t.Error("end keys have outer neighbours")
	}
	if k1.Parent() != c {
		t.Error("wrong parent")
	}
}

func TestKeyClash(t *testing.T) {
	c := newTestCurve(t, "Linear", Pos(1, 1), Pos(5, 5))
	old := c.GetKey(sec(5))

	k := newTestKey(t, sec(5), 50, "Linear")
	if evicted := c.AddKey(k, false); evicted != old {
		t.Fatalf("got evicted key %v, want %v", evicted, old)
	}
	if old.Parent() != nil {
		t.Error("evicted key is still attached")
	}
	if c.GetKey(sec(5)) != k || c.Evaluate(sec(5)) != 50 {
		t.Error("new key didn't replace the old one")
	}

	// The caller can put the evicted key back somewhere else.
	old.SetTime(sec(6))
	if evicted := c.AddKey(old, false); evicted != nil {
		t.Errorf("unexpected eviction of %v", evicted)
	}
	diff(t, []Time{sec(1), sec(5), sec(6)}, keyTimes(c))

	// Moving a key onto another one evicts it too.
	first := c.GetKey(sec(1))
	if evicted := first.SetTime(sec(6)); evicted != old {
		t.Errorf("got evicted key %v, want %v", evicted, old)
	}
	diff(t, []Time{sec(5), sec(6)}, keyTimes(c))
	if old.Parent() != nil {
		t.Error("evicted key is still attached")
	}
}

func TestKeyTieSlope(t *testing.T) {
	c := newTestCurve(t, "Cubic", Pos(0, 0), Pos(1, 1), Pos(3, 2))
	k1, k2 := c.GetKey(sec(1)), c.GetKey(sec(3))
	k1.SetTieMode(TieSlope)

	k1.From().SetSlope(4, SpaceKey)
	if got := k1.Into().Slope(SpaceSpan); got != 2 {
		t.Errorf("got tied slope %g, want 2", got)
	}
	if got := k1.From().Slope(SpaceKey); got != 4 {
		t.Errorf("edited side changed to %g", got)
	}
	if got := k1.Into().SlopeSpace(); got != SpaceSpan {
		t.Errorf("tied side stored in %v, want SpaceSpan", got)
	}

	// The edited side keeps its key space slope when its span changes, and
	// the other side follows.
	k2.SetTime(sec(5))
	if got := k1.From().Slope(SpaceKey); got != 4 {
		t.Errorf("got %g, want 4", got)
	}
	if in, out := k1.Into().Slope(SpaceSpan), k1.From().Slope(SpaceSpan); in != 1 || out != 1 {
		t.Errorf("got slopes %g and %g, want 1", in, out)
	}

	k1.Into().SetSlope(3, SpaceSpan)
	if got := k1.From().Slope(SpaceSpan); got != 3 {
		t.Errorf("got tied slope %g, want 3", got)
	}
	if got := k1.Into().Slope(SpaceKey); got != 3 {
		t.Errorf("got %g, want 3", got)
	}

	// Accels stay independent.
	k1.From().SetAccel(5, SpaceSpan)
	if got := k1.Into().Accel(SpaceSpan); got != 0 {
		t.Errorf("accel propagated under TieSlope: %g", got)
	}
}

func TestKeyTieUnify(t *testing.T) {
	c := newTestCurve(t, "Cubic", Pos(0, 0), Pos(1, 1), Pos(3, 2))
	k1 := c.GetKey(sec(1))

	// Both sides in use: average.
	k1.Into().SetSlope(1, SpaceSpan)
	k1.From().SetSlope(3, SpaceSpan)
	k1.SetTieMode(TieSlope)
	if in, out := k1.Into().Slope(SpaceSpan), k1.From().Slope(SpaceSpan); in != 2 || out != 2 {
		t.Errorf("got slopes %g and %g, want 2", in, out)
	}

	// Only the Into side in use: it wins.
	k1.SetTieMode(TieManual)
	k1.Into().SetSlope(1, SpaceSpan)
	k1.From().SetSlope(3, SpaceSpan)
	if err := k1.SetInterpolator("Linear"); err != nil {
		t.Fatal(err)
	}
	k1.SetTieMode(TieSlope)
	if in, out := k1.Into().Slope(SpaceSpan), k1.From().Slope(SpaceSpan); in != 1 || out != 1 {
		t.Errorf("got slopes %g and %g, want 1", in, out)
	}
}

func TestKeyTieSlopeAndAccel(t *testing.T) {
	c := newTestCurve(t, "Quintic", Pos(0, 0), Pos(1, 1), Pos(3, 2))
	k1 := c.GetKey(sec(1))
	k1.SetTieMode(TieSlopeAndAccel)
	k1.From().SetSlopeWithAccel(4, 8, SpaceKey)
	if got := k1.Into().Slope(SpaceSpan); got != 2 {
		t.Errorf("got tied slope %g, want 2", got)
	}
	if got := k1.Into().Accel(SpaceSpan); got != 2 {
		t.Errorf("got tied accel %g, want 2", got)
	}
}

func TestKeyTieSignals(t *testing.T) {
	c := newTestCurve(t, "Cubic", Pos(0, 0), Pos(1, 1), Pos(3, 2))
	k1 := c.GetKey(sec(1))
	var ties, into int
	c.KeyTieModeChangedSignal().Connect(func(KeyEvent) { ties++ })
	k1.SetTieMode(TieSlope)
	k1.SetTieMode(TieSlope)

	c.TangentSlopeChangedSignal(Into).Connect(func(e TangentEvent) {
		if e.Key == k1 {
			into++
		}
	})
	k1.From().SetSlope(2, SpaceSpan)
	k1.From().SetSlope(2, SpaceSpan)
	if ties != 1 {
		t.Errorf("got %d tie mode changes, want 1", ties)
	}
	if into != 1 {
		t.Errorf("got %d slope changes on the tied side, want 1", into)
	}
}

// checkTies verifies that tied keys with spans on both sides have equal
// span space slopes, and accels where tied.
func checkTies(t *testing.T, c *Curve) {
	t.Helper()
	for k := range c.Keys() {
		in, out := k.Into(), k.From()
		if k.TieMode() == TieManual || !in.HasSpan() || !out.HasSpan() {
			continue
		}
		if a, b := in.Slope(SpaceSpan), out.Slope(SpaceSpan); a != b {
			t.Fatalf("key at %v: tied slopes differ: %g != %g", k.Time(), a, b)
		}
		if k.TieMode() != TieSlopeAndAccel {
			continue
		}
		if a, b := in.Accel(SpaceSpan), out.Accel(SpaceSpan); a != b {
			t.Fatalf("key at %v: tied accels differ: %g != %g", k.Time(), a, b)
		}
	}
}

func TestKeyTieInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	c := NewCurve(nil)
	for i := range 12 {
		mode := TieMode(i % 3)
		ip := [...]string{"Cubic", "Quintic", "Linear"}[i%3]
		c.AddKey(newTestKey(t, sec(float64(i)), rng.Float64(), ip, WithTieMode(mode)), false)
	}
	checkTies(t, c)

	randomKey := func() *Key {
		var keys []*Key
		for k := range c.Keys() {
			keys = append(keys, k)
		}
		return keys[rng.IntN(len(keys))]
	}
	randomTime := func() Time {
		return FromReal(float64(rng.IntN(24*14)), Frames24)
	}
	for range 500 {
		k := randomKey()
		space := Space(rng.IntN(2))
		dir := Direction(rng.IntN(2))
		switch rng.IntN(9) {
		case 0:
			k.Tangent(dir).SetSlope(rng.NormFloat64()*3, space)
		case 1:
			k.Tangent(dir).SetAccel(rng.NormFloat64()*3, space)
		case 2:
			k.Tangent(dir).SetPositionWithSlope(Pos(dir.sign()*0.2, rng.NormFloat64()), rng.NormFloat64(), space, true)
		case 3:
			k.SetTime(randomTime())
		case 4:
			if c.Len() > 3 {
				c.RemoveKey(k)
			}
		case 5:
			c.InsertKey(randomTime()).SetTieMode(TieMode(rng.IntN(3)))
		case 6:
			k.SetValue(rng.NormFloat64())
		case 7:
			k.Tangent(dir).SetAutoMode(AutoMode(rng.IntN(4)))
		case 8:
			c.OffsetKeys([]*Key{k, randomKey()}, FromReal(float64(rng.IntN(5)-2), Frames24))
		}
		checkTies(t, c)
	}
}
