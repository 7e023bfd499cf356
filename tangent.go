package keyframe

import "fmt"

// Direction selects one of the two tangents of a key.
type Direction uint8

const (
	// Into is the tangent facing the previous key.
	Into Direction = iota
	// From is the tangent facing the next key.
	From
)

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	return 1 - d
}

func (d Direction) String() string {
	switch d {
	case Into:
		return "Into"
	case From:
		return "From"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// sign is the orientation of a tangent along the time axis.
func (d Direction) sign() float64 {
	if d == Into {
		return -1
	}
	return 1
}

// Space selects the units in which tangent slopes, accels and positions are
// expressed.
type Space uint8

const (
	// SpaceKey measures time in the normalized parameter u ∈ [0, 1] of the
	// span adjacent to the tangent. A slope of 1 in key space raises the
	// value by 1 over the whole span. This is what interpolators consume.
	SpaceKey Space = iota
	// SpaceSpan measures time in seconds. Slopes are rates per second and
	// accels rates per second squared.
	SpaceSpan
)

func (s Space) String() string {
	switch s {
	case SpaceKey:
		return "SpaceKey"
	case SpaceSpan:
		return "SpaceSpan"
	default:
		return fmt.Sprintf("Space(%d)", uint8(s))
	}
}

// AutoMode selects how a tangent's slope is derived from the surrounding
// keys.
type AutoMode uint8

const (
	// AutoManual keeps the slope as set.
	AutoManual AutoMode = iota
	// AutoFlat keeps the slope at zero.
	AutoFlat
	// AutoLinear aims the tangent at the adjacent key.
	AutoLinear
	// AutoSmooth uses the rate of change between the previous and next
	// keys, falling back to AutoLinear at the ends of the curve.
	AutoSmooth
)

func (m AutoMode) String() string {
	switch m {
	case AutoManual:
		return "Manual"
	case AutoFlat:
		return "Flat"
	case AutoLinear:
		return "Linear"
	case AutoSmooth:
		return "Smooth"
	default:
		return fmt.Sprintf("AutoMode(%d)", uint8(m))
	}
}

// quantity selects tangent terms for tie propagation.
type quantity uint8

const (
	qSlope quantity = 1 << iota
	qAccel
	qBoth = qSlope | qAccel
)

// Tangent is one of the two tangents of a key. The zero value isn't usable;
// tangents are owned by their key, see [Key.Tangent].
//
// A tangent stores its slope and accel together with the space they were
// set in, so reading a term in the space it was written in returns exactly
// what was written. Conversion to the other space uses the width W, in
// seconds, of the span adjacent to the tangent:
//
//	slope(SpaceSpan) = slope(SpaceKey) / W
//	accel(SpaceSpan) = accel(SpaceKey) / W²
//
// A tangent without an adjacent key is inert: it reads as zero and ignores
// writes.
type Tangent struct {
	key *Key
	dir Direction

	slope      float64
	accel      float64
	slopeSpace Space
	accelSpace Space
	auto       AutoMode
}

func convert(v float64, from, to Space, w float64, q quantity) float64 {
	if from == to {
		return v
	}
	scale := w
	if q == qAccel {
		scale = w * w
	}
	if to == SpaceSpan {
		return v / scale
	}
	return v * scale
}

// Key returns the key owning the tangent.
func (t *Tangent) Key() *Key { return t.key }

// Direction returns the direction of the tangent.
func (t *Tangent) Direction() Direction { return t.dir }

// adjacent returns the key on the far side of the tangent's span. The caller
// must hold the curve's lock.
func (t *Tangent) adjacent() *Key {
	if t.dir == Into {
		return t.key.prev()
	}
	return t.key.next()
}

// width returns the width in seconds of the tangent's span.
func (t *Tangent) width() (float64, bool) {
	adj := t.adjacent()
	if adj == nil {
		return 0, false
	}
	return (adj.time - t.key.time).Abs().Seconds(), true
}

// HasSpan reports whether the tangent has an adjacent key. Tangents without
// one are inert.
func (t *Tangent) HasSpan() bool {
	defer t.key.rlock()()
	return t.adjacent() != nil
}

func (t *Tangent) slopeIn(space Space) float64 {
	w, ok := t.width()
	if !ok {
		return 0
	}
	return convert(t.slope, t.slopeSpace, space, w, qSlope)
}

func (t *Tangent) accelIn(space Space) float64 {
	w, ok := t.width()
	if !ok {
		return 0
	}
	return convert(t.accel, t.accelSpace, space, w, qAccel)
}

// handle returns the key space terms of the tangent for a span of width w.
func (t *Tangent) handle(w float64) Handle {
	return Handle{
		Slope: convert(t.slope, t.slopeSpace, SpaceKey, w, qSlope),
		Accel: convert(t.accel, t.accelSpace, SpaceKey, w, qAccel),
	}
}

// Slope returns the slope in the given space.
func (t *Tangent) Slope(space Space) float64 {
	defer t.key.rlock()()
	return t.slopeIn(space)
}

// Accel returns the accel in the given space.
func (t *Tangent) Accel(space Space) float64 {
	defer t.key.rlock()()
	return t.accelIn(space)
}

// SlopeSpace returns the space the slope was last set in.
func (t *Tangent) SlopeSpace() Space {
	defer t.key.rlock()()
	return t.slopeSpace
}

// AccelSpace returns the space the accel was last set in.
func (t *Tangent) AccelSpace() Space {
	defer t.key.rlock()()
	return t.accelSpace
}

// AutoMode returns the auto mode of the tangent.
func (t *Tangent) AutoMode() AutoMode {
	defer t.key.rlock()()
	return t.auto
}

// TangentState is the stored state of a tangent, as written by its last
// edit.
type TangentState struct {
	Slope      float64
	SlopeSpace Space
	Accel      float64
	AccelSpace Space
	Auto       AutoMode
}

// State returns the stored state of the tangent. Unlike [Tangent.Slope] and
// [Tangent.Accel] it reports the stored values of inert tangents too, which
// take effect once the tangent gains a span.
func (t *Tangent) State() TangentState {
	defer t.key.rlock()()
	return TangentState{
		Slope:      t.slope,
		SlopeSpace: t.slopeSpace,
		Accel:      t.accel,
		AccelSpace: t.accelSpace,
		Auto:       t.auto,
	}
}

// SlopeIsUsed reports whether the interpolator of the tangent's span
// consumes the slope.
func (t *Tangent) SlopeIsUsed() bool {
	defer t.key.rlock()()
	return t.used(qSlope)
}

// AccelIsUsed reports whether the interpolator of the tangent's span
// consumes the accel.
func (t *Tangent) AccelIsUsed() bool {
	defer t.key.rlock()()
	return t.used(qAccel)
}

func (t *Tangent) used(q quantity) bool {
	var ip Interpolator
	var h Hints
	if t.dir == Into {
		prev := t.key.prev()
		if prev == nil {
			return false
		}
		ip, h = prev.interp, UseSlopeHi
		if q == qAccel {
			h = UseAccelHi
		}
	} else {
		if t.key.next() == nil {
			return false
		}
		ip, h = t.key.interp, UseSlopeLo
		if q == qAccel {
			h = UseAccelLo
		}
	}
	return ip.Hints().Has(h)
}

// SetSlope sets the slope and resets the auto mode to AutoManual.
func (t *Tangent) SetSlope(slope float64, space Space) {
	t.key.edit(func(ev *events) {
		if t.adjacent() == nil {
			return
		}
		changed := t.storeSlope(slope, space, ev)
		changed = t.storeAuto(AutoManual, ev) || changed
		if changed {
			t.edited(qSlope, ev)
		}
	})
}

// SetAccel sets the accel.
func (t *Tangent) SetAccel(accel float64, space Space) {
	t.key.edit(func(ev *events) {
		if t.adjacent() == nil {
			return
		}
		if t.storeAccel(accel, space, ev) {
			t.edited(qAccel, ev)
		}
	})
}

// SetSlopeWithAccel sets both the slope and the accel, as a single edit.
func (t *Tangent) SetSlopeWithAccel(slope, accel float64, space Space) {
	t.key.edit(func(ev *events) {
		t.setBoth(slope, accel, space, ev)
	})
}

// SetAccelWithSlope is like SetSlopeWithAccel with the arguments swapped.
func (t *Tangent) SetAccelWithSlope(accel, slope float64, space Space) {
	t.SetSlopeWithAccel(slope, accel, space)
}

func (t *Tangent) setBoth(slope, accel float64, space Space, ev *events) {
	if t.adjacent() == nil {
		return
	}
	changed := t.storeSlope(slope, space, ev)
	changed = t.storeAccel(accel, space, ev) || changed
	changed = t.storeAuto(AutoManual, ev) || changed
	if changed {
		t.edited(qBoth, ev)
	}
}

// edited records t as the side last edited and propagates the edit to the
// opposite tangent if the key is tied.
func (t *Tangent) edited(q quantity, ev *events) {
	t.key.lastEdited = t.dir
	t.key.propagate(t.dir, q, ev)
}

func (t *Tangent) storeSlope(v float64, space Space, ev *events) bool {
	if t.slope == v && t.slopeSpace == space {
		return false
	}
	t.slope, t.slopeSpace = v, space
	ev.tangent(sigTangentSlopeChanged, t.key, t.dir)
	return true
}

func (t *Tangent) storeAccel(v float64, space Space, ev *events) bool {
	if t.accel == v && t.accelSpace == space {
		return false
	}
	t.accel, t.accelSpace = v, space
	ev.tangent(sigTangentAccelChanged, t.key, t.dir)
	return true
}

func (t *Tangent) storeAuto(m AutoMode, ev *events) bool {
	if t.auto == m {
		return false
	}
	t.auto = m
	ev.tangent(sigTangentAutoModeChanged, t.key, t.dir)
	return true
}

// SetAutoMode sets the auto mode and recomputes the slope accordingly. On a
// tied key both tangents share the mode.
func (t *Tangent) SetAutoMode(m AutoMode) {
	t.key.edit(func(ev *events) {
		k := t.key
		changed := t.storeAuto(m, ev)
		if k.tie != TieManual {
			changed = k.Tangent(t.dir.Opposite()).storeAuto(m, ev) || changed
		}
		if !changed {
			return
		}
		if t.adjacent() != nil {
			k.lastEdited = t.dir
		}
		k.refreshAuto(ev)
		k.retie(ev)
	})
}

// applyAuto recomputes the slope from the auto mode.
func (t *Tangent) applyAuto(ev *events) {
	adj := t.adjacent()
	if adj == nil || t.auto == AutoManual {
		return
	}
	k := t.key
	linear := func() (float64, Space) {
		if t.dir == Into {
			return k.value - adj.value, SpaceKey
		}
		return adj.value - k.value, SpaceKey
	}
	var slope float64
	var space Space
	switch t.auto {
	case AutoFlat:
		slope, space = 0, SpaceSpan
	case AutoLinear:
		slope, space = linear()
	case AutoSmooth:
		prev, next := k.prev(), k.next()
		if prev == nil || next == nil {
			slope, space = linear()
		} else {
			slope, space = (next.value-prev.value)/(next.time-prev.time).Seconds(), SpaceSpan
		}
	}
	t.storeSlope(slope, space, ev)
}

func (t *Tangent) reach(space Space, w float64) float64 {
	if space == SpaceKey {
		return 1.0 / 3
	}
	return w / 3
}

func (t *Tangent) origin(space Space) Position {
	k := t.key
	if space == SpaceSpan {
		return Pos(k.time.Seconds(), k.value)
	}
	if t.dir == Into {
		return Pos(1, k.value)
	}
	return Pos(0, k.value)
}

// Position returns the position of the tangent's handle, either relative to
// its key or as an absolute position. In SpaceSpan the time coordinate is in
// seconds. In SpaceKey it is the parameter u of the adjacent span, so a key
// sits at u = 0 for its From tangent and at u = 1 for its Into tangent.
//
// The handle lies a third of the span away from the key, at
//
//	(dt, slope·dt + accel·dt²/2)
//
// with dt negative for Into tangents. An inert tangent's handle coincides
// with its key.
func (t *Tangent) Position(space Space, relative bool) Position {
	defer t.key.rlock()()
	var rel Position
	if w, ok := t.width(); ok {
		dt := t.dir.sign() * t.reach(space, w)
		s := convert(t.slope, t.slopeSpace, space, w, qSlope)
		a := convert(t.accel, t.accelSpace, space, w, qAccel)
		rel = Pos(dt, s*dt+a*dt*dt/2)
	}
	if relative {
		return rel
	}
	return rel.Add(t.origin(space))
}

// relative converts pos to a position relative to the key and clamps its
// time coordinate to the tangent's side of the key.
func (t *Tangent) relative(pos Position, space Space, relative bool, w float64) Position {
	if !relative {
		pos = pos.Sub(t.origin(space))
	}
	sign := t.dir.sign()
	if floor := t.reach(space, w) * 1e-9; sign*pos.T < floor {
		pos.T = sign * floor
	}
	return pos
}

// SetPosition aims the tangent at pos. The slope becomes the slope of the
// line from the key to pos and the accel is cleared. Positions with an
// infinite or NaN coordinate are ignored, as are the SetPositionWith
// variants given one.
func (t *Tangent) SetPosition(pos Position, space Space, relative bool) {
	if !pos.finite() {
		return
	}
	t.key.edit(func(ev *events) {
		w, ok := t.width()
		if !ok {
			return
		}
		rel := t.relative(pos, space, relative, w)
		t.setBoth(rel.Slope(), 0, space, ev)
	})
}

// SetPositionWithSlope places the handle at pos while holding the slope,
// deriving the accel needed to reach pos.
func (t *Tangent) SetPositionWithSlope(pos Position, slope float64, space Space, relative bool) {
	if !pos.finite() {
		return
	}
	t.key.edit(func(ev *events) {
		w, ok := t.width()
		if !ok {
			return
		}
		rel := t.relative(pos, space, relative, w)
		dt := t.dir.sign() * t.reach(space, w)
		accel := 2 * (rel.V - slope*dt) / (dt * dt)
		t.setBoth(slope, accel, space, ev)
	})
}

// SetPositionWithAccel places the handle at pos while holding the accel,
// deriving the slope needed to reach pos.
func (t *Tangent) SetPositionWithAccel(pos Position, accel float64, space Space, relative bool) {
	if !pos.finite() {
		return
	}
	t.key.edit(func(ev *events) {
		w, ok := t.width()
		if !ok {
			return
		}
		rel := t.relative(pos, space, relative, w)
		dt := t.dir.sign() * t.reach(space, w)
		slope := (rel.V - accel*dt*dt/2) / dt
		t.setBoth(slope, accel, space, ev)
	})
}

// rescale adapts SpaceKey terms to a span whose width changed by factor f,
// keeping their SpaceSpan values.
func (t *Tangent) rescale(f float64, ev *events) {
	if t.slopeSpace == SpaceKey {
		t.storeSlope(t.slope*f, SpaceKey, ev)
	}
	if t.accelSpace == SpaceKey {
		t.storeAccel(t.accel*f*f, SpaceKey, ev)
	}
}
