package keyframe

import (
	"fmt"
	"sync/atomic"
)

// TieMode constrains the two tangents of a key to each other.
type TieMode uint8

const (
	// TieManual leaves the tangents independent.
	TieManual TieMode = iota
	// TieSlope keeps the SpaceSpan slopes of both tangents equal, making the
	// curve C1 continuous through the key.
	TieSlope
	// TieSlopeAndAccel additionally keeps the SpaceSpan accels equal.
	TieSlopeAndAccel
)

func (m TieMode) String() string {
	switch m {
	case TieManual:
		return "Manual"
	case TieSlope:
		return "Slope"
	case TieSlopeAndAccel:
		return "SlopeAndAccel"
	default:
		return fmt.Sprintf("TieMode(%d)", uint8(m))
	}
}

// A Key is a control point of a [Curve]: a value at a time, the interpolator
// used for the span starting at the key, and two tangents.
//
// A key belongs to at most one curve at a time. All methods are safe for
// concurrent use while the key is attached; they synchronize on the owning
// curve. A detached key must only be used by one goroutine at a time.
type Key struct {
	parent atomic.Pointer[Curve]

	reg      *Registry
	time     Time
	value    float64
	interp   Interpolator
	tie      TieMode
	tangents [2]Tangent
	// lastEdited is the tangent tie constraints propagate from when a
	// neighbour changes.
	lastEdited Direction
}

// NewKey returns a detached key. The interpolator is looked up by name in
// reg; an empty name selects the registry's default. A nil reg means
// [Builtins].
func NewKey(reg *Registry, t Time, value float64, interpolator string, opts ...KeyOption) (*Key, error) {
	if reg == nil {
		reg = Builtins()
	}
	var ip Interpolator
	if interpolator == "" {
		ip = reg.Default()
	} else {
		var err error
		ip, err = reg.Get(interpolator)
		if err != nil {
			return nil, err
		}
	}
	k := newKey(reg, t, value, ip)
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

func newKey(reg *Registry, t Time, value float64, ip Interpolator) *Key {
	if ip == nil {
		ip = Linear
	}
	k := &Key{
		reg:        reg,
		time:       t,
		value:      value,
		interp:     ip,
		lastEdited: From,
	}
	for d := range k.tangents {
		k.tangents[d] = Tangent{
			key:   k,
			dir:   Direction(d),
			slope: ip.DefaultSlope(),
			accel: ip.DefaultAccel(),
		}
	}
	return k
}

func (k *Key) String() string {
	defer k.rlock()()
	return fmt.Sprintf("Key(%v, %g, %s)", k.time, k.value, k.interp.Name())
}

// lock locks the owning curve for writing and returns it, or returns nil if
// the key is detached.
func (k *Key) lock() *Curve {
	for {
		c := k.parent.Load()
		if c == nil {
			return nil
		}
		c.mu.Lock()
		if k.parent.Load() == c {
			return c
		}
		c.mu.Unlock()
	}
}

// rlock read-locks the owning curve, if any, and returns the matching unlock
// function.
func (k *Key) rlock() func() {
	for {
		c := k.parent.Load()
		if c == nil {
			return func() {}
		}
		c.mu.RLock()
		if k.parent.Load() == c {
			return c.mu.RUnlock
		}
		c.mu.RUnlock()
	}
}

// edit runs fn with the owning curve locked and delivers the collected
// events afterwards.
func (k *Key) edit(fn func(ev *events)) {
	c := k.lock()
	ev := events{c: c}
	fn(&ev)
	if c != nil {
		c.mu.Unlock()
	}
	ev.fire()
}

func (k *Key) prev() *Key {
	c := k.parent.Load()
	if c == nil {
		return nil
	}
	return c.at(c.indexOf(k) - 1)
}

func (k *Key) next() *Key {
	c := k.parent.Load()
	if c == nil {
		return nil
	}
	return c.at(c.indexOf(k) + 1)
}

// Parent returns the curve the key belongs to, or nil.
func (k *Key) Parent() *Curve { return k.parent.Load() }

// Registry returns the registry the key's interpolator names resolve in.
func (k *Key) Registry() *Registry { return k.reg }

func (k *Key) Time() Time {
	defer k.rlock()()
	return k.time
}

func (k *Key) Value() float64 {
	defer k.rlock()()
	return k.value
}

// Interpolator returns the interpolator of the span starting at the key.
func (k *Key) Interpolator() Interpolator {
	defer k.rlock()()
	return k.interp
}

func (k *Key) TieMode() TieMode {
	defer k.rlock()()
	return k.tie
}

// PrevKey returns the previous key in the parent curve, or nil.
func (k *Key) PrevKey() *Key {
	defer k.rlock()()
	return k.prev()
}

// NextKey returns the next key in the parent curve, or nil.
func (k *Key) NextKey() *Key {
	defer k.rlock()()
	return k.next()
}

// Tangent returns the tangent in direction dir.
func (k *Key) Tangent(dir Direction) *Tangent {
	return &k.tangents[dir]
}

// Into returns the tangent facing the previous key.
func (k *Key) Into() *Tangent { return &k.tangents[Into] }

// From returns the tangent facing the next key.
func (k *Key) From() *Tangent { return &k.tangents[From] }

// SetTime moves the key. If the key is attached and another key already
// exists at t, that key is removed from the curve and returned.
func (k *Key) SetTime(t Time) *Key {
	for {
		c := k.parent.Load()
		if c == nil {
			k.time = t
			return nil
		}
		if evicted, ok := c.moveKey(k, t); ok {
			return evicted
		}
	}
}

// SetValue sets the value. Auto tangents of the key and its neighbours
// follow.
func (k *Key) SetValue(v float64) {
	k.edit(func(ev *events) {
		k.setValue(v, ev)
	})
}

func (k *Key) setValue(v float64, ev *events) {
	if k.value == v {
		return
	}
	k.value = v
	ev.key(sigKeyValueChanged, k)
	if ev.c != nil {
		ev.c.settle(ev, k.prev(), k, k.next())
	}
}

// SetInterpolator sets the interpolator of the span starting at the key,
// by name. The error wraps [ErrUnknownInterpolator] if the key's registry
// has no such interpolator.
func (k *Key) SetInterpolator(name string) error {
	ip, err := k.reg.Get(name)
	if err != nil {
		return err
	}
	k.edit(func(ev *events) {
		if k.interp.Name() == ip.Name() {
			return
		}
		k.interp = ip
		ev.key(sigKeyInterpolatorChanged, k)
	})
	return nil
}

// SetTieMode sets the tie mode. When a tie is established, the tangents
// are unified: if both sides are in use their SpaceSpan values are
// averaged, otherwise the side in use wins.
func (k *Key) SetTieMode(m TieMode) {
	k.edit(func(ev *events) {
		if k.tie == m {
			return
		}
		k.tie = m
		ev.key(sigKeyTieModeChanged, k)
		k.unify(qSlope, ev)
		if m == TieSlopeAndAccel {
			k.unify(qAccel, ev)
		}
	})
}

func (k *Key) unify(q quantity, ev *events) {
	if k.tie == TieManual {
		return
	}
	in, out := &k.tangents[Into], &k.tangents[From]
	inUsed, outUsed := in.used(q), out.used(q)
	switch {
	case inUsed && outUsed:
		if q == qSlope {
			v := (in.slopeIn(SpaceSpan) + out.slopeIn(SpaceSpan)) / 2
			in.storeSlope(v, SpaceSpan, ev)
			out.storeSlope(v, SpaceSpan, ev)
			if in.auto != out.auto {
				in.storeAuto(AutoManual, ev)
				out.storeAuto(AutoManual, ev)
			}
		} else {
			v := (in.accelIn(SpaceSpan) + out.accelIn(SpaceSpan)) / 2
			in.storeAccel(v, SpaceSpan, ev)
			out.storeAccel(v, SpaceSpan, ev)
		}
	case inUsed:
		k.lastEdited = Into
		k.propagate(Into, q, ev)
	case outUsed:
		k.lastEdited = From
		k.propagate(From, q, ev)
	default:
		k.propagate(k.lastEdited, q, ev)
	}
}

// propagate copies the terms q of the tangent in direction src to the
// opposite tangent in SpaceSpan, as far as the tie mode demands. Nothing is
// copied while src has no span; the tie is established once it gains one.
func (k *Key) propagate(src Direction, q quantity, ev *events) {
	if k.tie == TieManual {
		return
	}
	ts, td := &k.tangents[src], &k.tangents[src.Opposite()]
	w, ok := ts.width()
	if !ok {
		return
	}
	if q&qSlope != 0 {
		td.storeSlope(convert(ts.slope, ts.slopeSpace, SpaceSpan, w, qSlope), SpaceSpan, ev)
		td.storeAuto(ts.auto, ev)
	}
	if q&qAccel != 0 && k.tie == TieSlopeAndAccel {
		td.storeAccel(convert(ts.accel, ts.accelSpace, SpaceSpan, w, qAccel), SpaceSpan, ev)
	}
}

// retie re-applies the tie from the tangent edited last.
func (k *Key) retie(ev *events) {
	if k.tie == TieManual {
		return
	}
	k.propagate(k.lastEdited, qBoth, ev)
}

func (k *Key) refreshAuto(ev *events) {
	for d := range k.tangents {
		k.tangents[d].applyAuto(ev)
	}
}
