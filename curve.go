package keyframe

import (
	"cmp"
	"iter"
	"math"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

// A Curve is a function of time defined by an ordered set of keys.
//
// Between two keys, the value is computed by the interpolator of the earlier
// key. Before the first key and after the last key, the curve holds the
// value of that key. An empty curve evaluates to zero.
//
// No two keys of a curve share a time. Operations that would place a key on
// an occupied time remove the key that was there and return it to the
// caller, detached. Callers that want to undo such a clash can add the
// returned key back after moving it.
//
// All methods are safe for concurrent use. Signals are delivered after the
// curve has been unlocked, once the operation that caused them is complete.
type Curve struct {
	mu      sync.RWMutex
	reg     *Registry
	keys    []*Key
	log     *logr.Logger
	signals curveSignals
}

// NewCurve returns an empty curve. Keys created by the curve look their
// interpolators up in reg; a nil reg means [Builtins].
func NewCurve(reg *Registry, opts ...Option) *Curve {
	if reg == nil {
		reg = Builtins()
	}
	var o curveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Curve{reg: reg, log: o.logger}
}

func (c *Curve) logger() logr.Logger {
	if c.log != nil {
		return *c.log
	}
	return Logger()
}

// Registry returns the registry of the curve.
func (c *Curve) Registry() *Registry { return c.reg }

func (c *Curve) KeyAddedSignal() *Signal[KeyEvent]   { return &c.signals.key[sigKeyAdded] }
func (c *Curve) KeyRemovedSignal() *Signal[KeyEvent] { return &c.signals.key[sigKeyRemoved] }

func (c *Curve) KeyTimeChangedSignal() *Signal[KeyEvent] {
	return &c.signals.key[sigKeyTimeChanged]
}

func (c *Curve) KeyValueChangedSignal() *Signal[KeyEvent] {
	return &c.signals.key[sigKeyValueChanged]
}

func (c *Curve) KeyTieModeChangedSignal() *Signal[KeyEvent] {
	return &c.signals.key[sigKeyTieModeChanged]
}

func (c *Curve) KeyInterpolatorChangedSignal() *Signal[KeyEvent] {
	return &c.signals.key[sigKeyInterpolatorChanged]
}

// TangentSlopeChangedSignal is emitted when the slope of a tangent in
// direction dir changes, including changes caused by ties, auto modes and
// bisection.
func (c *Curve) TangentSlopeChangedSignal(dir Direction) *Signal[TangentEvent] {
	return &c.signals.tangent[sigTangentSlopeChanged][dir]
}

func (c *Curve) TangentAccelChangedSignal(dir Direction) *Signal[TangentEvent] {
	return &c.signals.tangent[sigTangentAccelChanged][dir]
}

func (c *Curve) TangentAutoModeChangedSignal(dir Direction) *Signal[TangentEvent] {
	return &c.signals.tangent[sigTangentAutoModeChanged][dir]
}

// ChangedSignal is emitted once per mutation that emitted any other signal,
// after all of them.
func (c *Curve) ChangedSignal() *Signal[*Curve] {
	return &c.signals.changed
}

// search returns the index of the first key at or after t, and whether a key
// exists at t.
func (c *Curve) search(t Time) (int, bool) {
	return slices.BinarySearchFunc(c.keys, t, func(k *Key, t Time) int {
		return cmp.Compare(k.time, t)
	})
}

func (c *Curve) indexOf(k *Key) int {
	i, ok := c.search(k.time)
	if !ok || c.keys[i] != k {
		return -1
	}
	return i
}

func (c *Curve) at(i int) *Key {
	if i < 0 || i >= len(c.keys) {
		return nil
	}
	return c.keys[i]
}

// place inserts k, which must already be parented to c, at its time. A key
// already at that time is detached and returned.
func (c *Curve) place(k *Key) *Key {
	i, found := c.search(k.time)
	if !found {
		c.keys = slices.Insert(c.keys, i, k)
		return nil
	}
	evicted := c.keys[i]
	c.keys[i] = k
	evicted.parent.Store(nil)
	c.logger().V(1).Info("evicted clashing key", "time", k.time, "value", evicted.value)
	return evicted
}

// settle restores auto slopes and tie constraints of keys after they or their
// neighbours changed. Nil and detached keys are skipped.
func (c *Curve) settle(ev *events, keys ...*Key) {
	for i, k := range keys {
		if k == nil || k.parent.Load() != c || slices.Contains(keys[:i], k) {
			continue
		}
		k.refreshAuto(ev)
		k.retie(ev)
	}
}

// AddKey adds k to the curve, first removing it from any other curve. Adding
// a key that is already part of c does nothing.
//
// If a key already exists at k's time, it is removed from the curve and
// returned. If inherit is true, k takes its interpolator, tie mode and
// tangents from that key, or, absent a clash, its interpolator and tie mode
// from the neighbouring key.
func (c *Curve) AddKey(k *Key, inherit bool) *Key {
	if k == nil {
		return nil
	}
	for {
		old := k.parent.Load()
		if old == c {
			return nil
		}
		if old != nil {
			old.RemoveKey(k)
			continue
		}
		c.mu.Lock()
		if k.parent.CompareAndSwap(nil, c) {
			break
		}
		c.mu.Unlock()
	}

	ev := events{c: c}
	evicted := c.place(k)
	if inherit {
		c.inherit(k, evicted)
	}
	ev.key(sigKeyAdded, k)
	if evicted != nil {
		ev.key(sigKeyRemoved, evicted)
	}
	c.settle(&ev, k.prev(), k, k.next())
	c.mu.Unlock()
	ev.fire()
	return evicted
}

func (c *Curve) inherit(k, evicted *Key) {
	src := evicted
	if src == nil {
		if src = k.prev(); src == nil {
			src = k.next()
		}
	}
	if src == nil {
		return
	}
	k.interp = src.interp
	k.tie = src.tie
	if evicted == nil {
		return
	}
	for d := range k.tangents {
		kt, et := &k.tangents[d], &evicted.tangents[d]
		kt.slope, kt.slopeSpace = et.slope, et.slopeSpace
		kt.accel, kt.accelSpace = et.accel, et.accelSpace
		kt.auto = et.auto
	}
	k.lastEdited = evicted.lastEdited
}

// RemoveKey removes k from the curve. It reports whether k was part of the
// curve.
func (c *Curve) RemoveKey(k *Key) bool {
	if k == nil {
		return false
	}
	c.mu.Lock()
	i := -1
	if k.parent.Load() == c {
		i = c.indexOf(k)
	}
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	ev := events{c: c}
	c.keys = slices.Delete(c.keys, i, i+1)
	k.parent.Store(nil)
	ev.key(sigKeyRemoved, k)
	c.settle(&ev, c.at(i-1), c.at(i))
	c.mu.Unlock()
	ev.fire()
	return true
}

// Clear removes all keys.
func (c *Curve) Clear() {
	c.mu.Lock()
	ev := events{c: c}
	for _, k := range c.keys {
		k.parent.Store(nil)
		ev.key(sigKeyRemoved, k)
	}
	c.keys = nil
	c.mu.Unlock()
	ev.fire()
}

func (c *Curve) moveKey(k *Key, t Time) (*Key, bool) {
	c.mu.Lock()
	if k.parent.Load() != c {
		c.mu.Unlock()
		return nil, false
	}
	ev := events{c: c}
	var evicted *Key
	if k.time != t {
		i := c.indexOf(k)
		oldPrev, oldNext := c.at(i-1), c.at(i+1)
		c.keys = slices.Delete(c.keys, i, i+1)
		k.time = t
		evicted = c.place(k)
		ev.key(sigKeyTimeChanged, k)
		if evicted != nil {
			ev.key(sigKeyRemoved, evicted)
		}
		c.settle(&ev, oldPrev, oldNext, k.prev(), k, k.next())
	}
	c.mu.Unlock()
	ev.fire()
	return evicted, true
}

// OffsetKeys moves keys by delta as a single operation. Keys not part of the
// curve are ignored. Keys outside the moved set that end up clashing with a
// moved key are removed and returned.
func (c *Curve) OffsetKeys(keys []*Key, delta Time) []*Key {
	c.mu.Lock()
	moving := make(map[*Key]struct{}, len(keys))
	var batch []*Key
	for _, k := range keys {
		if k == nil || k.parent.Load() != c {
			continue
		}
		if _, ok := moving[k]; ok {
			continue
		}
		moving[k] = struct{}{}
		batch = append(batch, k)
	}
	if delta == 0 || len(batch) == 0 {
		c.mu.Unlock()
		return nil
	}

	ev := events{c: c}
	touched := make([]*Key, 0, 4*len(batch))
	for _, k := range batch {
		i := c.indexOf(k)
		touched = append(touched, c.at(i-1), c.at(i+1))
	}
	c.keys = slices.DeleteFunc(c.keys, func(k *Key) bool {
		_, ok := moving[k]
		return ok
	})
	var evicted []*Key
	for _, k := range batch {
		k.time += delta
		if e := c.place(k); e != nil {
			evicted = append(evicted, e)
		}
	}
	for _, k := range batch {
		ev.key(sigKeyTimeChanged, k)
		touched = append(touched, k.prev(), k, k.next())
	}
	for _, k := range evicted {
		ev.key(sigKeyRemoved, k)
	}
	c.settle(&ev, touched...)
	c.mu.Unlock()
	ev.fire()
	return evicted
}

// InsertKey inserts a key at t without changing the shape of the curve, and
// returns it. If a key already exists at t, it is returned unchanged.
//
// A key inserted between two keys takes its value and tangents from the
// interpolator of the span it splits, and the span's outer tangents are
// adapted to the shorter sub-spans. Auto tangents of the two surrounding keys
// are switched to AutoManual so that they keep their shape. A key inserted
// before the first or after the last key copies that key's value and
// interpolator. A key inserted into an empty curve has value zero and the
// registry's default interpolator.
func (c *Curve) InsertKey(t Time) *Key {
	c.mu.Lock()
	ev := events{c: c}
	k := c.insert(t, &ev)
	c.mu.Unlock()
	ev.fire()
	return k
}

// InsertKeyValue inserts a key with the given value at t and returns it. If
// a key already exists at t, its value is set. If v is equivalent to the
// current value of the curve at t, the insertion preserves the shape of the
// curve, like [Curve.InsertKey].
func (c *Curve) InsertKeyValue(t Time, v float64) *Key {
	c.mu.Lock()
	ev := events{c: c}
	var k *Key
	i, found := c.search(t)
	switch {
	case found:
		k = c.keys[i]
		k.setValue(v, &ev)
	case len(c.keys) > 0 && equivalent(c.evaluate(t), v):
		k = c.insert(t, &ev)
	default:
		ip := c.reg.Default()
		if prev := c.at(i - 1); prev != nil {
			ip = prev.interp
		} else if len(c.keys) > 0 {
			ip = c.keys[0].interp
		}
		k = newKey(c.reg, t, v, ip)
		c.attach(k, i, &ev)
	}
	c.mu.Unlock()
	ev.fire()
	return k
}

func (c *Curve) attach(k *Key, i int, ev *events) {
	k.parent.Store(c)
	c.keys = slices.Insert(c.keys, i, k)
	ev.key(sigKeyAdded, k)
	c.settle(ev, k.prev(), k, k.next())
}

func (c *Curve) insert(t Time, ev *events) *Key {
	i, found := c.search(t)
	if found {
		return c.keys[i]
	}
	var k *Key
	switch n := len(c.keys); {
	case n == 0:
		k = newKey(c.reg, t, 0, c.reg.Default())
	case i == 0 || i == n:
		b := c.keys[min(i, n-1)]
		k = newKey(c.reg, t, b.value, b.interp)
	default:
		k = c.bisect(c.keys[i-1], c.keys[i], t, ev)
	}
	c.attach(k, i, ev)
	return k
}

func (c *Curve) bisect(lo, hi *Key, t Time, ev *events) *Key {
	u := t.ratio(lo.time, hi.time)
	w := (hi.time - lo.time).Seconds()
	loFrom, hiInto := &lo.tangents[From], &hi.tangents[Into]
	b := lo.interp.Bisect(lo.value, hi.value, loFrom.handle(w), hiInto.handle(w), u)

	k := newKey(c.reg, t, b.Value, lo.interp)
	k.tangents[Into].slope, k.tangents[Into].accel = b.Into.Slope, b.Into.Accel
	k.tangents[From].slope, k.tangents[From].accel = b.From.Slope, b.From.Accel

	for _, bk := range [...]*Key{lo, hi} {
		for d := range bk.tangents {
			bk.tangents[d].storeAuto(AutoManual, ev)
		}
	}
	loFrom.rescale(u, ev)
	hiInto.rescale(1-u, ev)

	c.logger().V(1).Info("bisected span", "time", t, "lo", lo.time, "hi", hi.time, "interpolator", lo.interp.Name())
	return k
}

// Evaluate returns the value of the curve at t.
func (c *Curve) Evaluate(t Time) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evaluate(t)
}

func (c *Curve) evaluate(t Time) float64 {
	n := len(c.keys)
	if n == 0 {
		return 0
	}
	i, found := c.search(t)
	switch {
	case found:
		return c.keys[i].value
	case i == 0:
		return c.keys[0].value
	case i == n:
		return c.keys[n-1].value
	}
	lo, hi := c.keys[i-1], c.keys[i]
	w := (hi.time - lo.time).Seconds()
	return lo.interp.Evaluate(
		lo.value, hi.value,
		lo.tangents[From].handle(w), hi.tangents[Into].handle(w),
		t.ratio(lo.time, hi.time),
	)
}

// equivalent reports whether a and b are equal within a relative tolerance
// of 1e-9, or an absolute tolerance of 1e-12 for values near zero.
func equivalent(a, b float64) bool {
	if a == b {
		return true
	}
	d := math.Abs(a - b)
	return d <= 1e-9*max(math.Abs(a), math.Abs(b)) || d <= 1e-12
}

// HasKey reports whether a key exists at t.
func (c *Curve) HasKey(t Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.search(t)
	return ok
}

// GetKey returns the key at t, or nil.
func (c *Curve) GetKey(t Time) *Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.search(t); ok {
		return c.keys[i]
	}
	return nil
}

// ClosestKey returns the key closest to t, preferring the later key when
// two are equally close. It returns nil for an empty curve.
func (c *Curve) ClosestKey(t Time) *Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closest(t)
}

// ClosestKeyWithin is like ClosestKey but returns nil if the closest key is
// further than maxDistance from t.
func (c *Curve) ClosestKeyWithin(t, maxDistance Time) *Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	k := c.closest(t)
	if k == nil || (k.time-t).Abs() > maxDistance {
		return nil
	}
	return k
}

func (c *Curve) closest(t Time) *Key {
	i, found := c.search(t)
	if found {
		return c.keys[i]
	}
	lo, hi := c.at(i-1), c.at(i)
	switch {
	case lo == nil:
		return hi
	case hi == nil:
		return lo
	case t-lo.time < hi.time-t:
		return lo
	default:
		return hi
	}
}

// PreviousKey returns the last key strictly before t, or nil.
func (c *Curve) PreviousKey(t Time) *Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, _ := c.search(t)
	return c.at(i - 1)
}

// NextKey returns the first key strictly after t, or nil.
func (c *Curve) NextKey(t Time) *Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, found := c.search(t)
	if found {
		i++
	}
	return c.at(i)
}

func (c *Curve) FirstKey() *Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.at(0)
}

func (c *Curve) LastKey() *Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.at(len(c.keys) - 1)
}

// Len returns the number of keys.
func (c *Curve) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// Keys returns an iterator over the keys in time order. The iterator works
// on a snapshot taken when Keys is called, so the curve may be modified
// during iteration.
func (c *Curve) Keys() iter.Seq[*Key] {
	c.mu.RLock()
	keys := slices.Clone(c.keys)
	c.mu.RUnlock()
	return slices.Values(keys)
}
