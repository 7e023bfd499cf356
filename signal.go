package keyframe

import "sync"

// KeyEvent is delivered by the key signals of a [Curve].
type KeyEvent struct {
	Curve *Curve
	Key   *Key
}

// TangentEvent is delivered by the tangent signals of a [Curve].
type TangentEvent struct {
	Curve     *Curve
	Key       *Key
	Direction Direction
}

// A Signal delivers events to connected slots.
//
// Slots are called synchronously by the goroutine that made the change,
// after the change is complete and the curve is unlocked, in the order they
// were connected. Slots may read and modify the curve.
type Signal[E any] struct {
	mu    sync.Mutex
	next  uint64
	slots []signalSlot[E]
}

type signalSlot[E any] struct {
	id uint64
	fn func(E)
}

// Connect connects fn to the signal. Calling the returned function
// disconnects it again.
func (s *Signal[E]) Connect(fn func(E)) (disconnect func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.slots = append(s.slots, signalSlot[E]{id, fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, slot := range s.slots {
			if slot.id == id {
				s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of connected slots.
func (s *Signal[E]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

func (s *Signal[E]) emit(e E) {
	s.mu.Lock()
	slots := s.slots
	s.mu.Unlock()
	for _, slot := range slots {
		slot.fn(e)
	}
}

type keySignal int

const (
	sigKeyAdded keySignal = iota
	sigKeyRemoved
	sigKeyTimeChanged
	sigKeyValueChanged
	sigKeyTieModeChanged
	sigKeyInterpolatorChanged
	numKeySignals
)

type tangentSignal int

const (
	sigTangentSlopeChanged tangentSignal = iota
	sigTangentAccelChanged
	sigTangentAutoModeChanged
	numTangentSignals
)

type curveSignals struct {
	key     [numKeySignals]Signal[KeyEvent]
	tangent [numTangentSignals][2]Signal[TangentEvent]
	changed Signal[*Curve]
}

// events collects the notifications of a mutation so that they can be
// delivered once the curve is consistent and unlocked. A nil curve
// collects nothing, which is the case for edits of detached keys.
type events struct {
	c   *Curve
	fns []func()
}

func (ev *events) key(sig keySignal, k *Key) {
	if ev.c == nil {
		return
	}
	s := &ev.c.signals.key[sig]
	e := KeyEvent{Curve: ev.c, Key: k}
	ev.fns = append(ev.fns, func() { s.emit(e) })
}

func (ev *events) tangent(sig tangentSignal, k *Key, dir Direction) {
	if ev.c == nil {
		return
	}
	s := &ev.c.signals.tangent[sig][dir]
	e := TangentEvent{Curve: ev.c, Key: k, Direction: dir}
	ev.fns = append(ev.fns, func() { s.emit(e) })
}

func (ev *events) fire() {
	for _, fn := range ev.fns {
		fn()
	}
	if len(ev.fns) > 0 {
		ev.c.signals.changed.emit(ev.c)
	}
}
