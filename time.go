package keyframe

import (
	"fmt"
	"math"
)

// TicksPerSecond is the resolution of [Time]. It is a common multiple of
// every supported frame rate and of 1000, so that converting between ticks
// and any supported [Unit] is an exact integer operation.
//
// The value is also known as the flick.
const TicksPerSecond = 705_600_000

// Time is an exact point in time, measured in ticks.
//
// Time is a plain integer: use Go's operators for arithmetic and ordering.
type Time int64

// Unit is a unit of time, expressed as the number of ticks it spans.
type Unit int64

const (
	Ticks        Unit = 1
	Milliseconds Unit = TicksPerSecond / 1000
	Seconds      Unit = TicksPerSecond
	Frames24     Unit = TicksPerSecond / 24
	Frames25     Unit = TicksPerSecond / 25
	Frames30     Unit = TicksPerSecond / 30
	Frames48     Unit = TicksPerSecond / 48
	Frames50     Unit = TicksPerSecond / 50
	Frames60     Unit = TicksPerSecond / 60
	Frames90     Unit = TicksPerSecond / 90
	Frames100    Unit = TicksPerSecond / 100
	Frames120    Unit = TicksPerSecond / 120
)

// FrameUnit returns the unit of one frame at the given frame rate. It
// returns false if a frame at that rate isn't a whole number of ticks.
func FrameUnit(rate float64) (Unit, bool) {
	if !(rate > 0) || rate != math.Trunc(rate) || rate > TicksPerSecond {
		return 0, false
	}
	r := int64(rate)
	if TicksPerSecond%r != 0 {
		return 0, false
	}
	return Unit(TicksPerSecond / r), true
}

func (u Unit) String() string {
	switch u {
	case Ticks:
		return "ticks"
	case Milliseconds:
		return "ms"
	case Seconds:
		return "s"
	}
	if u > 0 && TicksPerSecond%int64(u) == 0 {
		return fmt.Sprintf("frames@%d", TicksPerSecond/int64(u))
	}
	return fmt.Sprintf("Unit(%d)", int64(u))
}

// FromTicks returns the time of n ticks.
func FromTicks(n int64) Time {
	return Time(n)
}

// FromReal returns the time closest to v units.
func FromReal(v float64, u Unit) Time {
	return Time(math.Round(v * float64(u)))
}

// FromSeconds returns the time closest to s seconds.
func FromSeconds(s float64) Time {
	return FromReal(s, Seconds)
}

// Ticks returns the number of ticks in t.
func (t Time) Ticks() int64 {
	return int64(t)
}

// Real returns t expressed in the unit u.
func (t Time) Real(u Unit) float64 {
	return float64(t) / float64(u)
}

// Seconds returns t in seconds.
func (t Time) Seconds() float64 {
	return t.Real(Seconds)
}

// Abs returns the absolute value of t.
func (t Time) Abs() Time {
	if t < 0 {
		return -t
	}
	return t
}

// Frame returns the frame number of t at the given frame rate. The result
// has a fractional part if t doesn't fall on a frame boundary.
func (t Time) Frame(rate float64) float64 {
	if u, ok := FrameUnit(rate); ok {
		q, r := int64(t)/int64(u), int64(t)%int64(u)
		return float64(q) + float64(r)/float64(u)
	}
	return t.Seconds() * rate
}

// Snap rounds t to the nearest frame boundary at the given frame rate.
// Halfway cases round away from zero. Rates that aren't positive are
// ignored.
func (t Time) Snap(rate float64) Time {
	if u, ok := FrameUnit(rate); ok {
		return Time(roundDiv(int64(t), int64(u)) * int64(u))
	}
	if !(rate > 0) || math.IsInf(rate, 0) {
		return t
	}
	frame := math.Round(t.Seconds() * rate)
	return FromSeconds(frame / rate)
}

// roundDiv computes n/d rounded to the nearest integer, with halfway cases
// rounded away from zero. d must be positive.
func roundDiv(n, d int64) int64 {
	q, r := n/d, n%d
	if r < 0 {
		r = -r
	}
	if 2*r >= d {
		if n < 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

// String formats t in seconds.
func (t Time) String() string {
	return fmt.Sprintf("%gs", t.Seconds())
}

// ratio returns the position of t within [lo, hi] as a fraction.
func (t Time) ratio(lo, hi Time) float64 {
	return float64(t-lo) / float64(hi-lo)
}
