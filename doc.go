// Package keyframe provides keyframed animation curves: functions of time
// defined by an ordered set of keys, with pluggable interpolation between
// them. It was designed to serve the needs of animation and motion
// applications, but it is intended to be general enough to be useful for any
// value that varies over time.
//
// # Features
//
// We provide the following notable features:
//
//   - Exact time (see [Time]), with lossless conversion to and from frames
//     at all common frame rates
//   - Shape-preserving key insertion (see [Curve.InsertKey])
//   - Tangents with slope and acceleration, in two spaces (see [Tangent])
//   - Tie modes for continuous tangents (see [TieMode])
//   - Automatic tangents (see [AutoMode])
//   - Change notification (see [Signal])
//
// # Keys, curves, and tangents
//
// A [Key] holds a value at a [Time]. Keys belong to at most one [Curve], which
// keeps them sorted by time and guarantees that no two keys share a time.
// Adding or moving a key onto a time that is already occupied removes the
// key that was there; the removed key is returned to the caller, who can
// decide what to do with it.
//
// Each key has two tangents: the Into tangent, facing the previous key, and
// the From tangent, facing the next key. A tangent has a slope and an
// acceleration ("accel"), which interpolators may use to shape the span the
// tangent faces. Slopes and accels can be read and written in two spaces:
// [SpaceKey], normalized to the span, and [SpaceSpan], in seconds. Tangents
// remember the space they were written in, so that values are stable when
// neighbouring keys move.
//
// # Interpolators
//
// Each span between two keys is interpolated by the [Interpolator] of its
// earlier key. Interpolators are looked up by name in a [Registry]; the
// built-in interpolators are [Step], [StepNext], [Linear], [Cubic], and
// [Quintic]. Hosts can register their own.
//
// Interpolators also know how to bisect their spans, which is what lets
// [Curve.InsertKey] add keys without changing the shape of the curve.
//
// # Concurrency
//
// Curves are safe for concurrent use. Keys and tangents synchronize on the
// curve they belong to. Signals are delivered after the curve is unlocked,
// so slots may freely call back into the curve.
//
// # Logging
//
// The package logs through [logr]. Nothing is logged unless a logger is
// installed with [SetLogger] or passed to a curve with [WithLogger].
//
// [logr]: https://github.com/go-logr/logr
package keyframe
