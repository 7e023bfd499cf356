package keyframe

import "github.com/go-logr/logr"

// Option configures a Curve during creation.
type Option func(*curveOptions)

type curveOptions struct {
	logger *logr.Logger
}

// WithLogger sets the logger of a curve, overriding the package-wide logger
// set with [SetLogger].
func WithLogger(l logr.Logger) Option {
	return func(o *curveOptions) {
		o.logger = &l
	}
}

// KeyOption configures a Key during creation.
type KeyOption func(*Key)

// WithTieMode sets the tie mode of a new key. The tie is established once
// the key is in a curve, propagating from the tangent edited last by the
// options (the From tangent if none was) as soon as that tangent has a span.
func WithTieMode(mode TieMode) KeyOption {
	return func(k *Key) {
		k.tie = mode
	}
}

// WithSlope sets the slope of one of the tangents of a new key.
func WithSlope(dir Direction, slope float64, space Space) KeyOption {
	return func(k *Key) {
		t := k.Tangent(dir)
		t.slope, t.slopeSpace = slope, space
		k.lastEdited = dir
	}
}

// WithAccel sets the accel of one of the tangents of a new key.
func WithAccel(dir Direction, accel float64, space Space) KeyOption {
	return func(k *Key) {
		t := k.Tangent(dir)
		t.accel, t.accelSpace = accel, space
		k.lastEdited = dir
	}
}

// WithAutoMode sets the auto mode of one of the tangents of a new key.
func WithAutoMode(dir Direction, mode AutoMode) KeyOption {
	return func(k *Key) {
		k.Tangent(dir).auto = mode
	}
}
