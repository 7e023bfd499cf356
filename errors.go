package keyframe

import "errors"

var (
	// ErrUnknownInterpolator is returned when an interpolator name isn't
	// present in the registry in use. Errors returned by this package wrap
	// it together with the offending name; test for it with errors.Is.
	ErrUnknownInterpolator = errors.New("unknown interpolator")
	// ErrDuplicateInterpolator is returned when registering a name twice.
	ErrDuplicateInterpolator = errors.New("duplicate interpolator")
	// ErrFrozen is returned when registering into a frozen registry.
	ErrFrozen = errors.New("registry is frozen")
)
