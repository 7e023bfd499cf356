package keyframe

import (
	"sync/atomic"

	"github.com/go-logr/logr"
)

// loggerPtr stores the package-wide logger. Accessed atomically so that
// SetLogger can be called concurrently with curves logging.
var loggerPtr atomic.Pointer[logr.Logger]

func init() {
	l := logr.Discard()
	loggerPtr.Store(&l)
}

// SetLogger sets the logger used by curves that weren't given one with
// [WithLogger]. By default nothing is logged.
//
// Curves log structural decisions, such as keys evicted by clashes and spans
// bisected by insertions, at verbosity 1. Nothing is logged at verbosity 0
// during normal operation.
func SetLogger(l logr.Logger) {
	loggerPtr.Store(&l)
}

// Logger returns the package-wide logger.
func Logger() logr.Logger {
	return *loggerPtr.Load()
}
