// Package animation groups keyframe curves into an animation: one curve per
// named target, such as "opacity" or "position.x".
//
// Each target's curve is a track with a stable identity. Evaluations go
// through a [Cache] that watches the curves for changes, and [Animation.Hash]
// condenses a track's value at a time into a key suitable for caching
// derived results elsewhere.
package animation

import (
	"context"
	"encoding/binary"
	"math"
	"runtime"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"honnef.co/go/keyframe"
)

// An Animation is a set of curves, one per target. It is safe for concurrent
// use.
type Animation struct {
	reg         *keyframe.Registry
	log         logr.Logger
	cache       *Cache
	parallelism int
	curveOpts   []keyframe.Option

	mu     sync.RWMutex
	tracks map[string]*track
}

type track struct {
	id    uuid.UUID
	curve *keyframe.Curve
}

// Option configures an Animation during creation.
type Option func(*Animation)

// WithRegistry sets the registry new curves resolve interpolators in. The
// default is [keyframe.Builtins].
func WithRegistry(reg *keyframe.Registry) Option {
	return func(a *Animation) {
		a.reg = reg
	}
}

// WithLogger sets the logger of the animation. It is also passed on to the
// curves the animation creates.
func WithLogger(l logr.Logger) Option {
	return func(a *Animation) {
		a.log = l
		a.curveOpts = append(a.curveOpts, keyframe.WithLogger(l))
	}
}

// WithCache sets the cache evaluations go through. Caches may be shared
// between animations.
func WithCache(c *Cache) Option {
	return func(a *Animation) {
		a.cache = c
	}
}

// WithParallelism limits the number of curves [Animation.EvaluateAll]
// evaluates at once. The default is GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(a *Animation) {
		a.parallelism = n
	}
}

// WithCurveOptions sets options for the curves the animation creates.
func WithCurveOptions(opts ...keyframe.Option) Option {
	return func(a *Animation) {
		a.curveOpts = append(a.curveOpts, opts...)
	}
}

// New returns an empty animation.
func New(opts ...Option) *Animation {
	a := &Animation{
		reg:         keyframe.Builtins(),
		log:         keyframe.Logger(),
		parallelism: runtime.GOMAXPROCS(0),
		tracks:      make(map[string]*track),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		// Can't fail, the size is positive.
		a.cache, _ = NewCache(DefaultCacheSize)
	}
	if a.parallelism < 1 {
		a.parallelism = 1
	}
	return a
}

// Acquire returns the curve of target, creating an empty one if the target
// has none yet.
func (a *Animation) Acquire(target string) *keyframe.Curve {
	a.mu.RLock()
	tr, ok := a.tracks[target]
	a.mu.RUnlock()
	if ok {
		return tr.curve
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if tr, ok := a.tracks[target]; ok {
		return tr.curve
	}
	tr = &track{
		id:    uuid.New(),
		curve: keyframe.NewCurve(a.reg, a.curveOpts...),
	}
	a.cache.Watch(tr.curve)
	a.tracks[target] = tr
	a.log.V(1).Info("created track", "target", target, "id", tr.id)
	return tr.curve
}

func (a *Animation) track(target string) *track {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tracks[target]
}

// Curve returns the curve of target, or nil.
func (a *Animation) Curve(target string) *keyframe.Curve {
	if tr := a.track(target); tr != nil {
		return tr.curve
	}
	return nil
}

// ID returns the identity of target's track. A track removed and acquired
// again gets a new identity.
func (a *Animation) ID(target string) (uuid.UUID, bool) {
	if tr := a.track(target); tr != nil {
		return tr.id, true
	}
	return uuid.Nil, false
}

// Targets returns the targets that have curves, sorted.
func (a *Animation) Targets() []string {
	a.mu.RLock()
	out := make([]string, 0, len(a.tracks))
	for target := range a.tracks {
		out = append(out, target)
	}
	a.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Remove removes the curve of target. It reports whether there was one.
func (a *Animation) Remove(target string) bool {
	a.mu.Lock()
	tr, ok := a.tracks[target]
	delete(a.tracks, target)
	a.mu.Unlock()
	if !ok {
		return false
	}
	a.cache.Forget(tr.curve)
	a.log.V(1).Info("removed track", "target", target, "id", tr.id)
	return true
}

// Evaluate returns the value of target's curve at t. It reports false if the
// target has no curve.
func (a *Animation) Evaluate(target string, t keyframe.Time) (float64, bool) {
	tr := a.track(target)
	if tr == nil {
		return 0, false
	}
	return a.cache.Evaluate(tr.curve, t), true
}

// EvaluateAll evaluates every curve at t, at most WithParallelism at a time.
// It returns ctx's error if ctx is done before all curves are evaluated.
func (a *Animation) EvaluateAll(ctx context.Context, t keyframe.Time) (map[string]float64, error) {
	a.mu.RLock()
	targets := make([]string, 0, len(a.tracks))
	tracks := make([]*track, 0, len(a.tracks))
	for target, tr := range a.tracks {
		targets = append(targets, target)
		tracks = append(tracks, tr)
	}
	a.mu.RUnlock()

	values := make([]float64, len(tracks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for i, tr := range tracks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values[i] = a.cache.Evaluate(tr.curve, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(targets))
	for i, target := range targets {
		out[target] = values[i]
	}
	return out, nil
}

// Hash returns a hash of target's track identity, t and the curve's value at
// t. Equal hashes mean the track produced the same value at the same time.
// It reports false if the target has no curve.
func (a *Animation) Hash(target string, t keyframe.Time) (uint64, bool) {
	tr := a.track(target)
	if tr == nil {
		return 0, false
	}
	v := a.cache.Evaluate(tr.curve, t)

	buf := make([]byte, 0, len(tr.id)+16)
	buf = append(buf, tr.id[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(t.Ticks()))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	return xxhash.Sum64(buf), true
}
