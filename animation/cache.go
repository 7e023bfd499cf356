package animation

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"honnef.co/go/keyframe"
)

// DefaultCacheSize is the capacity of the cache an [Animation] creates when
// it isn't given one.
const DefaultCacheSize = 4096

type cacheKey struct {
	curve *keyframe.Curve
	t     keyframe.Time
}

// A Cache memoizes curve evaluations in a bounded LRU. Only values of curves
// watched with [Cache.Watch] are stored; they are dropped whenever the curve
// changes. Other curves are evaluated on every call.
//
// A Cache is safe for concurrent use.
type Cache struct {
	name   string
	values *lru.Cache[cacheKey, float64]

	mu      sync.Mutex
	watches map[*keyframe.Curve]*watch
}

type watch struct {
	// gen is bumped by every purge. Evaluations that started under an older
	// generation, or under a watch that has since been replaced, don't store
	// their result.
	gen        uint64
	disconnect func()
}

// CacheOption configures a Cache during creation.
type CacheOption func(*Cache)

// WithName sets the name the cache reports its metrics under. The default
// is "default".
func WithName(name string) CacheOption {
	return func(c *Cache) {
		c.name = name
	}
}

// NewCache returns a cache holding up to size values. It returns an error if
// size isn't positive.
func NewCache(size int, opts ...CacheOption) (*Cache, error) {
	values, err := lru.New[cacheKey, float64](size)
	if err != nil {
		return nil, err
	}
	c := &Cache{
		name:    "default",
		values:  values,
		watches: make(map[*keyframe.Curve]*watch),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the name the cache reports its metrics under.
func (c *Cache) Name() string { return c.name }

// Len returns the number of cached values.
func (c *Cache) Len() int { return c.values.Len() }

// Evaluate returns the value of curve at t, evaluating the curve only if the
// value isn't cached.
func (c *Cache) Evaluate(curve *keyframe.Curve, t keyframe.Time) float64 {
	k := cacheKey{curve, t}
	if v, ok := c.values.Get(k); ok {
		recordHit(c.name)
		return v
	}
	recordMiss(c.name)

	c.mu.Lock()
	w := c.watches[curve]
	var gen uint64
	if w != nil {
		gen = w.gen
	}
	c.mu.Unlock()

	v := curve.Evaluate(t)
	if w == nil {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watches[curve] == w && w.gen == gen {
		if c.values.Add(k, v) {
			recordEviction(c.name)
		}
	}
	return v
}

// Watch subscribes to the changes of curve, purging the curve's values after
// every mutation. Watching a curve twice has no effect.
func (c *Cache) Watch(curve *keyframe.Curve) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.watches[curve]; ok {
		return
	}
	c.watches[curve] = &watch{
		gen:        1,
		disconnect: curve.ChangedSignal().Connect(c.Purge),
	}
}

// Forget stops watching curve and drops its values.
func (c *Cache) Forget(curve *keyframe.Curve) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.watches[curve]; ok {
		w.disconnect()
		delete(c.watches, curve)
	}
	c.removeLocked(curve)
}

// Purge drops the cached values of curve.
func (c *Cache) Purge(curve *keyframe.Curve) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.watches[curve]; ok {
		w.gen++
	}
	c.removeLocked(curve)
	recordPurge(c.name)
}

func (c *Cache) removeLocked(curve *keyframe.Curve) {
	for _, k := range c.values.Keys() {
		if k.curve == curve {
			c.values.Remove(k)
		}
	}
}
