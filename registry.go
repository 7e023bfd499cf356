package keyframe

import (
	"fmt"
	"iter"
	"sync"
)

// A Registry maps names to interpolators, one of which is the default.
//
// Registries are populated before curves using them are built and are
// read-only after that, which [Registry.Freeze] enforces. All methods are
// safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Interpolator
	order  []Interpolator
	def    Interpolator
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Interpolator)}
}

var builtins = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	for _, ip := range []Interpolator{Step, StepNext, Linear, Cubic, Quintic} {
		if err := r.Add(ip, ip == Linear); err != nil {
			panic(err)
		}
	}
	return r
})

// Builtins returns the process-wide registry of built-in interpolators,
// with [Linear] as the default. The registry isn't frozen, so hosts may add
// their own interpolators to it during startup.
func Builtins() *Registry {
	return builtins()
}

// NewBuiltinRegistry returns a new registry containing only the built-in
// interpolators.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	def := Builtins().Default()
	for ip := range Builtins().All() {
		// Names in a registry are unique, so this can't fail.
		_ = r.Add(ip, ip == def)
	}
	return r
}

// Add registers ip under its name. If isDefault is true, or the registry was
// empty, ip becomes the default.
func (r *Registry) Add(ip Interpolator, isDefault bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	name := ip.Name()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateInterpolator, name)
	}
	r.byName[name] = ip
	r.order = append(r.order, ip)
	if isDefault || r.def == nil {
		r.def = ip
	}
	return nil
}

// Freeze prevents further additions.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Get returns the interpolator registered under name.
func (r *Registry) Get(name string) (Interpolator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ip, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}
	return ip, nil
}

// At returns the i'th interpolator in registration order. It reports false
// if i is out of range.
func (r *Registry) At(i int) (Interpolator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.order) {
		return nil, false
	}
	return r.order[i], true
}

// Default returns the default interpolator, or nil if the registry is
// empty.
func (r *Registry) Default() Interpolator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Len returns the number of registered interpolators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns an iterator over the interpolators in registration order.
func (r *Registry) All() iter.Seq[Interpolator] {
	r.mu.RLock()
	order := r.order[:len(r.order):len(r.order)]
	r.mu.RUnlock()
	return func(yield func(Interpolator) bool) {
		for _, ip := range order {
			if !yield(ip) {
				return
			}
		}
	}
}
