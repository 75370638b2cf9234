package reactive

import "sync"

// Computed is a value derived from other sources. It is recomputed lazily on
// the first Get after any dependency changes.
type Computed[T any] struct {
	mu      sync.Mutex
	fn      func() T
	value   T
	valid   bool
	subs    listeners
	cancels []func()
}

// NewComputed derives a value from fn, invalidated whenever one of deps changes.
func NewComputed[T any](fn func() T, deps ...Source) *Computed[T] {
	c := &Computed[T]{fn: fn}
	for _, d := range deps {
		c.cancels = append(c.cancels, d.OnChange(c.Invalidate))
	}
	return c
}

// Get returns the memoized value, recomputing it if a dependency changed.
func (c *Computed[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		c.value = c.fn()
		c.valid = true
	}
	return c.value
}

// Invalidate drops the memoized value and notifies subscribers.
func (c *Computed[T]) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
	c.subs.notify()
}

// OnChange implements Source, so computed values can feed other computed values.
func (c *Computed[T]) OnChange(fn func()) func() {
	return c.subs.add(fn)
}

// Subscribe registers fn to receive the recomputed value after every invalidation.
func (c *Computed[T]) Subscribe(fn func(T)) func() {
	return c.subs.add(func() { fn(c.Get()) })
}

// Detach stops listening to the dependencies.
func (c *Computed[T]) Detach() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

var _ Source = (*Computed[int])(nil)
