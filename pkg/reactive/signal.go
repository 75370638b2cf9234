// Package reactive provides explicit state holders: signals that notify
// subscribers on change, memoized values derived from them, and a
// debouncer for coalescing bursts of input.
package reactive

import (
	"slices"
	"sync"
)

// Source is anything whose changes can be observed.
type Source interface {
	// OnChange registers fn to run after every change. The returned
	// function removes the registration.
	OnChange(fn func()) (cancel func())
}

// listeners is a registry of change callbacks. Callbacks run outside any lock.
type listeners struct {
	mu   sync.Mutex
	fns  map[int]func()
	next int
}

func (l *listeners) add(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) notify() {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Signal holds a value and notifies subscribers whenever it is replaced.
// Values are treated as immutable snapshots: callers must not mutate what
// Get returns.
type Signal[T any] struct {
	mu    sync.RWMutex
	value T
	subs  listeners
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{value: initial}
}

// Get returns the current snapshot.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	s.subs.notify()
}

// Update replaces the value with fn(current) atomically and notifies subscribers.
func (s *Signal[T]) Update(fn func(T) T) T {
	v, _ := s.Modify(func(cur T) (T, bool) { return fn(cur), true })
	return v
}

// Modify is Update for changes that may turn out to be no-ops: when fn
// reports false the value is kept and nobody is notified.
func (s *Signal[T]) Modify(fn func(T) (T, bool)) (T, bool) {
	s.mu.Lock()
	next, changed := fn(s.value)
	if changed {
		s.value = next
	}
	v := s.value
	s.mu.Unlock()

	if changed {
		s.subs.notify()
	}
	return v, changed
}

// OnChange implements Source.
func (s *Signal[T]) OnChange(fn func()) func() {
	return s.subs.add(fn)
}

// Subscribe registers fn to receive every new value.
func (s *Signal[T]) Subscribe(fn func(T)) func() {
	return s.subs.add(func() { fn(s.Get()) })
}

var _ Source = (*Signal[int])(nil)
