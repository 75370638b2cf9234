// Package memory provides an in-process core.Medium.
// It backs ephemeral sessions and tests.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/jotter/pkg/core"
)

// Medium implements core.Medium with a map.
type Medium struct {
	mu   sync.RWMutex
	data map[string][]byte
	err  error
}

// New creates an empty medium.
func New() *Medium {
	return &Medium{data: make(map[string][]byte)}
}

// Get implements core.Medium.
func (m *Medium) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return slices.Clone(v), nil
}

// Set implements core.Medium.
func (m *Medium) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = slices.Clone(value)
	return nil
}

// Remove implements core.Medium.
func (m *Medium) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.data, key)
	return nil
}

// Fail makes every following operation return err. A nil err heals the medium.
func (m *Medium) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Keys returns the stored keys, sorted.
func (m *Medium) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// State implements introspection.Introspectable.
func (m *Medium) State() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]any{"keys": len(m.data), "failing": m.err != nil}
}

// ComponentType implements introspection.Component.
func (m *Medium) ComponentType() string {
	return "memory"
}

var _ core.Medium = (*Medium)(nil)
var _ introspection.Introspectable = (*Medium)(nil)
var _ introspection.Component = (*Medium)(nil)
