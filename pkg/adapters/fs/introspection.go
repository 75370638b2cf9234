package fs

import (
	"github.com/aretw0/introspection"
)

// MediumState exposes internal state for observability.
type MediumState struct {
	Path     string `json:"path"`
	Tracked  int    `json:"tracked_keys"`
	Watchers int    `json:"watchers"`
	History  bool   `json:"history"`
}

// State implements introspection.Introspectable.
func (m *Medium) State() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MediumState{
		Path:     m.Path,
		Tracked:  len(m.own),
		Watchers: m.watchers,
		History:  m.history != nil,
	}
}

// ComponentType implements introspection.Component.
func (m *Medium) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Medium)(nil)
var _ introspection.Component = (*Medium)(nil)
