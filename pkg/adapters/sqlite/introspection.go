package sqlite

import (
	"github.com/aretw0/introspection"
)

// MediumState exposes internal state for observability.
type MediumState struct {
	Path            string `json:"path"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
}

// State implements introspection.Introspectable.
func (m *Medium) State() any {
	stats := m.db.Stats()
	return MediumState{
		Path:            m.Path,
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
	}
}

// ComponentType implements introspection.Component.
func (m *Medium) ComponentType() string {
	return "sqlite"
}

var _ introspection.Introspectable = (*Medium)(nil)
var _ introspection.Component = (*Medium)(nil)
