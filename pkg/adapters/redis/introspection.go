package redis

import (
	"github.com/aretw0/introspection"
)

// MediumState exposes internal state for observability.
type MediumState struct {
	Addr       string `json:"addr"`
	DB         int    `json:"db"`
	Prefix     string `json:"prefix,omitempty"`
	TotalConns uint32 `json:"total_conns"`
	IdleConns  uint32 `json:"idle_conns"`
}

// State implements introspection.Introspectable.
func (m *Medium) State() any {
	opts := m.client.Options()
	stats := m.client.PoolStats()
	return MediumState{
		Addr:       opts.Addr,
		DB:         opts.DB,
		Prefix:     m.prefix,
		TotalConns: stats.TotalConns,
		IdleConns:  stats.IdleConns,
	}
}

// ComponentType implements introspection.Component.
func (m *Medium) ComponentType() string {
	return "redis"
}

var _ introspection.Introspectable = (*Medium)(nil)
var _ introspection.Component = (*Medium)(nil)
