package core

import (
	"github.com/aretw0/introspection"
)

// BrokerState exposes internal state for observability.
type BrokerState struct {
	EventBufferSize int `json:"event_buffer_size"`
	Subscribers     int `json:"subscribers"`
	Dropped         int `json:"dropped"`
}

// State implements introspection.Introspectable.
func (b *Broker) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BrokerState{
		EventBufferSize: b.buffer,
		Subscribers:     len(b.subs),
		Dropped:         b.dropped,
	}
}

// ComponentType implements introspection.Component.
func (b *Broker) ComponentType() string {
	return "broker"
}

var _ introspection.Introspectable = (*Broker)(nil)
var _ introspection.Component = (*Broker)(nil)
