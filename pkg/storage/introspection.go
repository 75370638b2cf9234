package storage

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Namespace  string `json:"namespace"`
	MediumType string `json:"medium_type"`
	Available  bool   `json:"available"`
	Version    int    `json:"version"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	mediumType := "none"
	if s.medium != nil {
		mediumType = fmt.Sprintf("%T", s.medium)
		if comp, ok := s.medium.(introspection.Component); ok {
			mediumType = comp.ComponentType()
		}
	}

	return StoreState{
		Namespace:  s.namespace,
		MediumType: mediumType,
		Available:  s.Available(),
		Version:    s.version,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "storage"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
