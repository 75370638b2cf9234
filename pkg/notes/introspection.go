package notes

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes          int    `json:"notes"`
	Visible        int    `json:"visible"`
	NotebookFilter string `json:"notebook_filter,omitempty"`
	TagFilter      string `json:"tag_filter,omitempty"`
	Query          string `json:"query,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	c := s.Criteria()
	return StoreState{
		Notes:          len(s.notes.Get()),
		Visible:        len(s.filtered.Get()),
		NotebookFilter: c.NotebookID,
		TagFilter:      c.Tag,
		Query:          c.Query,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "notes"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
