package platform

import (
	"github.com/aretw0/introspection"
)

// WorkspaceState exposes internal state for observability.
type WorkspaceState struct {
	Adapter   string `json:"adapter"`
	ReadOnly  bool   `json:"read_only"`
	Following bool   `json:"following"`
	Closed    bool   `json:"closed"`
	Tags      int    `json:"tags"`
	Notebooks int    `json:"notebooks"`
	Storage   any    `json:"storage"`
	Broker    any    `json:"broker"`
	Notes     any    `json:"notes"`
	Medium    any    `json:"medium,omitempty"`
}

// State implements introspection.Introspectable.
func (w *Workspace) State() any {
	w.mu.Lock()
	following, closed := w.following, w.closed
	w.mu.Unlock()

	state := WorkspaceState{
		Adapter:   w.adapter,
		ReadOnly:  w.readOnly,
		Following: following,
		Closed:    closed,
		Tags:      len(w.Tags.List()),
		Notebooks: len(w.Notebooks.List()),
		Storage:   w.Store.State(),
		Broker:    w.Broker.State(),
		Notes:     w.Notes.State(),
	}
	if m, ok := w.medium.(introspection.Introspectable); ok {
		state.Medium = m.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (w *Workspace) ComponentType() string {
	return "workspace"
}

var _ introspection.Introspectable = (*Workspace)(nil)
var _ introspection.Component = (*Workspace)(nil)
