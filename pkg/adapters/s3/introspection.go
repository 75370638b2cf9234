package s3

import (
	"github.com/aretw0/introspection"
)

// MediumState exposes internal state for observability.
type MediumState struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region"`
}

// State implements introspection.Introspectable.
func (m *Medium) State() any {
	return MediumState{
		Bucket: m.bucket,
		Prefix: m.prefix,
		Region: m.client.Options().Region,
	}
}

// ComponentType implements introspection.Component.
func (m *Medium) ComponentType() string {
	return "s3"
}

var _ introspection.Introspectable = (*Medium)(nil)
var _ introspection.Component = (*Medium)(nil)
