// Package storage wraps a core.Medium with namespaced keys and JSON values.
//
// Every operation is total: serialization and medium failures are logged and
// turned into "use the fallback" on reads and "skip the write" on writes, so
// an unavailable medium degrades the session to in-memory state instead of
// failing it.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/jotter/pkg/core"
)

const (
	// DefaultNamespace prefixes every key when no namespace is configured.
	DefaultNamespace = "notesApp"

	// VersionKey holds the schema version marker.
	VersionKey = "__version"

	// SchemaVersion is the only schema version written so far.
	SchemaVersion = 1
)

// Namespace joins a base namespace and an optional environment suffix.
func Namespace(base, env string) string {
	if base == "" {
		base = DefaultNamespace
	}
	if env == "" {
		return base
	}
	return base + ":" + env
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report swallowed errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithNamespace overrides DefaultNamespace.
func WithNamespace(base string) Option {
	return func(s *Store) {
		s.base = base
	}
}

// WithEnv appends an environment suffix to the namespace.
func WithEnv(env string) Option {
	return func(s *Store) {
		s.env = env
	}
}

// WithVersion sets the version marker written on first use.
func WithVersion(v int) Option {
	return func(s *Store) {
		s.version = v
	}
}

// Store is the namespaced key-value adapter.
type Store struct {
	medium    core.Medium
	logger    *slog.Logger
	base      string
	env       string
	namespace string
	version   int
}

// New creates a Store over medium, which may be nil when no persistent medium
// exists. The version marker is written once if absent.
func New(ctx context.Context, medium core.Medium, opts ...Option) *Store {
	s := &Store{
		medium:  medium,
		base:    DefaultNamespace,
		version: SchemaVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.namespace = Namespace(s.base, s.env)

	if s.Available() {
		if _, ok := Lookup[int](ctx, s, VersionKey); !ok {
			s.Set(ctx, VersionKey, s.version)
		}
	}
	return s
}

// Namespace returns the resolved namespace.
func (s *Store) Namespace() string {
	return s.namespace
}

// Key returns the namespaced form of k.
func (s *Store) Key(k string) string {
	return s.namespace + ":" + k
}

// Available reports whether a medium is attached.
func (s *Store) Available() bool {
	return s.medium != nil
}

// Medium returns the underlying medium, or nil.
func (s *Store) Medium() core.Medium {
	return s.medium
}

// Version returns the persisted schema version, or 0 when unknown.
func (s *Store) Version(ctx context.Context) int {
	return Get(ctx, s, VersionKey, 0)
}

// Set serializes value and writes it under the namespaced key.
func (s *Store) Set(ctx context.Context, key string, value any) {
	if !s.Available() {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("storage set: encode failed", "key", key, "error", err)
		return
	}
	if err := s.medium.Set(ctx, s.Key(key), data); err != nil {
		s.logger.Error("storage set failed", "key", key, "error", err)
	}
}

// Remove deletes the namespaced key.
func (s *Store) Remove(ctx context.Context, key string) {
	if !s.Available() {
		return
	}
	if err := s.medium.Remove(ctx, s.Key(key)); err != nil {
		s.logger.Error("storage remove failed", "key", key, "error", err)
	}
}

// raw reads the bytes under key. ok is false on absence or failure.
func (s *Store) raw(ctx context.Context, key string) ([]byte, bool) {
	if !s.Available() {
		return nil, false
	}
	data, err := s.medium.Get(ctx, s.Key(key))
	if errors.Is(err, core.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.logger.Error("storage get failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Lookup reads and decodes the value under key. It reports false when the
// key is absent, unreadable, or the medium is unavailable.
func Lookup[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var zero T
	data, ok := s.raw(ctx, key)
	if !ok {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Error("storage get: decode failed", "key", key, "error", fmt.Errorf("into %T: %w", v, err))
		return zero, false
	}
	return v, true
}

// Get is Lookup with a fallback.
func Get[T any](ctx context.Context, s *Store, key string, fallback T) T {
	if v, ok := Lookup[T](ctx, s, key); ok {
		return v
	}
	return fallback
}
