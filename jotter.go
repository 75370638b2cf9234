package jotter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/adapters/s3"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notes"
)

// --- Types ---

// Note is a public alias for the domain note.
type Note = core.Note

// Notebook is a public alias for the domain notebook.
type Notebook = core.Notebook

// Patch is a public alias for a partial note update.
type Patch = core.Patch

// Event is a public alias for a change notification.
type Event = core.Event

// Criteria is a public alias for the note filters.
type Criteria = notes.Criteria

// Medium is a public alias for the storage medium port.
type Medium = core.Medium

// Confirmer is a public alias for the confirmation port.
type Confirmer = core.Confirmer

// Workspace is a public alias for an opened set of stores.
type Workspace = platform.Workspace

// WorkspaceState is a public alias for the workspace introspection snapshot.
type WorkspaceState = platform.WorkspaceState

// Revision is a public alias for one recorded change of a versioned medium.
type Revision = core.Revision

// S3Config is a public alias for the S3 adapter settings.
type S3Config = s3.Config

// --- Errors ---

var (
	ErrNotFound       = core.ErrNotFound
	ErrUnavailable    = core.ErrUnavailable
	ErrUnknownAdapter = platform.ErrUnknownAdapter
	ErrNotWatchable   = platform.ErrNotWatchable
	ErrNoHistory      = core.ErrNoHistory
	ErrReadOnly       = core.ErrReadOnly
)

// --- Configuration ---

// Option defines a functional option for configuring a Workspace.
type Option = platform.Option

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory = platform.AdapterMemory
	AdapterFS     = platform.AdapterFS
	AdapterSQLite = platform.AdapterSQLite
	AdapterRedis  = platform.AdapterRedis
	AdapterS3     = platform.AdapterS3
	AdapterNone   = platform.AdapterNone
)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithMedium injects a storage medium.
func WithMedium(m Medium) Option {
	return platform.WithMedium(m)
}

// WithAdapter selects the storage medium by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithPath sets the directory (fs) or database file (sqlite).
func WithPath(path string) Option {
	return platform.WithPath(path)
}

// WithRedisAddr sets the Redis address.
func WithRedisAddr(addr string) Option {
	return platform.WithRedisAddr(addr)
}

// WithS3 sets the S3 connection settings.
func WithS3(cfg S3Config) Option {
	return platform.WithS3(cfg)
}

// WithNamespace overrides the base storage namespace.
func WithNamespace(ns string) Option {
	return platform.WithNamespace(ns)
}

// WithEnv isolates an environment inside the namespace.
func WithEnv(env string) Option {
	return platform.WithEnv(env)
}

// WithEventBuffer sets the per-subscriber event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithLanguage sets the collation language of the tag list.
func WithLanguage(tag language.Tag) Option {
	return platform.WithLanguage(tag)
}

// WithWatcherErrorHandler registers a callback for medium watch errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithHistory commits every write of the "fs" adapter to git.
func WithHistory(enabled bool) Option {
	return platform.WithHistory(enabled)
}

// WithReadOnly keeps every change in memory and never writes to the medium.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// --- Factory ---

// Open builds a workspace on the selected medium.
func Open(ctx context.Context, opts ...Option) (*Workspace, error) {
	return platform.Open(ctx, opts...)
}

// FindRoot looks upwards from startDir for a jotter.yaml file or .jotter directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Helpers ---

// Filter returns the notes matching c, most recently updated first.
func Filter(list []Note, c Criteria) []Note {
	return notes.Filter(list, c)
}
