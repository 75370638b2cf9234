package platform

import (
	"log/slog"
	"time"

	"golang.org/x/text/language"

	"github.com/aretw0/jotter/pkg/adapters/s3"
	"github.com/aretw0/jotter/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterMemory = "memory"
	AdapterFS     = "fs"
	AdapterSQLite = "sqlite"
	AdapterRedis  = "redis"
	AdapterS3     = "s3"
	AdapterNone   = "none"
)

// Adapters lists every adapter name, in documentation order.
var Adapters = []string{AdapterMemory, AdapterFS, AdapterSQLite, AdapterRedis, AdapterS3, AdapterNone}

// options holds the internal configuration of a Workspace.
type options struct {
	medium      core.Medium
	logger      *slog.Logger
	adapter     string
	path        string
	redisAddr   string
	s3          s3.Config
	namespace   string
	env         string
	eventBuffer int
	clock       core.Clock
	language    language.Tag
	debounce    time.Duration
	watchErr    func(error)
	history     bool
	readOnly    bool
}

// Option defines a functional option for configuring a Workspace.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:  AdapterMemory,
		language: language.Und,
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMedium injects a storage medium. The adapter name is ignored when set.
func WithMedium(m core.Medium) Option {
	return func(o *options) {
		o.medium = m
	}
}

// WithAdapter selects the storage medium by name (see Adapters).
// Defaults to "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithPath sets the directory of the "fs" adapter or the database file of
// the "sqlite" adapter.
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithRedisAddr sets the address (host:port or redis:// URL) of the "redis" adapter.
func WithRedisAddr(addr string) Option {
	return func(o *options) {
		o.redisAddr = addr
	}
}

// WithS3 sets the connection settings of the "s3" adapter.
func WithS3(cfg s3.Config) Option {
	return func(o *options) {
		o.s3 = cfg
	}
}

// WithNamespace overrides the base storage namespace ("notesApp").
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithEnv appends ":<env>" to the storage namespace, isolating environments
// sharing one medium.
func WithEnv(env string) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithEventBuffer sets the per-subscriber event buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithClock sets the clock used for note and notebook timestamps.
func WithClock(c core.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLanguage sets the collation language of the tag list.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) {
		o.language = tag
	}
}

// WithWatchDebounce sets how long the "fs" adapter coalesces external edits.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithWatcherErrorHandler registers a callback for errors of the medium
// watch loop, which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watchErr = fn
	}
}

// WithHistory makes the "fs" adapter commit every write to a git repository
// in its directory. It requires git on PATH.
func WithHistory(enabled bool) Option {
	return func(o *options) {
		o.history = enabled
	}
}

// WithReadOnly rejects every write to the medium. Registries still work in
// memory; their writes are logged and dropped.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}
