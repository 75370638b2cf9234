package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notebooks"
	"github.com/aretw0/jotter/pkg/notes"
	"github.com/aretw0/jotter/pkg/storage"
	"github.com/aretw0/jotter/pkg/tags"
)

// ErrNotWatchable is returned by Follow when the medium cannot report
// external changes.
var ErrNotWatchable = errors.New("medium does not support watching")

// ErrClosed is returned by operations on a closed workspace.
var ErrClosed = errors.New("workspace closed")

// Workspace wires storage, the event broker and the three domain stores
// around one medium.
type Workspace struct {
	Store     *storage.Store
	Broker    *core.Broker
	Tags      *tags.Registry
	Notebooks *notebooks.Registry
	Notes     *notes.Store

	adapter  string
	medium   core.Medium
	readOnly bool
	logger   *slog.Logger

	mu        sync.Mutex
	following bool
	closed    bool
}

// Open builds a workspace. Components are created leaf-first: storage, broker,
// tags, notebooks, notes. Each one loads its persisted state, seeding defaults
// on first use.
func Open(ctx context.Context, opts ...Option) (*Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	medium, err := openMedium(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s medium: %w", o.adapter, err)
	}

	adapter := o.adapter
	if o.medium != nil {
		adapter = "custom"
	}

	storeOpts := []storage.Option{storage.WithLogger(logger), storage.WithEnv(o.env)}
	if o.namespace != "" {
		storeOpts = append(storeOpts, storage.WithNamespace(o.namespace))
	}
	backing := medium
	if o.readOnly && medium != nil {
		backing = core.ReadOnly(medium)
	}
	store := storage.New(ctx, backing, storeOpts...)
	broker := core.NewBroker(o.eventBuffer, logger)

	tagRegistry := tags.NewRegistry(ctx, store,
		tags.WithLanguage(o.language),
		tags.WithBroker(broker),
		tags.WithLogger(logger),
	)
	notebookRegistry := notebooks.NewRegistry(ctx, store,
		notebooks.WithClock(o.clock),
		notebooks.WithBroker(broker),
		notebooks.WithLogger(logger),
	)
	noteStore := notes.NewStore(ctx, store, tagRegistry,
		notes.WithClock(o.clock),
		notes.WithBroker(broker),
		notes.WithLogger(logger),
	)

	logger.Debug("workspace opened",
		"adapter", adapter,
		"read_only", o.readOnly,
		"namespace", store.Namespace(),
		"available", store.Available(),
	)

	return &Workspace{
		Store:     store,
		Broker:    broker,
		Tags:      tagRegistry,
		Notebooks: notebookRegistry,
		Notes:     noteStore,
		adapter:   adapter,
		medium:    medium,
		readOnly:  o.readOnly,
		logger:    logger,
	}, nil
}

// Adapter returns the name of the medium in use.
func (w *Workspace) Adapter() string {
	return w.adapter
}

// Reload re-reads every persisted collection, in dependency order.
func (w *Workspace) Reload(ctx context.Context) {
	w.Tags.Load(ctx)
	w.Notebooks.Load(ctx)
	w.Notes.Load(ctx)
	w.logger.Debug("workspace reloaded")
}

// Watch subscribes to workspace events whose ID matches pattern
// ("notes/*", "tags/**", ...). The channel closes when ctx is done.
func (w *Workspace) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	return w.Broker.Subscribe(ctx, pattern)
}

// History returns up to n recorded revisions of the medium, newest first,
// or core.ErrNoHistory when the medium keeps none.
func (w *Workspace) History(ctx context.Context, n int) ([]core.Revision, error) {
	v, ok := w.medium.(core.Versioned)
	if !ok {
		return nil, core.ErrNoHistory
	}
	return v.History(ctx, n)
}

// Follow watches the medium for edits made by other processes. On each
// change to a collection of this namespace the workspace reloads and the raw
// medium event is published on the broker. It stops when ctx is done.
func (w *Workspace) Follow(ctx context.Context) error {
	watchable, ok := w.medium.(core.Watchable)
	if !ok {
		return ErrNotWatchable
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.following {
		w.mu.Unlock()
		return nil
	}
	w.following = true
	w.mu.Unlock()

	events, err := watchable.Watch(ctx, "**")
	if err != nil {
		w.setFollowing(false)
		return fmt.Errorf("failed to watch medium: %w", err)
	}

	collections := map[string]bool{
		w.Store.Key(tags.StorageKey):      true,
		w.Store.Key(notebooks.StorageKey): true,
		w.Store.Key(notes.StorageKey):     true,
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer w.setFollowing(false)
		for e := range events {
			if !collections[e.ID] {
				continue
			}
			w.logger.Debug("external change", "key", e.ID, "type", e.Type)
			w.Reload(ctx)
			w.Broker.Publish(e)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.logger.Error("follow loop failed", "error", err)
	}))
	return nil
}

func (w *Workspace) setFollowing(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.following = v
}

// Close releases the medium. It is safe to call more than once.
func (w *Workspace) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	if c, ok := w.medium.(core.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close medium: %w", err)
		}
	}
	return nil
}
