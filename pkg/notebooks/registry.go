// Package notebooks provides CRUD over notebook records.
// Notes reference notebooks by id, but nothing here checks or cascades
// those references.
package notebooks

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/reactive"
	"github.com/aretw0/jotter/pkg/storage"
)

// StorageKey is the persisted key of the notebook list.
const StorageKey = "notebooks"

// DefaultNames seed a registry that has never been persisted.
var DefaultNames = []string{"Personal", "Work"}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock used for creation times.
func WithClock(c core.Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithBroker publishes notebook events on b.
func WithBroker(b *core.Broker) Option {
	return func(r *Registry) {
		r.broker = b
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry holds notebooks, most recent first.
type Registry struct {
	store     *storage.Store
	notebooks *reactive.Signal[[]core.Notebook]
	clock     core.Clock
	persist   sync.Mutex
	broker    *core.Broker
	logger    *slog.Logger
}

// NewRegistry loads the persisted notebooks, or seeds DefaultNames on first use.
func NewRegistry(ctx context.Context, store *storage.Store, opts ...Option) *Registry {
	r := &Registry{store: store}
	for _, opt := range opts {
		opt(r)
	}
	r.notebooks = reactive.NewSignal[[]core.Notebook](nil)
	r.Load(ctx)
	return r
}

// Load replaces the in-memory list with the persisted one, seeding when absent.
func (r *Registry) Load(ctx context.Context) {
	if stored, ok := storage.Lookup[[]core.Notebook](ctx, r.store, StorageKey); ok {
		if stored == nil {
			stored = []core.Notebook{}
		}
		r.notebooks.Set(stored)
		return
	}

	now := r.clock.Now()
	seed := make([]core.Notebook, 0, len(DefaultNames))
	for _, name := range DefaultNames {
		seed = append(seed, core.Notebook{ID: core.NewID(core.NotebookPrefix), Name: name, CreatedAt: now})
	}
	r.notebooks.Set(seed)
	r.save(ctx)
	if r.logger != nil {
		r.logger.Debug("seeded notebook registry", "count", len(seed))
	}
}

func (r *Registry) save(ctx context.Context) {
	r.persist.Lock()
	defer r.persist.Unlock()
	r.store.Set(ctx, StorageKey, r.notebooks.Get())
}

// List returns a copy of the notebooks, most recent first.
func (r *Registry) List() []core.Notebook {
	return slices.Clone(r.notebooks.Get())
}

// Get returns the notebook with id. It reports false for an empty or unknown id.
func (r *Registry) Get(id string) (core.Notebook, bool) {
	if id == "" {
		return core.Notebook{}, false
	}
	list := r.notebooks.Get()
	if i := slices.IndexFunc(list, func(nb core.Notebook) bool { return nb.ID == id }); i >= 0 {
		return list[i], true
	}
	return core.Notebook{}, false
}

// Create adds a notebook at the front of the list and persists it.
func (r *Registry) Create(ctx context.Context, name string) core.Notebook {
	nb := core.Notebook{ID: core.NewID(core.NotebookPrefix), Name: name, CreatedAt: r.clock.Now()}
	r.notebooks.Update(func(cur []core.Notebook) []core.Notebook {
		return append([]core.Notebook{nb}, cur...)
	})
	r.save(ctx)
	r.broker.Publish(core.NewEvent(core.EventCreate, core.NotebookEventID(nb.ID)))
	return nb
}

// Rename sets the name of notebook id. Unknown ids change nothing, but the
// list is persisted either way.
func (r *Registry) Rename(ctx context.Context, id, name string) {
	var found bool
	r.notebooks.Update(func(cur []core.Notebook) []core.Notebook {
		next := slices.Clone(cur)
		for i := range next {
			if next[i].ID == id {
				next[i].Name = name
				found = true
			}
		}
		return next
	})
	r.save(ctx)
	if found {
		r.broker.Publish(core.NewEvent(core.EventModify, core.NotebookEventID(id)))
	}
}

// Delete removes notebook id and persists. Notes filed under it keep the reference.
func (r *Registry) Delete(ctx context.Context, id string) {
	var found bool
	r.notebooks.Update(func(cur []core.Notebook) []core.Notebook {
		next := slices.DeleteFunc(slices.Clone(cur), func(nb core.Notebook) bool { return nb.ID == id })
		found = len(next) != len(cur)
		return next
	})
	r.save(ctx)
	if found {
		r.broker.Publish(core.NewEvent(core.EventDelete, core.NotebookEventID(id)))
	}
}

// Subscribe registers fn to receive the list after every change.
func (r *Registry) Subscribe(fn func([]core.Notebook)) func() {
	return r.notebooks.Subscribe(fn)
}

// OnChange implements reactive.Source.
func (r *Registry) OnChange(fn func()) func() {
	return r.notebooks.OnChange(fn)
}
