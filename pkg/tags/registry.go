// Package tags maintains the global list of known tag names.
//
// The registry only grows from notes: tagging a note registers the tag, but
// removing a tag from the registry leaves the notes that carry it untouched.
package tags

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/reactive"
	"github.com/aretw0/jotter/pkg/storage"
)

// StorageKey is the persisted key of the tag list.
const StorageKey = "tags"

// Defaults seed a registry that has never been persisted.
var Defaults = []string{"todo", "idea", "research"}

// Option configures a Registry.
type Option func(*Registry)

// WithLanguage sets the collation language used to order tags.
func WithLanguage(tag language.Tag) Option {
	return func(r *Registry) {
		r.lang = tag
	}
}

// WithBroker publishes tag events on b.
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

// Registry is the set of known tag names, kept sorted.
type Registry struct {
	store    *storage.Store
	tags     *reactive.Signal[[]string]
	lang     language.Tag
	collator *collate.Collator
	collMu   sync.Mutex
	persist  sync.Mutex
	broker   *core.Broker
	logger   *slog.Logger
}

// NewRegistry loads the persisted tag list, or seeds Defaults on first use.
func NewRegistry(ctx context.Context, store *storage.Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		lang:  language.Und,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.collator = collate.New(r.lang)
	r.tags = reactive.NewSignal[[]string](nil)
	r.Load(ctx)
	return r
}

// Load replaces the in-memory list with the persisted one, seeding when absent.
func (r *Registry) Load(ctx context.Context) {
	if stored, ok := storage.Lookup[[]string](ctx, r.store, StorageKey); ok {
		if stored == nil {
			stored = []string{}
		}
		r.tags.Set(stored)
		return
	}
	r.tags.Set(slices.Clone(Defaults))
	r.save(ctx)
	if r.logger != nil {
		r.logger.Debug("seeded tag registry", "tags", Defaults)
	}
}

func (r *Registry) save(ctx context.Context) {
	r.persist.Lock()
	defer r.persist.Unlock()
	r.store.Set(ctx, StorageKey, r.tags.Get())
}

// List returns a copy of the registered tags in order.
func (r *Registry) List() []string {
	return slices.Clone(r.tags.Get())
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return slices.Contains(r.tags.Get(), name)
}

// Ensure registers every missing name. When anything was added the whole
// list is re-sorted and persisted; otherwise nothing is written or reordered.
func (r *Registry) Ensure(ctx context.Context, names ...string) bool {
	var added []string
	_, changed := r.tags.Modify(func(cur []string) ([]string, bool) {
		next := slices.Clone(cur)
		for _, n := range names {
			if strings.TrimSpace(n) == "" || slices.Contains(next, n) {
				continue
			}
			next = append(next, n)
			added = append(added, n)
		}
		if len(added) == 0 {
			return cur, false
		}
		r.sort(next)
		return next, true
	})
	if !changed {
		return false
	}

	r.save(ctx)
	for _, n := range added {
		r.broker.Publish(core.NewEvent(core.EventCreate, core.TagEventID(n)))
	}
	return true
}

// Remove drops name from the registry and persists. Notes keep the tag.
func (r *Registry) Remove(ctx context.Context, name string) {
	var removed bool
	r.tags.Update(func(cur []string) []string {
		next := slices.DeleteFunc(slices.Clone(cur), func(t string) bool { return t == name })
		removed = len(next) != len(cur)
		return next
	})
	r.save(ctx)
	if removed {
		r.broker.Publish(core.NewEvent(core.EventDelete, core.TagEventID(name)))
	}
}

// Subscribe registers fn to receive the list after every change.
func (r *Registry) Subscribe(fn func([]string)) func() {
	return r.tags.Subscribe(fn)
}

// OnChange implements reactive.Source.
func (r *Registry) OnChange(fn func()) func() {
	return r.tags.OnChange(fn)
}

func (r *Registry) sort(list []string) {
	r.collMu.Lock()
	defer r.collMu.Unlock()
	r.collator.SortStrings(list)
}
