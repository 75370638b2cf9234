// Package notes owns the note collection and the filtered view derived from it.
//
// The view depends on four sources: the notes themselves and three
// independent filters (notebook, tag, free-text query). It is memoized and
// recomputed on the first read after any of them changes.
package notes

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/reactive"
	"github.com/aretw0/jotter/pkg/storage"
)

// StorageKey is the persisted key of the note list.
const StorageKey = "notes"

// UntitledTitle is the placeholder title of a new note.
const UntitledTitle = "Untitled note"

// TagEnsurer receives the tags of updated notes. *tags.Registry implements it.
type TagEnsurer interface {
	Ensure(ctx context.Context, names ...string) bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for timestamps.
func WithClock(c core.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithBroker publishes note events on b.
func WithBroker(b *core.Broker) Option {
	return func(s *Store) {
		s.broker = b
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds every note, most recent first, and the active filters.
type Store struct {
	store *storage.Store
	tags  TagEnsurer

	notes      *reactive.Signal[[]core.Note]
	notebookID *reactive.Signal[string]
	tag        *reactive.Signal[string]
	query      *reactive.Signal[string]
	filtered   *reactive.Computed[[]core.Note]

	clock   core.Clock
	persist sync.Mutex
	broker  *core.Broker
	logger  *slog.Logger
}

// NewStore loads the persisted notes, or seeds demo notes on first use, and
// registers every tag they carry with tags.
func NewStore(ctx context.Context, store *storage.Store, tags TagEnsurer, opts ...Option) *Store {
	s := &Store{
		store:      store,
		tags:       tags,
		notes:      reactive.NewSignal[[]core.Note](nil),
		notebookID: reactive.NewSignal(""),
		tag:        reactive.NewSignal(""),
		query:      reactive.NewSignal(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.filtered = reactive.NewComputed(func() []core.Note {
		return Filter(s.notes.Get(), s.Criteria())
	}, s.notes, s.notebookID, s.tag, s.query)

	s.Load(ctx)
	return s
}

// Load replaces the in-memory notes with the persisted ones, seeding when
// absent, and registers their tags.
func (s *Store) Load(ctx context.Context) {
	if stored, ok := storage.Lookup[[]core.Note](ctx, s.store, StorageKey); ok {
		if stored == nil {
			stored = []core.Note{}
		}
		s.notes.Set(stored)
	} else {
		s.notes.Set(s.demo())
		s.save(ctx)
		if s.logger != nil {
			s.logger.Debug("seeded demo notes")
		}
	}

	var all []string
	for _, n := range s.notes.Get() {
		all = append(all, n.Tags...)
	}
	if s.tags != nil {
		s.tags.Ensure(ctx, core.UniqueTags(all)...)
	}
}

func (s *Store) demo() []core.Note {
	now := s.clock.Now()
	return []core.Note{
		{
			ID:        core.NewID(core.NotePrefix),
			Title:     "Welcome to Your Notes",
			Content:   "This is a demo note. Use the sidebar to filter by notebooks and tags. Edit this content freely!",
			Tags:      []string{"idea"},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        core.NewID(core.NotePrefix),
			Title:     "Work: Weekly Planning",
			Content:   "- [ ] Review sprint board\n- [ ] Prepare slides for Monday update\n- [ ] Draft proposal for new feature",
			Tags:      []string{"todo", "work"},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (s *Store) save(ctx context.Context) {
	s.persist.Lock()
	defer s.persist.Unlock()
	s.store.Set(ctx, StorageKey, s.notes.Get())
}

// List returns every note in storage order.
func (s *Store) List() []core.Note {
	return slices.Clone(s.notes.Get())
}

// Filtered returns the notes matching the active filters, most recently updated first.
func (s *Store) Filtered() []core.Note {
	return slices.Clone(s.filtered.Get())
}

// Get returns the note with id. It reports false for an empty or unknown id.
func (s *Store) Get(id string) (core.Note, bool) {
	if id == "" {
		return core.Note{}, false
	}
	list := s.notes.Get()
	if i := slices.IndexFunc(list, func(n core.Note) bool { return n.ID == id }); i >= 0 {
		return list[i].Clone(), true
	}
	return core.Note{}, false
}

// Create adds an empty note, optionally filed under notebookID, at the front
// of the collection and persists it.
func (s *Store) Create(ctx context.Context, notebookID string) core.Note {
	now := s.clock.Now()
	n := core.Note{
		ID:         core.NewID(core.NotePrefix),
		Title:      UntitledTitle,
		NotebookID: notebookID,
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.notes.Update(func(cur []core.Note) []core.Note {
		return append([]core.Note{n}, cur...)
	})
	s.save(ctx)
	s.broker.Publish(core.NewEvent(core.EventCreate, core.NoteEventID(n.ID)))
	return n.Clone()
}

// Update merges patch into note id and refreshes its UpdatedAt. Tags set by
// the patch are registered afterwards. The collection is persisted even when
// id is unknown.
func (s *Store) Update(ctx context.Context, id string, patch core.Patch) (core.Note, bool) {
	var updated core.Note
	var found bool
	s.notes.Update(func(cur []core.Note) []core.Note {
		next := slices.Clone(cur)
		for i := range next {
			if next[i].ID != id {
				continue
			}
			n := patch.Apply(next[i])
			n.UpdatedAt = s.clock.Now()
			if n.UpdatedAt < n.CreatedAt {
				n.UpdatedAt = n.CreatedAt
			}
			next[i] = n
			updated, found = n, true
		}
		return next
	})

	if found && patch.Tags != nil && s.tags != nil {
		s.tags.Ensure(ctx, updated.Tags...)
	}
	s.save(ctx)
	if found {
		s.broker.Publish(core.NewEvent(core.EventModify, core.NoteEventID(id)))
	}
	return updated.Clone(), found
}

// Delete removes note id and persists. Clearing any selection that points at
// it is the caller's job.
func (s *Store) Delete(ctx context.Context, id string) {
	var found bool
	s.notes.Update(func(cur []core.Note) []core.Note {
		next := slices.DeleteFunc(slices.Clone(cur), func(n core.Note) bool { return n.ID == id })
		found = len(next) != len(cur)
		return next
	})
	s.save(ctx)
	if found {
		s.broker.Publish(core.NewEvent(core.EventDelete, core.NoteEventID(id)))
	}
}

// Criteria returns the active filters.
func (s *Store) Criteria() Criteria {
	return Criteria{
		NotebookID: s.notebookID.Get(),
		Tag:        s.tag.Get(),
		Query:      s.query.Get(),
	}
}

// SetNotebookFilter restricts the view to notebook id; "" clears the filter.
func (s *Store) SetNotebookFilter(id string) { s.notebookID.Set(id) }

// SetTagFilter restricts the view to notes carrying tag; "" clears the filter.
func (s *Store) SetTagFilter(tag string) { s.tag.Set(tag) }

// SetQuery restricts the view to notes matching q; "" clears the filter.
func (s *Store) SetQuery(q string) { s.query.Set(q) }

// SetCriteria replaces all three filters.
func (s *Store) SetCriteria(c Criteria) {
	s.notebookID.Set(c.NotebookID)
	s.tag.Set(c.Tag)
	s.query.Set(c.Query)
}

func (s *Store) NotebookFilter() string { return s.notebookID.Get() }
func (s *Store) TagFilter() string      { return s.tag.Get() }
func (s *Store) Query() string          { return s.query.Get() }

// Subscribe registers fn to receive the filtered view after every change to
// the notes or the filters.
func (s *Store) Subscribe(fn func([]core.Note)) func() {
	return s.filtered.Subscribe(func(list []core.Note) { fn(slices.Clone(list)) })
}

// OnChange implements reactive.Source for the filtered view.
func (s *Store) OnChange(fn func()) func() {
	return s.filtered.OnChange(fn)
}
