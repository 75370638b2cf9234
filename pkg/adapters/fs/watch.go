package fs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/reactive"
)

// watch turns fsnotify events on the medium directory into core events.
type watch struct {
	m       *Medium
	pattern string
	watcher *fsnotify.Watcher
	out     chan core.Event

	mu         sync.Mutex
	closed     bool
	pending    map[string]core.EventType
	debouncers map[string]*reactive.Debouncer
}

// Watch implements core.Watchable. Only changes made by other processes are
// reported; writes through this medium are recognized and skipped.
func (m *Medium) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "**"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(m.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", m.Path, err)
	}

	w := &watch{
		m:          m,
		pattern:    pattern,
		watcher:    watcher,
		out:        make(chan core.Event, core.DefaultEventBuffer),
		pending:    make(map[string]core.EventType),
		debouncers: make(map[string]*reactive.Debouncer),
	}
	m.setWatchers(1)

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		m.handleError(fmt.Errorf("watcher: %w", err))
	}))
	return w.out, nil
}

func (w *watch) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger := w.m.logger; logger != nil {
				if logger.Enabled(ctx, slog.LevelDebug) {
					logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
				} else {
					logger.Error("watcher panic", "error", err)
				}
			}
		}
	}()
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.process(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.m.handleError(fmt.Errorf("fsnotify: %w", wErr))
		}
	}
}

func (w *watch) process(ctx context.Context, event fsnotify.Event) {
	key, ok := KeyOf(event.Name)
	if !ok {
		return
	}
	if match, _ := doublestar.Match(w.pattern, key); !match {
		return
	}
	t := eventType(event)
	if t == "" {
		return
	}
	if w.m.logger != nil {
		w.m.logger.Debug("fs event", "key", key, "op", event.Op.String())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.pending[key] = merge(w.pending[key], t)
	d, ok := w.debouncers[key]
	if !ok {
		d = reactive.NewDebouncer(w.m.debounce)
		w.debouncers[key] = d
	}
	d.Call(func() { w.emit(ctx, key) })
}

// emit sends the coalesced event for key unless the file now holds what this
// process wrote itself.
func (w *watch) emit(ctx context.Context, key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	t := w.pending[key]
	delete(w.pending, key)
	if t == "" || !w.m.external(key, t == core.EventDelete) {
		return
	}
	select {
	case w.out <- core.NewEvent(t, key):
	case <-ctx.Done():
	}
}

func (w *watch) shutdown() {
	w.mu.Lock()
	w.closed = true
	for _, d := range w.debouncers {
		d.Stop()
	}
	close(w.out)
	w.mu.Unlock()

	_ = w.watcher.Close()
	w.m.setWatchers(-1)
}

func eventType(e fsnotify.Event) core.EventType {
	switch {
	case e.Has(fsnotify.Remove), e.Has(fsnotify.Rename):
		return core.EventDelete
	case e.Has(fsnotify.Create):
		return core.EventCreate
	case e.Has(fsnotify.Write):
		return core.EventModify
	default:
		return ""
	}
}

// merge folds a burst of events for one key into one: a creation stays a
// creation when written to, and a removal always wins.
func merge(prev, next core.EventType) core.EventType {
	if prev == core.EventCreate && next == core.EventModify {
		return prev
	}
	if prev == core.EventDelete && next == core.EventCreate {
		return core.EventModify
	}
	return next
}

func (m *Medium) setWatchers(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers += delta
}

func (m *Medium) handleError(err error) {
	if m.onError != nil {
		m.onError(err)
		return
	}
	if m.logger != nil {
		m.logger.Error("fs medium", "error", err)
	}
}
