// Package fs stores each key as a JSON file in a single directory.
//
// File names are the query-escaped key plus a ".json" extension, so
// "notesApp:notes" lands in "notesApp%3Anotes.json". Writes are atomic.
// The medium implements core.Watchable: edits made to the directory by other
// processes are reported as events keyed by the original storage key.
// With WithHistory the directory is also a git repository and every write
// is committed.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/git"
)

// Extension is appended to every escaped key.
const Extension = ".json"

// DefaultDebounce coalesces bursts of filesystem events for the same key.
const DefaultDebounce = 50 * time.Millisecond

// Option configures a Medium.
type Option func(*Medium)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Medium) {
		m.logger = logger
	}
}

// WithDebounce sets the watcher's per-key coalescing delay.
func WithDebounce(d time.Duration) Option {
	return func(m *Medium) {
		m.debounce = d
	}
}

// WithErrorHandler receives watcher errors that are not fatal to the watch loop.
func WithErrorHandler(fn func(error)) Option {
	return func(m *Medium) {
		m.onError = fn
	}
}

// WithPerm sets the mode of written files.
func WithPerm(perm os.FileMode) Option {
	return func(m *Medium) {
		m.perm = perm
	}
}

// WithHistory turns the directory into a git repository and commits every
// write and removal. Commit failures are reported like watcher errors and do
// not fail the write.
func WithHistory(opts ...git.Option) Option {
	return func(m *Medium) {
		m.versioned = true
		m.gitOpts = opts
	}
}

// Medium is a directory-backed core.Medium.
type Medium struct {
	Path string

	perm     os.FileMode
	debounce time.Duration
	logger   *slog.Logger
	onError  func(error)

	versioned bool
	gitOpts   []git.Option
	history   *git.Client

	mu       sync.RWMutex
	own      map[string][]byte // last content written by this process; nil value means removed
	watchers int
}

// New opens (creating if needed) the directory at path.
func New(path string, opts ...Option) (*Medium, error) {
	if path == "" {
		return nil, fmt.Errorf("fs medium: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", abs, err)
	}

	m := &Medium{
		Path:     abs,
		perm:     0o644,
		debounce: DefaultDebounce,
		own:      make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.versioned {
		m.history = git.NewClient(abs, append([]git.Option{git.WithLogger(m.logger)}, m.gitOpts...)...)
		if err := m.history.Init(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to initialize history in %s: %w", abs, err)
		}
	}
	return m, nil
}

// FileName returns the file name holding key.
func FileName(key string) string {
	return url.QueryEscape(key) + Extension
}

// KeyOf reverses FileName. It reports false for names that are not keys.
func KeyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if isTempFile(base) || !strings.HasSuffix(base, Extension) {
		return "", false
	}
	key, err := url.QueryUnescape(strings.TrimSuffix(base, Extension))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

func (m *Medium) path(key string) string {
	return filepath.Join(m.Path, FileName(key))
}

// Get implements core.Medium.
func (m *Medium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(m.path(key))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set implements core.Medium.
func (m *Medium) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.own[key] = bytes.Clone(value)
	m.mu.Unlock()

	if err := writeFileAtomic(m.path(key), value, m.perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	m.record(ctx, "update", key)
	return nil
}

// Remove implements core.Medium. Removing an absent key is not an error.
func (m *Medium) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.own[key] = nil
	m.mu.Unlock()

	if err := os.Remove(m.path(key)); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	m.record(ctx, "remove", key)
	return nil
}

// Keys lists the stored keys in sorted order.
func (m *Medium) Keys() ([]string, error) {
	entries, err := os.ReadDir(m.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", m.Path, err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := KeyOf(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// History implements core.Versioned. It returns core.ErrNoHistory unless the
// medium was opened WithHistory.
func (m *Medium) History(ctx context.Context, n int) ([]core.Revision, error) {
	if m.history == nil {
		return nil, core.ErrNoHistory
	}
	commits, err := m.history.Log(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	revs := make([]core.Revision, 0, len(commits))
	for _, c := range commits {
		revs = append(revs, core.Revision{ID: c.Hash, Time: c.Time, Message: c.Subject})
	}
	return revs, nil
}

// record commits the current state of key when history is enabled.
func (m *Medium) record(ctx context.Context, action, key string) {
	if m.history == nil {
		return
	}
	if err := m.commit(ctx, action, key); err != nil {
		m.handleError(fmt.Errorf("failed to record %s of %s: %w", action, key, err))
	}
}

func (m *Medium) commit(ctx context.Context, action, key string) error {
	unlock, err := m.history.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	file := FileName(key)
	if action == "remove" {
		err = m.history.Rm(ctx, file)
	} else {
		err = m.history.Add(ctx, file)
	}
	if err != nil {
		return err
	}

	status, err := m.history.Status(ctx, file)
	if err != nil {
		return err
	}
	if status == "" {
		return nil
	}
	return m.history.Commit(ctx, fmt.Sprintf("%s %s", action, key))
}

// Close implements core.Closer. Running watchers stop with their contexts.
func (m *Medium) Close() error {
	return nil
}

// external reports whether the current state of key differs from what this
// process last wrote, i.e. whether somebody else touched the file.
func (m *Medium) external(key string, removed bool) bool {
	m.mu.RLock()
	last, ours := m.own[key]
	m.mu.RUnlock()
	if !ours {
		return true
	}
	if removed {
		return last != nil
	}
	data, err := os.ReadFile(m.path(key))
	if err != nil {
		// Gone again before we could look; the removal event will decide.
		return false
	}
	return last == nil || !bytes.Equal(data, last)
}

var (
	_ core.Medium    = (*Medium)(nil)
	_ core.Closer    = (*Medium)(nil)
	_ core.Watchable = (*Medium)(nil)
	_ core.Versioned = (*Medium)(nil)
)
