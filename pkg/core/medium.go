package core

import (
	"context"
	"time"
)

// Medium defines the contract of a persistent key-value medium.
// Adhering to this interface keeps the registries independent of where
// the bytes end up (memory, files, SQLite, Redis, S3).
type Medium interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// ReadOnly wraps m so that reads pass through and every write fails with
// ErrReadOnly.
func ReadOnly(m Medium) Medium {
	return readOnly{m}
}

type readOnly struct {
	Medium
}

func (readOnly) Set(context.Context, string, []byte) error { return ErrReadOnly }
func (readOnly) Remove(context.Context, string) error      { return ErrReadOnly }

// Closer is implemented by media holding connections or handles.
type Closer interface {
	Close() error
}

// Watchable is implemented by media that can report changes made
// outside the current process.
type Watchable interface {
	// Watch emits an event for every key matching pattern (doublestar syntax)
	// that changes. The channel closes when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Revision is one recorded change of a versioned medium.
type Revision struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Versioned is implemented by media that record every write.
type Versioned interface {
	// History returns up to n revisions, newest first.
	History(ctx context.Context, n int) ([]Revision, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
