package storage_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func quietLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "notesApp", storage.Namespace("", ""))
	assert.Equal(t, "notesApp:dev", storage.Namespace("", "dev"))
	assert.Equal(t, "other:test", storage.Namespace("other", "test"))
}

func TestStore_WritesVersionOnce(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	s := storage.New(ctx, m, storage.WithEnv("test"))
	assert.Equal(t, "notesApp:test", s.Namespace())
	assert.Equal(t, []string{"notesApp:test:__version"}, m.Keys())
	assert.Equal(t, storage.SchemaVersion, s.Version(ctx))

	// A later marker is left alone.
	require.NoError(t, m.Set(ctx, "notesApp:test:__version", []byte("7")))
	s = storage.New(ctx, m, storage.WithEnv("test"))
	assert.Equal(t, 7, s.Version(ctx))
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	logger, _ := quietLogger()
	s := storage.New(ctx, memory.New(), storage.WithLogger(logger))

	type record struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	in := []record{{Name: "a", Tags: []string{"x"}}, {Name: "b", Tags: []string{}}}
	s.Set(ctx, "records", in)

	out, ok := storage.Lookup[[]record](ctx, s, "records")
	require.True(t, ok)
	assert.Equal(t, in, out)

	s.Remove(ctx, "records")
	_, ok = storage.Lookup[[]record](ctx, s, "records")
	assert.False(t, ok)
}

func TestStore_FallbackWhenUnavailable(t *testing.T) {
	ctx := context.Background()
	s := storage.New(ctx, nil)

	assert.False(t, s.Available())
	s.Set(ctx, "k", "v")
	s.Remove(ctx, "k")
	assert.Equal(t, "fallback", storage.Get(ctx, s, "k", "fallback"))
	assert.Equal(t, 0, s.Version(ctx))
}

func TestStore_FallbackOnCorruptValue(t *testing.T) {
	ctx := context.Background()
	logger, logs := quietLogger()
	m := memory.New()
	s := storage.New(ctx, m, storage.WithLogger(logger))

	require.NoError(t, m.Set(ctx, s.Key("tags"), []byte("{not json")))
	got := storage.Get(ctx, s, "tags", []string{"default"})

	assert.Equal(t, []string{"default"}, got)
	assert.Contains(t, logs.String(), "decode failed")
}

func TestStore_SwallowsMediumErrors(t *testing.T) {
	ctx := context.Background()
	logger, logs := quietLogger()
	m := memory.New()
	s := storage.New(ctx, m, storage.WithLogger(logger))

	m.Fail(errors.New("disk on fire"))
	s.Set(ctx, "k", 1)
	s.Remove(ctx, "k")
	assert.Equal(t, 42, storage.Get(ctx, s, "k", 42))
	assert.Contains(t, logs.String(), "disk on fire")

	m.Fail(nil)
	_, err := m.Get(ctx, s.Key("k"))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStore_EncodeFailureSkipsWrite(t *testing.T) {
	ctx := context.Background()
	logger, logs := quietLogger()
	m := memory.New()
	s := storage.New(ctx, m, storage.WithLogger(logger))

	s.Set(ctx, "bad", make(chan int))
	_, err := m.Get(ctx, s.Key("bad"))
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, logs.String(), "encode failed")
}

func TestStore_RoundTripProperty(t *testing.T) {
	ctx := context.Background()
	logger, _ := quietLogger()

	rapid.Check(t, func(t *rapid.T) {
		s := storage.New(ctx, memory.New(), storage.WithLogger(logger))
		key := rapid.StringMatching(`[a-z_]{1,16}`).Draw(t, "key")
		value := rapid.MapOf(
			rapid.StringMatching(`[a-zA-Z0-9]{1,8}`),
			rapid.SliceOf(rapid.String()),
		).Draw(t, "value")

		s.Set(ctx, key, value)
		got, ok := storage.Lookup[map[string][]string](ctx, s, key)
		if !ok {
			t.Fatalf("value under %q not readable", key)
		}
		if len(got) != len(value) {
			t.Fatalf("got %d entries, want %d", len(got), len(value))
		}
		for k, v := range value {
			if len(got[k]) != len(v) {
				t.Fatalf("entry %q: got %v, want %v", k, got[k], v)
			}
			for i := range v {
				if got[k][i] != v[i] {
					t.Fatalf("entry %q[%d]: got %q, want %q", k, i, got[k][i], v[i])
				}
			}
		}
	})
}
