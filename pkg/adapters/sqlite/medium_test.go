package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/aretw0/jotter/pkg/adapters/sqlite"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/storage"
)

func openTemp(t *testing.T) *sqlite.Medium {
	t.Helper()
	m, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "jotter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMedium_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := openTemp(t)

	_, err := m.Get(ctx, "ns:notes")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, m.Set(ctx, "ns:notes", []byte(`[1]`)))
	require.NoError(t, m.Set(ctx, "ns:notes", []byte(`[2]`)), "set must upsert")
	got, err := m.Get(ctx, "ns:notes")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	require.NoError(t, m.Remove(ctx, "ns:notes"))
	_, err = m.Get(ctx, "ns:notes")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, m.Remove(ctx, "ns:notes"))
}

func TestMedium_Keys(t *testing.T) {
	ctx := context.Background()
	m := openTemp(t)
	require.NoError(t, m.Set(ctx, "b", []byte("1")))
	require.NoError(t, m.Set(ctx, "a", []byte("1")))

	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestMedium_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jotter.db")

	m, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	storage.New(ctx, m).Set(ctx, "tags", []string{"x"})
	require.NoError(t, m.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	s := storage.New(ctx, reopened)
	assert.Equal(t, []string{"x"}, storage.Get(ctx, s, "tags", []string(nil)))
}

func TestMedium_InMemory(t *testing.T) {
	ctx := context.Background()
	m, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, "sqlite", m.ComponentType())
}

func TestMedium_EmptyPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "")
	assert.Error(t, err)
}

func TestMedium_BytesRoundTrip(t *testing.T) {
	m := openTemp(t)
	ctx := context.Background()

	rapid.Check(t, func(t *rapid.T) {
		key := rapid.StringMatching(`[a-zA-Z0-9:_]{1,20}`).Draw(t, "key")
		value := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "value")
		if err := m.Set(ctx, key, value); err != nil {
			t.Fatal(err)
		}
		got, err := m.Get(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(value) {
			t.Fatalf("got %x, want %x", got, value)
		}
	})
}
