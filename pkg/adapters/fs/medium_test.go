package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/storage"
)

func TestMedium_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m, err := fs.New(t.TempDir())
	require.NoError(t, err)

	_, err = m.Get(ctx, "notesApp:notes")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, m.Set(ctx, "notesApp:notes", []byte(`[]`)))
	got, err := m.Get(ctx, "notesApp:notes")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	_, err = os.Stat(filepath.Join(m.Path, "notesApp%3Anotes.json"))
	assert.NoError(t, err, "value must live in the escaped file")

	require.NoError(t, m.Remove(ctx, "notesApp:notes"))
	_, err = m.Get(ctx, "notesApp:notes")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, m.Remove(ctx, "notesApp:notes"), "removing an absent key is not an error")
}

func TestMedium_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	m, err := fs.New(dir)
	require.NoError(t, err)

	info, err := os.Stat(m.Path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = fs.New("")
	assert.Error(t, err)
}

func TestMedium_Keys(t *testing.T) {
	ctx := context.Background()
	m, err := fs.New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "ns:tags", []byte(`[]`)))
	require.NoError(t, m.Set(ctx, "ns:notebooks", []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(m.Path, "README.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(m.Path, fs.TempFilePrefix+"1"), []byte("ignored"), 0o644))

	keys, err := m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"ns:notebooks", "ns:tags"}, keys)
}

func TestKeyOf(t *testing.T) {
	for _, key := range []string{"notesApp:notes", "notesApp:dev:__version", "a b/c"} {
		got, ok := fs.KeyOf(fs.FileName(key))
		require.True(t, ok, key)
		assert.Equal(t, key, got)
	}

	_, ok := fs.KeyOf("notes.txt")
	assert.False(t, ok)
	_, ok = fs.KeyOf(fs.TempFilePrefix + "x.json")
	assert.False(t, ok)
	_, ok = fs.KeyOf("%zz.json")
	assert.False(t, ok)
}

func TestMedium_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m, err := fs.New(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, m.Set(ctx, "k", []byte("1")), context.Canceled)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMedium_BacksStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	m, err := fs.New(dir)
	require.NoError(t, err)
	s := storage.New(ctx, m, storage.WithEnv("test"))
	s.Set(ctx, "tags", []string{"a", "b"})

	// A second process opening the same directory sees the data.
	reopened, err := fs.New(dir)
	require.NoError(t, err)
	s2 := storage.New(ctx, reopened, storage.WithEnv("test"))
	assert.Equal(t, []string{"a", "b"}, storage.Get(ctx, s2, "tags", []string(nil)))
	assert.Equal(t, storage.SchemaVersion, s2.Version(ctx))
}

func TestMedium_State(t *testing.T) {
	ctx := context.Background()
	m, err := fs.New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, m.Set(ctx, "k", []byte("1")))

	state := m.State().(fs.MediumState)
	assert.Equal(t, m.Path, state.Path)
	assert.Equal(t, 1, state.Tracked)
	assert.Equal(t, 0, state.Watchers)
	assert.Equal(t, "fs", m.ComponentType())
}
