package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "value.json")

		require.NoError(t, writeFileAtomic(filename, []byte(`"hello"`), 0o644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, `"hello"`, string(got))
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "value.json")
		require.NoError(t, os.WriteFile(filename, []byte("initial"), 0o644))

		require.NoError(t, writeFileAtomic(filename, []byte("overwritten"), 0o644))

		got, err := os.ReadFile(filename)
		require.NoError(t, err)
		assert.Equal(t, "overwritten", string(got))
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, writeFileAtomic(filepath.Join(dir, "a.json"), []byte("1"), 0o644))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.False(t, isTempFile(entries[0].Name()))
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "value.json")
		assert.Error(t, writeFileAtomic(filename, []byte("fail"), 0o644))
	})
}

func TestIsTempFile(t *testing.T) {
	assert.True(t, isTempFile(filepath.Join("dir", TempFilePrefix+"123")))
	assert.False(t, isTempFile(filepath.Join("dir", "notesApp%3Anotes.json")))
}
