package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNote_JSON_UnfiledIsNull(t *testing.T) {
	n := core.Note{ID: "nt_1", Title: "t", CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z"}

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "notebookId")
	assert.Nil(t, raw["notebookId"])
	assert.Equal(t, []any{}, raw["tags"])

	var back core.Note
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "", back.NotebookID)
}

func TestNote_JSON_Filed(t *testing.T) {
	in := `{"id":"nt_2","title":"x","content":"y","notebookId":"nb_1","tags":["a"],"createdAt":"c","updatedAt":"u"}`

	var n core.Note
	require.NoError(t, json.Unmarshal([]byte(in), &n))
	assert.Equal(t, "nb_1", n.NotebookID)
	assert.Equal(t, []string{"a"}, n.Tags)

	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestPatch_Apply(t *testing.T) {
	base := core.Note{ID: "nt_1", Title: "old", Content: "body", NotebookID: "nb_1", Tags: []string{"a"}}

	t.Run("Leaves Unset Fields", func(t *testing.T) {
		got := core.Patch{}.SetTitle("new").Apply(base)
		assert.Equal(t, "new", got.Title)
		assert.Equal(t, "body", got.Content)
		assert.Equal(t, "nb_1", got.NotebookID)
		assert.Equal(t, []string{"a"}, got.Tags)
	})

	t.Run("Unfiles With Empty Notebook", func(t *testing.T) {
		got := core.Patch{}.SetNotebook("").Apply(base)
		assert.Equal(t, "", got.NotebookID)
	})

	t.Run("Empty Tags Replace", func(t *testing.T) {
		got := core.Patch{}.SetTags().Apply(base)
		assert.NotNil(t, got.Tags)
		assert.Empty(t, got.Tags)
	})

	t.Run("Deduplicates Tags", func(t *testing.T) {
		got := core.Patch{}.SetTags("b", "a", "b", " ").Apply(base)
		assert.Equal(t, []string{"b", "a"}, got.Tags)
	})

	assert.True(t, core.Patch{}.Empty())
	assert.False(t, core.Patch{}.SetContent("").Empty())
}

func TestTimestamp_LexicographicOrder(t *testing.T) {
	a := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	b := a.Add(100 * time.Millisecond)
	c := a.Add(time.Second)

	sa, sb, sc := core.Timestamp(a), core.Timestamp(b), core.Timestamp(c)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", sa)
	assert.Less(t, sa, sb)
	assert.Less(t, sb, sc)
}

func TestNewID_Prefix(t *testing.T) {
	id := core.NewID(core.NotePrefix)
	assert.True(t, len(id) > len(core.NotePrefix))
	assert.Equal(t, core.NotePrefix, id[:len(core.NotePrefix)])
	assert.NotEqual(t, id, core.NewID(core.NotePrefix))
}
