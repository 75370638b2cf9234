package platform_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/s3"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notebooks"
	"github.com/aretw0/jotter/pkg/tags"
)

func open(t *testing.T, opts ...platform.Option) *platform.Workspace {
	t.Helper()
	w, err := platform.Open(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestOpen_DefaultsToMemory(t *testing.T) {
	w := open(t)

	assert.Equal(t, platform.AdapterMemory, w.Adapter())
	assert.True(t, w.Store.Available())
	assert.Subset(t, w.Tags.List(), tags.Defaults)
	assert.Len(t, w.Notebooks.List(), len(notebooks.DefaultNames))
	assert.Len(t, w.Notes.List(), 2)
	assert.True(t, w.Tags.Has("work"), "demo note tags are registered")
}

func TestOpen_UnknownAdapter(t *testing.T) {
	_, err := platform.Open(context.Background(), platform.WithAdapter("floppy"))
	assert.ErrorIs(t, err, platform.ErrUnknownAdapter)
}

func TestOpen_NoneAdapterFallsBack(t *testing.T) {
	ctx := context.Background()
	w := open(t, platform.WithAdapter(platform.AdapterNone))

	assert.False(t, w.Store.Available())
	n := w.Notes.Create(ctx, "")
	_, ok := w.Notes.Get(n.ID)
	assert.True(t, ok, "in-memory state still works without a medium")
	assert.ErrorIs(t, w.Follow(ctx), platform.ErrNotWatchable)
}

func TestOpen_EnvIsolation(t *testing.T) {
	ctx := context.Background()
	medium := memory.New()

	dev := open(t, platform.WithMedium(medium), platform.WithEnv("dev"))
	prod := open(t, platform.WithMedium(medium))

	dev.Notebooks.Create(ctx, "Scratch")
	assert.Len(t, dev.Notebooks.List(), 3)
	assert.Len(t, prod.Notebooks.List(), 2)
	assert.Contains(t, medium.Keys(), "notesApp:dev:notebooks")
	assert.Contains(t, medium.Keys(), "notesApp:notebooks")
	assert.Equal(t, "custom", dev.Adapter())
}

func TestWorkspace_Reload(t *testing.T) {
	ctx := context.Background()
	medium := memory.New()
	a := open(t, platform.WithMedium(medium))
	b := open(t, platform.WithMedium(medium))

	n := a.Notes.Create(ctx, "")
	a.Notes.Update(ctx, n.ID, core.Patch{}.SetTags("shared"))
	_, ok := b.Notes.Get(n.ID)
	require.False(t, ok)

	b.Reload(ctx)
	got, ok := b.Notes.Get(n.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"shared"}, got.Tags)
	assert.True(t, b.Tags.Has("shared"))
}

func TestWorkspace_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := open(t)

	events, err := w.Watch(ctx, "notes/*")
	require.NoError(t, err)

	w.Tags.Ensure(ctx, "ignored")
	n := w.Notes.Create(ctx, "")

	select {
	case e := <-events:
		assert.Equal(t, core.EventCreate, e.Type)
		assert.Equal(t, core.NoteEventID(n.ID), e.ID)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

func TestWorkspace_FSPersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := platform.Open(ctx, platform.WithAdapter(platform.AdapterFS), platform.WithPath(dir))
	require.NoError(t, err)
	nb := first.Notebooks.Create(ctx, "Travel")
	require.NoError(t, first.Close())

	second := open(t, platform.WithAdapter(platform.AdapterFS), platform.WithPath(dir))
	got, ok := second.Notebooks.Get(nb.ID)
	require.True(t, ok)
	assert.Equal(t, "Travel", got.Name)
	assert.Equal(t, 1, second.Store.Version(ctx))
}

func TestWorkspace_FollowExternalEdits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	writer := open(t, platform.WithAdapter(platform.AdapterFS), platform.WithPath(dir))
	reader := open(t,
		platform.WithAdapter(platform.AdapterFS),
		platform.WithPath(dir),
		platform.WithWatchDebounce(20*time.Millisecond),
	)
	events, err := reader.Watch(ctx, "**")
	require.NoError(t, err)
	require.NoError(t, reader.Follow(ctx))

	nb := writer.Notebooks.Create(ctx, "Remote")

	require.Eventually(t, func() bool {
		_, ok := reader.Notebooks.Get(nb.ID)
		return ok
	}, 3*time.Second, 20*time.Millisecond)

	select {
	case e := <-events:
		assert.Equal(t, reader.Store.Key(notebooks.StorageKey), e.ID)
	case <-time.After(time.Second):
		t.Fatal("external change was not published")
	}
	assert.True(t, reader.State().(platform.WorkspaceState).Following)
}

func TestWorkspace_FollowRequiresWatchableMedium(t *testing.T) {
	w := open(t)
	assert.ErrorIs(t, w.Follow(context.Background()), platform.ErrNotWatchable)
}

func TestWorkspace_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "jotter.db")

	w := open(t, platform.WithAdapter(platform.AdapterSQLite), platform.WithPath(path))
	w.Tags.Ensure(ctx, "sql")

	again := open(t, platform.WithAdapter(platform.AdapterSQLite), platform.WithPath(path))
	assert.True(t, again.Tags.Has("sql"))
}

func TestWorkspace_S3(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(gofakes3.New(s3mem.New()).Server())
	t.Cleanup(ts.Close)

	cfg := s3.Config{
		Endpoint:        ts.URL,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Bucket:          "jotter",
		UsePathStyle:    true,
	}
	w := open(t, platform.WithAdapter(platform.AdapterS3), platform.WithS3(cfg))
	n := w.Notes.Create(ctx, "")

	again := open(t, platform.WithAdapter(platform.AdapterS3), platform.WithS3(cfg))
	assert.True(t, slices.ContainsFunc(again.Notes.List(), func(o core.Note) bool { return o.ID == n.ID }))
}

func TestWorkspace_State(t *testing.T) {
	w := open(t)
	state := w.State().(platform.WorkspaceState)

	assert.Equal(t, platform.AdapterMemory, state.Adapter)
	assert.Equal(t, len(tags.Defaults)+1, state.Tags, "defaults plus the demo tag work")
	assert.Equal(t, 2, state.Notebooks)
	assert.NotNil(t, state.Medium)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.True(t, w.State().(platform.WorkspaceState).Closed)
}

func TestWorkspace_ReadOnly(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	seeded := open(t, platform.WithMedium(m))
	seeded.Notebooks.Create(ctx, "Travel")
	require.NoError(t, seeded.Close())

	w := open(t, platform.WithMedium(m), platform.WithReadOnly(true))
	require.Len(t, w.Notebooks.List(), 3, "reads pass through")

	n := w.Notes.Create(ctx, "")
	_, ok := w.Notes.Get(n.ID)
	assert.True(t, ok, "in-memory state still changes")

	fresh := open(t, platform.WithMedium(m))
	_, ok = fresh.Notes.Get(n.ID)
	assert.False(t, ok, "writes never reach the medium")
	assert.True(t, w.State().(platform.WorkspaceState).ReadOnly)
}

func TestWorkspace_HistoryRequiresVersionedMedium(t *testing.T) {
	w := open(t)
	_, err := w.History(context.Background(), 10)
	assert.ErrorIs(t, err, core.ErrNoHistory)
}
