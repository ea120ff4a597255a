package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lorekeep/internal/app"
	"github.com/custodia-labs/lorekeep/internal/core/domain"
)

func newTestWatcher(t *testing.T) (*dirWatcher, *app.App, string) {
	t.Helper()
	settings := app.DefaultSettings()
	settings.Dir = t.TempDir()
	a, err := app.Open(context.Background(), settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	filter, err := newPathFilter(nil, []string{"tmp"})
	require.NoError(t, err)

	root := t.TempDir()
	return &dirWatcher{store: a.Store, filter: filter, roots: []string{root}}, a, root
}

func TestDirWatcher_ApplyIngestsAndForgets(t *testing.T) {
	ctx := context.Background()
	w, a, root := newTestWatcher(t)
	path := filepath.Join(root, "notes.md")
	id := docIDForPath(path)

	require.NoError(t, os.WriteFile(path, []byte("first draft"), 0o644))
	doc, forgotten, err := w.apply(ctx, path)
	require.NoError(t, err)
	assert.False(t, forgotten)
	require.NotNil(t, doc)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "markdown", doc.Kind)

	require.NoError(t, os.WriteFile(path, []byte("second draft, longer"), 0o644))
	doc, _, err = w.apply(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, len("second draft, longer"), doc.TotalBytes)

	require.NoError(t, os.Remove(path))
	doc, forgotten, err = w.apply(ctx, path)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.True(t, forgotten)

	_, err = a.Store.GetDoc(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirWatcher_ApplyIgnoresUnmatched(t *testing.T) {
	ctx := context.Background()
	w, a, root := newTestWatcher(t)

	for _, name := range []string{"main.go", "tmp"} {
		path := filepath.Join(root, name)
		require.NoError(t, os.WriteFile(path, []byte("ignored"), 0o644))
		doc, forgotten, err := w.apply(ctx, path)
		require.NoError(t, err)
		assert.Nil(t, doc, name)
		assert.False(t, forgotten, name)
	}

	outside := filepath.Join(t.TempDir(), "elsewhere.md")
	require.NoError(t, os.WriteFile(outside, []byte("outside"), 0o644))
	doc, _, err := w.apply(ctx, outside)
	require.NoError(t, err)
	assert.Nil(t, doc)

	docs, err := a.Store.ListDocs(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDirWatcher_RemovedUnknownFile(t *testing.T) {
	w, _, root := newTestWatcher(t)

	doc, forgotten, err := w.apply(context.Background(), filepath.Join(root, "never.md"))

	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.False(t, forgotten)
}

func TestDirWatcher_RecreateAfterRemoveFails(t *testing.T) {
	ctx := context.Background()
	w, _, root := newTestWatcher(t)
	path := filepath.Join(root, "a.txt")

	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))
	_, _, err := w.apply(ctx, path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))
	_, _, err = w.apply(ctx, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	_, _, err = w.apply(ctx, path)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDirWatcher_AddTreeIngestsExisting(t *testing.T) {
	ctx := context.Background()
	w, a, root := newTestWatcher(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "c.md"), []byte("c"), 0o644))

	require.NoError(t, w.addTree(ctx, root, true))

	docs, err := a.Store.ListDocs(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestDirWatcher_RunDebouncesEvents(t *testing.T) {
	w, a, root := newTestWatcher(t)
	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()
	w.fsw = fsw

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.addTree(ctx, root, false))

	reported := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.run(ctx, 20*time.Millisecond, func(path string, doc *domain.Document, _ bool) {
			if doc != nil {
				reported <- path
			}
		})
	}()

	path := filepath.Join(root, "live.md")
	require.NoError(t, os.WriteFile(path, []byte("live"), 0o644))

	select {
	case got := <-reported:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not ingest the new file")
	}

	_, err = a.Store.GetDoc(context.Background(), docIDForPath(path))
	assert.NoError(t, err)

	cancel()
	assert.NoError(t, <-done)
}

func TestDirWatcher_Relative(t *testing.T) {
	w := &dirWatcher{roots: []string{"/data/notes"}}

	rel, ok := w.relative("/data/notes/a/b.md")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("a", "b.md"), rel)

	_, ok = w.relative("/data/other/b.md")
	assert.False(t, ok)

	_, ok = w.relative("/data/notes-old/b.md")
	assert.False(t, ok)
}
