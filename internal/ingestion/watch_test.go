package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

func writeWatchFixture(t *testing.T) (dir, manifest string) {
	t.Helper()
	dir = t.TempDir()
	for _, name := range []string{"books.yaml", "spring_brief.txt", "spring_detailed.txt"} {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		if name == "books.yaml" {
			data = []byte(`- book_id: spring-in-action
  title: Spring in Action
  chapters_path: spring_brief.txt
  sections_path: spring_detailed.txt
`)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0600))
	}
	return dir, filepath.Join(dir, "books.yaml")
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir, manifest := writeWatchFixture(t)

	w, err := NewWatcher(manifest, 20*time.Millisecond)
	require.NoError(t, err)

	calls := make(chan []driven.BookSpec, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, specs []driven.BookSpec) error {
			calls <- specs
			return nil
		})
	}()

	select {
	case specs := <-calls:
		require.Len(t, specs, 1)
		assert.Equal(t, "spring-in-action", specs[0].ID)
	case <-time.After(5 * time.Second):
		t.Fatal("initial load not reported")
	}

	f, err := os.OpenFile(filepath.Join(dir, "spring_detailed.txt"), os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.WriteString("Wiring beans with annotations 12\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case specs := <-calls:
		assert.Len(t, specs, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("change not reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingManifest(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing.yaml"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounce)

	err = w.Run(context.Background(), func(context.Context, []driven.BookSpec) error { return nil })
	assert.Error(t, err)
}

func TestWatcher_Relevant(t *testing.T) {
	_, manifest := writeWatchFixture(t)
	w, err := NewWatcher(manifest, 0)
	require.NoError(t, err)
	defer w.fsw.Close()

	specs, err := LoadManifest(manifest)
	require.NoError(t, err)
	require.NoError(t, w.track(specs))

	assert.True(t, w.relevant(fsnotify.Event{Name: manifest, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: specs[0].ChaptersPath, Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: manifest, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(filepath.Dir(manifest), "notes.txt"), Op: fsnotify.Write}))
}
