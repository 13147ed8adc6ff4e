package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func next(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return ""
	}
}

func TestIsSourceDocument(t *testing.T) {
	assert.True(t, IsSourceDocument("81351387 SAP DATA.pdf"))
	assert.True(t, IsSourceDocument("PUMP BOM.xlsx"))
	assert.True(t, IsSourceDocument("A CS.pdf"))
	assert.False(t, IsSourceDocument("notes.txt"))
	assert.False(t, IsSourceDocument(".~lock BOM.xlsx"))
}

func TestWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "F1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "F2"), 0o755))
	writeFile(t, filepath.Join(root, "F1", "F1 CS.pdf"))
	writeFile(t, filepath.Join(root, "F2", "readme.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Root: root, InitialScan: true})
	require.NoError(t, err)

	assert.Equal(t, "F1", next(t, events))
	select {
	case id := <-events:
		t.Fatalf("unexpected event for %q", id)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherDebouncesPerFolder(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "F1")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Root: root, Debounce: 150 * time.Millisecond})
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "F1 BOM.xlsx"))
	writeFile(t, filepath.Join(dir, "F1 SAP DATA.pdf"))
	writeFile(t, filepath.Join(dir, "ignored.txt"))

	assert.Equal(t, "F1", next(t, events))
	select {
	case id := <-events:
		t.Fatalf("burst produced a second event for %q", id)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherClosesOnCancel(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	events, errs, err := StartWatcher(ctx, WatchConfig{Root: root})
	require.NoError(t, err)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	_, ok := <-errs
	assert.False(t, ok)
}

func TestWatcherRequiresRoot(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
