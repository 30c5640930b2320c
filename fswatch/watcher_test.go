package fswatch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/debounce"
	"github.com/dmitrymomot/debounce/fswatch"
)

// collector records handler invocations.
type collector struct {
	mu      sync.Mutex
	batches [][]string
}

func (c *collector) handler(_ context.Context, paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]string, len(paths))
	copy(cp, paths)
	c.batches = append(c.batches, cp)
	return nil
}

func (c *collector) seen() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	for _, b := range c.batches {
		for _, p := range b {
			seen[p] = true
		}
	}
	return seen
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func startWatcher(t *testing.T, w *fswatch.Watcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the recursive watch a moment to come up before events fire.
	time.Sleep(100 * time.Millisecond)
	return cancel
}

func TestNewValidatesHandler(t *testing.T) {
	t.Parallel()

	_, err := fswatch.New(t.TempDir(), nil)
	require.ErrorIs(t, err, debounce.ErrNilOperation)
}

func TestBurstCollapsesToOneBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := &collector{}

	w, err := fswatch.New(dir, c.handler, fswatch.WithDelay(250*time.Millisecond))
	require.NoError(t, err)
	startWatcher(t, w)

	files := []string{"a.txt", "b.txt", "c.txt"}
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	require.Eventually(t, func() bool {
		seen := c.seen()
		for _, name := range files {
			if !seen[filepath.Join(dir, name)] {
				return false
			}
		}
		return true
	}, 3*time.Second, 20*time.Millisecond, "all burst paths must reach the handler")

	assert.Equal(t, 1, c.count(), "a quick burst should produce one handler call")
	assert.False(t, w.Pending())
}

func TestNewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := &collector{}

	w, err := fswatch.New(dir, c.handler, fswatch.WithDelay(150*time.Millisecond))
	require.NoError(t, err)
	startWatcher(t, w)

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher time to pick up the new directory.
	time.Sleep(150 * time.Millisecond)

	inner := filepath.Join(sub, "inner.txt")
	require.NoError(t, os.WriteFile(inner, []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return c.seen()[inner]
	}, 3*time.Second, 20*time.Millisecond, "files in new subdirectories must be observed")
}

func TestFlushDeliversPendingBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := &collector{}

	// Long delay so only Flush can deliver in time.
	w, err := fswatch.New(dir, c.handler, fswatch.WithDelay(30*time.Second))
	require.NoError(t, err)
	startWatcher(t, w)

	target := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return w.Pending()
	}, 2*time.Second, 10*time.Millisecond)

	w.Flush()

	require.Eventually(t, func() bool {
		return c.seen()[target]
	}, 2*time.Second, 10*time.Millisecond)
}
