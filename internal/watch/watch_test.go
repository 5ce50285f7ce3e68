package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *recorder) rebuild(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
	return r.err
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func startWatcher(t *testing.T, dir string, rec *recorder) {
	t.Helper()
	w, err := New(Config{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		Match:    func(p string) bool { return strings.HasSuffix(p, ".txt") },
		Rebuild:  rec.rebuild,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
}

func TestNew(t *testing.T) {
	t.Run("requires rebuild", func(t *testing.T) {
		_, err := New(Config{Dir: t.TempDir()})
		assert.Error(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := New(Config{
			Dir:     filepath.Join(t.TempDir(), "nope"),
			Rebuild: func(context.Context, []string) error { return nil },
		})
		assert.Error(t, err)
	})
}

func TestWatcher_Run(t *testing.T) {
	t.Run("debounces a burst into one rebuild", func(t *testing.T) {
		dir := t.TempDir()
		rec := &recorder{}
		startWatcher(t, dir, rec)

		for _, name := range []string{"a.txt", "b.txt", "a.txt"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
		}

		require.Eventually(t, func() bool { return len(rec.snapshot()) >= 1 }, 5*time.Second, 10*time.Millisecond)
		time.Sleep(150 * time.Millisecond)

		calls := rec.snapshot()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, calls[0])
	})

	t.Run("ignores unmatched files", func(t *testing.T) {
		dir := t.TempDir()
		rec := &recorder{}
		startWatcher(t, dir, rec)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".draft.txt"), []byte("x"), 0644))
		time.Sleep(200 * time.Millisecond)

		assert.Empty(t, rec.snapshot())
	})

	t.Run("watches new subdirectories", func(t *testing.T) {
		dir := t.TempDir()
		rec := &recorder{}
		startWatcher(t, dir, rec)

		sub := filepath.Join(dir, "more")
		require.NoError(t, os.Mkdir(sub, 0755))
		time.Sleep(100 * time.Millisecond)
		require.NoError(t, os.WriteFile(filepath.Join(sub, "c.txt"), []byte("x"), 0644))

		require.Eventually(t, func() bool {
			for _, call := range rec.snapshot() {
				for _, p := range call {
					if p == filepath.Join(sub, "c.txt") {
						return true
					}
				}
			}
			return false
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("keeps going after a failed rebuild", func(t *testing.T) {
		dir := t.TempDir()
		rec := &recorder{err: errors.New("broken corpus")}
		startWatcher(t, dir, rec)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644))
		require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 5*time.Second, 10*time.Millisecond)

		require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))
		require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, 5*time.Second, 10*time.Millisecond)
	})
}
