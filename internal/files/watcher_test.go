package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentimentpulse/internal/shared/testutil"
)

func writeFile(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestStat(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		info, err := Stat(filepath.Join(dir, "missing.xlsx"))
		require.NoError(t, err)
		assert.False(t, info.Exists)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Stat(dir)
		assert.ErrorContains(t, err, "is a directory")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "data.xlsx")
		mod := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
		writeFile(t, path, "abc", mod)

		info, err := Stat(path)
		require.NoError(t, err)
		assert.True(t, info.Exists)
		assert.Equal(t, int64(3), info.Size)
		assert.True(t, info.ModTime.Equal(mod))
	})
}

func TestFileInfoChanged(t *testing.T) {
	base := FileInfo{Path: "a", Exists: true, Size: 10, ModTime: time.Unix(100, 0)}

	tests := []struct {
		name string
		next FileInfo
		want bool
	}{
		{"same", base, false},
		{"size", FileInfo{Path: "a", Exists: true, Size: 11, ModTime: base.ModTime}, true},
		{"mod time", FileInfo{Path: "a", Exists: true, Size: 10, ModTime: time.Unix(101, 0)}, true},
		{"removed", FileInfo{Path: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.next.Changed(base))
		})
	}
}

func TestWatcherCheck(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "data.xlsx")
	mod := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, path, "v1", mod)

	var reloads atomic.Int32
	w := NewWatcher(path, time.Minute, func(ctx context.Context) error {
		reloads.Add(1)
		return nil
	}, logger)
	ctx := context.Background()

	changed, err := w.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "first check only records the baseline")

	changed, err = w.Check(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	writeFile(t, path, "v2 longer", mod.Add(time.Minute))
	changed, err = w.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, os.Remove(path))
	changed, err = w.Check(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, int32(2), reloads.Load())
}

func TestWatcherCheckReloadError(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "data.xlsx")

	reloadErr := errors.New("parse failed")
	w := NewWatcher(path, time.Minute, func(ctx context.Context) error { return reloadErr }, logger)

	_, err := w.Check(context.Background())
	require.NoError(t, err)

	writeFile(t, path, "new", time.Now())
	changed, err := w.Check(context.Background())
	assert.True(t, changed)
	assert.ErrorIs(t, err, reloadErr)
}

func TestWatcherRun(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "data.xlsx")
	writeFile(t, path, "v1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	reloaded := make(chan struct{}, 1)
	w := NewWatcher(path, 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case reloaded <- struct{}{}:
		default:
		}
		return nil
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.last != nil
	}, time.Second, 5*time.Millisecond)

	writeFile(t, path, "v2", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not reload after the file changed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherRunDisabled(t *testing.T) {
	w := NewWatcher("unused", 0, func(ctx context.Context) error {
		t.Fatal("reload must not be called")
		return nil
	}, nil)

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run with a zero interval should return immediately")
	}
}
