package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// FileInfo is the part of a file's state the watcher compares
type FileInfo struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// Stat reads the current state of path. A missing file is not an error.
func Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileInfo{Path: path}, nil
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory, not a file", path)
	}
	return FileInfo{
		Path:    path,
		Exists:  true,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Changed reports whether two observations of the same file differ
func (f FileInfo) Changed(prev FileInfo) bool {
	return f.Exists != prev.Exists || f.Size != prev.Size || !f.ModTime.Equal(prev.ModTime)
}

// ReloadFunc is called after the watched file changed
type ReloadFunc func(ctx context.Context) error

// Watcher polls a single file for changes
type Watcher struct {
	path     string
	interval time.Duration
	reload   ReloadFunc
	logger   *slog.Logger

	mu   sync.Mutex
	last *FileInfo
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, interval time.Duration, reload ReloadFunc, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		interval: interval,
		reload:   reload,
		logger:   logger.With(slog.String("component", "file_watcher")),
	}
}

// Check compares the file with the previous observation and reloads on a
// change. The first call only records the baseline.
func (w *Watcher) Check(ctx context.Context) (bool, error) {
	current, err := Stat(w.path)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	prev := w.last
	w.last = &current
	w.mu.Unlock()

	if prev == nil || !current.Changed(*prev) {
		return false, nil
	}

	w.logger.InfoContext(ctx, "Data file changed, reloading",
		slog.String("path", w.path),
		slog.Bool("exists", current.Exists),
		slog.Int64("size", current.Size),
		slog.Time("mod_time", current.ModTime))

	if err := w.reload(ctx); err != nil {
		return true, fmt.Errorf("reload after change failed: %w", err)
	}
	return true, nil
}

// Run polls until ctx is cancelled. A non-positive interval disables it.
func (w *Watcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}

	if _, err := w.Check(ctx); err != nil {
		w.logger.WarnContext(ctx, "Initial file check failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Check(ctx); err != nil {
				w.logger.WarnContext(ctx, "File check failed",
					slog.String("path", w.path),
					slog.String("error", err.Error()))
			}
		}
	}
}
