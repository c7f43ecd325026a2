package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when New is given a non-positive window.
const DefaultDebounce = 300 * time.Millisecond

// ErrNoFiles is returned by New when there is nothing to watch.
var ErrNoFiles = errors.New("no files to watch")

// ChangeFunc is called with the sorted absolute paths of the manifests that
// changed during one debounce window.
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher observes a fixed set of files.
type Watcher struct {
	fs        *fsnotify.Watcher
	files     map[string]struct{}
	debouncer *Debouncer
	logger    *slog.Logger

	closeOnce sync.Once
}

// New starts watching files. The parent directory of each file is
// registered with fsnotify once.
func New(files []string, window time.Duration, logger *slog.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if window <= 0 {
		window = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		fs:        fsw,
		files:     make(map[string]struct{}, len(files)),
		debouncer: NewDebouncer(window),
		logger:    logger,
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, seen := dirs[dir]; seen {
			continue
		}
		dirs[dir] = struct{}{}
		if err := fsw.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run delivers debounced batches to onChange until ctx is cancelled or the
// underlying watcher fails. onChange runs on the Run goroutine, so batches
// never overlap. A cancelled context is not an error.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer func() { _ = w.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch_error", slog.String("error", err.Error()))

		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return nil
			}
			w.logger.Debug("manifests_changed", slog.Any("paths", batch))
			onChange(ctx, batch)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	if _, ok := w.files[abs]; !ok {
		return
	}
	// Chmod alone does not change content.
	if ev.Op == fsnotify.Chmod {
		return
	}
	w.debouncer.Add(abs)
}

// Close releases the fsnotify watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.debouncer.Stop()
		err = w.fs.Close()
	})
	return err
}
