// Package watch re-runs a callback whenever one of a fixed set of files is
// written, created, renamed or removed.
//
// Editors often replace a file instead of writing it in place, so the
// parent directories are watched and events are filtered by path.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/pioconf/internal/ctxlog"
)

// DefaultDebounce collapses bursts of events from a single save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher triggers OnChange after any watched file changes.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	debounce time.Duration
	onChange func(ctx context.Context) error
}

// New creates a Watcher for files. Files need not exist yet, but their
// parent directories must.
func New(files []string, debounce time.Duration, onChange func(ctx context.Context) error) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		files:    make(map[string]struct{}, len(files)),
		debounce: debounce,
		onChange: onChange,
	}
	seenDirs := make(map[string]struct{})
	for _, f := range files {
		f = filepath.Clean(f)
		w.files[f] = struct{}{}
		dir := filepath.Dir(f)
		if _, ok := seenDirs[dir]; !ok {
			seenDirs[dir] = struct{}{}
			w.dirs = append(w.dirs, dir)
		}
	}
	return w
}

// Run blocks until ctx is canceled. Callback errors are logged and the
// watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	logger.Info("Watching custom configuration files.", "dirs", w.dirs)

	var (
		mu    sync.Mutex
		runMu sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watcher stopped.")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("Watched file changed.", "path", event.Name, "op", event.Op.String())

			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				runMu.Lock()
				defer runMu.Unlock()
				if ctx.Err() != nil {
					return
				}
				if err := w.onChange(ctx); err != nil {
					logger.Error("Re-install after change failed.", "error", err)
				}
			})
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error.", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if _, ok := w.files[filepath.Clean(event.Name)]; !ok {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
