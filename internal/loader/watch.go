package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"media-resolver/internal/logging"
)

// DefaultDebounce is how long the watcher waits for further events before
// reloading.
const DefaultDebounce = 250 * time.Millisecond

// Watch reloads l whenever its manifest file is written, created, renamed
// or removed, until ctx is canceled. The manifest's directory is watched so
// that editors which replace the file are noticed. onReload, if not nil, is
// called after every reload attempt.
func (l *Loader) Watch(ctx context.Context, debounce time.Duration, onReload func(Report, error)) error {
	if l.path == "" {
		return fmt.Errorf("no plugin manifest to watch")
	}
	absPath, err := filepath.Abs(l.path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Warn("Failed to close manifest watcher: %v", err)
		}
	}()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}
	logging.Info("Watching plugin manifest %s", absPath)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logging.Debug("Manifest event: %s %s", event.Op, event.Name)
			timer.Reset(debounce)

		case <-timer.C:
			report, err := l.Reload()
			if err != nil {
				logging.Error("Plugin manifest reload: %v", err)
			}
			if onReload != nil {
				onReload(report, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Manifest watcher error: %v", err)
		}
	}
}
