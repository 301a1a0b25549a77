package article

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/verte-zerg/tuiread/internal/model"
)

const (
	watchDebounce = 100 * time.Millisecond
	watchTick     = 25 * time.Millisecond
)

// ChangeFunc receives a reloaded article or the error that prevented it.
type ChangeFunc func(art model.Article, err error)

// Watch reloads the article at path after it changes on disk and reports
// each reload to onChange until ctx is done. The returned channel closes
// once the watcher has shut down.
func Watch(ctx context.Context, path string, onChange ChangeFunc) (<-chan struct{}, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often save by renaming over the file, which drops a file watch.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	done := make(chan struct{})
	go watchLoop(ctx, watcher, abs, onChange, done)
	return done, nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange ChangeFunc, done chan<- struct{}) {
	defer close(done)
	defer func() {
		_ = watcher.Close()
	}()

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()
	var pendingSince time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				pendingSince = time.Now()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			onChange(model.Article{}, fmt.Errorf("watch error: %w", err))
		case <-ticker.C:
			if pendingSince.IsZero() || time.Since(pendingSince) < watchDebounce {
				continue
			}
			pendingSince = time.Time{}
			art, err := Load(path)
			onChange(art, err)
		}
	}
}
