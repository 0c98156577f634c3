package file

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/wallapocket/internal/logger"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 500 * time.Millisecond

// reloadAttempts bounds retries while an editor is still writing the file.
const reloadAttempts = 3

// Watcher reloads a ConfigStore when its file changes and invokes a callback
// after each successful reload.
type Watcher struct {
	store    *ConfigStore
	onChange func()
	debounce time.Duration
}

// NewWatcher creates a watcher for store. onChange runs on the watcher
// goroutine after the store has been reloaded.
func NewWatcher(store *ConfigStore, onChange func()) *Watcher {
	return &Watcher{
		store:    store,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// Run watches until ctx is cancelled.
// The parent directory is watched so atomic renames are seen.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	path := filepath.Clean(w.store.Path())
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	var debounceTimer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.reload()
				continue
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}

// reload re-reads the file, keeping the previous configuration on failure.
// onChange runs only when the content actually changed.
func (w *Watcher) reload() {
	var (
		changed bool
		err     error
	)
	for i := 0; i < reloadAttempts; i++ {
		if i > 0 {
			time.Sleep(100 * time.Millisecond)
		}
		if changed, err = w.store.Reload(); err == nil {
			break
		}
		logger.Debug("config reload attempt %d/%d failed: %v", i+1, reloadAttempts, err)
	}
	if err != nil {
		logger.Error("config reload failed, keeping previous settings: %v", err)
		return
	}
	if !changed {
		logger.Debug("config file touched without changes")
		return
	}

	logger.Info("Configuration reloaded from %s", w.store.Path())
	if w.onChange != nil {
		w.onChange()
	}
}
