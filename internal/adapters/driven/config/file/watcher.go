package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// defaultDebounce coalesces the burst of events an editor save produces.
const defaultDebounce = 200 * time.Millisecond

// PromptWatcher reloads a PromptStore when files in its directory change.
type PromptWatcher struct {
	store    driven.PromptStore
	dir      string
	debounce time.Duration

	// onReload is called after each reload. Used in tests.
	onReload func()
}

// NewPromptWatcher creates a watcher for dir that reloads store.
func NewPromptWatcher(store driven.PromptStore, dir string) *PromptWatcher {
	return &PromptWatcher{
		store:    store,
		dir:      dir,
		debounce: defaultDebounce,
	}
}

// Run watches until ctx is cancelled. It returns an error only if the
// watch cannot be started.
func (w *PromptWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Debug("Watching prompts in %s", w.dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isPromptEvent(event) {
				continue
			}
			logger.Debug("Prompt changed: %s (%s)", filepath.Base(event.Name), event.Op)
			pending = time.After(w.debounce)

		case <-pending:
			pending = nil
			w.store.Reload()
			logger.Info("Prompts reloaded")
			if w.onReload != nil {
				w.onReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("prompt watcher: %v", err)
		}
	}
}

func isPromptEvent(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != PromptExt {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
