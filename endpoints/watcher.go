package endpoints

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long to wait for more changes before reloading.
const defaultDebounce = 500 * time.Millisecond

// Watcher hot-reloads a catalog when its YAML file changes on disk.
// Editors write via rename-and-replace, so the watch sits on the parent
// directory and changes are debounced before reloading.
type Watcher struct {
	catalog  *Catalog
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   bool

	// OnReload, when set, is called after every successful reload.
	OnReload func(*Catalog)
}

// NewWatcher creates a watcher for the catalog file at path.
func NewWatcher(catalog *Catalog, path string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		catalog:  catalog,
		path:     path,
		debounce: defaultDebounce,
		watcher:  fsw,
		logger:   logger,
	}, nil
}

// Start begins watching until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Endpoint catalog watcher started",
		"path", w.path,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.pendingMu.Lock()
				w.pending = true
				w.pendingMu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending reloads the catalog if a change is pending. A reload that
// fails to parse keeps the previous snapshot.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	pending := w.pending
	w.pending = false
	w.pendingMu.Unlock()
	if !pending {
		return
	}

	reloaded, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Catalog reload failed, keeping previous snapshot",
			"path", w.path,
			"error", err)
		return
	}

	if err := w.catalog.Replace(reloaded.All()); err != nil {
		w.logger.Warn("Catalog reload rejected",
			"path", w.path,
			"error", err)
		return
	}

	w.logger.Info("Endpoint catalog reloaded",
		"path", w.path,
		"endpoints", w.catalog.Len())

	if w.OnReload != nil {
		w.OnReload(w.catalog)
	}
}
