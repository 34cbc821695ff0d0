package profile

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CatalogWatcher watches a catalog directory and rebuilds the catalog
// value when definition files change. The catalog itself stays immutable:
// a reload constructs a fresh Catalog and swaps the reference, so readers
// holding the old value are unaffected.
type CatalogWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	onChange []func(*Catalog)

	mu      sync.RWMutex
	catalog *Catalog

	errChan chan error
	done    chan struct{}
}

// NewCatalogWatcher loads the catalog from dir and prepares a watcher.
// The initial load must succeed; later reload failures are reported on
// Errors and leave the previous catalog in place.
func NewCatalogWatcher(dir string) (*CatalogWatcher, error) {
	catalog, err := LoadCatalogDir(dir)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch catalog directory: %w", err)
	}

	return &CatalogWatcher{
		dir:     dir,
		watcher: fsWatcher,
		catalog: catalog,
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}, nil
}

// Catalog returns the current catalog value.
func (w *CatalogWatcher) Catalog() *Catalog {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.catalog
}

// OnChange registers a callback invoked with the new catalog after a
// successful reload. Register before calling Start.
func (w *CatalogWatcher) OnChange(cb func(*Catalog)) {
	w.onChange = append(w.onChange, cb)
}

// Errors returns the channel carrying reload errors.
func (w *CatalogWatcher) Errors() <-chan error {
	return w.errChan
}

// Start begins watching for definition file changes.
func (w *CatalogWatcher) Start() {
	go w.watchLoop()
}

// watchLoop debounces file events and reloads the catalog.
func (w *CatalogWatcher) watchLoop() {
	var debounceTimer *time.Timer
	debounceDelay := 100 * time.Millisecond

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(filepath.Base(event.Name), ".json") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errChan <- err:
			default:
			}
		}
	}
}

// reload builds a fresh catalog and swaps it in. A failed load keeps the
// previous catalog.
func (w *CatalogWatcher) reload() {
	catalog, err := LoadCatalogDir(w.dir)
	if err != nil {
		select {
		case w.errChan <- fmt.Errorf("reload catalog: %w", err):
		default:
		}
		return
	}

	w.mu.Lock()
	w.catalog = catalog
	w.mu.Unlock()

	for _, cb := range w.onChange {
		cb(catalog)
	}
}

// Close stops watching and releases resources.
func (w *CatalogWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
