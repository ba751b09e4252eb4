package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mindtree/local-app/internal/log"
)

// DBWatcher calls onChange when a database file, or one of its journal files, is
// changed by another process. Bursts of writes are coalesced by a Debouncer.
type DBWatcher struct {
	dir      string
	base     string
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	onChange func()
	logger   *log.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewDBWatcher creates a watcher for the database at path. Nothing is watched until Start.
func NewDBWatcher(path string, debounce time.Duration, onChange func(), logger *log.Logger) (*DBWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &DBWatcher{
		dir:      filepath.Dir(path),
		base:     filepath.Base(path),
		watcher:  watcher,
		debounce: NewDebouncer(debounce),
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start watches the database directory; sqlite replaces and journals the file, so
// watching the file itself would miss changes.
func (w *DBWatcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.logger.Info(context.Background(), "Watching database", log.Fields{"dir": w.dir, "file": w.base})

	w.wg.Add(1)
	go w.watchLoop()
	return nil
}

// Stop ends watching and drops a pending callback.
func (w *DBWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		w.debounce.Cancel()
	})
	return err
}

func (w *DBWatcher) watchLoop() {
	defer w.wg.Done()
	ctx := context.Background()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug(ctx, "Database changed", log.Fields{"file": ev.Name, "op": ev.Op.String()})
			w.debounce.Trigger(w.onChange)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "Database watcher error", log.Fields{"error": err})
		}
	}
}

// relevant reports whether ev touches the database or its -wal, -shm or -journal files
func (w *DBWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), w.base)
}
