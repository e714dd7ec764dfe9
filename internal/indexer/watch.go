package indexer

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sportzvillage/svassist/internal/logging"
)

// Watcher triggers a cache refresh whenever the tabular store's files
// change on disk. Events are debounced so a burst of writes (an editor
// save, a bulk table sync) causes one refresh.
type Watcher struct {
	dir       string
	refresher *Refresher
	debounce  time.Duration
	log       *logging.Logger
}

// NewWatcher watches dir for table file changes. A zero debounce
// defaults to two seconds.
func NewWatcher(dir string, refresher *Refresher, debounce time.Duration, log *logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{dir: dir, refresher: refresher, debounce: debounce, log: log}
}

// Run blocks until ctx is cancelled, refreshing the cache after each
// debounced burst of table changes.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info("watching table directory", "dir", w.dir)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if filepath.Ext(event.Name) != ".txt" {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("table watcher error", "err", err)
		case <-timerC:
			timer = nil
			timerC = nil
			if !w.refresher.Refresh(ctx) {
				w.log.Warn("automatic cache refresh failed; will retry on next change")
			}
		}
	}
}
