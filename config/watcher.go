package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/atomic"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/logging"
)

const watchDebounce = 250 * time.Millisecond

// A Watcher re-reads a config file whenever it changes on disk and hands valid configs to a
// callback. Invalid edits are logged and otherwise ignored.
type Watcher struct {
	watcher *fsnotify.Watcher
	workers *utils.StoppableWorkers
	closed  atomic.Bool
}

// NewWatcher starts watching filePath. The directory is watched rather than the file so that
// editors that replace the file on save are followed.
func NewWatcher(filePath string, onChange func(*Config), logger logging.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		utils.UncheckedError(fsWatcher.Close())
		return nil, err
	}

	w := &Watcher{watcher: fsWatcher}
	debounced := debounce.New(watchDebounce)
	reload := func() {
		if w.closed.Load() {
			return
		}
		cfg, err := Read(absPath, logger)
		if err != nil {
			logger.Warnw("ignoring invalid config change", "path", absPath, "error", err)
			return
		}
		logger.Infow("config changed", "path", absPath)
		onChange(cfg)
	}

	w.workers = utils.NewBackgroundStoppableWorkers(func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsWatcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					debounced(reload)
				}
			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				logger.Warnw("config watcher error", "error", err)
			}
		}
	})
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.closed.Store(true)
	err := w.watcher.Close()
	w.workers.Stop()
	return err
}
