package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/observability"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads when any of the reloader's files changes.
//
// It watches the parent directories rather than the files, so editors that
// save by renaming a temp file over the original keep triggering reloads.
type Watcher struct {
	reloader *Reloader
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
	logger   logrus.FieldLogger
}

// NewWatcher starts watching the directories holding reloader's files.
func NewWatcher(reloader *Reloader, debounce time.Duration, logger logrus.FieldLogger) (*Watcher, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		reloader: reloader,
		watcher:  fsw,
		files:    make(map[string]struct{}),
		debounce: debounce,
		logger:   logger.WithField("component", "watcher"),
	}

	dirs := make(map[string]struct{})
	for _, path := range reloader.Paths() {
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		w.logger.WithField("dir", dir).Debug("Watching directory")
	}

	return w, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	defer observability.RecoverPanic(w.logger, "file watcher")

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.WithFields(logrus.Fields{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("Env file changed")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")

		case <-fire:
			fire = nil
			// Failures are logged and counted by the reloader.
			_ = w.reloader.Reload(TriggerWatch)
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}
