package watch

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/envfile"
	"github.com/platinummonkey/envfile/pkg/observability"
)

// Reload triggers, used as a metric label.
const (
	TriggerStartup  = "startup"
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
	TriggerAPI      = "api"
)

// Reloader replaces a loader's store contents with a fresh load of a fixed
// list of files.
type Reloader struct {
	mu      sync.Mutex
	loader  *envfile.Loader
	paths   []string
	logger  logrus.FieldLogger
	metrics *observability.Metrics

	hooksMu sync.Mutex
	hooks   []func()
}

// NewReloader creates a reloader for paths, loaded in order.
func NewReloader(loader *envfile.Loader, paths []string, logger logrus.FieldLogger, metrics *observability.Metrics) *Reloader {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Reloader{
		loader:  loader,
		paths:   append([]string(nil), paths...),
		logger:  logger,
		metrics: metrics,
	}
}

// Paths returns the files the reloader loads.
func (r *Reloader) Paths() []string {
	return append([]string(nil), r.paths...)
}

// OnReload registers fn to run after each successful reload.
func (r *Reloader) OnReload(fn func()) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Reload loads every file into a staging store and swaps it into the live
// store. On failure the live store keeps its previous contents.
func (r *Reloader) Reload(trigger string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	logger := r.logger.WithField("trigger", trigger)
	store := r.loader.Store()

	staging := store.NewStaging()
	if err := r.loader.ForStore(staging).LoadFiles(r.paths...); err != nil {
		logger.WithError(err).Error("Reload failed, keeping previous entries")
		r.metrics.RecordReload(trigger, observability.StatusFailure)
		r.metrics.SetStoreEntries(store.Len())
		return fmt.Errorf("reload: %w", err)
	}

	store.Swap(staging)
	r.metrics.SetStoreEntries(store.Len())
	r.runHooks(logger)

	r.metrics.RecordReload(trigger, observability.StatusSuccess)
	logger.WithFields(logrus.Fields{
		"files":    len(r.paths),
		"entries":  store.Len(),
		"duration": time.Since(start),
	}).Info("Reloaded env files")
	return nil
}

func (r *Reloader) runHooks(logger logrus.FieldLogger) {
	r.hooksMu.Lock()
	hooks := append([]func(){}, r.hooks...)
	r.hooksMu.Unlock()

	for _, hook := range hooks {
		func() {
			defer observability.RecoverPanic(logger, "reload hook")
			hook()
		}()
	}
}
