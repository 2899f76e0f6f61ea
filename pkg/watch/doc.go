// Package watch keeps a store in sync with its env files.
//
// A Reloader loads the files into a staging store and swaps it in only when
// every file loaded, so readers never see a half-loaded or failed reload.
// Watcher triggers it on file changes (fsnotify) and Scheduler on a cron
// schedule (robfig/cron). Reloads are serialized.
//
//	reloader := watch.NewReloader(loader, paths, logger, metrics)
//	reloader.OnReload(lookupCache.Purge)
//	if err := reloader.Reload(watch.TriggerStartup); err != nil {
//		return err
//	}
//
//	watcher, err := watch.NewWatcher(reloader, watch.DefaultDebounce, logger)
//	go watcher.Run(ctx)
package watch
