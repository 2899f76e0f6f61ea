package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/envfile/pkg/api"
	"github.com/platinummonkey/envfile/pkg/cache"
	"github.com/platinummonkey/envfile/pkg/config"
	"github.com/platinummonkey/envfile/pkg/envfile"
	"github.com/platinummonkey/envfile/pkg/observability"
	"github.com/platinummonkey/envfile/pkg/publish"
	"github.com/platinummonkey/envfile/pkg/watch"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "Env file holding ENVFILE_* settings; the process environment takes precedence")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stderr)
	logger.WithFields(logrus.Fields{
		"version": version,
		"files":   cfg.Files.Paths,
		"addr":    cfg.Server.Addr(),
	}).Info("Starting envfile server")

	var (
		registry *prometheus.Registry
		metrics  *observability.Metrics
	)
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(registry)
	}

	store := envfile.NewStore(envfile.WithMaxEntries(cfg.Files.MaxEntries))
	loader := envfile.NewLoader(store,
		envfile.WithLogger(logger.WithField("component", "loader")),
		envfile.WithMetrics(metrics),
	)

	lookups, err := cache.New(store, &cache.Config{MaxEntries: cfg.Cache.Size, TTL: cfg.Cache.TTL}, metrics)
	if err != nil {
		return fmt.Errorf("create lookup cache: %w", err)
	}

	reloader := watch.NewReloader(loader, cfg.Files.Paths, logger.WithField("component", "reloader"), metrics)
	reloader.OnReload(lookups.Purge)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		redisClient *redis.Client
		publisher   *publish.Publisher
	)
	if cfg.Redis.Enabled() {
		redisClient, err = publish.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		publisher = publish.NewPublisher(redisClient, cfg.Redis.Key, logger.WithField("component", "publisher"), metrics)
		reloader.OnReload(func() {
			if _, err := publisher.PublishStore(ctx, store); err != nil {
				logger.WithError(err).Warn("Failed to publish reloaded entries")
			}
		})
	}

	if err := reloader.Reload(watch.TriggerStartup); err != nil {
		return err
	}

	health := observability.NewHealthChecker(store, redisClient, version)
	handler := api.NewServer(api.Options{
		Store:     store,
		Cache:     lookups,
		Reloader:  reloader,
		Publisher: publisher,
		Health:    health,
		Logger:    logger,
		Metrics:   metrics,
		Registry:  registry,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)

	var watcher *watch.Watcher
	if cfg.Files.Watch {
		watcher, err = watch.NewWatcher(reloader, watch.DefaultDebounce, logger)
		if err != nil {
			return err
		}
	}

	var scheduler *watch.Scheduler
	if cfg.Files.ReloadSchedule != "" {
		scheduler, err = watch.NewScheduler(reloader, cfg.Files.ReloadSchedule, logger)
		if err != nil {
			if watcher != nil {
				watcher.Close()
			}
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return shutdown.WaitForShutdown(gctx)
	})

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	err = g.Wait()
	logger.Info("envfile server stopped")
	return err
}

// loadConfig reads settings from the process environment, falling back to
// the entries of configFile when one is given.
func loadConfig(configFile string) (*config.Config, error) {
	if configFile == "" {
		return config.LoadConfig()
	}

	settings := envfile.NewStore()
	if err := envfile.NewLoader(settings).Load(configFile); err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}
	return config.LoadConfigFrom(config.Layered{config.OSEnv{}, settings})
}
