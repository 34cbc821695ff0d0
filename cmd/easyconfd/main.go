// easyconfd serves device configuration data over a local HTTP JSON
// API: resolved profile lists, active-profile matching, time presets,
// the persisted change log and configuration snapshots. The profile
// catalog is reloaded automatically when definition files change.
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
	"time"

	"easyconfd/internal/changelog"
	"easyconfd/internal/config"
	"easyconfd/internal/logging"
	"easyconfd/internal/metrics"
	"easyconfd/internal/profile"
	"easyconfd/internal/server"
	"easyconfd/internal/store"
)

const version = "1.0.0"

var (
	configPath  = flag.String("config", "", "path to config file")
	listenAddr  = flag.String("listen", "", "listen address (overrides config)")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("easyconfd %s\n", version)
		return
	}

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}

	logger := setupLogging(cfg)
	defer logger.Close()

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("create directories", "error", err)
		os.Exit(1)
	}

	watchConfig(loader, logger)
	defer loader.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

// watchConfig hot-reloads the config file. Only the log level can change
// at runtime; everything else needs a restart.
func watchConfig(loader *config.Loader, logger *logging.Logger) {
	loader.OnChange(func(cfg *config.Config) {
		level, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			logger.Warn("config reloaded with invalid log level", "level", cfg.Logging.Level)
			return
		}
		logger.SetLevel(level)
		logger.Info("config reloaded", "log_level", cfg.Logging.Level)
	})
	go func() {
		for err := range loader.Errors() {
			logger.Error("config reload failed", "error", err)
		}
	}()
	if err := loader.Watch(); err != nil {
		logger.Warn("config watch unavailable", "error", err)
	}
}

func setupLogging(cfg *config.Config) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	logger, err := logging.New(&logging.Config{
		Level:      level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxAge:     cfg.Logging.MaxAgeDays,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
		Component:  "easyconfd",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	return logger
}

func run(cfg *config.Config, logger *logging.Logger) error {
	daemonMetrics := metrics.NewDaemonMetrics(nil)

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open change-log store: %w", err)
	}
	defer st.Close()

	entries, err := st.LoadEntries()
	if err != nil {
		return fmt.Errorf("load change log: %w", err)
	}
	log := changelog.New(cfg.ChangeLog.MaxEntries)
	log.LoadEntries(entries)
	daemonMetrics.ChangeLogSize.Set(int64(log.Len()))
	logger.Info("change log loaded", "entries", log.Len(), "max_entries", log.MaxEntries())

	catalogFn, closeCatalog, err := setupCatalog(cfg, logger, daemonMetrics)
	if err != nil {
		return err
	}
	defer closeCatalog()
	daemonMetrics.CatalogPairs.Set(int64(len(catalogFn().Pairs())))

	srv := server.New(server.Options{
		Catalog:      catalogFn,
		Log:          log,
		Store:        st,
		Logger:       logger,
		Metrics:      daemonMetrics,
		Locale:       cfg.Locale,
		ServeMetrics: cfg.Server.Metrics,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("daemon listening", "addr", cfg.Server.Listen, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("daemon stopped")
	return nil
}

// setupCatalog loads the profile catalog, optionally behind a file
// watcher that swaps in a fresh catalog when definitions change.
func setupCatalog(cfg *config.Config, logger *logging.Logger, m *metrics.DaemonMetrics) (server.CatalogFunc, func(), error) {
	if !cfg.Catalog.WatchReload {
		catalog, err := profile.LoadCatalogDir(cfg.Catalog.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("load profile catalog: %w", err)
		}
		logger.Info("profile catalog loaded", "dir", cfg.Catalog.Dir, "pairs", len(catalog.Pairs()))
		return func() *profile.Catalog { return catalog }, func() {}, nil
	}

	watcher, err := profile.NewCatalogWatcher(cfg.Catalog.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("watch profile catalog: %w", err)
	}

	watcher.OnChange(func(c *profile.Catalog) {
		m.RecordCatalogReload(true)
		m.CatalogPairs.Set(int64(len(c.Pairs())))
		logger.Info("profile catalog reloaded", "pairs", len(c.Pairs()))
	})
	go func() {
		for err := range watcher.Errors() {
			m.RecordCatalogReload(false)
			logger.Error("catalog reload failed", "error", err)
		}
	}()
	watcher.Start()

	logger.Info("profile catalog loaded",
		"dir", cfg.Catalog.Dir,
		"pairs", len(watcher.Catalog().Pairs()),
		"watch_reload", true)
	return watcher.Catalog, func() { watcher.Close() }, nil
}
