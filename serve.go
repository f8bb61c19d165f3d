package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"media-resolver/internal/handlers"
	"media-resolver/internal/loader"
	"media-resolver/internal/logging"
	"media-resolver/internal/metrics"
	"media-resolver/internal/middleware"
	"media-resolver/internal/startup"
)

// collectorInterval is how often registry gauges are refreshed.
const collectorInterval = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolver over HTTP",
		Long: "Serve the resolver over HTTP. The plugin manifest is reloaded when it\n" +
			"changes unless WATCH_MANIFEST=false.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("port", "", "HTTP port (overrides PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	startTime := time.Now()

	if err := applyGlobalFlags(cmd, false); err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		if err := os.Setenv("PORT", port); err != nil {
			return err
		}
	}

	memConfig := startup.ConfigureMemory()
	config, err := startup.LoadConfig()
	if err != nil {
		return err
	}
	startup.LogMemoryConfig(memConfig)

	if config.MetricsEnabled {
		metrics.InstallObservers()
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	}
	configureVolumes(config)

	loadStart := time.Now()
	r, l := newLoader(config)
	defer l.Close()
	report, err := l.Load()
	if err != nil && l.Manifest() == nil {
		return err
	}
	startup.LogPluginsLoaded(len(report.Registered), len(report.Disabled), len(report.Failed), time.Since(loadStart))

	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(r, collectorInterval)
		collector.Start()
	}

	router := handlers.NewRouter(handlers.New(r, l), handlers.RouterConfig{MetricsEnabled: config.MetricsEnabled})
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	loggingConfig.SkipPaths = []string{"/metrics"}
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(
		middleware.Logger(loggingConfig)(router),
	)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watchDone := make(chan struct{})
	if config.WatchManifest {
		startup.LogManifestWatch(config.ManifestPath, config.ReloadDebounce)
		go func() {
			defer close(watchDone)
			err := l.Watch(ctx, config.ReloadDebounce, logReload)
			if err != nil {
				logging.Warn("Manifest watcher stopped: %v", err)
			}
		}()
	} else {
		close(watchDone)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		Plugins:         r.Len(),
		StartupDuration: time.Since(startTime),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			cancel()
			<-watchDone
			return err
		}
	case sig := <-sigChan:
		startup.LogShutdownInitiated(sig.String())
	case <-ctx.Done():
		startup.LogShutdownInitiated(ctx.Err().Error())
	}

	shutdown(srv, config.ShutdownTimeout, cancel, watchDone, collector, l)
	return nil
}

func logReload(report loader.Report, err error) {
	if err != nil {
		logging.Error("Plugin manifest reload failed: %v", err)
		return
	}
	logging.Info("Plugin manifest reloaded: %d registered", len(report.Registered))
}

func shutdown(srv *http.Server, timeout time.Duration, stopWatch context.CancelFunc, watchDone <-chan struct{}, collector *metrics.Collector, l *loader.Loader) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping manifest watcher")
	stopWatch()
	<-watchDone
	startup.LogShutdownStepComplete("Manifest watcher stopped")

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	startup.LogShutdownStep("Unregistering plugins")
	l.Close()
	startup.LogShutdownStepComplete("Plugins unregistered")

	startup.LogShutdownComplete()
}
