// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]
// (or [LoadQuietConfig] for command line tools):
//
//   - RESOLVER_MANIFEST: YAML plugin manifest (default: ./plugins.yaml; a missing file selects the built-in plugin set)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_ENABLED: Serve /metrics (default: true)
//   - WATCH_MANIFEST: Reload plugins when the manifest changes (default: true)
//   - RELOAD_DEBOUNCE: Quiet period before a manifest reload, as Go duration (default: 250ms)
//   - SHUTDOWN_TIMEOUT: Graceful shutdown limit, as Go duration (default: 30s)
//   - CATALOG_DB: Catalog database used when the manifest does not name one (default: ./catalog.db)
//   - MEDIA_DIR: Optional media root, used to label filesystem metrics
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - MEMORY_LIMIT / MEMORY_RATIO: Container limit for automatic GOMEMLIMIT, see [ConfigureMemory]
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//
//	go build -ldflags "-X media-resolver/internal/startup.Version=1.2.0" .
//
// # Lifecycle Logging
//
//   - [LogMemoryConfig]: Memory limit configuration
//   - [LogPluginsLoaded]: Outcome of the first manifest load
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownStep], [LogShutdownComplete]: Graceful shutdown
package startup
