package startup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"media-resolver/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Defaults for the environment variables read by LoadConfig.
const (
	DefaultManifestPath    = "./plugins.yaml"
	DefaultPort            = "8080"
	DefaultCatalogDB       = "./catalog.db"
	DefaultReloadDebounce  = 250 * time.Millisecond
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds all application configuration
type Config struct {
	// ManifestPath is the YAML plugin manifest. A missing file selects the
	// built-in manifest.
	ManifestPath   string
	ManifestExists bool

	Port            string
	MetricsEnabled  bool
	WatchManifest   bool
	ReloadDebounce  time.Duration
	ShutdownTimeout time.Duration
	LogHealthChecks bool

	// CatalogDB is the catalog file used when the manifest's catalog entry
	// does not name one.
	CatalogDB string

	// MediaDir, when set, labels filesystem metrics of paths below it with
	// the "media" volume.
	MediaDir string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()
	return loadConfig()
}

// LoadQuietConfig reads the same environment as LoadConfig without the
// banner, for command line tools whose stdout is data.
func LoadQuietConfig() (*Config, error) {
	level := logging.GetLevel()
	if level < logging.LevelWarn {
		logging.SetLevel(logging.LevelWarn)
		defer logging.SetLevel(level)
	}
	return loadConfig()
}

func loadConfig() (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	manifestPath := getEnv("RESOLVER_MANIFEST", DefaultManifestPath)
	port := getEnv("PORT", DefaultPort)
	catalogDB := getEnv("CATALOG_DB", DefaultCatalogDB)
	mediaDir := getEnv("MEDIA_DIR", "")
	debounceStr := getEnv("RELOAD_DEBOUNCE", DefaultReloadDebounce.String())
	shutdownStr := getEnv("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout.String())
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	watchManifest := getEnvBool("WATCH_MANIFEST", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)

	logging.Info("  RESOLVER_MANIFEST:   %s", manifestPath)
	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  WATCH_MANIFEST:      %v", watchManifest)
	logging.Info("  RELOAD_DEBOUNCE:     %s", debounceStr)
	logging.Info("  SHUTDOWN_TIMEOUT:    %s", shutdownStr)
	logging.Info("  CATALOG_DB:          %s", catalogDB)
	logging.Info("  MEDIA_DIR:           %s", valueOrUnset(mediaDir))
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	debounce := parseDuration("RELOAD_DEBOUNCE", debounceStr, DefaultReloadDebounce)
	shutdownTimeout := parseDuration("SHUTDOWN_TIMEOUT", shutdownStr, DefaultShutdownTimeout)

	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PATH SETUP")
	logging.Info("------------------------------------------------------------")

	manifestPath, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	manifestExists, err := checkManifest(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("plugin manifest error: %w", err)
	}

	catalogDB, err = filepath.Abs(catalogDB)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}
	logging.Info("  Catalog database (absolute): %s", catalogDB)

	if mediaDir != "" {
		mediaDir, err = filepath.Abs(mediaDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve media directory path: %w", err)
		}
		if err := checkDirectory(mediaDir, "media"); err != nil {
			logging.Warn("  Media directory issue: %v", err)
		}
	}

	config := &Config{
		ManifestPath:    manifestPath,
		ManifestExists:  manifestExists,
		Port:            port,
		MetricsEnabled:  metricsEnabled,
		WatchManifest:   watchManifest,
		ReloadDebounce:  debounce,
		ShutdownTimeout: shutdownTimeout,
		LogHealthChecks: logHealthChecks,
		CatalogDB:       catalogDB,
		MediaDir:        mediaDir,
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Manifest reload: %s", enabledString(config.WatchManifest))
	logging.Info("    Metrics:         %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// checkManifest reports whether the manifest file exists. A missing file is
// not an error; a directory or unreadable path is.
func checkManifest(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Info("  Plugin manifest not found, using built-in plugin set")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	logging.Info("  Plugin manifest (absolute): %s", path)
	return true, nil
}

func parseDuration(key, value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logging.Warn("  Invalid %s, using default: %s", key, def)
		return def
	}
	return d
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

// LogPluginsLoaded logs the outcome of the first manifest load.
func LogPluginsLoaded(registered, disabled, failed int, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PLUGIN REGISTRATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] %d plugins registered in %v", registered, duration)
	if disabled > 0 {
		logging.Info("  %d plugins disabled by the manifest", disabled)
	}
	if failed > 0 {
		logging.Warn("  %d plugins failed to register", failed)
	}
}

// LogManifestWatch logs manifest watcher startup.
func LogManifestWatch(path string, debounce time.Duration) {
	logging.Info("  Watching %s for changes (debounce %v)", path, debounce)
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	Plugins         int
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  Plugins:         %d registered", config.Plugins)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Resolve:       http://0.0.0.0:%s/api/resolve", config.Port)
	logging.Info("    Plugins:       http://0.0.0.0:%s/api/plugins", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
                    _ _                                 _
  _ __ ___   ___  __| (_) __ _      _ __ ___  ___  ___ | |_   _____ _ __
 | '_ ' _ \ / _ \/ _' | |/ _' |____| '__/ _ \/ __|/ _ \| \ \ / / _ \ '__|
 | | | | | |  __/ (_| | | (_| |____| | |  __/\__ \ (_) | |\ V /  __/ |
 |_| |_| |_|\___|\__,_|_|\__,_|    |_|  \___||___/\___/|_| \_/ \___|_|

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
