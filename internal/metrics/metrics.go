package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Registry metrics
var (
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_registrations_total",
			Help: "Total number of plugin agent registrations by kind and status",
		},
		[]string{"kind", "status"},
	)

	UnregistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_unregistrations_total",
			Help: "Total number of plugin agent unregistrations by kind",
		},
		[]string{"kind"},
	)

	RegisteredAgents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_registered_agents",
			Help: "Number of currently registered plugin agents",
		},
	)

	RoutedSuffixes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_resolver_routed_suffixes",
			Help: "Number of suffixes in each routing table",
		},
		[]string{"table"}, // "unpack", "tagparser"
	)

	WildcardParserRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_wildcard_parser_registered",
			Help: "Whether a wildcard tag parser is registered (1 = yes, 0 = no)",
		},
	)

	ManifestReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_manifest_reloads_total",
			Help: "Total number of plugin manifest reloads by status",
		},
		[]string{"status"},
	)

	ManifestLastReloadTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_manifest_last_reload_timestamp",
			Help: "Timestamp of the last successful plugin manifest reload",
		},
	)
)

// Resolution metrics
var (
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_loads_total",
			Help: "Total number of LoadMedia calls by route",
		},
		[]string{"route"}, // "unpacked", "single"
	)

	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_load_duration_seconds",
			Help:    "LoadMedia duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route"},
	)

	ItemsPerLoad = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_resolver_items_per_load",
			Help:    "Number of items returned by a LoadMedia call",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	TagFillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_tag_fills_total",
			Help: "Total number of tag parser uses by parser",
		},
		[]string{"parser"},
	)

	TagFieldsFilled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_tag_fields_filled_total",
			Help: "Total number of item fields filled from tag parsers by parser",
		},
		[]string{"parser"},
	)

	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_diagnostics_total",
			Help: "Total number of resolution diagnostics by code",
		},
		[]string{"code"},
	)
)

// Tag reading metrics
var (
	TagReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_tag_reads_total",
			Help: "Total number of audio files whose tags were read, by tag format",
		},
		[]string{"format"},
	)

	TagReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_tag_read_duration_seconds",
			Help:    "Time spent reading tags from one audio file",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"format"},
	)

	ProbeSniffsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_probe_sniffs_total",
			Help: "Total number of content detections by the probe parser",
		},
		[]string{"mime", "recognized"},
	)

	ProbeSniffDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_resolver_probe_sniff_duration_seconds",
			Help:    "Time spent reading and detecting the head of a file",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)
)

// Catalog metrics
var (
	CatalogQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_catalog_queries_total",
			Help: "Total number of catalog queries",
		},
		[]string{"operation", "status"},
	)

	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_catalog_query_duration_seconds",
			Help:    "Catalog query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retry attempts",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors encountered",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_filesystem_retry_duration_seconds",
			Help:    "Total time spent in filesystem operations including retries",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation", "volume"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_resolver_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
