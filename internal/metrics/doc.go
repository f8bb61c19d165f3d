// Package metrics provides Prometheus instrumentation for media-resolver.
//
// All metrics are prefixed with "media_resolver_" to avoid naming collisions
// with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Registry Metrics
//
// Track plugin agent registration and the routing tables:
//   - RegistrationsTotal: Counter by kind and status
//   - UnregistrationsTotal: Counter by kind
//   - RegisteredAgents: Gauge of registered agents
//   - RoutedSuffixes: Gauge of suffixes per routing table (unpack/tagparser)
//   - WildcardParserRegistered: Gauge indicating a fallback tag parser
//   - ManifestReloadsTotal: Counter of manifest reloads by status
//   - ManifestLastReloadTimestamp: Gauge of the last successful reload time
//
// ## Resolution Metrics
//
// Monitor LoadMedia calls:
//   - LoadsTotal / LoadDuration: by route (unpacked/single)
//   - ItemsPerLoad: Histogram of items returned
//   - TagFillsTotal / TagFieldsFilled: tag parser uses and filled fields by parser
//   - DiagnosticsTotal: Counter of soft failures by code
//
// ## Tag Reading Metrics
//
//   - TagReadsTotal / TagReadDuration: audio tag reads by tag format
//   - ProbeSniffsTotal / ProbeSniffDuration: content detection by the probe parser
//
// ## Catalog and Filesystem Metrics
//
//   - CatalogQueryTotal / CatalogQueryDuration: SQLite catalog queries by operation
//   - Filesystem*: operation latency, errors and NFS stale-handle retries by volume
//
// # Usage
//
// Metrics are registered with the default Prometheus registry using
// promauto. The instrumented packages do not import this one; they expose
// Observer interfaces instead, and [InstallObservers] connects them at
// startup:
//
//	metrics.InstallObservers()
//	metrics.InitializeMetrics()
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Collector
//
// The [Collector] periodically samples registry statistics from a
// [StatsProvider], normally the *resolver.Resolver:
//
//	collector := metrics.NewCollector(res, 30*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Share of loads that produced diagnostics of a failure kind:
//
//	sum(rate(media_resolver_diagnostics_total{code=~"io_failure|malformed_container"}[5m])) /
//	sum(rate(media_resolver_loads_total[5m]))
//
// P95 resolution time by route:
//
//	histogram_quantile(0.95, sum(rate(media_resolver_load_duration_seconds_bucket[5m])) by (le, route))
package metrics
