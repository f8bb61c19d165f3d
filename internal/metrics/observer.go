package metrics

import (
	"strconv"
	"strings"
	"time"

	"media-resolver/internal/audiotag"
	"media-resolver/internal/catalog"
	"media-resolver/internal/filesystem"
	"media-resolver/internal/loader"
	"media-resolver/internal/plugin"
	"media-resolver/internal/probe"
	"media-resolver/internal/resolver"
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// filesystemObserver implements filesystem.Observer using the Prometheus
// metrics declared in this package.
type filesystemObserver struct{}

// NewFilesystemObserver creates an observer that records filesystem metrics
// into the Prometheus counters and histograms declared in metrics.go.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveOperation(volume, operation string, durationSeconds float64, err error) {
	FilesystemOperationDuration.WithLabelValues(volume, operation).Observe(durationSeconds)
	if err != nil {
		FilesystemOperationErrors.WithLabelValues(volume, operation).Inc()
	}
}

func (o *filesystemObserver) ObserveRetryAttempt(retryOp, volume string) {
	FilesystemRetryAttempts.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetrySuccess(retryOp, volume string) {
	FilesystemRetrySuccess.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryFailure(retryOp, volume string) {
	FilesystemRetryFailures.WithLabelValues(retryOp, volume).Inc()
}

func (o *filesystemObserver) ObserveRetryDuration(retryOp, volume string, durationSeconds float64) {
	FilesystemRetryDuration.WithLabelValues(retryOp, volume).Observe(durationSeconds)
}

func (o *filesystemObserver) ObserveStaleError(retryOp, volume string) {
	FilesystemStaleErrors.WithLabelValues(retryOp, volume).Inc()
}

// resolverObserver implements resolver.Observer.
type resolverObserver struct{}

// NewResolverObserver creates an observer that records registration and
// resolution metrics.
func NewResolverObserver() resolver.Observer {
	return &resolverObserver{}
}

func (o *resolverObserver) ObserveRegistration(kind plugin.Kind, err error) {
	RegistrationsTotal.WithLabelValues(kind.String(), status(err)).Inc()
}

func (o *resolverObserver) ObserveUnregistration(kind plugin.Kind) {
	UnregistrationsTotal.WithLabelValues(kind.String()).Inc()
}

func (o *resolverObserver) ObserveLoad(unpacked bool, items int, durationSeconds float64) {
	route := "single"
	if unpacked {
		route = "unpacked"
	}
	LoadsTotal.WithLabelValues(route).Inc()
	LoadDuration.WithLabelValues(route).Observe(durationSeconds)
	ItemsPerLoad.Observe(float64(items))
}

func (o *resolverObserver) ObserveTagFill(parser string, fieldsFilled int) {
	TagFillsTotal.WithLabelValues(parser).Inc()
	TagFieldsFilled.WithLabelValues(parser).Add(float64(fieldsFilled))
}

func (o *resolverObserver) ObserveDiagnostic(code resolver.Code) {
	DiagnosticsTotal.WithLabelValues(string(code)).Inc()
}

// tagObserver implements audiotag.Observer and probe.Observer.
type tagObserver struct{}

// NewTagObserver creates an observer for tag reads.
func NewTagObserver() audiotag.Observer {
	return &tagObserver{}
}

// NewProbeObserver creates an observer for content detection.
func NewProbeObserver() probe.Observer {
	return &tagObserver{}
}

func (o *tagObserver) ObserveTagRead(format string, durationSeconds float64) {
	TagReadsTotal.WithLabelValues(format).Inc()
	TagReadDuration.WithLabelValues(format).Observe(durationSeconds)
}

func (o *tagObserver) ObserveSniff(mime string, recognized bool, durationSeconds float64) {
	mime, _, _ = strings.Cut(mime, ";")
	ProbeSniffsTotal.WithLabelValues(mime, strconv.FormatBool(recognized)).Inc()
	ProbeSniffDuration.Observe(durationSeconds)
}

// catalogObserver implements catalog.Observer.
type catalogObserver struct{}

// NewCatalogObserver creates an observer for catalog queries.
func NewCatalogObserver() catalog.Observer {
	return &catalogObserver{}
}

func (o *catalogObserver) ObserveQuery(operation string, durationSeconds float64, err error) {
	CatalogQueryTotal.WithLabelValues(operation, status(err)).Inc()
	CatalogQueryDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// loaderObserver implements loader.Observer.
type loaderObserver struct{}

// NewLoaderObserver creates an observer for manifest reloads.
func NewLoaderObserver() loader.Observer {
	return &loaderObserver{}
}

func (o *loaderObserver) ObserveReload(err error) {
	ManifestReloadsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		ManifestLastReloadTimestamp.Set(float64(time.Now().Unix()))
	}
}

// InstallObservers points every instrumented package at this package's
// metrics.
func InstallObservers() {
	filesystem.SetObserver(NewFilesystemObserver())
	resolver.SetObserver(NewResolverObserver())
	audiotag.SetObserver(NewTagObserver())
	probe.SetObserver(NewProbeObserver())
	catalog.SetObserver(NewCatalogObserver())
	loader.SetObserver(NewLoaderObserver())
}
