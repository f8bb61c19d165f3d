package metrics

import (
	"media-resolver/internal/audiotag"
	"media-resolver/internal/plugin"
	"media-resolver/internal/resolver"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Registry ---
	for _, kind := range []plugin.Kind{plugin.KindUnpacker, plugin.KindTagParser, plugin.KindUnknown} {
		RegistrationsTotal.WithLabelValues(kind.String(), "success")
		RegistrationsTotal.WithLabelValues(kind.String(), "error")
		UnregistrationsTotal.WithLabelValues(kind.String())
	}
	for _, table := range []string{"unpack", "tagparser"} {
		RoutedSuffixes.WithLabelValues(table)
	}
	ManifestReloadsTotal.WithLabelValues("success")
	ManifestReloadsTotal.WithLabelValues("error")

	// --- Resolution ---
	for _, route := range []string{"unpacked", "single"} {
		LoadsTotal.WithLabelValues(route)
		LoadDuration.WithLabelValues(route)
	}
	for _, code := range []resolver.Code{
		resolver.CodeNoTagData, resolver.CodeNoProperties,
		resolver.CodeMalformedContainer, resolver.CodeIOFailure,
	} {
		DiagnosticsTotal.WithLabelValues(string(code))
	}

	// --- Tag reads by format ---
	for _, format := range []string{"ID3v1", "ID3v2.2", "ID3v2.3", "ID3v2.4", "MP4", "VORBIS", audiotag.FormatRIFF, "none"} {
		TagReadsTotal.WithLabelValues(format)
		TagReadDuration.WithLabelValues(format)
	}

	// --- Catalog query operations ---
	for _, op := range []string{"get", "put", "delete", "clear", "status"} {
		CatalogQueryTotal.WithLabelValues(op, "success")
		CatalogQueryTotal.WithLabelValues(op, "error")
		CatalogQueryDuration.WithLabelValues(op)
	}

	// --- Filesystem operation metrics (per volume × operation) ---
	volumes := []string{"media", "catalog", "unknown"}
	fsOps := []string{"stat", "open", "read"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)

			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
