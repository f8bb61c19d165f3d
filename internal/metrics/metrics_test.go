package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"media-resolver/internal/plugin"
	"media-resolver/internal/resolver"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestResolverObserver(t *testing.T) {
	o := NewResolverObserver()

	before := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("unpacker", "success"))
	o.ObserveRegistration(plugin.KindUnpacker, nil)
	if got := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("unpacker", "success")); got != before+1 {
		t.Errorf("registrations success = %v, want %v", got, before+1)
	}

	beforeErr := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("tagparser", "error"))
	o.ObserveRegistration(plugin.KindTagParser, errors.New("boom"))
	if got := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("tagparser", "error")); got != beforeErr+1 {
		t.Errorf("registrations error = %v, want %v", got, beforeErr+1)
	}

	beforeLoads := testutil.ToFloat64(LoadsTotal.WithLabelValues("unpacked"))
	o.ObserveLoad(true, 3, 0.01)
	if got := testutil.ToFloat64(LoadsTotal.WithLabelValues("unpacked")); got != beforeLoads+1 {
		t.Errorf("unpacked loads = %v, want %v", got, beforeLoads+1)
	}

	beforeFields := testutil.ToFloat64(TagFieldsFilled.WithLabelValues("audiotag"))
	o.ObserveTagFill("audiotag", 4)
	if got := testutil.ToFloat64(TagFieldsFilled.WithLabelValues("audiotag")); got != beforeFields+4 {
		t.Errorf("fields filled = %v, want %v", got, beforeFields+4)
	}

	beforeDiag := testutil.ToFloat64(DiagnosticsTotal.WithLabelValues(string(resolver.CodeIOFailure)))
	o.ObserveDiagnostic(resolver.CodeIOFailure)
	if got := testutil.ToFloat64(DiagnosticsTotal.WithLabelValues(string(resolver.CodeIOFailure))); got != beforeDiag+1 {
		t.Errorf("io_failure diagnostics = %v, want %v", got, beforeDiag+1)
	}
}

func TestFilesystemObserver(t *testing.T) {
	o := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("media", "open"))
	o.ObserveOperation("media", "open", 0.001, nil)
	o.ObserveOperation("media", "open", 0.001, errors.New("denied"))
	if got := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("media", "open")); got != before+1 {
		t.Errorf("operation errors = %v, want %v", got, before+1)
	}

	beforeStale := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("stat", "media"))
	o.ObserveStaleError("stat", "media")
	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("stat", "media")); got != beforeStale+1 {
		t.Errorf("stale errors = %v, want %v", got, beforeStale+1)
	}
}

func TestTagAndProbeObservers(t *testing.T) {
	before := testutil.ToFloat64(TagReadsTotal.WithLabelValues("VORBIS"))
	NewTagObserver().ObserveTagRead("VORBIS", 0.002)
	if got := testutil.ToFloat64(TagReadsTotal.WithLabelValues("VORBIS")); got != before+1 {
		t.Errorf("tag reads = %v, want %v", got, before+1)
	}

	beforeSniff := testutil.ToFloat64(ProbeSniffsTotal.WithLabelValues("text/plain", "false"))
	NewProbeObserver().ObserveSniff("text/plain; charset=utf-8", false, 0.001)
	if got := testutil.ToFloat64(ProbeSniffsTotal.WithLabelValues("text/plain", "false")); got != beforeSniff+1 {
		t.Errorf("probe sniffs = %v, want %v", got, beforeSniff+1)
	}
}

func TestCatalogAndLoaderObservers(t *testing.T) {
	before := testutil.ToFloat64(CatalogQueryTotal.WithLabelValues("get", "error"))
	NewCatalogObserver().ObserveQuery("get", 0.001, errors.New("locked"))
	if got := testutil.ToFloat64(CatalogQueryTotal.WithLabelValues("get", "error")); got != before+1 {
		t.Errorf("catalog errors = %v, want %v", got, before+1)
	}

	beforeOK := testutil.ToFloat64(ManifestReloadsTotal.WithLabelValues("success"))
	NewLoaderObserver().ObserveReload(nil)
	if got := testutil.ToFloat64(ManifestReloadsTotal.WithLabelValues("success")); got != beforeOK+1 {
		t.Errorf("reloads = %v, want %v", got, beforeOK+1)
	}
	if testutil.ToFloat64(ManifestLastReloadTimestamp) == 0 {
		t.Error("last reload timestamp not set")
	}
}

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics()

	if n := testutil.CollectAndCount(DiagnosticsTotal); n < 4 {
		t.Errorf("DiagnosticsTotal series = %d, want at least 4", n)
	}
	if n := testutil.CollectAndCount(FilesystemRetryAttempts); n < 9 {
		t.Errorf("FilesystemRetryAttempts series = %d, want at least 9", n)
	}
	if n := testutil.CollectAndCount(CatalogQueryTotal); n < 10 {
		t.Errorf("CatalogQueryTotal series = %d, want at least 10", n)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc123", "go1.25")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc123", "go1.25")); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}
