package resolver

import "media-resolver/internal/plugin"

// Observer records resolver metrics. Implementations are provided by the
// metrics package to break the import cycle between resolver and metrics.
type Observer interface {
	// ObserveRegistration records a registration attempt; err is nil on success.
	ObserveRegistration(kind plugin.Kind, err error)
	ObserveUnregistration(kind plugin.Kind)

	// ObserveLoad records one LoadMedia call. unpacked reports whether an
	// unpacker produced the items.
	ObserveLoad(unpacked bool, items int, durationSeconds float64)
	// ObserveTagFill records one parser use and how many fields it filled.
	ObserveTagFill(parser string, fieldsFilled int)
	ObserveDiagnostic(code Code)
}

// defaultObserver is the package-level observer set at startup.
var defaultObserver Observer = nopObserver{}

// SetObserver sets the package-level metrics observer. Passing nil restores
// the no-op observer.
func SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}

type nopObserver struct{}

func (nopObserver) ObserveRegistration(plugin.Kind, error) {}
func (nopObserver) ObserveUnregistration(plugin.Kind)      {}
func (nopObserver) ObserveLoad(bool, int, float64)         {}
func (nopObserver) ObserveTagFill(string, int)             {}
func (nopObserver) ObserveDiagnostic(Code)                 {}
