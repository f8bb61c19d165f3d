package loader

// Observer records manifest reload metrics. Implementations are provided by
// the metrics package.
type Observer interface {
	ObserveReload(err error)
}

var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observeReload(err error) {
	if defaultObserver != nil {
		defaultObserver.ObserveReload(err)
	}
}
