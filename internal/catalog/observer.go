package catalog

import "time"

// Observer records catalog query metrics. Implementations are provided by
// the metrics package.
type Observer interface {
	ObserveQuery(operation string, durationSeconds float64, err error)
}

var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	if defaultObserver == nil {
		return
	}
	defaultObserver.ObserveQuery(operation, time.Since(start).Seconds(), err)
}
