package probe

import "time"

// Observer records content sniffing metrics. Implementations are provided by
// the metrics package.
type Observer interface {
	// ObserveSniff records one detection. recognized reports whether mime
	// mapped to a readable audio format.
	ObserveSniff(mime string, recognized bool, durationSeconds float64)
}

var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observeSniff(mime string, recognized bool, d time.Duration) {
	if defaultObserver == nil {
		return
	}
	defaultObserver.ObserveSniff(mime, recognized, d.Seconds())
}
