package audiotag

import "time"

// Observer records tag read metrics. Implementations are provided by the
// metrics package.
type Observer interface {
	// ObserveTagRead records one successful read. format is Tags.Format, or
	// "none" when the file carried no tag.
	ObserveTagRead(format string, durationSeconds float64)
}

var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observeRead(t *Tags, d time.Duration) {
	if defaultObserver == nil {
		return
	}
	format := t.Format
	if format == "" {
		format = "none"
	}
	defaultObserver.ObserveTagRead(format, d.Seconds())
}
