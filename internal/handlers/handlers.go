package handlers

import (
	"time"

	"media-resolver/internal/loader"
	"media-resolver/internal/resolver"
)

// MaxBatchPaths bounds the number of paths in one batch resolve request.
const MaxBatchPaths = 1000

// Handlers serves the resolver over HTTP.
type Handlers struct {
	resolver *resolver.Resolver
	loader   *loader.Loader
	started  time.Time
}

// New returns handlers over r. l may be nil, in which case plugin reloads
// are refused and the manifest is not reported.
func New(r *resolver.Resolver, l *loader.Loader) *Handlers {
	return &Handlers{
		resolver: r,
		loader:   l,
		started:  time.Now(),
	}
}
