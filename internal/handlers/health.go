package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-resolver/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Registry summary
	Plugins         int      `json:"plugins"`
	UnpackRoutes    int      `json:"unpackRoutes"`
	TagParserRoutes int      `json:"tagParserRoutes"`
	Wildcard        bool     `json:"wildcard"`
	FailedPlugins   []string `json:"failedPlugins,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// ready reports whether the first manifest has been applied. Handlers
// without a loader are ready as soon as any agent is registered.
func (h *Handlers) ready() bool {
	if h.loader != nil {
		return h.loader.Manifest() != nil
	}
	return h.resolver.Len() > 0
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := h.resolver.Stats()

	response := HealthResponse{
		Ready:           h.ready(),
		Version:         startup.Version,
		Uptime:          time.Since(h.started).Round(time.Second).String(),
		Plugins:         stats.Agents,
		UnpackRoutes:    stats.UnpackRoutes,
		TagParserRoutes: stats.TagParserRoutes,
		Wildcard:        stats.HasWildcard,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	if response.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if h.loader != nil {
		if failed := h.loader.Report().Failed; len(failed) > 0 {
			response.FailedPlugins = failed
			response.Status = statusDegraded
		}
	}

	// Return 503 only if not ready at all
	statusCode := http.StatusOK
	if !response.Ready {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, statusCode, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.ready() {
		writeJSONStatus(w, "ready")
		return
	}
	writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
		"status": "not_ready",
	})
}
