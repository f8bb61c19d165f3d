package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"media-resolver/internal/middleware"
)

// RouterConfig selects the optional routes and middleware.
type RouterConfig struct {
	MetricsEnabled bool
}

// NewRouter registers the API, health and metrics routes. When metrics are
// enabled, request metrics are recorded per route template.
func NewRouter(h *Handlers, config RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead).Name("liveness")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet).Name("readiness")
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/resolve", h.Resolve).Methods(http.MethodGet).Name("resolve")
	api.HandleFunc("/resolve", h.ResolveBatch).Methods(http.MethodPost).Name("resolve-batch")
	api.HandleFunc("/plugins", h.ListPlugins).Methods(http.MethodGet).Name("plugins")
	api.HandleFunc("/plugins/reload", h.ReloadPlugins).Methods(http.MethodPost).Name("plugins-reload")
	api.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	if config.MetricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet).Name("metrics")
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
	}

	return r
}
