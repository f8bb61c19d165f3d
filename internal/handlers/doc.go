// Package handlers provides the HTTP API of the media resolver.
//
// Routes registered by [NewRouter]:
//
//	GET  /api/resolve?path=P     resolve one path
//	POST /api/resolve            resolve {"paths": [...]} concurrently
//	GET  /api/plugins            registered agents and built-in factories
//	POST /api/plugins/reload     re-apply the plugin manifest
//	GET  /healthz /livez /readyz health probes
//	GET  /version                build information
//	GET  /metrics                Prometheus metrics (when enabled)
//
// Resolution never fails with an HTTP error for an unreadable or malformed
// file: soft failures are reported in each result's diagnostics.
package handlers
