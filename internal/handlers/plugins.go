package handlers

import (
	"net/http"

	"media-resolver/internal/loader"
	"media-resolver/internal/resolver"
)

// PluginsResponse lists registered agents and the available built-ins.
type PluginsResponse struct {
	Manifest   string               `json:"manifest,omitempty"`
	Registered []resolver.AgentInfo `json:"registered"`
	Builtins   []loader.Info        `json:"builtins"`
	Failed     []string             `json:"failed,omitempty"`
}

// ListPlugins returns the registered agents in registration order together
// with the built-in agents and their option schemas.
func (h *Handlers) ListPlugins(w http.ResponseWriter, _ *http.Request) {
	var manifest *loader.Manifest
	if h.loader != nil {
		manifest = h.loader.Manifest()
	}
	resp := PluginsResponse{
		Registered: h.resolver.Agents(),
		Builtins:   loader.Describe(manifest),
	}
	if resp.Registered == nil {
		resp.Registered = []resolver.AgentInfo{}
	}
	if h.loader != nil {
		resp.Manifest = h.loader.Path()
		resp.Failed = h.loader.Report().Failed
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, http.StatusOK, resp)
}

// ReloadPlugins re-reads the manifest and replaces the registered agents.
// A manifest that cannot be applied leaves the registry untouched and is
// reported as 422.
func (h *Handlers) ReloadPlugins(w http.ResponseWriter, _ *http.Request) {
	if h.loader == nil {
		writeJSONError(w, "plugin reload is not available", http.StatusNotImplemented)
		return
	}

	report, err := h.loader.Reload()
	if err != nil && len(report.Registered) == 0 && len(report.Failed) == 0 {
		writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := struct {
		loader.Report
		Error string `json:"error,omitempty"`
	}{Report: report}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSONResponse(w, http.StatusOK, resp)
}
