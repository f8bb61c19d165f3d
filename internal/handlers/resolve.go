package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"media-resolver/internal/logging"
	"media-resolver/internal/mediaitem"
	"media-resolver/internal/resolver"
)

// ResolveRequest is the body of a batch resolve.
type ResolveRequest struct {
	Paths []string `json:"paths"`
}

// Resolve resolves the path given by the "path" query parameter.
func (h *Handlers) Resolve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		writeJSONError(w, "missing path parameter", http.StatusBadRequest)
		return
	}

	items, diags := h.resolver.LoadMedia(path)
	if failures := diags.Failures(); len(failures) > 0 {
		logging.Debug("Resolve %s: %v", path, failures)
	}

	writeJSONResponse(w, http.StatusOK, newResult(path, items, diags))
}

// ResolveBatch resolves every path of a ResolveRequest concurrently and
// returns the results in request order.
func (h *Handlers) ResolveBatch(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Paths) == 0 {
		writeJSONError(w, "paths must not be empty", http.StatusBadRequest)
		return
	}
	if len(req.Paths) > MaxBatchPaths {
		writeJSONError(w, fmt.Sprintf("too many paths (max %d)", MaxBatchPaths), http.StatusRequestEntityTooLarge)
		return
	}
	for i, p := range req.Paths {
		if strings.TrimSpace(p) == "" {
			writeJSONError(w, fmt.Sprintf("paths[%d] is empty", i), http.StatusBadRequest)
			return
		}
	}

	results, err := h.resolver.LoadMany(r.Context(), req.Paths)
	if err != nil {
		logging.Warn("Batch resolve of %d paths interrupted: %v", len(req.Paths), err)
		writeJSONError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	for i := range results {
		results[i] = newResult(results[i].Path, results[i].Items, results[i].Diagnostics)
	}
	writeJSONResponse(w, http.StatusOK, results)
}

// newResult builds a response entry that always carries an items array.
func newResult(path string, items []*mediaitem.Item, diags resolver.Diagnostics) resolver.Result {
	if items == nil {
		items = []*mediaitem.Item{}
	}
	return resolver.Result{Path: path, Items: items, Diagnostics: diags}
}
