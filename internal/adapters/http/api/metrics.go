// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
)

// MetricsDependencies defines the interface for snapshot reads.
type MetricsDependencies interface {
	Metrics(ctx context.Context, id string) (Snapshot, error)
}

// MetricsHandler handles body metrics requests.
type MetricsHandler struct {
	deps MetricsDependencies
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(deps MetricsDependencies) *MetricsHandler {
	return &MetricsHandler{deps: deps}
}

// HandleGetMetrics handles GET /api/v1/metrics/{session_id} requests. It
// returns whatever the session's whiteboard currently holds; before the
// first committed frame that is the default snapshot.
func (h *MetricsHandler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /api/v1/metrics/
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/metrics/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	snap, err := h.deps.Metrics(r.Context(), id)
	if err != nil {
		if isSessionNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
