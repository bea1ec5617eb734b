// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/flexflow/flexflow/internal/adapters/publish"
)

// LandmarkDependencies defines the interface for attaching landmark
// observers to a session.
type LandmarkDependencies interface {
	Hub(ctx context.Context, id string) (*publish.Hub, error)
}

// The overlay page is served from this process but local tooling connects
// from other origins, so the check stays permissive.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WSHandler handles websocket landmark feed requests.
type WSHandler struct {
	deps LandmarkDependencies
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(deps LandmarkDependencies) *WSHandler {
	return &WSHandler{deps: deps}
}

// HandleLandmarks handles GET /ws/landmarks/{session_id} requests. The
// session is resolved before upgrading so unknown IDs still get a JSON 404.
func (h *WSHandler) HandleLandmarks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /ws/landmarks/
	id := strings.TrimPrefix(r.URL.Path, "/ws/landmarks/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	hub, err := h.deps.Hub(r.Context(), id)
	if err != nil {
		if isSessionNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		return
	}
	if err := hub.Attach(conn); err != nil {
		_ = conn.Close()
	}
}
