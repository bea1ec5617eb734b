// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	service "github.com/flexflow/flexflow/internal/app"
)

// SessionDependencies defines the interface for session lifecycle operations.
type SessionDependencies interface {
	StartSession(ctx context.Context, id string) (string, error)
	StopSession(ctx context.Context, id string) error
	Sessions(ctx context.Context) []string
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status,omitempty"`
}

type sessionListResponse struct {
	Sessions []string `json:"sessions"`
}

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleSessions handles POST and GET /api/v1/sessions requests.
func (h *SessionsHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.startSession(w, r)
	case http.MethodGet:
		h.listSessions(w, r)
	default:
		http.NotFound(w, r)
	}
}

// startSession starts a pipeline. The body may name a session ID; an empty
// or absent body gets a generated one. Reposting an ID replaces that
// session's pipeline.
func (h *SessionsHandler) startSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	id, err := h.deps.StartSession(r.Context(), strings.TrimSpace(req.SessionID))
	if err != nil {
		if errors.Is(err, service.ErrNotStarted) {
			writeError(w, http.StatusServiceUnavailable, "not_ready", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Status: "started"})
}

func (h *SessionsHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	ids := h.deps.Sessions(r.Context())
	writeJSON(w, http.StatusOK, sessionListResponse{Sessions: ids})
}

// HandleSessionByID handles DELETE /api/v1/sessions/{id} requests.
func (h *SessionsHandler) HandleSessionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /api/v1/sessions/
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.StopSession(r.Context(), id); err != nil {
		if isSessionNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: id, Status: "stopped"})
}
