// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/flexflow/flexflow/internal/app"
	"github.com/flexflow/flexflow/internal/domain/types"
	"github.com/flexflow/flexflow/internal/exercise"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	MetricsDependencies
	LandmarkDependencies
}

// ExerciseSearcher serves exercise catalog queries.
type ExerciseSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]exercise.Summary, error)
}

// Snapshot mirrors the read shape returned by metrics queries.
type Snapshot = types.MetricsSnapshot

// TokenConfig carries the room token signing material. Zero credentials
// leave the token endpoint responding 503.
type TokenConfig struct {
	APIKey         string
	APISecret      string
	TTL            time.Duration
	MediaServerURL string
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	tokenHandler     *TokenHandler
	sessionsHandler  *SessionsHandler
	metricsHandler   *MetricsHandler
	exercisesHandler *ExercisesHandler
	wsHandler        *WSHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, search ExerciseSearcher, statsProvider StatsProvider, tokens TokenConfig, maxSearchLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		tokenHandler:     NewTokenHandler(tokens),
		sessionsHandler:  NewSessionsHandler(deps),
		metricsHandler:   NewMetricsHandler(deps),
		exercisesHandler: NewExercisesHandler(search, maxSearchLimit),
		wsHandler:        NewWSHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/token", MetricsMiddleware(s.tokenHandler.HandleToken, "token"))
	mux.HandleFunc("/api/v1/sessions", MetricsMiddleware(s.sessionsHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/api/v1/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSessionByID, "session_by_id"))
	mux.HandleFunc("/api/v1/metrics/", MetricsMiddleware(s.metricsHandler.HandleGetMetrics, "metrics"))
	mux.HandleFunc("/api/v1/exercises", MetricsMiddleware(s.exercisesHandler.HandleSearch, "exercises"))
	// The upgrader needs the raw ResponseWriter (http.Hijacker), so the
	// websocket route skips the metrics wrapper.
	mux.HandleFunc("/ws/landmarks/", s.wsHandler.HandleLandmarks)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isSessionNotFound translates the service sentinel into a 404 decision.
func isSessionNotFound(err error) bool {
	return errors.Is(err, service.ErrSessionNotFound)
}
