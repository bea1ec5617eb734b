// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/flexflow/flexflow/internal/exercise"
)

// ExercisesHandler handles exercise catalog search requests.
type ExercisesHandler struct {
	search   ExerciseSearcher
	maxLimit int
}

// NewExercisesHandler creates a new exercises handler.
func NewExercisesHandler(search ExerciseSearcher, maxLimit int) *ExercisesHandler {
	return &ExercisesHandler{
		search:   search,
		maxLimit: maxLimit,
	}
}

// HandleSearch handles GET /api/v1/exercises?q=...&limit=N requests. The
// limit is optional and capped at the configured maximum.
func (h *ExercisesHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing q"))
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	matches, err := h.search.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, exercise.ErrCatalogFetch) {
			writeError(w, http.StatusBadGateway, "catalog_unavailable", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
