// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 6 * time.Hour

// videoGrant is the room permission claim media clients expect.
type videoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// roomTokenClaims is the signed payload of an issued access token.
type roomTokenClaims struct {
	Name  string     `json:"name,omitempty"`
	Video videoGrant `json:"video"`
	jwt.RegisteredClaims
}

type tokenRequest struct {
	Room     string `json:"room"`
	Identity string `json:"identity"`
	Name     string `json:"name"`
}

func (t tokenRequest) validate() error {
	switch {
	case strings.TrimSpace(t.Room) == "":
		return errors.New("missing room")
	case strings.TrimSpace(t.Identity) == "":
		return errors.New("missing identity")
	}
	return nil
}

type tokenResponse struct {
	ServerURL        string `json:"server_url"`
	ParticipantToken string `json:"participant_token"`
}

// TokenHandler issues media room access tokens.
type TokenHandler struct {
	cfg TokenConfig
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(cfg TokenConfig) *TokenHandler {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	return &TokenHandler{cfg: cfg}
}

// HandleToken handles POST /api/v1/token requests. The response carries an
// HS256 room-grant token plus the media server URL clients connect to.
func (h *TokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if h.cfg.APIKey == "" || h.cfg.APISecret == "" {
		writeError(w, http.StatusServiceUnavailable, "not_configured", ErrNotConfigured)
		return
	}
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	signed, err := h.sign(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		ServerURL:        httpServerURL(h.cfg.MediaServerURL),
		ParticipantToken: signed,
	})
}

func (h *TokenHandler) sign(req tokenRequest) (string, error) {
	now := time.Now()
	claims := roomTokenClaims{
		Name: req.Name,
		Video: videoGrant{
			Room:         req.Room,
			RoomJoin:     true,
			CanPublish:   true,
			CanSubscribe: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    h.cfg.APIKey,
			Subject:   req.Identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.APISecret))
	if err != nil {
		return "", fmt.Errorf("signing room token: %w", err)
	}
	return signed, nil
}

// httpServerURL rewrites a websocket media URL into the HTTP form token
// clients dial first.
func httpServerURL(u string) string {
	return strings.NewReplacer("wss://", "https://", "ws://", "http://").Replace(u)
}
