package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/flexflow/flexflow/internal/adapters/http/api"
	"github.com/flexflow/flexflow/internal/adapters/publish"
	service "github.com/flexflow/flexflow/internal/app"
	"github.com/flexflow/flexflow/internal/domain/types"
	"github.com/flexflow/flexflow/internal/exercise"
	"github.com/flexflow/flexflow/pkg/logger"
)

func init() {
	logger.Init()
}

// Mock implementations for testing
type mockService struct {
	mu       sync.Mutex
	sessions map[string]types.MetricsSnapshot
	hubs     map[string]*publish.Hub
	startErr error
	nextID   int
}

func newMockService() *mockService {
	return &mockService{
		sessions: make(map[string]types.MetricsSnapshot),
		hubs:     make(map[string]*publish.Hub),
	}
}

func (m *mockService) StartSession(ctx context.Context, id string) (string, error) {
	if m.startErr != nil {
		return "", m.startErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		m.nextID++
		id = fmt.Sprintf("session-%d", m.nextID)
	}
	m.sessions[id] = types.DefaultSnapshot()
	return id, nil
}

func (m *mockService) StopSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockService) Sessions(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *mockService) Metrics(ctx context.Context, id string) (types.MetricsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.sessions[id]
	if !ok {
		return types.MetricsSnapshot{}, service.ErrSessionNotFound
	}
	return snap, nil
}

func (m *mockService) Hub(ctx context.Context, id string) (*publish.Hub, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hub, ok := m.hubs[id]
	if !ok {
		return nil, service.ErrSessionNotFound
	}
	return hub, nil
}

func (m *mockService) setMetrics(id string, snap types.MetricsSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = snap
}

type mockSearcher struct {
	results   []exercise.Summary
	err       error
	lastQuery string
	lastLimit int
}

func (m *mockSearcher) Search(ctx context.Context, query string, limit int) ([]exercise.Summary, error) {
	m.lastQuery = query
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// Local types mirroring the API wire shapes
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tokenResponse struct {
	ServerURL        string `json:"server_url"`
	ParticipantToken string `json:"participant_token"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type sessionListResponse struct {
	Sessions []string `json:"sessions"`
}

func newTestServer(deps api.Dependencies, search api.ExerciseSearcher, tokens api.TokenConfig) *http.ServeMux {
	statsProvider := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
	server := api.NewServer(deps, search, statsProvider, tokens, 10)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockService()
		search := &mockSearcher{results: []exercise.Summary{{Name: "Side Neck Stretch"}}}
		mux := newTestServer(deps, search, api.TokenConfig{})

		Convey("Then the health endpoint serves the metrics exposition", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "flexflow")
		})

		Convey("And the readiness endpoint reports ready", func() {
			req := httptest.NewRequest("GET", "/readyz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)

			var body map[string]string
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["status"], ShouldEqual, "ready")
		})

		Convey("And the stats endpoint is accessible", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)

			var body map[string]interface{}
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["started"], ShouldEqual, true)
		})

		Convey("And the exercises endpoint is accessible", func() {
			req := httptest.NewRequest("GET", "/api/v1/exercises?q=neck", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the token endpoint responds 503 without credentials", func() {
			req := httptest.NewRequest("POST", "/api/v1/token", strings.NewReader(`{"room":"r","identity":"i"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)

			var resp errorResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, "not_configured")
		})

		Convey("And unknown routes fall through to 404", func() {
			req := httptest.NewRequest("GET", "/api/v1/unknown", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTokenHandler(t *testing.T) {
	Convey("Given a token handler with signing credentials", t, func() {
		tokens := api.TokenConfig{
			APIKey:         "devkey",
			APISecret:      "devsecret-devsecret-devsecret-32",
			TTL:            2 * time.Hour,
			MediaServerURL: "wss://media.example.com",
		}
		handler := api.NewTokenHandler(tokens)

		Convey("When posting a valid request", func() {
			body := `{"room":"pt-room","identity":"user-7","name":"Dana"}`
			req := httptest.NewRequest("POST", "/api/v1/token", strings.NewReader(body))
			w := httptest.NewRecorder()
			handler.HandleToken(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var resp tokenResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)

			Convey("Then the media URL is rewritten to HTTP form", func() {
				So(resp.ServerURL, ShouldEqual, "https://media.example.com")
			})

			Convey("Then the token carries the room grant claims", func() {
				claims := jwt.MapClaims{}
				parsed, err := jwt.ParseWithClaims(resp.ParticipantToken, claims, func(t *jwt.Token) (interface{}, error) {
					return []byte(tokens.APISecret), nil
				})
				So(err, ShouldBeNil)
				So(parsed.Valid, ShouldBeTrue)
				So(parsed.Method.Alg(), ShouldEqual, "HS256")

				So(claims["iss"], ShouldEqual, "devkey")
				So(claims["sub"], ShouldEqual, "user-7")
				So(claims["name"], ShouldEqual, "Dana")

				video, ok := claims["video"].(map[string]interface{})
				So(ok, ShouldBeTrue)
				So(video["room"], ShouldEqual, "pt-room")
				So(video["roomJoin"], ShouldEqual, true)
				So(video["canPublish"], ShouldEqual, true)
				So(video["canSubscribe"], ShouldEqual, true)

				exp, ok := claims["exp"].(float64)
				So(ok, ShouldBeTrue)
				So(exp, ShouldAlmostEqual, float64(time.Now().Add(2*time.Hour).Unix()), 10)
			})
		})

		Convey("When the room is missing", func() {
			req := httptest.NewRequest("POST", "/api/v1/token", strings.NewReader(`{"identity":"u"}`))
			w := httptest.NewRecorder()
			handler.HandleToken(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			var resp errorResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Message, ShouldContainSubstring, "missing room")
		})

		Convey("When the identity is missing", func() {
			req := httptest.NewRequest("POST", "/api/v1/token", strings.NewReader(`{"room":"r","identity":"  "}`))
			w := httptest.NewRecorder()
			handler.HandleToken(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is not JSON", func() {
			req := httptest.NewRequest("POST", "/api/v1/token", strings.NewReader(`{broken`))
			w := httptest.NewRecorder()
			handler.HandleToken(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is GET", func() {
			req := httptest.NewRequest("GET", "/api/v1/token", nil)
			w := httptest.NewRecorder()
			handler.HandleToken(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSessionsHandler(t *testing.T) {
	Convey("Given a sessions handler", t, func() {
		deps := newMockService()
		handler := api.NewSessionsHandler(deps)

		Convey("When posting with an explicit session ID", func() {
			req := httptest.NewRequest("POST", "/api/v1/sessions", strings.NewReader(`{"session_id":"cam-1"}`))
			w := httptest.NewRecorder()
			handler.HandleSessions(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var resp sessionResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.SessionID, ShouldEqual, "cam-1")
			So(resp.Status, ShouldEqual, "started")
		})

		Convey("When posting an empty body", func() {
			req := httptest.NewRequest("POST", "/api/v1/sessions", strings.NewReader(""))
			w := httptest.NewRecorder()
			handler.HandleSessions(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var resp sessionResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.SessionID, ShouldNotBeEmpty)
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest("POST", "/api/v1/sessions", strings.NewReader(`{"session_id":`))
			w := httptest.NewRecorder()
			handler.HandleSessions(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service is not started", func() {
			deps.startErr = service.ErrNotStarted
			req := httptest.NewRequest("POST", "/api/v1/sessions", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			handler.HandleSessions(w, req)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When listing sessions", func() {
			_, err := deps.StartSession(context.Background(), "b-cam")
			So(err, ShouldBeNil)
			_, err = deps.StartSession(context.Background(), "a-cam")
			So(err, ShouldBeNil)

			req := httptest.NewRequest("GET", "/api/v1/sessions", nil)
			w := httptest.NewRecorder()
			handler.HandleSessions(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var resp sessionListResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Sessions, ShouldResemble, []string{"a-cam", "b-cam"})
		})

		Convey("When deleting an existing session", func() {
			_, err := deps.StartSession(context.Background(), "cam-9")
			So(err, ShouldBeNil)

			req := httptest.NewRequest("DELETE", "/api/v1/sessions/cam-9", nil)
			w := httptest.NewRecorder()
			handler.HandleSessionByID(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var resp sessionResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Status, ShouldEqual, "stopped")
			So(deps.Sessions(context.Background()), ShouldBeEmpty)
		})

		Convey("When deleting an unknown session", func() {
			req := httptest.NewRequest("DELETE", "/api/v1/sessions/ghost", nil)
			w := httptest.NewRecorder()
			handler.HandleSessionByID(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)

			var resp errorResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, "not_found")
		})

		Convey("When the session path is nested", func() {
			req := httptest.NewRequest("DELETE", "/api/v1/sessions/a/b", nil)
			w := httptest.NewRecorder()
			handler.HandleSessionByID(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using an unsupported method on the collection", func() {
			req := httptest.NewRequest("PUT", "/api/v1/sessions", nil)
			w := httptest.NewRecorder()
			handler.HandleSessions(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsHandler(t *testing.T) {
	Convey("Given a metrics handler with one session", t, func() {
		deps := newMockService()
		_, err := deps.StartSession(context.Background(), "cam-1")
		So(err, ShouldBeNil)
		deps.setMetrics("cam-1", types.MetricsSnapshot{
			IsUpperBodyOnly: false,
			NeckAngle:       12.5,
			ArmAngles:       types.ArmAngles{LeftElbow: 176.2, RightElbow: 175.8},
			PointedBodyPart: "Left Shoulder",
		})
		handler := api.NewMetricsHandler(deps)

		Convey("When requesting metrics for the session", func() {
			req := httptest.NewRequest("GET", "/api/v1/metrics/cam-1", nil)
			w := httptest.NewRecorder()
			handler.HandleGetMetrics(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var snap types.MetricsSnapshot
			So(json.NewDecoder(w.Body).Decode(&snap), ShouldBeNil)
			So(snap.NeckAngle, ShouldEqual, 12.5)
			So(snap.ArmAngles.LeftElbow, ShouldEqual, 176.2)
			So(snap.PointedBodyPart, ShouldEqual, "Left Shoulder")
			So(snap.IsUpperBodyOnly, ShouldBeFalse)
		})

		Convey("When requesting metrics for an unknown session", func() {
			req := httptest.NewRequest("GET", "/api/v1/metrics/ghost", nil)
			w := httptest.NewRecorder()
			handler.HandleGetMetrics(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the path is malformed", func() {
			req := httptest.NewRequest("GET", "/api/v1/metrics/a/b", nil)
			w := httptest.NewRecorder()
			handler.HandleGetMetrics(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When using POST", func() {
			req := httptest.NewRequest("POST", "/api/v1/metrics/cam-1", nil)
			w := httptest.NewRecorder()
			handler.HandleGetMetrics(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestExercisesHandler(t *testing.T) {
	Convey("Given an exercises handler", t, func() {
		search := &mockSearcher{results: []exercise.Summary{
			{Name: "Side Neck Stretch", Category: "stretching"},
			{Name: "Neck-SMR", Category: "stretching"},
		}}
		handler := api.NewExercisesHandler(search, 10)

		Convey("When searching with a query", func() {
			req := httptest.NewRequest("GET", "/api/v1/exercises?q=neck+stretch", nil)
			w := httptest.NewRecorder()
			handler.HandleSearch(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			var results []exercise.Summary
			So(json.NewDecoder(w.Body).Decode(&results), ShouldBeNil)
			So(len(results), ShouldEqual, 2)
			So(results[0].Name, ShouldEqual, "Side Neck Stretch")
			So(search.lastQuery, ShouldEqual, "neck stretch")
		})

		Convey("When the query is missing", func() {
			req := httptest.NewRequest("GET", "/api/v1/exercises", nil)
			w := httptest.NewRecorder()
			handler.HandleSearch(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit is not a number", func() {
			req := httptest.NewRequest("GET", "/api/v1/exercises?q=neck&limit=lots", nil)
			w := httptest.NewRecorder()
			handler.HandleSearch(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit is zero", func() {
			req := httptest.NewRequest("GET", "/api/v1/exercises?q=neck&limit=0", nil)
			w := httptest.NewRecorder()
			handler.HandleSearch(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the limit exceeds the configured maximum", func() {
			req := httptest.NewRequest("GET", "/api/v1/exercises?q=neck&limit=100", nil)
			w := httptest.NewRecorder()
			handler.HandleSearch(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(search.lastLimit, ShouldEqual, 10)
		})

		Convey("When the catalog fetch fails", func() {
			search.err = fmt.Errorf("%w: upstream 502", exercise.ErrCatalogFetch)
			req := httptest.NewRequest("GET", "/api/v1/exercises?q=neck", nil)
			w := httptest.NewRecorder()
			handler.HandleSearch(w, req)
			So(w.Code, ShouldEqual, http.StatusBadGateway)

			var resp errorResponse
			So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
			So(resp.Code, ShouldEqual, "catalog_unavailable")
		})

		Convey("When the search fails for another reason", func() {
			search.err = fmt.Errorf("boom")
			req := httptest.NewRequest("GET", "/api/v1/exercises?q=neck", nil)
			w := httptest.NewRecorder()
			handler.HandleSearch(w, req)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestWSHandler(t *testing.T) {
	Convey("Given a server with a live landmark hub", t, func() {
		deps := newMockService()
		hub := publish.NewHub()
		defer func() { _ = hub.Close() }()
		deps.hubs["cam-1"] = hub
		_, err := deps.StartSession(context.Background(), "cam-1")
		So(err, ShouldBeNil)

		search := &mockSearcher{}
		mux := newTestServer(deps, search, api.TokenConfig{})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

		Convey("When a client subscribes to the session feed", func() {
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws/landmarks/cam-1", nil)
			So(err, ShouldBeNil)
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
			defer func() { _ = conn.Close() }()

			Convey("Then published events reach the client", func() {
				ev := publish.Event{
					SessionID:   "cam-1",
					TimestampMS: time.Now().UnixMilli(),
					Landmarks:   []types.LandmarkPoint{{X: 0.5, Y: 0.5, Z: 0, V: 0.99}},
				}
				// Attach pumps start asynchronously; retry briefly.
				deadline := time.Now().Add(2 * time.Second)
				for hub.Subscribers() == 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(hub.Publish(context.Background(), ev), ShouldBeNil)

				So(conn.SetReadDeadline(time.Now().Add(2*time.Second)), ShouldBeNil)
				_, data, err := conn.ReadMessage()
				So(err, ShouldBeNil)

				var got publish.Event
				So(json.Unmarshal(data, &got), ShouldBeNil)
				So(got.SessionID, ShouldEqual, "cam-1")
				So(len(got.Landmarks), ShouldEqual, 1)
				So(got.Landmarks[0].V, ShouldEqual, 0.99)
			})
		})

		Convey("When a client subscribes to an unknown session", func() {
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws/landmarks/ghost", nil)
			So(err, ShouldNotBeNil)
			So(conn, ShouldBeNil)
			So(resp, ShouldNotBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			_ = resp.Body.Close()
		})
	})
}
