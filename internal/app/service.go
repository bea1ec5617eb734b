// Package service provides the session registry that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flexflow/flexflow/internal/adapters/estimator"
	"github.com/flexflow/flexflow/internal/adapters/framecell"
	"github.com/flexflow/flexflow/internal/adapters/publish"
	"github.com/flexflow/flexflow/internal/adapters/video"
	"github.com/flexflow/flexflow/internal/adapters/whiteboard"
	"github.com/flexflow/flexflow/internal/domain/types"
	"github.com/flexflow/flexflow/internal/vision"
	"github.com/flexflow/flexflow/pkg/logger"
	"github.com/flexflow/flexflow/pkg/metrics"
)

// Default session configuration constants.
const (
	defaultSmoothingWindow = 5
	defaultIdlePoll        = 50 * time.Millisecond
	defaultPublishInterval = 100 * time.Millisecond
	defaultSyntheticFPS    = 30
	defaultFrameMaxWidth   = 640
)

// session bundles one running pipeline with the components the API reads.
type session struct {
	id        string
	pipeline  *vision.Pipeline
	board     whiteboard.Board
	cell      framecell.Cell
	hub       *publish.Hub
	startedAt time.Time
}

// Service owns the vision pipelines: at most one per session ID. Starting
// an ID that is already running closes the predecessor first, so the two
// never overlap on the estimator or the frame cell.
type Service struct {
	// startMu serializes session mutations (start, stop, shutdown) so a
	// replacement can never race a concurrent start of the same ID. The
	// registry itself stays readable throughout.
	startMu sync.Mutex

	mu        sync.RWMutex
	sessions  map[string]*session
	started   bool
	startedAt time.Time

	// Per-session pipeline configuration
	smoothingWindow int
	idlePoll        time.Duration
	publishInterval time.Duration
	syntheticFPS    int
	frameMaxWidth   int
	modelPath       string
	mqttBroker      string
	mqttTopic       string

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSmoothingWindow sets how many readings per signal a session averages.
func WithSmoothingWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.smoothingWindow = n
		}
	}
}

// WithIdlePoll sets how long a session worker sleeps when no frame is
// pending.
func WithIdlePoll(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.idlePoll = d
		}
	}
}

// WithPublishInterval sets the minimum spacing between landmark publishes.
func WithPublishInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishInterval = d
		}
	}
}

// WithSyntheticFPS sets the frame rate of the synthetic video source.
func WithSyntheticFPS(fps int) Option {
	return func(s *Service) {
		if fps > 0 {
			s.syntheticFPS = fps
		}
	}
}

// WithFrameMaxWidth downscales frames wider than w before estimation.
// Zero disables scaling.
func WithFrameMaxWidth(w int) Option {
	return func(s *Service) {
		if w >= 0 {
			s.frameMaxWidth = w
		}
	}
}

// WithModelPath sets the pose model asset path. Empty selects the
// synthetic estimator.
func WithModelPath(path string) Option {
	return func(s *Service) {
		s.modelPath = path
	}
}

// WithMQTT mirrors landmark publishes to an MQTT broker in addition to the
// per-session websocket hub.
func WithMQTT(broker, topic string) Option {
	return func(s *Service) {
		s.mqttBroker = broker
		s.mqttTopic = topic
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:        make(map[string]*session),
		smoothingWindow: defaultSmoothingWindow,
		idlePoll:        defaultIdlePoll,
		publishInterval: defaultPublishInterval,
		syntheticFPS:    defaultSyntheticFPS,
		frameMaxWidth:   defaultFrameMaxWidth,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start marks the service ready to accept sessions.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "session service started",
		logger.Int("smoothingWindow", s.smoothingWindow),
		logger.Int("syntheticFPS", s.syntheticFPS),
		logger.Duration("publishInterval", s.publishInterval),
	)
	return nil
}

// Stop closes every running session and rejects new starts. It returns
// once all pipelines have released their resources.
func (s *Service) Stop() {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	closing := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		closing = append(closing, sess)
	}
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range closing {
		_ = sess.pipeline.Close()
		metrics.RecordSessionStopped()
	}
	metrics.UpdateActiveSessions(0)

	s.logger.Info(context.Background(), "session service stopped",
		logger.Int("closed", len(closing)))
}

// StartSession launches a pipeline for id, generating a UUID when id is
// empty. Starting an ID that is already running replaces the old pipeline;
// the predecessor is fully closed before the successor starts.
func (s *Service) StartSession(ctx context.Context, id string) (string, error) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return "", ErrNotStarted
	}

	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	old := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if old != nil {
		metrics.RecordSessionReplacement()
		s.logger.Info(ctx, "replacing running session", logger.String("session", id))
		_ = old.pipeline.Close()
	}

	sess, err := s.buildSession(ctx, id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.RecordSessionStarted()
	metrics.UpdateActiveSessions(n)
	s.logger.Info(ctx, "session started",
		logger.String("session", id), logger.Int("active", n))
	return id, nil
}

// StopSession stops a running session and releases its resources.
func (s *Service) StopSession(ctx context.Context, id string) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	_ = sess.pipeline.Close()
	metrics.RecordSessionStopped()
	metrics.UpdateActiveSessions(n)
	s.logger.Info(ctx, "session stopped",
		logger.String("session", id), logger.Int("active", n))
	return nil
}

// Sessions returns the IDs of all running sessions, sorted.
func (s *Service) Sessions(ctx context.Context) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Metrics returns the current whiteboard snapshot for a session.
func (s *Service) Metrics(ctx context.Context, id string) (types.MetricsSnapshot, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return types.MetricsSnapshot{}, ErrSessionNotFound
	}
	return sess.board.Snapshot(ctx), nil
}

// Hub returns the websocket fan-out hub for a session so the API can
// attach observer connections.
func (s *Service) Hub(ctx context.Context, id string) (*publish.Hub, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.hub, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"active_sessions": len(s.sessions),
	}
	if s.started {
		stats["uptime_seconds"] = int64(time.Since(s.startedAt).Seconds())
	}

	var delivered, dropped, processed uint64
	perSession := make(map[string]interface{}, len(s.sessions))
	for id, sess := range s.sessions {
		cs := sess.cell.Stats()
		delivered += cs.Delivered
		dropped += cs.Dropped
		processed += cs.Consumed

		perSession[id] = map[string]interface{}{
			"uptime_seconds":     int64(time.Since(sess.startedAt).Seconds()),
			"frames_delivered":   cs.Delivered,
			"frames_dropped":     cs.Dropped,
			"frames_processed":   cs.Consumed,
			"last_processed_seq": cs.LastConsumedSeq,
			"subscribers":        sess.hub.Subscribers(),
		}
	}
	stats["sessions"] = perSession
	stats["frames_delivered"] = delivered
	stats["frames_dropped"] = dropped
	stats["frames_processed"] = processed

	return stats
}

// buildSession assembles the per-session components and starts the
// pipeline. On a failed start every component built here is released.
func (s *Service) buildSession(ctx context.Context, id string) (*session, error) {
	board := whiteboard.NewInMemoryBoard()
	cell := framecell.NewInMemoryCell()
	hub := publish.NewHub()

	var pub publish.Publisher = hub
	if s.mqttBroker != "" {
		m := publish.NewMQTT(s.mqttBroker, s.mqttTopic)
		if err := m.Connect(ctx); err != nil {
			// The client keeps retrying in the background; landmark
			// publishes fail soft until the broker is reachable.
			s.logger.Warn(ctx, "mqtt connect failed",
				logger.String("broker", s.mqttBroker), logger.Error(err))
		}
		pub = publish.Multi{hub, m}
	}

	source := video.NewSynthetic(video.WithFPS(s.syntheticFPS))

	p := vision.NewPipeline(id, source, s.estimatorFactory(), cell, board, pub,
		vision.WithSmoothingWindow(s.smoothingWindow),
		vision.WithIdlePoll(s.idlePoll),
		vision.WithPublishInterval(s.publishInterval),
		vision.WithMaxFrameWidth(s.frameMaxWidth),
	)

	// The pipeline must outlive the request that started it.
	if err := p.Start(context.WithoutCancel(ctx)); err != nil {
		_ = cell.Close()
		_ = source.Close()
		_ = pub.Close()
		return nil, err
	}

	return &session{
		id:        id,
		pipeline:  p,
		board:     board,
		cell:      cell,
		hub:       hub,
		startedAt: time.Now(),
	}, nil
}

// estimatorFactory returns the backend factory for new sessions.
// TODO: wire an on-device pose backend behind modelPath; until then every
// session runs the synthetic estimator.
func (s *Service) estimatorFactory() estimator.Factory {
	if s.modelPath != "" {
		s.logger.Warn(context.Background(), "no on-device backend built in, using synthetic estimator",
			logger.String("modelPath", s.modelPath))
	}
	return func(context.Context) (estimator.Estimator, error) {
		return estimator.NewSynthetic(), nil
	}
}
