package estimator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/flexflow/flexflow/internal/domain/model"
	"github.com/flexflow/flexflow/internal/domain/pose"
)

const (
	// defaultMinLatency and defaultMaxLatency bound the simulated
	// inference time per frame.
	defaultMinLatency = 5 * time.Millisecond
	defaultMaxLatency = 15 * time.Millisecond

	// defaultRandomSeed keeps latency sequences reproducible in tests.
	defaultRandomSeed = 42
)

// Synthetic is an in-process Estimator that replays a scripted sequence of
// estimates with simulated inference latency. It stands in for an on-device
// model during development and in tests.
type Synthetic struct {
	mu         sync.Mutex
	name       string
	script     []*pose.Estimate
	cursor     int
	loop       bool
	minLatency time.Duration
	maxLatency time.Duration
	rng        *rand.Rand
	lastTS     int64
	seenFrame  bool
	closed     bool
	closeCount int
}

// NewSynthetic creates a scripted estimator. Without options it replays a
// neutral standing pose forever with a small randomized latency.
func NewSynthetic(opts ...Option) *Synthetic {
	s := &Synthetic{
		name:       "synthetic",
		script:     []*pose.Estimate{StandingPose()},
		loop:       true,
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.minLatency < 0 {
		s.minLatency = 0
	}
	if s.maxLatency < s.minLatency {
		s.maxLatency = s.minLatency
	}
	return s
}

// Name implements Estimator.
func (s *Synthetic) Name() string { return s.name }

// Detect implements Estimator. It enforces the call contract: a closed
// estimator and a regressing timestamp are both caller bugs and reported
// as errors.
func (s *Synthetic) Detect(ctx context.Context, frame model.Frame, timestampMS int64) (*pose.Estimate, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if s.seenFrame && timestampMS < s.lastTS {
		s.mu.Unlock()
		return nil, ErrTimestampOrder
	}
	s.lastTS = timestampMS
	s.seenFrame = true
	latency := s.minLatency
	if span := s.maxLatency - s.minLatency; span > 0 {
		latency += time.Duration(s.rng.Int63n(int64(span)))
	}
	est := s.next()
	s.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(latency):
		}
	}
	return est, nil
}

// next advances the script cursor. Callers hold s.mu.
func (s *Synthetic) next() *pose.Estimate {
	if len(s.script) == 0 {
		return nil
	}
	if s.cursor >= len(s.script) {
		if !s.loop {
			return s.script[len(s.script)-1]
		}
		s.cursor = 0
	}
	est := s.script[s.cursor]
	s.cursor++
	return est
}

// Close implements Estimator.
func (s *Synthetic) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCount++
	s.closed = true
	return nil
}

// CloseCount reports how many times Close has been called. Tests use it to
// verify exactly-once teardown at the call sites that own the estimator.
func (s *Synthetic) CloseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeCount
}

// StandingPose returns a fully visible neutral pose: subject facing the
// camera, arms hanging straight down. Coordinates are normalized [0,1]
// with the origin at the top-left, matching the landmark convention.
func StandingPose() *pose.Estimate {
	est := &pose.Estimate{}
	for i := range est.Landmarks {
		est.Landmarks[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 0.95}
	}
	set := func(idx int, x, y float64) {
		est.Landmarks[idx] = pose.Landmark{X: x, Y: y, Visibility: 0.95}
	}
	set(pose.Nose, 0.50, 0.10)
	set(pose.LeftShoulder, 0.60, 0.25)
	set(pose.RightShoulder, 0.40, 0.25)
	set(pose.LeftElbow, 0.62, 0.40)
	set(pose.RightElbow, 0.38, 0.40)
	set(pose.LeftWrist, 0.63, 0.55)
	set(pose.RightWrist, 0.37, 0.55)
	set(pose.LeftIndex, 0.64, 0.58)
	set(pose.RightIndex, 0.36, 0.58)
	set(pose.LeftHip, 0.57, 0.55)
	set(pose.RightHip, 0.43, 0.55)
	set(pose.LeftKnee, 0.57, 0.75)
	set(pose.RightKnee, 0.43, 0.75)
	set(pose.LeftAnkle, 0.57, 0.92)
	set(pose.RightAnkle, 0.43, 0.92)
	set(pose.LeftHeel, 0.57, 0.95)
	set(pose.RightHeel, 0.43, 0.95)
	set(pose.LeftFootIndex, 0.58, 0.97)
	set(pose.RightFootIndex, 0.42, 0.97)
	return est
}
