package estimator

import (
	"math/rand"
	"time"

	"github.com/flexflow/flexflow/internal/domain/pose"
)

// Option configures a Synthetic estimator.
type Option func(*Synthetic)

// WithName overrides the backend identifier.
func WithName(name string) Option {
	return func(s *Synthetic) {
		if name != "" {
			s.name = name
		}
	}
}

// WithScript replaces the scripted estimates. A nil entry means "no subject
// in this frame". The script replays from the start once exhausted unless
// WithHoldLast is set.
func WithScript(script []*pose.Estimate) Option {
	return func(s *Synthetic) {
		s.script = script
	}
}

// WithHoldLast makes an exhausted script repeat its final entry instead of
// looping back to the start.
func WithHoldLast() Option {
	return func(s *Synthetic) {
		s.loop = false
	}
}

// WithLatencyRange sets the simulated inference latency bounds.
func WithLatencyRange(min, max time.Duration) Option {
	return func(s *Synthetic) {
		s.minLatency = min
		s.maxLatency = max
	}
}

// WithSeed makes the latency sequence reproducible across runs.
func WithSeed(seed int64) Option {
	return func(s *Synthetic) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}
