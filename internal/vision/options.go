package vision

import "time"

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSmoothingWindow sets how many readings per signal are averaged.
func WithSmoothingWindow(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.smoothingWindow = n
		}
	}
}

// WithIdlePoll sets how long the worker sleeps when no frame is pending.
func WithIdlePoll(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.idlePoll = d
		}
	}
}

// WithPublishInterval sets the minimum spacing between observer publishes.
func WithPublishInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.publishInterval = d
		}
	}
}

// WithMaxFrameWidth downscales frames wider than w before estimation.
// Zero disables scaling.
func WithMaxFrameWidth(w int) Option {
	return func(p *Pipeline) {
		if w >= 0 {
			p.maxFrameWidth = w
		}
	}
}
