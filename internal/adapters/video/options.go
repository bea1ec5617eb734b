package video

// Option configures a Synthetic source.
type Option func(*Synthetic)

// WithFPS sets the frame rate.
func WithFPS(fps int) Option {
	return func(s *Synthetic) {
		s.fps = fps
	}
}

// WithDimensions sets the frame size in pixels.
func WithDimensions(width, height int) Option {
	return func(s *Synthetic) {
		s.width = width
		s.height = height
	}
}

// WithFrameLimit stops the stream after n frames. Zero means unlimited.
func WithFrameLimit(n uint64) Option {
	return func(s *Synthetic) {
		s.frameLimit = n
	}
}
