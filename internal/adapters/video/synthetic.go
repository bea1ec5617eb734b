package video

import (
	"context"
	"sync"
	"time"

	"github.com/flexflow/flexflow/internal/domain/model"
	"github.com/flexflow/flexflow/pkg/logger"
)

const (
	defaultFPS    = 30
	defaultWidth  = 640
	defaultHeight = 480
)

// Synthetic generates frames at a fixed rate with a moving test pattern.
// It stands in for a camera or media-server track during development.
type Synthetic struct {
	fps        int
	width      int
	height     int
	frameLimit uint64

	mu        sync.Mutex
	streaming bool
	stop      chan struct{}
	stopOnce  sync.Once
	log       logger.Logger
}

// NewSynthetic creates a synthetic source. Without options it produces
// 640x480 frames at 30 fps until stopped.
func NewSynthetic(opts ...Option) *Synthetic {
	s := &Synthetic{
		fps:    defaultFPS,
		width:  defaultWidth,
		height: defaultHeight,
		stop:   make(chan struct{}),
		log:    logger.Get().Named("video"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fps <= 0 {
		s.fps = defaultFPS
	}
	if s.width <= 0 {
		s.width = defaultWidth
	}
	if s.height <= 0 {
		s.height = defaultHeight
	}
	return s
}

// Frames implements Source.
func (s *Synthetic) Frames(ctx context.Context) (<-chan model.Frame, error) {
	s.mu.Lock()
	if s.streaming {
		s.mu.Unlock()
		return nil, ErrAlreadyStreaming
	}
	s.streaming = true
	s.mu.Unlock()

	out := make(chan model.Frame)
	go s.run(ctx, out)
	return out, nil
}

func (s *Synthetic) run(ctx context.Context, out chan<- model.Frame) {
	defer close(out)

	interval := time.Second / time.Duration(s.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var seq uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
		}

		seq++
		frame := model.Frame{
			Data:        make([]byte, s.width*s.height*3),
			Width:       s.width,
			Height:      s.height,
			TimestampUS: time.Since(start).Microseconds(),
			Seq:         seq,
		}
		renderPattern(frame.Data, s.width, s.height, seq)

		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case out <- frame:
		}

		if s.frameLimit > 0 && seq >= s.frameLimit {
			s.log.Debug(ctx, "frame limit reached", logger.Uint64("frames", seq))
			return
		}
	}
}

// Close implements Source.
func (s *Synthetic) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// renderPattern fills buf with a diagonal gradient that drifts with seq,
// so consecutive frames differ.
func renderPattern(buf []byte, width, height int, seq uint64) {
	shift := int(seq % 256)
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf[i] = byte((x + shift) & 0xff)
			buf[i+1] = byte((y + shift) & 0xff)
			buf[i+2] = byte(shift)
			i += 3
		}
	}
}
