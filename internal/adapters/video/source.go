// Package video provides frame sources for the vision pipeline.
package video

import (
	"context"

	"github.com/flexflow/flexflow/internal/domain/model"
)

// Source produces a stream of raw RGB frames.
type Source interface {
	// Frames starts the stream and returns its channel. The channel is
	// closed when the source stops, the context is cancelled, or Close
	// is called. A source streams to exactly one consumer; a second
	// call returns ErrAlreadyStreaming.
	Frames(ctx context.Context) (<-chan model.Frame, error)

	// Close stops the stream. Safe to call more than once.
	Close() error
}
