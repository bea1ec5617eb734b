package video

import "errors"

var (
	// ErrAlreadyStreaming is returned when Frames is called twice on the
	// same source. A source feeds exactly one consumer.
	ErrAlreadyStreaming = errors.New("source is already streaming")
)
