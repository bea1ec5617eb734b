package vision

import "errors"

var (
	// ErrAlreadyStarted is returned when Start is called on a running
	// pipeline.
	ErrAlreadyStarted = errors.New("pipeline already started")

	// ErrClosed is returned when starting a pipeline that has been
	// closed.
	ErrClosed = errors.New("pipeline is closed")
)
