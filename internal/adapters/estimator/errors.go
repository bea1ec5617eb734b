package estimator

import "errors"

var (
	// ErrClosed is returned by Detect after Close.
	ErrClosed = errors.New("estimator is closed")

	// ErrTimestampOrder is returned when a frame timestamp regresses.
	// Estimators keep temporal state, so callers must feed frames with
	// non-decreasing timestamps.
	ErrTimestampOrder = errors.New("frame timestamp is older than the previous frame")

	// ErrModelUnavailable is returned by factories when the configured
	// model asset cannot be loaded.
	ErrModelUnavailable = errors.New("pose model unavailable")
)
