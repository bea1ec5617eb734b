package publish

import "errors"

var (
	// ErrClosed is returned when publishing to or attaching on a closed hub.
	ErrClosed = errors.New("publisher is closed")

	// ErrNotConnected is returned when the MQTT broker connection is down.
	ErrNotConnected = errors.New("mqtt broker not connected")

	// ErrPublishTimeout is returned when the broker does not ack in time.
	ErrPublishTimeout = errors.New("mqtt operation timed out")
)
