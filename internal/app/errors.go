package service

import "errors"

var (
	// ErrNotStarted is returned when a session is requested before the
	// service has started.
	ErrNotStarted = errors.New("service not started")

	// ErrSessionNotFound is returned when the session ID is not in the
	// registry.
	ErrSessionNotFound = errors.New("session not found")
)
