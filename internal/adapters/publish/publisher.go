// Package publish delivers per-landmark observations to external
// observers (UI overlays, recording sinks). Delivery is best effort:
// the pipeline throttles publishes and swallows publish errors.
package publish

import (
	"context"

	"github.com/flexflow/flexflow/internal/domain/types"
)

// Event is one landmark observation for a session.
type Event struct {
	SessionID   string                `json:"session_id"`
	TimestampMS int64                 `json:"timestamp_ms"`
	Landmarks   []types.LandmarkPoint `json:"landmarks"`
}

// Publisher delivers events to an observer channel.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event. Sessions without observers use it.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }

// Multi fans one event out to several publishers. All publishers are
// attempted; the first error is returned.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, ev Event) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close implements Publisher.
func (m Multi) Close() error {
	var first error
	for _, p := range m {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
