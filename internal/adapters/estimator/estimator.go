// Package estimator defines the contract for pose estimation backends.
//
// An estimator is an external capability: given one RGB frame and a
// monotonic timestamp it returns zero or one pose estimates. Implementations
// keep per-stream state across frames, so calls against one instance must
// come from a single goroutine with non-decreasing timestamps. The pipeline
// guarantees both.
package estimator

import (
	"context"

	"github.com/flexflow/flexflow/internal/domain/model"
	"github.com/flexflow/flexflow/internal/domain/pose"
)

// Estimator turns frames into pose estimates.
type Estimator interface {
	// Name returns the backend identifier (for logging/debugging).
	Name() string

	// Detect runs pose estimation on one frame. timestampMS must be
	// non-decreasing across calls. A nil estimate means no subject was
	// detected; that is not an error.
	Detect(ctx context.Context, frame model.Frame, timestampMS int64) (*pose.Estimate, error)

	// Close releases the model resource. Safe to call more than once.
	Close() error
}

// Factory builds one estimator instance per pipeline session. Construction
// failure (a missing model asset, say) is fatal for the session start that
// requested it.
type Factory func(ctx context.Context) (Estimator, error)
