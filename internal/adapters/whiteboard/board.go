// Package whiteboard holds the shared metrics state for one session.
//
// The board is the only data shared between the vision pipeline (writer)
// and metric readers such as the HTTP API and the coach. Every access is
// acquire, copy or mutate, release; no caller holds a reference to board
// internals across a blocking boundary.
package whiteboard

import (
	"context"

	"github.com/flexflow/flexflow/internal/domain/types"
)

// Board provides read/write access to the session metrics.
type Board interface {
	// Snapshot returns a consistent copy of the current metrics.
	Snapshot(ctx context.Context) types.MetricsSnapshot

	// Write replaces the whole snapshot atomically. Readers never observe
	// a mix of fields from two writes.
	Write(ctx context.Context, snap types.MetricsSnapshot) error

	// Update applies the non-nil fields of upd in one atomic step, leaving
	// the remaining fields at their current values.
	Update(ctx context.Context, upd Update) error

	// MarkCovered records that the camera view is blocked: the subject
	// classification reverts to upper-body-only and the pointed part is
	// cleared, while the last known angles are preserved.
	MarkCovered(ctx context.Context) error
}

// Update is a partial snapshot change. Nil fields are left untouched.
type Update struct {
	IsUpperBodyOnly *bool
	NeckAngle       *float64
	ArmAngles       *types.ArmAngles
	PointedBodyPart *string
}
