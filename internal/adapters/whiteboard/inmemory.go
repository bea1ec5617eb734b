package whiteboard

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/flexflow/flexflow/internal/domain/types"
	"github.com/flexflow/flexflow/pkg/metrics"
)

// InMemoryBoard is a mutex-guarded Board implementation.
type InMemoryBoard struct {
	mu   sync.RWMutex
	snap types.MetricsSnapshot
}

// NewInMemoryBoard creates a board holding the default snapshot: no frame
// processed yet, subject assumed upper-body-only, no angles, no pointing.
func NewInMemoryBoard() *InMemoryBoard {
	return &InMemoryBoard{snap: types.DefaultSnapshot()}
}

// Snapshot implements Board.
func (b *InMemoryBoard) Snapshot(ctx context.Context) types.MetricsSnapshot {
	b.mu.RLock()
	snap := b.snap
	b.mu.RUnlock()

	metrics.RecordWhiteboardRead()
	return snap
}

// Write implements Board.
func (b *InMemoryBoard) Write(ctx context.Context, snap types.MetricsSnapshot) error {
	start := time.Now()
	defer func() {
		metrics.RecordWhiteboardWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if !finite(snap.NeckAngle) || !finite(snap.ArmAngles.LeftElbow) || !finite(snap.ArmAngles.RightElbow) {
		metrics.RecordErrorByComponent("whiteboard", "invalid_reading")
		return ErrInvalidReading
	}

	b.mu.Lock()
	b.snap = snap
	b.mu.Unlock()

	metrics.RecordWhiteboardWrite()
	return nil
}

// Update implements Board.
func (b *InMemoryBoard) Update(ctx context.Context, upd Update) error {
	start := time.Now()
	defer func() {
		metrics.RecordWhiteboardWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if upd.NeckAngle != nil && !finite(*upd.NeckAngle) {
		metrics.RecordErrorByComponent("whiteboard", "invalid_reading")
		return ErrInvalidReading
	}
	if upd.ArmAngles != nil && (!finite(upd.ArmAngles.LeftElbow) || !finite(upd.ArmAngles.RightElbow)) {
		metrics.RecordErrorByComponent("whiteboard", "invalid_reading")
		return ErrInvalidReading
	}

	b.mu.Lock()
	if upd.IsUpperBodyOnly != nil {
		b.snap.IsUpperBodyOnly = *upd.IsUpperBodyOnly
	}
	if upd.NeckAngle != nil {
		b.snap.NeckAngle = *upd.NeckAngle
	}
	if upd.ArmAngles != nil {
		b.snap.ArmAngles = *upd.ArmAngles
	}
	if upd.PointedBodyPart != nil {
		b.snap.PointedBodyPart = *upd.PointedBodyPart
	}
	b.mu.Unlock()

	metrics.RecordWhiteboardWrite()
	return nil
}

// MarkCovered implements Board.
func (b *InMemoryBoard) MarkCovered(ctx context.Context) error {
	b.mu.Lock()
	b.snap.IsUpperBodyOnly = true
	b.snap.PointedBodyPart = ""
	b.mu.Unlock()

	metrics.RecordWhiteboardWrite()
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
