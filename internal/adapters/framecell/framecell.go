// Package framecell provides the lossy handoff between frame intake and
// processing.
//
// The cell holds at most one pending frame. A producer overwrites it
// unconditionally; the consumer takes and clears it. Under load the system
// drops superseded frames instead of queuing them, which bounds both latency
// and memory. Do not replace this with a buffered channel: any buffering
// reintroduces backlog.
package framecell

import (
	"context"
	"sync"

	"github.com/flexflow/flexflow/internal/domain/model"
	"github.com/flexflow/flexflow/pkg/metrics"
)

// Frame is the payload type held by the cell.
// Using the model.Frame type for type safety.
type Frame = model.Frame

// Cell provides overwrite-on-put and take-and-clear semantics.
type Cell interface {
	// Put stores f as the pending frame, displacing any unconsumed one.
	// Returns false if the cell is closed and the frame was not stored.
	Put(ctx context.Context, f Frame) bool

	// Take removes and returns the pending frame.
	// Returns false when no frame is pending.
	Take(ctx context.Context) (Frame, bool)

	// Stats returns a point-in-time view of the cell's counters.
	Stats() Stats

	// Close marks the cell closed. After closing, Put rejects frames and
	// Take drains at most the one frame still pending.
	Close() error

	// IsClosed returns true if the cell has been closed.
	IsClosed() bool
}

// Stats is a snapshot of the cell's drop accounting.
type Stats struct {
	// Delivered counts frames accepted by Put.
	Delivered uint64
	// Dropped counts unconsumed frames displaced by a newer Put.
	Dropped uint64
	// Consumed counts frames handed out by Take.
	Consumed uint64
	// ConsecutiveDrops counts displacements since the last Take.
	ConsecutiveDrops uint64
	// LastConsumedSeq is the sequence number of the last taken frame.
	LastConsumedSeq uint64
}

// InMemoryCell implements Cell with a single mutex-guarded slot.
type InMemoryCell struct {
	mu      sync.Mutex
	pending Frame
	full    bool
	closed  bool

	delivered        uint64
	dropped          uint64
	consumed         uint64
	consecutiveDrops uint64
	lastConsumedSeq  uint64
}

// NewInMemoryCell creates an empty cell.
func NewInMemoryCell() *InMemoryCell {
	return &InMemoryCell{}
}

// Put stores f as the pending frame, displacing any unconsumed one.
func (c *InMemoryCell) Put(ctx context.Context, f Frame) bool { //nolint:gocritic // hugeParam: Frame is handed over by value on purpose
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		metrics.RecordErrorByComponent("framecell", "closed")
		return false
	}

	if c.full {
		c.dropped++
		c.consecutiveDrops++
		metrics.RecordFrameDropped()
	}
	c.pending = f
	c.full = true
	c.delivered++
	metrics.RecordFrameReceived()
	return true
}

// Take removes and returns the pending frame.
func (c *InMemoryCell) Take(ctx context.Context) (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.full {
		return Frame{}, false
	}

	f := c.pending
	c.pending = Frame{}
	c.full = false
	c.consumed++
	c.consecutiveDrops = 0
	c.lastConsumedSeq = f.Seq
	return f, true
}

// Stats returns a point-in-time view of the cell's counters.
func (c *InMemoryCell) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Delivered:        c.delivered,
		Dropped:          c.dropped,
		Consumed:         c.consumed,
		ConsecutiveDrops: c.consecutiveDrops,
		LastConsumedSeq:  c.lastConsumedSeq,
	}
}

// Close marks the cell closed.
func (c *InMemoryCell) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil // already closed
	}
	c.closed = true
	return nil
}

// IsClosed returns true if the cell has been closed.
func (c *InMemoryCell) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
