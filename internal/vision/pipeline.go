package vision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/flexflow/flexflow/internal/adapters/estimator"
	"github.com/flexflow/flexflow/internal/adapters/framecell"
	"github.com/flexflow/flexflow/internal/adapters/publish"
	"github.com/flexflow/flexflow/internal/adapters/video"
	"github.com/flexflow/flexflow/internal/adapters/whiteboard"
	"github.com/flexflow/flexflow/internal/domain/model"
	"github.com/flexflow/flexflow/internal/domain/smoothing"
	"github.com/flexflow/flexflow/internal/domain/types"
	"github.com/flexflow/flexflow/pkg/logger"
	"github.com/flexflow/flexflow/pkg/metrics"
)

// Default pipeline configuration constants.
const (
	defaultSmoothingWindow = 5
	defaultIdlePoll        = 50 * time.Millisecond
	defaultPublishInterval = 100 * time.Millisecond
	whiteboardDecimals     = 1
)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateClosed
)

// Pipeline coordinates one session's frame flow: intake overwrites the
// latest-frame cell while a single worker drains it through the estimator,
// smooths the readings, and writes the whiteboard. The worker stays
// single because the estimator keeps temporal state across frames. At
// most one pipeline may run per session; the estimator and the cell are
// not safely shared across overlapping instances.
type Pipeline struct {
	sessionID string
	source    video.Source
	factory   estimator.Factory
	cell      framecell.Cell
	board     whiteboard.Board
	pub       publish.Publisher

	smoothingWindow int
	idlePoll        time.Duration
	publishInterval time.Duration
	maxFrameWidth   int

	neck       *smoothing.Window
	leftElbow  *smoothing.Window
	rightElbow *smoothing.Window
	limiter    *rate.Limiter

	mu       sync.Mutex
	state    state
	est      estimator.Estimator
	cancelFn context.CancelFunc
	done     chan struct{}

	log logger.Logger
}

// NewPipeline creates an idle pipeline. Call Start to begin processing.
func NewPipeline(
	sessionID string,
	source video.Source,
	factory estimator.Factory,
	cell framecell.Cell,
	board whiteboard.Board,
	pub publish.Publisher,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		sessionID:       sessionID,
		source:          source,
		factory:         factory,
		cell:            cell,
		board:           board,
		pub:             pub,
		smoothingWindow: defaultSmoothingWindow,
		idlePoll:        defaultIdlePoll,
		publishInterval: defaultPublishInterval,
		done:            make(chan struct{}),
		log:             logger.Get().Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.neck = smoothing.New(smoothing.WithCapacity(p.smoothingWindow))
	p.leftElbow = smoothing.New(smoothing.WithCapacity(p.smoothingWindow))
	p.rightElbow = smoothing.New(smoothing.WithCapacity(p.smoothingWindow))
	p.limiter = rate.NewLimiter(rate.Every(p.publishInterval), 1)
	return p
}

// Start builds the estimator, opens the frame source, and launches the
// intake and process loops. Estimator construction failure is fatal for
// this start and surfaces to the caller.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case stateRunning:
		p.mu.Unlock()
		return ErrAlreadyStarted
	case stateClosed:
		p.mu.Unlock()
		return ErrClosed
	case stateIdle:
	}

	runCtx, cancel := context.WithCancel(ctx)

	est, err := p.factory(runCtx)
	if err != nil {
		cancel()
		p.mu.Unlock()
		metrics.RecordErrorByComponent("pipeline", "estimator_construct")
		return fmt.Errorf("construct estimator: %w", err)
	}

	frames, err := p.source.Frames(runCtx)
	if err != nil {
		_ = est.Close()
		cancel()
		p.mu.Unlock()
		return fmt.Errorf("open frame source: %w", err)
	}

	p.est = est
	p.cancelFn = cancel
	p.state = stateRunning
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return p.intake(gctx, frames) })
	g.Go(func() error { return p.process(gctx) })

	go func() {
		if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
			p.log.Error(context.Background(), "pipeline stopped on error",
				logger.String("session", p.sessionID), logger.Error(werr))
		}
		p.teardown()
	}()

	p.log.Info(ctx, "pipeline started",
		logger.String("session", p.sessionID),
		logger.String("estimator", est.Name()))
	return nil
}

// intake drains the source into the single-frame cell. It never blocks on
// processing: the cell overwrites under load, dropping older frames.
func (p *Pipeline) intake(ctx context.Context, frames <-chan model.Frame) error {
	// A closed source winds the whole session down.
	defer p.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			p.cell.Put(ctx, f)
		}
	}
}

// process is the single worker feeding the estimator. It takes whichever
// frame is newest, or idles briefly when none is pending.
func (p *Pipeline) process(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, ok := p.cell.Take(ctx)
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.idlePoll):
			}
			continue
		}

		if err := p.handleFrame(ctx, frame); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// Cancellation mid-flight is a normal stop, not a failure.
				return nil
			}
			if errors.Is(err, estimator.ErrClosed) || errors.Is(err, estimator.ErrTimestampOrder) {
				// Contract violations cannot heal on the next frame.
				return fmt.Errorf("estimator contract: %w", err)
			}
			metrics.RecordEstimatorError()
			p.log.Error(ctx, "frame processing failed",
				logger.Uint64("seq", frame.Seq), logger.Error(err))
			// The next frame is the retry.
		}
	}
}

// handleFrame runs estimation and applies the outcome to the whiteboard.
func (p *Pipeline) handleFrame(ctx context.Context, frame model.Frame) error {
	if p.maxFrameWidth > 0 {
		frame = video.Downscale(frame, p.maxFrameWidth)
	}

	start := time.Now()
	est, err := p.est.Detect(ctx, frame, frame.Millis())
	metrics.RecordDetectLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	metrics.RecordFrameProcessed()

	outcome := Process(est)
	metrics.RecordFrameOutcome(outcome.Kind.String())

	switch outcome.Kind {
	case KindNoSubject:
		return nil
	case KindCameraCovered:
		return p.board.MarkCovered(ctx)
	case KindReading:
		return p.applyReading(ctx, frame, outcome.Reading)
	}
	return nil
}

// applyReading smooths the raw angles, writes the snapshot, and throttles
// a best-effort landmark publish for overlay observers.
func (p *Pipeline) applyReading(ctx context.Context, frame model.Frame, r Reading) error {
	neck := p.neck.Push(r.Neck.Degrees, r.Neck.Valid)
	left := p.leftElbow.Push(r.LeftElbow.Degrees, r.LeftElbow.Valid)
	right := p.rightElbow.Push(r.RightElbow.Degrees, r.RightElbow.Valid)

	if r.PointedPart != "" {
		metrics.RecordPointingDetection()
	}

	snap := types.MetricsSnapshot{
		IsUpperBodyOnly: r.UpperBodyOnly,
		NeckAngle:       roundTo(neck, whiteboardDecimals),
		ArmAngles: types.ArmAngles{
			LeftElbow:  roundTo(left, whiteboardDecimals),
			RightElbow: roundTo(right, whiteboardDecimals),
		},
		PointedBodyPart: r.PointedPart,
	}
	if err := p.board.Write(ctx, snap); err != nil {
		return fmt.Errorf("whiteboard write: %w", err)
	}

	if p.limiter.Allow() {
		ev := publish.Event{
			SessionID:   p.sessionID,
			TimestampMS: frame.Millis(),
			Landmarks:   r.Landmarks,
		}
		if err := p.pub.Publish(ctx, ev); err != nil {
			// Observer publishes are best effort; failures never
			// interrupt the pipeline.
			metrics.RecordLandmarkPublishError()
			p.log.Warn(ctx, "landmark publish failed",
				logger.String("session", p.sessionID), logger.Error(err))
		} else {
			metrics.RecordLandmarkPublish()
		}
	}
	return nil
}

// teardown releases the session resources exactly once.
func (p *Pipeline) teardown() {
	p.mu.Lock()
	est := p.est
	p.est = nil
	p.state = stateClosed
	p.mu.Unlock()

	if est != nil {
		if err := est.Close(); err != nil {
			p.log.Warn(context.Background(), "estimator close failed", logger.Error(err))
		}
	}
	_ = p.source.Close()
	_ = p.cell.Close()
	if err := p.pub.Close(); err != nil {
		p.log.Warn(context.Background(), "publisher close failed", logger.Error(err))
	}

	close(p.done)
	p.log.Info(context.Background(), "pipeline closed", logger.String("session", p.sessionID))
}

// Cancel requests a stop without waiting for teardown.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	cancel := p.cancelFn
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close stops the pipeline and waits until its resources are released.
// Closing an already-closed pipeline is a no-op.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	if p.state == stateIdle {
		p.state = stateClosed
		close(p.done)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	p.Cancel()
	<-p.done
	return nil
}

// Done is closed when the pipeline has fully stopped.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}
