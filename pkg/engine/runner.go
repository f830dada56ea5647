package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/retained/pkg/config"
	"github.com/go-drift/retained/pkg/core"
	"github.com/go-drift/retained/pkg/errors"
	"github.com/go-drift/retained/pkg/logging"
)

// Runner drives a [core.Engine] from a single frame goroutine.
//
// Other goroutines talk to the engine through [Runner.Dispatch], through
// [core.Callback.Call] or by marking elements dirty; each of these requests a
// frame. Frames are paced by the configured frame interval.
type Runner struct {
	// frameMu serializes frames and read-only inspection of the trees.
	frameMu sync.Mutex
	engine  *core.Engine

	dispatchMu    sync.Mutex
	dispatchQueue []func(*core.Engine)

	pendingFrame atomic.Bool
	wake         chan struct{}

	interval time.Duration
	trace    *FrameTraceBuffer
	runtime  *RuntimeSampleBuffer
	logger   *slog.Logger

	frame int

	// stats is the engine stats at the end of the previous frame. It starts
	// zeroed so the first frame includes the root spawned by NewEngine.
	stats  core.Stats
	failed atomic.Pointer[errors.PanicError]
}

// RunnerOption configures a [Runner].
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger used by the runner.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithRuntimeSampling enables periodic memory and GC sampling while
// [Runner.Run] is active.
func WithRuntimeSampling(window, interval time.Duration) RunnerOption {
	return func(r *Runner) { r.runtime = NewRuntimeSampleBuffer(window, interval) }
}

// NewRunner wraps e. The runner takes over the engine's dirty-set and
// callback-queue notifications, so e must not be updated directly afterwards.
func NewRunner(e *core.Engine, cfg config.RunnerConfig, opts ...RunnerOption) *Runner {
	interval := cfg.FrameInterval
	if interval <= 0 {
		interval = config.DefaultFrameInterval
	}
	r := &Runner{
		engine:   e,
		wake:     make(chan struct{}, 1),
		interval: interval,
		trace:    NewFrameTraceBuffer(cfg.TraceSamples, cfg.TraceThreshold),
		logger:   logging.Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	e.DirtySet().OnNeedsUpdate = r.RequestFrame
	e.CallbackQueue().OnNeedsUpdate = r.RequestFrame
	// The engine queues its root build on construction.
	r.RequestFrame()
	return r
}

// Dispatch schedules fn to run on the frame goroutine before the next update.
func (r *Runner) Dispatch(fn func(*core.Engine)) {
	if fn == nil {
		return
	}
	r.dispatchMu.Lock()
	r.dispatchQueue = append(r.dispatchQueue, fn)
	r.dispatchMu.Unlock()
	r.RequestFrame()
}

// RequestFrame asks for a frame to be produced at the next tick.
func (r *Runner) RequestFrame() {
	r.pendingFrame.Store(true)
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// NeedsFrame reports whether a frame has been requested but not yet run.
func (r *Runner) NeedsFrame() bool {
	if r.pendingFrame.Load() {
		return true
	}
	r.dispatchMu.Lock()
	defer r.dispatchMu.Unlock()
	return len(r.dispatchQueue) > 0
}

// Err returns the panic that stopped the runner, if any.
func (r *Runner) Err() error {
	if err := r.failed.Load(); err != nil {
		return err
	}
	return nil
}

// Frames returns the trace buffer.
func (r *Runner) Frames() *FrameTraceBuffer { return r.trace }

// Snapshot returns the recorded frame timeline.
func (r *Runner) Snapshot() FrameTimeline { return r.trace.Snapshot() }

// RuntimeSamples returns the runtime sample buffer, or nil when sampling is
// disabled.
func (r *Runner) RuntimeSamples() *RuntimeSampleBuffer { return r.runtime }

// View runs fn with exclusive access to the engine, between frames.
func (r *Runner) View(fn func(*core.Engine)) {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	fn(r.engine)
}

func (r *Runner) drainDispatchQueue() []func(*core.Engine) {
	r.dispatchMu.Lock()
	callbacks := r.dispatchQueue
	r.dispatchQueue = nil
	r.dispatchMu.Unlock()
	return callbacks
}

// PumpFrame runs dispatched functions and, if anything changed, one engine
// update. It returns false when there was nothing to do.
//
// A panic during the frame is reported and returned as an
// [*errors.PanicError]; the runner refuses further frames afterwards.
func (r *Runner) PumpFrame() (ran bool, err error) {
	if err := r.Err(); err != nil {
		return false, err
	}
	r.pendingFrame.Store(false)

	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			pe := &errors.PanicError{
				Op:         "engine.Runner",
				Value:      rec,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
			errors.ReportPanic(pe)
			r.failed.Store(pe)
			ran, err = true, pe
		}
	}()

	frameStart := time.Now()
	var sample FrameSample

	callbacks := r.drainDispatchQueue()
	for _, fn := range callbacks {
		fn(r.engine)
	}
	sample.Phases.DispatchMs = durationToMillis(time.Since(frameStart))
	sample.Counts.Dispatched = len(callbacks)

	// Dispatched functions may resize or clear the root, which only an
	// update applies.
	if len(callbacks) == 0 && !r.engine.HasChanges() {
		return false, nil
	}

	phaseStart := time.Now()
	r.engine.Update()
	sample.Phases.UpdateMs = durationToMillis(time.Since(phaseStart))

	dispatched := sample.Counts.Dispatched
	after := r.engine.Stats()
	sample.Counts = countsFromStats(r.stats, after)
	r.stats = after
	sample.Counts.Dispatched = dispatched
	sample.Counts.ElementCount = r.engine.Elements().Len()
	sample.Counts.RenderNodeCount = r.engine.RenderObjects().Len()
	sample.Counts.DirtyAfterUpdate = r.engine.DirtySet().Len()

	r.frame++
	frameDuration := time.Since(frameStart)
	sample.Frame = r.frame
	sample.Timestamp = frameStart.UnixMilli()
	sample.FrameMs = durationToMillis(frameDuration)
	r.trace.Add(sample, frameDuration)

	r.logger.Log(context.Background(), logging.LevelTrace, "frame",
		"frame", r.frame,
		"builds", sample.Counts.Builds,
		"duration", frameDuration)
	return true, nil
}

// Run produces frames until ctx is cancelled or a frame panics. Runtime
// sampling, when enabled, runs alongside the frame loop.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.frameLoop(ctx) })
	if r.runtime != nil {
		g.Go(func() error {
			r.runtime.Sample(ctx)
			return nil
		})
	}
	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// frameCount returns the number of frames produced so far.
func (r *Runner) frameCount() int {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	return r.frame
}

func (r *Runner) frameLoop(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Debug("runner started", "interval", r.interval)

	// Frames are only produced on a tick with a pending request. wake is
	// drained so that an idle runner does not spin.
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("runner stopped", "frames", r.frameCount())
			return ctx.Err()
		case <-r.wake:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if !r.NeedsFrame() {
			continue
		}
		if _, err := r.PumpFrame(); err != nil {
			return err
		}
	}
}
