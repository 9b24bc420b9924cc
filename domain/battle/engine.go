package battle

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/domain/capture"
)

// ErrStopTimeout is returned by Stop when the analysis loop outlives the stop timeout.
var ErrStopTimeout = errors.New("analysis: stop timed out")

// Processor is the per-frame analysis step.
type Processor interface {
	Process(frame image.Image, seq uint64, now time.Time) Snapshot
}

// Engine polls a frame source, analyzes new frames and publishes snapshots.
type Engine struct {
	cfg     *config.Config
	source  capture.FrameSource
	proc    Processor
	mailbox *Mailbox
	logger  *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastSeq uint64
	ticks   atomic.Uint64
}

// NewEngine wires the analysis loop. If source also has a Stop() error
// method it is stopped together with the engine.
func NewEngine(cfg *config.Config, source capture.FrameSource, proc Processor, mailbox *Mailbox, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if mailbox == nil {
		mailbox = NewMailbox()
	}
	return &Engine{cfg: cfg, source: source, proc: proc, mailbox: mailbox, logger: logger}
}

// Mailbox returns the snapshot mailbox.
func (e *Engine) Mailbox() *Mailbox { return e.mailbox }

// Start launches the analysis goroutine. It is a no-op if already running.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.loop(ctx, e.done)
	if e.logger != nil {
		e.logger.Info("analysis.start", "interval", e.cfg.AnalysisInterval())
	}
}

func (e *Engine) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(e.cfg.AnalysisInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.safeTick(now)
		}
	}
}

func (e *Engine) safeTick(now time.Time) {
	defer func() {
		if r := recover(); r != nil && e.logger != nil {
			e.logger.Error("analysis.panic", "panic", r)
		}
	}()
	e.Tick(now)
}

// Tick processes the latest frame once. It reports false when there was no
// new frame to analyze.
func (e *Engine) Tick(now time.Time) bool {
	snap := e.source.LatestFrame()
	if snap.Empty() || snap.Sequence == e.lastSeq {
		return false
	}
	e.lastSeq = snap.Sequence
	frame := capture.Normalize(snap.Image, e.cfg.ReferenceWidth, e.cfg.ReferenceHeight, e.cfg.AllowUpscale)
	defer capture.RecycleFrame(frame)
	e.mailbox.Publish(e.proc.Process(frame, snap.Sequence, now))
	e.ticks.Add(1)
	return true
}

// Stop cancels the loop and waits up to the configured stop timeout, then
// stops the frame source when it supports it.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	var errs []error
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-time.After(e.cfg.StopTimeout()):
			errs = append(errs, ErrStopTimeout)
		}
	}
	if s, ok := e.source.(interface{ Stop() error }); ok {
		if err := s.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if e.logger != nil {
		e.logger.Info("analysis.stop", "ticks", e.ticks.Load(), "error", err)
	}
	return err
}
