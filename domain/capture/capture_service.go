package capture

import (
	"errors"
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

const captureStatsLogInterval = 5 * time.Second

// ErrStopTimeout is returned by Stop when the capture loop does not exit in time.
var ErrStopTimeout = errors.New("capture: stop timed out")

// GrabFunc captures the given rectangle, or the full screen when full is set.
type GrabFunc func(r image.Rectangle, full bool) (*image.RGBA, error)

// ScreenGrab is the default GrabFunc backed by the screenshot library.
func ScreenGrab(r image.Rectangle, full bool) (*image.RGBA, error) {
	if full {
		return Grab()
	}
	return GrabRect(r)
}

// Service runs a capture loop that keeps only the latest frame. Readers never
// block the producer: each capture overwrites the previous snapshot.
type Service struct {
	running      atomic.Bool
	latest       atomic.Pointer[FrameSnapshot]
	rectFn       RectProvider
	grab         GrabFunc
	interval     time.Duration
	stopTimeout  time.Duration
	logger       *slog.Logger
	done         chan struct{}
	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
}

var _ FrameSource = (*Service)(nil)

// NewService constructs a capture service. rectFn may be nil to always capture
// the full screen; grab may be nil to use ScreenGrab.
func NewService(logger *slog.Logger, rectFn RectProvider, grab GrabFunc, interval, stopTimeout time.Duration) *Service {
	if grab == nil {
		grab = ScreenGrab
	}
	if stopTimeout <= 0 {
		stopTimeout = time.Second
	}
	return &Service{rectFn: rectFn, grab: grab, interval: interval, stopTimeout: stopTimeout, logger: logger}
}

// LatestFrame returns the newest snapshot, or an empty one before the first capture.
func (s *Service) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

// Running reports whether the loop is active.
func (s *Service) Running() bool { return s.running.Load() }

// Stats returns capture counters.
func (s *Service) Stats() CaptureStats {
	captures := s.captures.Load()
	skipped := s.skipped.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Captures:         captures,
		Skipped:          skipped,
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
	}
}

// Start launches the capture loop. Calling Start on a running service is a no-op.
func (s *Service) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.done = make(chan struct{})
	go s.loop(s.done)
}

// Stop signals the loop and waits up to the stop timeout for it to exit.
func (s *Service) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-time.After(s.stopTimeout):
		if s.logger != nil {
			s.logger.Warn("capture.stop", "error", ErrStopTimeout, "timeout", s.stopTimeout)
		}
		return ErrStopTimeout
	}
}

func (s *Service) loop(done chan struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil && s.logger != nil {
			s.logger.Error("capture.panic", "panic", r)
		}
	}()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	for s.running.Load() {
		start := time.Now()
		img := s.captureOnce()
		if img == nil {
			s.skipped.Add(1)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		seq := s.sequence.Add(1)
		s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}

		if s.interval > 0 {
			time.Sleep(s.interval)
		} else {
			time.Sleep(200 * time.Microsecond)
		}
	}
}

func (s *Service) captureOnce() *image.RGBA {
	if s.rectFn != nil {
		if r, ok := s.rectFn(); ok {
			img, err := s.grab(r, false)
			if err == nil {
				return img
			}
			if s.logger != nil {
				s.logger.Debug("capture.window", "error", err)
			}
		}
	}
	img, err := s.grab(image.Rectangle{}, true)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("capture.full", "error", err)
		}
		return nil
	}
	return img
}

func (s *Service) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
