package capture

import (
	"image"
	"time"
)

// FrameSnapshot carries the latest captured frame and metadata. Image is owned
// by the capture service and must be treated as read-only.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// Empty reports whether no frame has been captured yet.
func (f FrameSnapshot) Empty() bool { return f.Image == nil }

// CaptureStats summarises capture loop behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Skipped          uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	LatestFrameAge   time.Duration
	Sequence         uint64
}

// FrameSource provides read-only access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// RectProvider returns the screen rectangle to capture. ok is false when the
// target is not available, in which case the full screen is captured.
type RectProvider func() (r image.Rectangle, ok bool)

// FirstRect returns a provider that asks each provider in turn and uses the
// first rectangle offered. Nil providers are skipped.
func FirstRect(providers ...RectProvider) RectProvider {
	return func() (image.Rectangle, bool) {
		for _, p := range providers {
			if p == nil {
				continue
			}
			if r, ok := p(); ok {
				return r, true
			}
		}
		return image.Rectangle{}, false
	}
}
