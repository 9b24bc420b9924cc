package capture

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"
)

func TestNormalizedSize(t *testing.T) {
	cases := []struct {
		w, h, rw, rh int
		up           bool
		ew, eh       int
	}{
		{2560, 1440, 1280, 720, false, 1280, 720},
		{1920, 1200, 1280, 720, false, 1152, 720},
		{800, 600, 1280, 720, false, 800, 600},
		{800, 600, 1280, 720, true, 960, 720},
		{3440, 1440, 1280, 720, false, 1280, 536},
	}
	for _, c := range cases {
		w, h := NormalizedSize(c.w, c.h, c.rw, c.rh, c.up)
		if w != c.ew || h != c.eh {
			t.Fatalf("NormalizedSize(%d,%d): expected %dx%d, got %dx%d", c.w, c.h, c.ew, c.eh, w, h)
		}
	}
}

func TestNormalize_ScalesAndRebases(t *testing.T) {
	src := image.NewRGBA(image.Rect(100, 50, 100+640, 50+360))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	out := Normalize(src, 1280, 720, true)
	defer RecycleFrame(out)
	if out.Bounds() != image.Rect(0, 0, 1280, 720) {
		t.Fatalf("expected 1280x720 at origin, got %v", out.Bounds())
	}
	if c := out.RGBAAt(640, 360); c.R < 190 {
		t.Fatalf("expected scaled pixel data, got %v", c)
	}
}

func TestNormalize_SameSizeCopies(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 36))
	src.SetRGBA(3, 4, color.RGBA{R: 255, A: 255})
	out := Normalize(src, 1280, 720, false)
	if out == src {
		t.Fatalf("expected a copy, got the source frame")
	}
	if out.RGBAAt(3, 4).R != 255 {
		t.Fatalf("expected pixel copied")
	}
}

func TestAcquireFrame_Reuse(t *testing.T) {
	a := acquireFrame(image.Rect(0, 0, 10, 10))
	RecycleFrame(a)
	b := acquireFrame(image.Rect(0, 0, 5, 5))
	if len(b.Pix) != 5*5*4 || b.Stride != 20 {
		t.Fatalf("expected resized frame, got len=%d stride=%d", len(b.Pix), b.Stride)
	}
}

func TestService_LatestFrameOverwrites(t *testing.T) {
	var calls atomic.Int32
	grab := func(r image.Rectangle, full bool) (*image.RGBA, error) {
		calls.Add(1)
		if !full {
			return nil, errors.New("window gone")
		}
		return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
	}
	rect := func() (image.Rectangle, bool) { return image.Rect(0, 0, 4, 4), true }
	s := NewService(nil, rect, grab, time.Millisecond, time.Second)
	if !s.LatestFrame().Empty() {
		t.Fatalf("expected no frame before start")
	}
	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for s.LatestFrame().Sequence < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	snap := s.LatestFrame()
	if snap.Empty() || snap.Sequence < 2 {
		t.Fatalf("expected frames from the full-screen fallback, got seq %d", snap.Sequence)
	}
	if s.Running() {
		t.Fatalf("expected service stopped")
	}
	if st := s.Stats(); st.Captures != snap.Sequence {
		t.Fatalf("expected %d captures, got %d", snap.Sequence, st.Captures)
	}
}

func TestService_StopTimeout(t *testing.T) {
	release := make(chan struct{})
	grab := func(image.Rectangle, bool) (*image.RGBA, error) {
		<-release
		return nil, errors.New("late")
	}
	s := NewService(nil, nil, grab, 0, 20*time.Millisecond)
	s.Start()
	time.Sleep(5 * time.Millisecond)
	if err := s.Stop(); !errors.Is(err, ErrStopTimeout) {
		t.Fatalf("expected ErrStopTimeout, got %v", err)
	}
	close(release)
}

func TestFirstRect(t *testing.T) {
	missing := func() (image.Rectangle, bool) { return image.Rectangle{}, false }
	manual := func() (image.Rectangle, bool) { return image.Rect(5, 5, 50, 50), true }
	r, ok := FirstRect(nil, missing, manual)()
	if !ok || r != image.Rect(5, 5, 50, 50) {
		t.Fatalf("expected manual rect, got %v %v", r, ok)
	}
	if _, ok := FirstRect(missing)(); ok {
		t.Fatalf("expected no rect")
	}
}
