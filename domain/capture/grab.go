package capture

import (
	"errors"
	"image"

	"github.com/vova616/screenshot"
)

// Grab returns a capture of the primary screen.
func Grab() (*image.RGBA, error) {
	return screenshot.CaptureScreen()
}

// GrabRect captures r in screen coordinates, clipped to the screen.
func GrabRect(r image.Rectangle) (*image.RGBA, error) {
	screen, err := screenshot.ScreenRect()
	if err != nil {
		return nil, err
	}
	r = r.Intersect(screen)
	if r.Empty() {
		return nil, errors.New("capture: rectangle outside screen")
	}
	return screenshot.CaptureRect(r)
}
