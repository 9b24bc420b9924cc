package images

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ExtractROI crops a square of side size centred at c. The rectangle is
// clamped to the frame and is at least 1x1. It returns the crop and its
// rectangle in frame coordinates.
func ExtractROI(frame image.Image, c image.Point, size int) (*image.NRGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	if b.Empty() {
		return nil, image.Rectangle{}, errors.New("empty frame")
	}
	size = max(1, size)
	x0 := max(b.Min.X, c.X-size/2)
	y0 := max(b.Min.Y, c.Y-size/2)
	x0 = min(x0, b.Max.X-1)
	y0 = min(y0, b.Max.Y-1)
	w := max(1, min(size, b.Max.X-x0))
	h := max(1, min(size, b.Max.Y-y0))
	roi := image.Rect(x0, y0, x0+w, y0+h)
	return imaging.Crop(frame, roi), roi, nil
}
