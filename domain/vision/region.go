package vision

import (
	"image"
	"math"
)

// Region is a rectangle in [0,1]x[0,1] coordinates relative to a frame.
type Region struct {
	X1, Y1, X2, Y2 float64
}

// Full covers the whole frame.
var Full = Region{0, 0, 1, 1}

// Valid reports whether the region is non-empty and inside the unit square.
func (r Region) Valid() bool {
	return r.X1 >= 0 && r.Y1 >= 0 && r.X2 <= 1 && r.Y2 <= 1 && r.X1 < r.X2 && r.Y1 < r.Y2
}

// Pixels resolves the region against bounds, clamping to them. The result may
// be empty when the region collapses after clamping.
func (r Region) Pixels(b image.Rectangle) image.Rectangle {
	w, h := float64(b.Dx()), float64(b.Dy())
	x1 := b.Min.X + int(r.X1*w)
	y1 := b.Min.Y + int(r.Y1*h)
	x2 := b.Min.X + int(r.X2*w)
	y2 := b.Min.Y + int(r.Y2*h)
	return image.Rect(x1, y1, x2, y2).Intersect(b)
}

// Sub maps child, expressed relative to r, into frame-relative coordinates.
func (r Region) Sub(child Region) Region {
	w := r.X2 - r.X1
	h := r.Y2 - r.Y1
	return Region{
		X1: r.X1 + child.X1*w,
		Y1: r.Y1 + child.Y1*h,
		X2: r.X1 + child.X2*w,
		Y2: r.Y1 + child.Y2*h,
	}
}

// Shift moves the region horizontally.
func (r Region) Shift(dx float64) Region {
	return Region{X1: r.X1 + dx, Y1: r.Y1, X2: r.X2 + dx, Y2: r.Y2}
}

// FromCenter builds a region of size w x h around (cx, cy), clamped to the unit square.
func FromCenter(cx, cy, w, h float64) Region {
	return Region{
		X1: math.Max(0, cx-w/2),
		Y1: math.Max(0, cy-h/2),
		X2: math.Min(1, cx+w/2),
		Y2: math.Min(1, cy+h/2),
	}
}

// Bucket is an aspect-ratio class used to select calibration data and templates.
type Bucket string

const (
	Bucket4x3   Bucket = "4:3"
	Bucket16x10 Bucket = "16:10"
	Bucket16x9  Bucket = "16:9"
	Bucket43x18 Bucket = "43:18"
)

// Buckets lists every known bucket.
var Buckets = []Bucket{Bucket4x3, Bucket16x10, Bucket16x9, Bucket43x18}

// Ratio returns width/height for the bucket.
func (b Bucket) Ratio() float64 {
	switch b {
	case Bucket4x3:
		return 4.0 / 3.0
	case Bucket16x10:
		return 16.0 / 10.0
	case Bucket43x18:
		return 43.0 / 18.0
	default:
		return 16.0 / 9.0
	}
}

// Tag is the filesystem form of the bucket ("16x9").
func (b Bucket) Tag() string {
	switch b {
	case Bucket4x3:
		return "4x3"
	case Bucket16x10:
		return "16x10"
	case Bucket43x18:
		return "43x18"
	default:
		return "16x9"
	}
}

// BucketFor picks the bucket whose ratio is nearest to w/h. Degenerate sizes
// map to 16:9.
func BucketFor(w, h int) Bucket {
	if w <= 0 || h <= 0 {
		return Bucket16x9
	}
	aspect := float64(w) / float64(h)
	best := Bucket16x9
	bestDiff := math.MaxFloat64
	for _, b := range Buckets {
		if d := math.Abs(aspect - b.Ratio()); d < bestDiff {
			best, bestDiff = b, d
		}
	}
	return best
}

// FitSize returns the largest size with the bucket's ratio that fits inside
// maxW x maxH. Pixel calibration values are expressed in this space.
func (b Bucket) FitSize(maxW, maxH int) (int, int) {
	ratio := b.Ratio()
	w := float64(maxW)
	h := w / ratio
	if h > float64(maxH) {
		h = float64(maxH)
		w = h * ratio
	}
	return int(math.Round(w)), int(math.Round(h))
}

func tagBucket(tag string) (Bucket, bool) {
	for _, b := range Buckets {
		if b.Tag() == tag {
			return b, true
		}
	}
	return "", false
}
