package capture

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// NormalizedSize returns the aspect-preserving size of a w x h frame fitted to
// refW x refH. Frames smaller than the reference keep their size unless
// upscale is set.
func NormalizedSize(w, h, refW, refH int, upscale bool) (int, int) {
	if w <= 0 || h <= 0 || refW <= 0 || refH <= 0 {
		return w, h
	}
	s := math.Min(float64(refW)/float64(w), float64(refH)/float64(h))
	if s > 1 && !upscale {
		s = 1
	}
	return max(1, int(math.Round(float64(w)*s))), max(1, int(math.Round(float64(h)*s)))
}

// Normalize scales src into a pooled frame at the reference resolution. The
// result starts at the origin and should be released with RecycleFrame.
func Normalize(src image.Image, refW, refH int, upscale bool) *image.RGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := NormalizedSize(b.Dx(), b.Dy(), refW, refH, upscale)
	dst := acquireFrame(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
		return dst
	}
	scaler := draw.Interpolator(draw.ApproxBiLinear)
	if w > b.Dx() {
		scaler = draw.CatmullRom
	}
	scaler.Scale(dst, dst.Rect, src, b, draw.Src, nil)
	return dst
}
