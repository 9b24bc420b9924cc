package vision

import (
	"image"
	"math"
)

// PipSlicing describes how a pip row is cut into fixed-width sub-slots. Pixel
// values are in the bucket's reference frame (see Bucket.FitSize) and are
// scaled to the actual frame.
type PipSlicing struct {
	Count       int
	StartPx     int
	WidthPx     int
	GapPx       int
	TopCutPx    int
	BottomCutPx int
}

// PipSlices returns the sub-slot rectangles of region within frame bounds b.
// refW is the width of the bucket's reference frame; slots that fall outside
// the region are dropped.
func PipSlices(b image.Rectangle, region Region, s PipSlicing, refW int) []image.Rectangle {
	if s.Count <= 0 || s.WidthPx <= 0 || !region.Valid() {
		return nil
	}
	scale := 1.0
	if refW > 0 {
		scale = float64(b.Dx()) / float64(refW)
	}
	px := func(v int) int { return int(math.Round(float64(v) * scale)) }
	row := region.Pixels(b)
	top := row.Min.Y + px(s.TopCutPx)
	bottom := row.Max.Y - px(s.BottomCutPx)
	if bottom <= top {
		return nil
	}
	out := make([]image.Rectangle, 0, s.Count)
	for i := 0; i < s.Count; i++ {
		x1 := row.Min.X + px(s.StartPx+i*(s.WidthPx+s.GapPx))
		x2 := x1 + max(1, px(s.WidthPx))
		r := image.Rect(x1, top, x2, bottom).Intersect(row)
		if r.Dx() < 2 || r.Dy() < 2 {
			break
		}
		out = append(out, r)
	}
	return out
}
