package images

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/soocke/duel-vision-go/domain/vision"
)

// Annotation is a labelled box drawn over a frame.
type Annotation struct {
	Region vision.Region
	Lines  []string
	Active bool
}

const lineHeight = 13

// Annotate draws notes and a header block over a copy of frame. Regions are
// relative, so the frame may be any size.
func Annotate(frame image.Image, notes []Annotation, header []string) image.Image {
	if frame == nil {
		return nil
	}
	dc := gg.NewContextForImage(frame)
	bounds := image.Rect(0, 0, dc.Width(), dc.Height())
	dc.SetLineWidth(2)
	for _, n := range notes {
		r := n.Region.Pixels(bounds)
		if r.Empty() {
			continue
		}
		if n.Active {
			dc.SetRGB(0.06, 0.73, 0.51)
		} else {
			dc.SetRGBA(0.6, 0.6, 0.6, 0.6)
		}
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()
		if len(n.Lines) == 0 {
			continue
		}
		y := r.Max.Y + lineHeight
		if y+lineHeight*(len(n.Lines)-1) > bounds.Max.Y {
			y = r.Min.Y - lineHeight*(len(n.Lines)-1) - 3
		}
		drawBlock(dc, n.Lines, float64(r.Min.X), float64(y))
	}
	if len(header) > 0 {
		drawBlock(dc, header, float64(bounds.Dx())/3, float64(bounds.Dy())/5)
	}
	return dc.Image()
}

// drawBlock writes lines on a translucent backdrop; y is the first baseline.
func drawBlock(dc *gg.Context, lines []string, x, y float64) {
	w := 0.0
	for _, l := range lines {
		lw, _ := dc.MeasureString(l)
		w = max(w, lw)
	}
	h := float64(lineHeight * len(lines))
	dc.SetRGBA(0, 0, 0, 0.55)
	dc.DrawRectangle(x-2, y-lineHeight+1, w+4, h+2)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	for i, l := range lines {
		dc.DrawString(l, x, y+float64(i*lineHeight))
	}
}
