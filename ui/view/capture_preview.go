package view

import (
	"image"

	"github.com/soocke/duel-vision-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the annotated frame and the zoomed slot crop.
type CapturePreview interface {
	UpdateCapture(img image.Image)
	UpdateDetection(img image.Image)
	Reset()
}

const (
	maxPreviewW = 640
	maxPreviewH = 360
	maxZoomSide = 240
)

// photoLabel is a label showing one Tk photo. The previous photo is deleted
// on every swap so off-screen pixel data does not accumulate.
type photoLabel struct {
	label *LabelWidget
	photo *Img
}

func newPhotoLabel(w, h int) *photoLabel {
	p := &photoLabel{}
	p.photo = NewPhoto(Data(placeholder(w, h)))
	p.label = Label(Image(p.photo), Borderwidth(1), Relief("sunken"))
	return p
}

func (p *photoLabel) set(png []byte) {
	if p == nil || p.label == nil || len(png) == 0 {
		return
	}
	if p.photo != nil {
		p.photo.Delete()
	}
	p.photo = NewPhoto(Data(png))
	p.label.Configure(Image(p.photo))
}

func placeholder(w, h int) []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, w, h)))
}

type capturePreview struct {
	overlay *photoLabel
	zoom    *photoLabel
}

// NewCapturePreview grids the overlay across columns 0-3 and the zoom at
// column 4 of row.
func NewCapturePreview(row int) CapturePreview {
	v := &capturePreview{overlay: newPhotoLabel(320, 180), zoom: newPhotoLabel(120, 120)}
	Grid(v.overlay.label, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(v.zoom.label, Row(row), Column(4), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return v
}

// UpdateCapture shows the annotated frame, scaled for display.
func (v *capturePreview) UpdateCapture(img image.Image) {
	if img == nil {
		return
	}
	v.overlay.set(images.EncodePNG(images.ScaleToFit(img, maxPreviewW, maxPreviewH)))
}

// UpdateDetection shows the crop around the inspected slot.
func (v *capturePreview) UpdateDetection(img image.Image) {
	if img == nil {
		return
	}
	v.zoom.set(images.EncodePNG(images.ScaleToFit(img, maxZoomSide, maxZoomSide)))
}

func (v *capturePreview) Reset() {
	v.overlay.set(placeholder(320, 180))
	v.zoom.set(placeholder(120, 120))
}
