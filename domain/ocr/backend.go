package ocr

import (
	"errors"
	"image"
)

// ErrBackendUnavailable is returned at construction when the recognition engine
// cannot run (missing library, language data or init failure).
var ErrBackendUnavailable = errors.New("ocr backend unavailable")

// PSM is a page segmentation mode.
type PSM int

const (
	PSMSingleBlock PSM = 6
	PSMSingleLine  PSM = 7
	PSMSingleWord  PSM = 8
	PSMSingleChar  PSM = 10
)

// Options configures one recognition call.
type Options struct {
	PSM       PSM
	Whitelist string
	Blacklist string
}

// Line is one recognized text line with its bounding box in image coordinates.
type Line struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Backend turns a prepared bitmap into text.
type Backend interface {
	Text(img image.Image, opts Options) (string, error)
	Close() error
}

// LineBackend can also return per-line boxes, which batched recognition needs.
type LineBackend interface {
	Backend
	Lines(img image.Image, opts Options) ([]Line, error)
}
