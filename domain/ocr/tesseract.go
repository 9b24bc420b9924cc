package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Tesseract is a Backend over a single gosseract client. Calls are serialized
// because a client holds per-call image and variable state.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

var _ LineBackend = (*Tesseract)(nil)

// NewTesseract creates a client for lang and runs a probe recognition so that a
// missing engine or language pack is reported here rather than per frame.
func NewTesseract(lang, tessdataPrefix string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if tessdataPrefix != "" {
		client.TessdataPrefix = tessdataPrefix
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: set language %q: %v", ErrBackendUnavailable, lang, err)
	}
	t := &Tesseract{client: client}
	probe := imaging.New(48, 24, color.White)
	if _, err := t.Text(probe, Options{PSM: PSMSingleLine}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: probe: %v", ErrBackendUnavailable, err)
	}
	return t, nil
}

// Version reports the engine version.
func (t *Tesseract) Version() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Version()
}

func (t *Tesseract) configure(img image.Image, opts Options) error {
	psm := opts.PSM
	if psm == 0 {
		psm = PSMSingleLine
	}
	if err := t.client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return err
	}
	if err := t.client.SetWhitelist(opts.Whitelist); err != nil {
		return err
	}
	if err := t.client.SetBlacklist(opts.Blacklist); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return t.client.SetImageFromBytes(buf.Bytes())
}

// Text implements Backend.
func (t *Tesseract) Text(img image.Image, opts Options) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.configure(img, opts); err != nil {
		return "", err
	}
	out, err := t.client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Lines implements LineBackend using text-line bounding boxes.
func (t *Tesseract) Lines(img image.Image, opts Options) ([]Line, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.configure(img, opts); err != nil {
		return nil, err
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(boxes))
	for _, b := range boxes {
		lines = append(lines, Line{Text: strings.TrimSpace(b.Word), Box: b.Box, Confidence: b.Confidence})
	}
	return lines, nil
}

// Close releases the client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
