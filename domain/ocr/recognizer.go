package ocr

import (
	"image"
	"image/color"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
)

// Field selects the character set and preprocessing cascade for a read.
type Field int

const (
	FieldName Field = iota
	FieldHealth
	FieldDigits
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldHealth:
		return "health"
	case FieldDigits:
		return "digits"
	default:
		return "unknown"
	}
}

// Config holds the recognizer character sets and scale.
type Config struct {
	Scale           int
	NameWhitelist   string
	NameBlacklist   string
	HealthWhitelist string
	DigitsWhitelist string
}

// Recognizer runs preprocessing variants against a Backend until one yields text.
type Recognizer struct {
	backend Backend
	cfg     Config
	logger  *slog.Logger
}

// NewRecognizer wraps backend.
func NewRecognizer(backend Backend, cfg Config, logger *slog.Logger) *Recognizer {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	return &Recognizer{backend: backend, cfg: cfg, logger: logger}
}

type variant struct {
	name    string
	prep    func(image.Image) image.Image
	opts    Options
	perChar bool
}

func (r *Recognizer) whitelist(f Field) string {
	switch f {
	case FieldHealth:
		return r.cfg.HealthWhitelist
	case FieldDigits:
		return r.cfg.DigitsWhitelist
	default:
		return r.cfg.NameWhitelist
	}
}

func (r *Recognizer) variants(f Field) []variant {
	scale := r.cfg.Scale
	normal := func(img image.Image) image.Image { return Prepare(img, scale, false) }
	inverted := func(img image.Image) image.Image { return Prepare(img, scale, true) }
	otsuPrep := func(img image.Image) image.Image {
		return CropToForeground(Binarize(Prepare(img, scale, false)), borderPx)
	}
	wl := r.whitelist(f)
	switch f {
	case FieldHealth:
		return []variant{
			{name: "normal", prep: normal, opts: Options{PSM: PSMSingleLine, Whitelist: wl}},
			{name: "white", prep: func(img image.Image) image.Image { return MaskColor(img, scale, isWhite) }, opts: Options{PSM: PSMSingleLine, Whitelist: wl}},
			{name: "red", prep: func(img image.Image) image.Image { return MaskColor(img, scale, isRed) }, opts: Options{PSM: PSMSingleLine, Whitelist: wl}},
			{name: "inverted", prep: inverted, opts: Options{PSM: PSMSingleLine, Whitelist: wl}},
			{name: "psm8", prep: normal, opts: Options{PSM: PSMSingleWord, Whitelist: wl}},
			{name: "psm6", prep: normal, opts: Options{PSM: PSMSingleBlock, Whitelist: wl}},
			{name: "otsu", prep: otsuPrep, opts: Options{PSM: PSMSingleLine, Whitelist: wl}},
		}
	case FieldDigits:
		return []variant{
			{name: "normal", prep: normal, opts: Options{PSM: PSMSingleLine, Whitelist: wl}},
			{name: "inverted", prep: inverted, opts: Options{PSM: PSMSingleLine, Whitelist: wl}},
			{name: "otsu", prep: otsuPrep, opts: Options{PSM: PSMSingleWord, Whitelist: wl}},
		}
	default:
		bl := r.cfg.NameBlacklist
		return []variant{
			{name: "normal", prep: normal, opts: Options{PSM: PSMSingleLine, Whitelist: wl, Blacklist: bl}},
			{name: "inverted", prep: inverted, opts: Options{PSM: PSMSingleLine, Whitelist: wl, Blacklist: bl}},
			{name: "psm8", prep: normal, opts: Options{PSM: PSMSingleWord, Whitelist: wl, Blacklist: bl}},
			{name: "psm6", prep: normal, opts: Options{PSM: PSMSingleBlock, Whitelist: wl, Blacklist: bl}},
			{name: "open", prep: normal, opts: Options{PSM: PSMSingleLine}},
			{name: "otsu", prep: otsuPrep, opts: Options{PSM: PSMSingleLine, Blacklist: bl}},
			{name: "perchar", prep: otsuPrep, opts: Options{PSM: PSMSingleChar, Whitelist: wl}, perChar: true},
		}
	}
}

// Prepared returns the first-stage preprocessed image for f, as fed to the
// backend on the first attempt.
func (r *Recognizer) Prepared(img image.Image, f Field) image.Image {
	return r.variants(f)[0].prep(img)
}

// Read returns the first non-empty text produced by the cascade for f, or ""
// when every variant failed. Backend errors are logged and skipped.
func (r *Recognizer) Read(img image.Image, f Field) string {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	for _, v := range r.variants(f) {
		prepared := v.prep(img)
		var text string
		var err error
		if v.perChar {
			text, err = r.readPerChar(prepared, v.opts)
		} else {
			text, err = r.backend.Text(prepared, v.opts)
		}
		if err != nil {
			if r.logger != nil {
				r.logger.Debug("ocr.variant", "field", f.String(), "variant", v.name, "error", err)
			}
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			if r.logger != nil {
				r.logger.Debug("ocr.read", "field", f.String(), "variant", v.name, "text", text)
			}
			return text
		}
	}
	return ""
}

func (r *Recognizer) readPerChar(img image.Image, opts Options) (string, error) {
	bin := Binarize(img)
	glyphs := splitGlyphs(bin)
	if len(glyphs) == 0 {
		return "", nil
	}
	var b strings.Builder
	h := bin.Bounds().Dy()
	for _, g := range glyphs {
		cell := imaging.Crop(bin, image.Rect(g.x0, 0, g.x1, h))
		text, err := r.backend.Text(addBorder(cell, borderPx, color.White), opts)
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if g.space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// Request is one crop to read in a batch.
type Request struct {
	Image image.Image
	Field Field
}

const batchGapPx = 24

// ReadBatch reads every request with one backend call when the backend reports
// line boxes: the prepared crops are stacked vertically and each returned line
// is assigned to the crop whose band contains its centre. Requests left without
// text, or every request when the batch call fails, fall back to Read.
func (r *Recognizer) ReadBatch(reqs []Request) []string {
	out := make([]string, len(reqs))
	lb, ok := r.backend.(LineBackend)
	if !ok || len(reqs) < 2 {
		for i, q := range reqs {
			out[i] = r.Read(q.Image, q.Field)
		}
		return out
	}
	sheet, bands := r.stack(reqs)
	lines, err := lb.Lines(sheet, Options{PSM: PSMSingleBlock, Whitelist: r.batchWhitelist(reqs)})
	if err != nil && r.logger != nil {
		r.logger.Debug("ocr.batch", "requests", len(reqs), "error", err)
	}
	for _, l := range lines {
		cy := (l.Box.Min.Y + l.Box.Max.Y) / 2
		for i, band := range bands {
			if cy >= band[0] && cy < band[1] {
				text := strings.TrimSpace(l.Text)
				if text == "" {
					break
				}
				if out[i] != "" {
					out[i] += " "
				}
				out[i] += text
				break
			}
		}
	}
	for i, q := range reqs {
		if out[i] == "" {
			out[i] = r.Read(q.Image, q.Field)
		}
	}
	return out
}

// stack pastes each prepared request under the previous one with a blank gap
// and returns the sheet with each request's [y0, y1) band. A band extends
// halfway into the surrounding gaps.
func (r *Recognizer) stack(reqs []Request) (*image.NRGBA, [][2]int) {
	prepared := make([]image.Image, len(reqs))
	width, height := 0, batchGapPx
	for i, q := range reqs {
		if q.Image == nil || q.Image.Bounds().Empty() {
			prepared[i] = image.NewGray(image.Rect(0, 0, 1, 1))
		} else {
			prepared[i] = r.Prepared(q.Image, q.Field)
		}
		b := prepared[i].Bounds()
		width = max(width, b.Dx())
		height += b.Dy() + batchGapPx
	}
	sheet := imaging.New(width+2*batchGapPx, height, color.White)
	bands := make([][2]int, len(reqs))
	y := batchGapPx
	for i, p := range prepared {
		h := p.Bounds().Dy()
		sheet = imaging.Paste(sheet, p, image.Pt(batchGapPx, y))
		bands[i] = [2]int{y - batchGapPx/2, y + h + batchGapPx/2}
		y += h + batchGapPx
	}
	return sheet, bands
}

func (r *Recognizer) batchWhitelist(reqs []Request) string {
	seen := map[rune]bool{}
	var b strings.Builder
	for _, q := range reqs {
		for _, c := range r.whitelist(q.Field) {
			if !seen[c] {
				seen[c] = true
				b.WriteRune(c)
			}
		}
	}
	return b.String()
}

// Close releases the backend.
func (r *Recognizer) Close() error {
	if r.backend == nil {
		return nil
	}
	return r.backend.Close()
}
