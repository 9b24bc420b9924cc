package ocr

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

type fakeBackend struct {
	texts    []string
	calls    []Options
	lines    func(img image.Image) []Line
	linesErr error
	closed   bool
}

func (f *fakeBackend) Text(img image.Image, opts Options) (string, error) {
	f.calls = append(f.calls, opts)
	i := len(f.calls) - 1
	if i < len(f.texts) {
		if f.texts[i] == "!err" {
			return "", errors.New("engine hiccup")
		}
		return f.texts[i], nil
	}
	return "", nil
}

func (f *fakeBackend) Lines(img image.Image, opts Options) ([]Line, error) {
	if f.linesErr != nil {
		return nil, f.linesErr
	}
	return f.lines(img), nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func block(w, h int, c color.Color) image.Image {
	return imaging.New(w, h, c)
}

func testConfig() Config {
	return Config{
		Scale:           1,
		NameWhitelist:   "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz '-",
		NameBlacklist:   "0123456789",
		HealthWhitelist: "0123456789/,",
		DigitsWhitelist: "0123456789",
	}
}

func TestRead_StopsAtFirstNonEmpty(t *testing.T) {
	fb := &fakeBackend{texts: []string{"", "!err", "  Storm  ", "ignored"}}
	r := NewRecognizer(fb, testConfig(), nil)
	got := r.Read(block(40, 12, color.Black), FieldName)
	if got != "Storm" {
		t.Fatalf("expected Storm, got %q", got)
	}
	if len(fb.calls) != 3 {
		t.Fatalf("expected 3 backend calls, got %d", len(fb.calls))
	}
	if fb.calls[2].PSM != PSMSingleWord {
		t.Fatalf("expected third variant to use single-word mode, got %d", fb.calls[2].PSM)
	}
	if fb.calls[0].Blacklist != "0123456789" {
		t.Fatalf("expected name blacklist on first call, got %q", fb.calls[0].Blacklist)
	}
}

func TestRead_HealthUsesHealthWhitelist(t *testing.T) {
	fb := &fakeBackend{texts: []string{"1200/1200"}}
	r := NewRecognizer(fb, testConfig(), nil)
	if got := r.Read(block(40, 12, color.White), FieldHealth); got != "1200/1200" {
		t.Fatalf("expected 1200/1200, got %q", got)
	}
	if fb.calls[0].Whitelist != "0123456789/," {
		t.Fatalf("expected health whitelist, got %q", fb.calls[0].Whitelist)
	}
}

func TestRead_EmptyImage(t *testing.T) {
	fb := &fakeBackend{texts: []string{"x"}}
	r := NewRecognizer(fb, testConfig(), nil)
	if got := r.Read(image.NewRGBA(image.Rect(0, 0, 0, 0)), FieldName); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if len(fb.calls) != 0 {
		t.Fatalf("expected no backend calls, got %d", len(fb.calls))
	}
}

func TestRead_AllVariantsEmpty(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRecognizer(fb, testConfig(), nil)
	if got := r.Read(block(20, 10, color.Black), FieldDigits); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
	if len(fb.calls) != 3 {
		t.Fatalf("expected 3 digit variants, got %d", len(fb.calls))
	}
}

// darkRuns reports [y0, y1) row runs that contain any dark pixel.
func darkRuns(img image.Image) [][2]int {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	var runs [][2]int
	start := -1
	for y := b.Min.Y; y <= b.Max.Y; y++ {
		dark := false
		if y < b.Max.Y {
			for x := b.Min.X; x < b.Max.X; x++ {
				if g.Pix[g.PixOffset(x, y)] < 128 {
					dark = true
					break
				}
			}
		}
		if dark && start < 0 {
			start = y
		}
		if !dark && start >= 0 {
			runs = append(runs, [2]int{start, y})
			start = -1
		}
	}
	return runs
}

func TestReadBatch_DemultiplexesByBand(t *testing.T) {
	fb := &fakeBackend{}
	fb.lines = func(img image.Image) []Line {
		runs := darkRuns(img)
		var out []Line
		// Reverse order so assignment cannot rely on line ordering.
		for i := len(runs) - 1; i >= 0; i-- {
			out = append(out, Line{
				Text: []string{"Storm", "1200/1200", "Imp"}[i],
				Box:  image.Rect(0, runs[i][0], 10, runs[i][1]),
			})
		}
		return out
	}
	r := NewRecognizer(fb, testConfig(), nil)
	got := r.ReadBatch([]Request{
		{Image: block(30, 10, color.Black), Field: FieldName},
		{Image: block(50, 14, color.Black), Field: FieldHealth},
		{Image: block(20, 8, color.Black), Field: FieldName},
	})
	want := []string{"Storm", "1200/1200", "Imp"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("request %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if len(fb.calls) != 0 {
		t.Fatalf("expected no per-item fallback, got %d calls", len(fb.calls))
	}
}

func TestReadBatch_FallsBackPerItem(t *testing.T) {
	fb := &fakeBackend{linesErr: errors.New("no boxes"), texts: []string{"Storm", "Imp"}}
	r := NewRecognizer(fb, testConfig(), nil)
	got := r.ReadBatch([]Request{
		{Image: block(30, 10, color.Black), Field: FieldName},
		{Image: block(30, 10, color.Black), Field: FieldName},
	})
	if got[0] != "Storm" || got[1] != "Imp" {
		t.Fatalf("expected per-item results, got %v", got)
	}
}

func TestBatchWhitelist_Union(t *testing.T) {
	r := NewRecognizer(&fakeBackend{}, testConfig(), nil)
	wl := r.batchWhitelist([]Request{{Field: FieldDigits}, {Field: FieldHealth}})
	if wl != "0123456789/," {
		t.Fatalf("expected union whitelist, got %q", wl)
	}
}

func TestBinarize_LightTextOnDark(t *testing.T) {
	img := imaging.New(40, 20, color.Black)
	img = imaging.Paste(img, imaging.New(10, 6, color.White), image.Pt(15, 7))
	bin := Binarize(img)
	if bin.GrayAt(0, 0).Y != 255 {
		t.Fatalf("expected background to become light")
	}
	if bin.GrayAt(20, 10).Y != 0 {
		t.Fatalf("expected text to become dark ink")
	}
	cropped := CropToForeground(bin, 1)
	if b := cropped.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Fatalf("expected 12x8 crop, got %v", b)
	}
}

func TestSplitGlyphs(t *testing.T) {
	img := imaging.New(60, 10, color.White)
	for _, x := range []int{2, 8, 30} {
		img = imaging.Paste(img, imaging.New(4, 6, color.Black), image.Pt(x, 2))
	}
	glyphs := splitGlyphs(Binarize(img))
	if len(glyphs) != 3 {
		t.Fatalf("expected 3 glyphs, got %d", len(glyphs))
	}
	if glyphs[1].space || !glyphs[2].space {
		t.Fatalf("expected a word break before the third glyph only, got %+v", glyphs)
	}
}

func TestMaskColor_Red(t *testing.T) {
	img := imaging.New(10, 4, color.NRGBA{R: 20, G: 20, B: 60, A: 255})
	img = imaging.Paste(img, imaging.New(3, 4, color.NRGBA{R: 220, G: 30, B: 30, A: 255}), image.Pt(0, 0))
	mask := MaskColor(img, 1, isRed)
	if c := mask.NRGBAAt(borderPx+1, borderPx+1); c.R != 0 {
		t.Fatalf("expected red pixel to become ink, got %v", c)
	}
	if c := mask.NRGBAAt(borderPx+6, borderPx+1); c.R != 255 {
		t.Fatalf("expected background to stay white, got %v", c)
	}
}

func TestFieldString(t *testing.T) {
	if !strings.EqualFold(FieldHealth.String(), "health") {
		t.Fatalf("unexpected field name %q", FieldHealth.String())
	}
}

func TestClose(t *testing.T) {
	fb := &fakeBackend{}
	if err := NewRecognizer(fb, testConfig(), nil).Close(); err != nil || !fb.closed {
		t.Fatalf("expected backend to be closed")
	}
}
