package vision

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// textured returns a deterministic high-variance pattern so NCC has a unique peak.
func textured(w, h, seed int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*37 + y*91 + x*y*7 + seed*13) % 251)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func checker(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(30)
			if ((x/cell)+(y/cell))%2 == 0 {
				v = 220
			}
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func subImage(src *image.RGBA, r image.Rectangle) image.Image {
	return imaging.Crop(src, r)
}

func TestRegion_PixelsAndSub(t *testing.T) {
	b := image.Rect(0, 0, 200, 100)
	r := Region{0.25, 0.5, 0.75, 1}
	if got := r.Pixels(b); got != image.Rect(50, 50, 150, 100) {
		t.Fatalf("expected (50,50)-(150,100), got %v", got)
	}
	child := r.Sub(Region{0, 0, 0.5, 0.5})
	if child != (Region{0.25, 0.5, 0.5, 0.75}) {
		t.Fatalf("unexpected sub region %+v", child)
	}
	if (Region{0.5, 0.2, 0.4, 0.9}).Valid() {
		t.Fatalf("expected inverted region to be invalid")
	}
	if !FromCenter(0.02, 0.5, 0.1, 0.1).Valid() {
		t.Fatalf("expected clamped centre region to be valid")
	}
}

func TestBucketFor(t *testing.T) {
	cases := []struct {
		w, h int
		want Bucket
	}{
		{1280, 720, Bucket16x9},
		{1024, 768, Bucket4x3},
		{1280, 800, Bucket16x10},
		{2580, 1080, Bucket43x18},
		{0, 0, Bucket16x9},
	}
	for _, c := range cases {
		if got := BucketFor(c.w, c.h); got != c.want {
			t.Fatalf("BucketFor(%d,%d): expected %s, got %s", c.w, c.h, c.want, got)
		}
	}
	if w, h := Bucket4x3.FitSize(1280, 720); w != 960 || h != 720 {
		t.Fatalf("expected 960x720, got %dx%d", w, h)
	}
}

func TestClassifier_FindsPlantedTemplate(t *testing.T) {
	frame := textured(160, 90, 1)
	target := subImage(frame, image.Rect(60, 30, 80, 50))
	bank := NewBank(Bucket16x9, map[string][]image.Image{
		"dagger": {target},
		"key":    {checker(20, 20, 4)},
	})
	c := NewClassifier(nil, Options{Stride: 1, Workers: 2}, nil)
	res := c.Classify(frame, Region{0.25, 0.2, 0.75, 0.8}, bank, 0.9)
	if !res.OK || res.Label != "dagger" {
		t.Fatalf("expected dagger match, got %+v", res)
	}
	if res.Score < 0.99 {
		t.Fatalf("expected near-perfect score, got %v", res.Score)
	}
	if res.At != image.Pt(60, 30) {
		t.Fatalf("expected match at (60,30), got %v", res.At)
	}
	if res.Center() != image.Pt(70, 40) {
		t.Fatalf("expected centre (70,40), got %v", res.Center())
	}
}

func TestClassifier_LabelOnlyAtThreshold(t *testing.T) {
	frame := textured(100, 60, 2)
	bank := NewBank(Bucket16x9, map[string][]image.Image{"moon": {checker(16, 16, 2)}})
	c := NewClassifier(nil, Options{Workers: 1}, nil)
	res := c.Classify(frame, Full, bank, 0.95)
	if res.OK || res.Label != "" {
		t.Fatalf("expected no label below threshold, got %+v", res)
	}
	if res.Best != "moon" {
		t.Fatalf("expected best candidate to be reported, got %q", res.Best)
	}
}

func TestClassifier_EmptyBankNeverMatches(t *testing.T) {
	c := NewClassifier(nil, Options{}, nil)
	res := c.Classify(textured(50, 50, 3), Full, &Bank{}, 0)
	if res.OK {
		t.Fatalf("expected no match from empty bank")
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
}

func TestLoadBank_BucketThenAgnosticFallback(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "dagger", "dagger_16x9.png"), checker(12, 12, 3))
	writePNG(t, filepath.Join(dir, "key", "key.png"), textured(12, 12, 4))
	writePNG(t, filepath.Join(dir, "43x18", "ruby.png"), textured(12, 12, 5))

	b, err := LoadBank(dir, Bucket16x9)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Agnostic || len(b.Labels()) != 1 || b.Labels()[0] != "dagger" {
		t.Fatalf("expected only tagged dagger, got agnostic=%v labels=%v", b.Agnostic, b.Labels())
	}

	b, err = LoadBank(dir, Bucket43x18)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b.Labels()[0] != "ruby" {
		t.Fatalf("expected ruby from the 43x18 directory, got %v", b.Labels())
	}

	b, err = LoadBank(dir, Bucket4x3)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !b.Agnostic || len(b.Labels()) != 1 || b.Labels()[0] != "key" {
		t.Fatalf("expected agnostic fallback to untagged key, got agnostic=%v labels=%v", b.Agnostic, b.Labels())
	}
}

func TestBankCache_MissingDirYieldsEmptyBankOnce(t *testing.T) {
	cache := NewBankCache(t.TempDir(), nil)
	a := cache.Bank("schools", Bucket16x9)
	if a.Len() != 0 {
		t.Fatalf("expected empty bank")
	}
	if b := cache.Bank("schools", Bucket16x9); b != a {
		t.Fatalf("expected cached bank instance")
	}
}

func TestPipSlices(t *testing.T) {
	b := image.Rect(0, 0, 1280, 720)
	region := Region{0.1, 0.1, 0.3, 0.15}
	slices := PipSlices(b, region, PipSlicing{Count: 7, StartPx: 2, WidthPx: 20, GapPx: 4, TopCutPx: 2, BottomCutPx: 2}, 1280)
	if len(slices) != 7 {
		t.Fatalf("expected 7 slices, got %d", len(slices))
	}
	if slices[0].Min.X != 130 || slices[1].Min.X != 154 {
		t.Fatalf("unexpected slice origins %v %v", slices[0], slices[1])
	}
	if slices[0].Min.Y != 74 || slices[0].Max.Y != 106 {
		t.Fatalf("unexpected vertical trim %v", slices[0])
	}
}
