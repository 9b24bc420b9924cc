package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const borderPx = 8

// Prepare upscales a crop to grayscale with a contrast boost and a white border,
// optionally inverting it so light-on-dark text becomes dark-on-light.
func Prepare(img image.Image, scale int, invert bool) *image.NRGBA {
	out := imaging.Grayscale(img)
	if scale > 1 {
		b := out.Bounds()
		out = imaging.Resize(out, b.Dx()*scale, b.Dy()*scale, imaging.CatmullRom)
	}
	out = imaging.AdjustContrast(out, 25)
	if invert {
		out = imaging.Invert(out)
	}
	return addBorder(out, borderPx, color.White)
}

func addBorder(img image.Image, pad int, c color.Color) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, c)
	return imaging.Paste(dst, img, image.Pt(pad, pad))
}

// Binarize thresholds img at its Otsu level and returns dark ink on a light
// background regardless of the source polarity.
func Binarize(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	var hist [256]int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[gray.Pix[gray.PixOffset(x, y)]]++
		}
	}
	t := otsu(hist, b.Dx()*b.Dy())
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	ink := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)]
			if v > t {
				out.Pix[y*out.Stride+x] = 255
			} else {
				ink++
			}
		}
	}
	if ink*2 > b.Dx()*b.Dy() {
		for i := range out.Pix {
			out.Pix[i] = 255 - out.Pix[i]
		}
	}
	return out
}

// otsu returns the threshold maximizing between-class variance.
func otsu(hist [256]int, total int) uint8 {
	if total == 0 {
		return 127
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i * c)
	}
	var sumB, wB float64
	best := 0.0
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(i)
		}
	}
	return threshold
}

// CropToForeground trims a binarized image to the bounding box of its dark
// pixels plus pad, returning the input unchanged when there is no ink.
func CropToForeground(bin *image.Gray, pad int) image.Image {
	b := bin.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if bin.GrayAt(x, y).Y < 128 {
				minX, minY = min(minX, x), min(minY, y)
				maxX, maxY = max(maxX, x), max(maxY, y)
			}
		}
	}
	if maxX < minX {
		return bin
	}
	r := image.Rect(minX-pad, minY-pad, maxX+pad+1, maxY+pad+1).Intersect(b)
	return imaging.Crop(bin, r)
}

// MaskColor renders pixels accepted by keep as black ink on white, used to
// isolate coloured digits from a busy background.
func MaskColor(img image.Image, scale int, keep func(r, g, b uint8) bool) *image.NRGBA {
	src := imaging.Clone(img)
	b := src.Bounds()
	mask := imaging.New(b.Dx(), b.Dy(), color.White)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := src.PixOffset(x, y)
			if keep(src.Pix[i], src.Pix[i+1], src.Pix[i+2]) {
				j := mask.PixOffset(x, y)
				mask.Pix[j], mask.Pix[j+1], mask.Pix[j+2] = 0, 0, 0
			}
		}
	}
	if scale > 1 {
		mask = imaging.Resize(mask, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
	}
	return addBorder(mask, borderPx, color.White)
}

// isRed accepts saturated red pixels.
func isRed(r, g, b uint8) bool {
	return int(r) > 120 && int(r)-int(g) > 50 && int(r)-int(b) > 50
}

// isWhite accepts bright unsaturated pixels.
func isWhite(r, g, b uint8) bool {
	lo := min(r, g, b)
	hi := max(r, g, b)
	return lo > 190 && int(hi)-int(lo) < 45
}

type glyph struct {
	x0, x1 int
	space  bool // a word gap precedes this glyph
}

// splitGlyphs splits a binarized line into column ranges separated by blank
// columns. A gap wider than 60% of the mean glyph width marks a word break.
func splitGlyphs(bin *image.Gray) []glyph {
	b := bin.Bounds()
	inkCol := make([]bool, b.Dx())
	for x := 0; x < b.Dx(); x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if bin.GrayAt(b.Min.X+x, y).Y < 128 {
				inkCol[x] = true
				break
			}
		}
	}
	var out []glyph
	start := -1
	lastEnd := -1
	var widths int
	for x := 0; x <= len(inkCol); x++ {
		on := x < len(inkCol) && inkCol[x]
		if on && start < 0 {
			start = x
		}
		if !on && start >= 0 {
			g := glyph{x0: start, x1: x}
			if lastEnd >= 0 && len(out) > 0 {
				avg := widths / len(out)
				if start-lastEnd > max(3, avg*6/10) {
					g.space = true
				}
			}
			out = append(out, g)
			widths += x - start
			lastEnd = x
			start = -1
		}
	}
	return out
}
