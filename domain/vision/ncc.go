package vision

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// grayPrecomp stores per-crop grayscale values and their summed-area tables
// (integral images). The integrals allow O(1) window sum and variance queries.
type grayPrecomp struct {
	gray       []float64
	integral   []float64
	integralSq []float64
	W, H       int
}

// templatePrecomp holds grayscale pixels and summary statistics for one
// template. It is built once when the owning bank loads.
type templatePrecomp struct {
	gray  []float32
	W, H  int
	meanT float64
	stdT  float64
}

// toGray converts any image to an 8-bit grayscale copy anchored at (0,0).
func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	if g, ok := src.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), src, b.Min, draw.Src)
	return g
}

// newTemplatePrecomp builds statistics for a template. Pixels with alpha==0
// contribute zero, matching how transparent regions were authored.
func newTemplatePrecomp(tmpl image.Image) *templatePrecomp {
	if tmpl == nil {
		return nil
	}
	b := tmpl.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	gray := make([]float32, w*h)
	var sumT, sumT2 float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, a := tmpl.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			gval := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bb)) / 257
			gray[y*w+x] = float32(gval)
			sumT += gval
			sumT2 += gval * gval
		}
	}
	n := float64(w * h)
	meanT := sumT / n
	varT := (sumT2 - sumT*sumT/n) / n
	stdT := 0.0
	if varT > 0 {
		stdT = math.Sqrt(varT)
	}
	return &templatePrecomp{gray: gray, W: w, H: h, meanT: meanT, stdT: stdT}
}

// buildGrayPrecomp computes grayscale values and summed-area tables for g.
func buildGrayPrecomp(g *image.Gray) *grayPrecomp {
	if g == nil {
		return nil
	}
	b := g.Bounds()
	W, H := b.Dx(), b.Dy()
	need := W * H
	p := &grayPrecomp{
		gray:       make([]float64, need),
		integral:   make([]float64, need),
		integralSq: make([]float64, need),
		W:          W,
		H:          H,
	}
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 float64
		row := g.Pix[y*g.Stride : y*g.Stride+W]
		for x := 0; x < W; x++ {
			v := float64(row[x])
			off := y*W + x
			p.gray[off] = v
			rowSum += v
			rowSum2 += v * v
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[(y-1)*W+x] + rowSum
				p.integralSq[off] = p.integralSq[(y-1)*W+x] + rowSum2
			}
		}
	}
	return p
}

// integralSum returns the inclusive sum over rectangle [x0..x1] x [y0..y1]
// from an integral image stored in row-major order with width W.
func integralSum(I []float64, W int, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	A := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return A(x1, y1) - A(x0-1, y1) - A(x1, y0-1) + A(x0-1, y0-1)
}

// scoreAt returns the NCC score of the template placed with its top-left at (x, y).
// Flat windows score 0 unless the template is flat too and the values agree.
func scoreAt(pre *grayPrecomp, pc *templatePrecomp, x, y int) float64 {
	w, h := pc.W, pc.H
	n := float64(w * h)
	sumF := integralSum(pre.integral, pre.W, x, y, x+w-1, y+h-1)
	sumF2 := integralSum(pre.integralSq, pre.W, x, y, x+w-1, y+h-1)
	meanF := sumF / n
	varF := (sumF2 - sumF*sumF/n) / n
	if varF <= 1e-9 || pc.stdT <= 1e-9 {
		if varF <= 1e-9 && pc.stdT <= 1e-9 && math.Abs(meanF-pc.meanT) < 1 {
			return 1
		}
		return 0
	}
	stdF := math.Sqrt(varF)
	var sumFT float64
	for py := 0; py < h; py++ {
		frow := pre.gray[(y+py)*pre.W+x:]
		trow := pc.gray[py*w : py*w+w]
		for px := 0; px < w; px++ {
			sumFT += frow[px] * float64(trow[px])
		}
	}
	return (sumFT - n*meanF*pc.meanT) / (n * stdF * pc.stdT)
}

// matchNCC slides the template across the precomputed crop and returns the best
// top-left placement. A stride above 1 scans coarsely and, when refine is set,
// re-scans densely around the coarse best.
func matchNCC(pre *grayPrecomp, pc *templatePrecomp, stride int, refine bool) (int, int, float64) {
	if pre == nil || pc == nil || pc.W > pre.W || pc.H > pre.H {
		return 0, 0, -1
	}
	if stride <= 0 {
		stride = 1
	}
	bestX, bestY, bestScore := 0, 0, -1.0
	maxX, maxY := pre.W-pc.W, pre.H-pc.H
	for y := 0; y <= maxY; y += stride {
		for x := 0; x <= maxX; x += stride {
			if s := scoreAt(pre, pc, x, y); s > bestScore {
				bestScore, bestX, bestY = s, x, y
			}
		}
	}
	if refine && stride > 1 {
		x0, x1 := max(0, bestX-stride), min(maxX, bestX+stride)
		y0, y1 := max(0, bestY-stride), min(maxY, bestY+stride)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if s := scoreAt(pre, pc, x, y); s > bestScore {
					bestScore, bestX, bestY = s, x, y
				}
			}
		}
	}
	return bestX, bestY, bestScore
}
