package battle

import (
	"image"
	"math"
	"sort"
)

// HandCount maps the located card-slot centre (reference pixels) to a card
// count. The nearest calibrated centre within maxDist wins; failing that, the
// nearest by x alone within maxDist.
func HandCount(center image.Point, centers map[int]image.Point, maxDist float64) (int, bool) {
	if len(centers) == 0 {
		return 0, false
	}
	counts := make([]int, 0, len(centers))
	for c := range centers {
		counts = append(counts, c)
	}
	sort.Ints(counts)

	best, bestDist := 0, math.MaxFloat64
	bestX, bestDX := 0, math.MaxFloat64
	for _, c := range counts {
		p := centers[c]
		dx := float64(center.X - p.X)
		dy := float64(center.Y - p.Y)
		if d := math.Hypot(dx, dy); d < bestDist {
			best, bestDist = c, d
		}
		if adx := math.Abs(dx); adx < bestDX {
			bestX, bestDX = c, adx
		}
	}
	if bestDist <= maxDist {
		return best, true
	}
	if bestDX <= maxDist {
		return bestX, true
	}
	return 0, false
}
