package vision

import (
	"image"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
)

// Result is the outcome of classifying one region. OK (and therefore Label) is
// only set when Score reached the caller's threshold; Best always carries the
// highest-scoring label for diagnostics.
type Result struct {
	Label string
	OK    bool
	Score float64
	Best  string
	// At is the top-left of the best placement in frame coordinates and Size the
	// matched template size.
	At   image.Point
	Size image.Point
}

// Center returns the centre of the best placement in frame coordinates.
func (r Result) Center() image.Point {
	return image.Pt(r.At.X+r.Size.X/2, r.At.Y+r.Size.Y/2)
}

// Options tunes the matcher. StopOnScore of 0 disables early stop and Workers
// of 0 uses one worker per CPU.
type Options struct {
	Stride      int
	Refine      bool
	StopOnScore float64
	Workers     int
}

// Classifier scores image regions against template banks using normalized
// cross-correlation.
type Classifier struct {
	cache  *BankCache
	opts   Options
	logger *slog.Logger
}

// NewClassifier constructs a classifier sharing the given bank cache.
func NewClassifier(cache *BankCache, opts Options, logger *slog.Logger) *Classifier {
	if opts.Stride <= 0 {
		opts.Stride = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Classifier{cache: cache, opts: opts, logger: logger}
}

// Bank fetches a bank from the shared cache.
func (c *Classifier) Bank(domain string, bucket Bucket) *Bank {
	if c.cache == nil {
		return &Bank{Bucket: bucket}
	}
	return c.cache.Bank(domain, bucket)
}

// Classify crops region out of img and matches it against bank.
func (c *Classifier) Classify(img image.Image, region Region, bank *Bank, threshold float64) Result {
	if img == nil || !region.Valid() {
		return Result{}
	}
	return c.ClassifyRect(img, region.Pixels(img.Bounds()), bank, threshold)
}

// ClassifyRect is Classify with a pixel rectangle.
func (c *Classifier) ClassifyRect(img image.Image, rect image.Rectangle, bank *Bank, threshold float64) Result {
	if img == nil || bank.Len() == 0 {
		return Result{}
	}
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return Result{}
	}
	res := c.best(imaging.Crop(img, rect), bank)
	res.At = res.At.Add(rect.Min)
	if res.Score >= threshold && res.Best != "" {
		res.Label = res.Best
		res.OK = true
	}
	return res
}

type scored struct {
	label string
	score float64
	at    image.Point
	size  image.Point
	done  bool
}

// best returns the highest scoring template placement within crop. Templates
// larger than the crop are scored against the crop resized to their size.
func (c *Classifier) best(crop image.Image, bank *Bank) Result {
	gray := toGray(crop)
	pre := buildGrayPrecomp(gray)
	results := make([]scored, len(bank.Templates))

	var earlyStop atomic.Bool
	eval := func(i int) {
		if earlyStop.Load() {
			return
		}
		t := bank.Templates[i]
		var x, y int
		var s float64
		if t.pc.W <= pre.W && t.pc.H <= pre.H {
			x, y, s = matchNCC(pre, t.pc, c.opts.Stride, c.opts.Refine)
		} else {
			fitted := toGray(imaging.Resize(gray, t.pc.W, t.pc.H, imaging.Linear))
			s = scoreAt(buildGrayPrecomp(fitted), t.pc, 0, 0)
		}
		results[i] = scored{label: t.Label, score: s, at: image.Pt(x, y), size: t.Size, done: true}
		if c.opts.StopOnScore > 0 && s >= c.opts.StopOnScore {
			earlyStop.Store(true)
		}
	}

	if c.opts.Workers <= 1 || len(bank.Templates) < 3 {
		for i := range bank.Templates {
			eval(i)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, c.opts.Workers)
		for i := range bank.Templates {
			if earlyStop.Load() {
				break
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				eval(i)
			}(i)
		}
		wg.Wait()
	}

	out := Result{Score: -1}
	for _, r := range results {
		if r.done && r.score > out.Score {
			out = Result{Best: r.label, Score: r.score, At: r.at, Size: r.size}
		}
	}
	if out.Score < 0 {
		out.Score = 0
	}
	return out
}
