package names

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Method records which step produced a resolution.
type Method string

const (
	MethodNone        Method = "none"
	MethodExact       Method = "exact"
	MethodSubstring   Method = "substring"
	MethodPrefix      Method = "prefix"
	MethodLevenshtein Method = "levenshtein"
	MethodConfusion   Method = "confusion"
	MethodOverlap     Method = "overlap"
)

// Resolution is the outcome of correcting one recognized string. When Accepted
// is false Name holds the cleaned input, not a dictionary entry.
type Resolution struct {
	Name     string
	Raw      string
	Kind     Kind
	Method   Method
	Score    float64
	Distance int
	Accepted bool
}

// Options holds the matching limits.
type Options struct {
	MaxDistance            int
	MinRatio               float64
	PrefixMinRatio         float64
	PrefixMinChars         int
	MaxConfusionCandidates int
	CacheSize              int
}

// DefaultOptions returns the tuned matching limits.
func DefaultOptions() Options {
	return Options{
		MaxDistance:            2,
		MinRatio:               0.75,
		PrefixMinRatio:         0.6,
		PrefixMinChars:         4,
		MaxConfusionCandidates: 64,
		CacheSize:              512,
	}
}

// Resolver corrects noisy recognized names against the dictionaries in a Store.
type Resolver struct {
	store  *Store
	opts   Options
	cache  *lru.Cache[string, Resolution]
	logger *slog.Logger
}

// NewResolver constructs a resolver with a bounded result cache.
func NewResolver(store *Store, opts Options, logger *slog.Logger) (*Resolver, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}
	if opts.MaxConfusionCandidates <= 0 {
		opts.MaxConfusionCandidates = DefaultOptions().MaxConfusionCandidates
	}
	cache, err := lru.New[string, Resolution](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Resolver{store: store, opts: opts, cache: cache, logger: logger}, nil
}

// Resolve corrects raw against the dictionaries of kinds, in order, returning
// the first accepted match. Within one dictionary the steps are: exact lookup;
// for truncated text, substring then prefix; bounded edit distance then prefix;
// confusion-table candidates through the same steps; token overlap.
func (r *Resolver) Resolve(raw string, kinds []Kind) Resolution {
	key := cacheKey(raw, kinds)
	if res, ok := r.cache.Get(key); ok {
		return res
	}
	res := Resolution{Name: Clean(raw), Raw: raw, Method: MethodNone}
	if len(kinds) > 0 {
		res.Kind = kinds[0]
	}
	for _, k := range kinds {
		if m, ok := r.resolveIn(raw, r.store.Get(k)); ok {
			res = m
			break
		}
	}
	if r.logger != nil {
		r.logger.Debug("names.resolve", "raw", raw, "name", res.Name, "method", string(res.Method), "score", res.Score, "accepted", res.Accepted)
	}
	r.cache.Add(key, res)
	return res
}

func cacheKey(raw string, kinds []Kind) string {
	var b strings.Builder
	for _, k := range kinds {
		b.WriteString(k.String())
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(raw)
	return b.String()
}

var truncationMarks = strings.NewReplacer(".", "", "…", "")

func (r *Resolver) resolveIn(raw string, d *Dictionary) (Resolution, bool) {
	if d.Len() == 0 {
		return Resolution{}, false
	}
	if word, ok := d.Spelled(raw); ok {
		return r.finish(Resolution{Name: word, Method: MethodExact, Score: 1}, raw, d), true
	}
	norm := Normalize(truncationMarks.Replace(raw))
	if norm == "" {
		return Resolution{}, false
	}
	truncated := IsTruncated(raw)
	if m, ok := r.direct(norm, d, truncated); ok {
		return r.finish(m, raw, d), true
	}

	var best Resolution
	found := false
	for _, cand := range confusionCandidates(strings.ToUpper(raw), r.opts.MaxConfusionCandidates) {
		cn := Normalize(truncationMarks.Replace(cand))
		if cn == "" || cn == norm {
			continue
		}
		m, ok := r.direct(cn, d, truncated)
		if ok && (!found || m.Score > best.Score) {
			best, found = m, true
		}
	}
	if found {
		best.Method = MethodConfusion
		return r.finish(best, raw, d), true
	}

	if m, ok := r.overlap(norm, d); ok {
		return r.finish(m, raw, d), true
	}
	return Resolution{}, false
}

func (r *Resolver) finish(m Resolution, raw string, d *Dictionary) Resolution {
	m.Raw = raw
	m.Kind = d.Kind
	m.Accepted = true
	return m
}

// direct runs the exact, truncation and edit-distance steps on normalized text.
func (r *Resolver) direct(norm string, d *Dictionary, truncated bool) (Resolution, bool) {
	if i, ok := d.exact[norm]; ok {
		return Resolution{Name: d.entries[i].word, Method: MethodExact, Score: 1}, true
	}
	if truncated {
		if m, ok := r.substring(norm, d); ok {
			return m, true
		}
		if m, ok := r.prefix(norm, d); ok {
			return m, true
		}
	}
	if m, ok := r.edit(norm, d); ok {
		return m, true
	}
	return r.prefix(norm, d)
}

// substring picks the longest entry containing the text, spaces ignored.
func (r *Resolver) substring(norm string, d *Dictionary) (Resolution, bool) {
	sub := compact(norm)
	n := utf8.RuneCountInString(sub)
	if n < r.opts.PrefixMinChars {
		return Resolution{}, false
	}
	best := -1
	bestLen := 0
	for i, e := range d.entries {
		if !strings.Contains(e.compact, sub) {
			continue
		}
		if l := utf8.RuneCountInString(e.compact); l > bestLen {
			best, bestLen = i, l
		}
	}
	if best < 0 {
		return Resolution{}, false
	}
	return Resolution{Name: d.entries[best].word, Method: MethodSubstring, Score: float64(n) / float64(bestLen)}, true
}

// prefix picks the entry the text is a prefix of with the highest
// prefix-to-length ratio, preferring shorter entries on ties.
func (r *Resolver) prefix(norm string, d *Dictionary) (Resolution, bool) {
	pre := compact(norm)
	n := utf8.RuneCountInString(pre)
	if n < r.opts.PrefixMinChars {
		return Resolution{}, false
	}
	best := -1
	bestRatio := 0.0
	bestLen := 0
	for i, e := range d.entries {
		if !strings.HasPrefix(e.norm, norm) && !strings.HasPrefix(e.compact, pre) {
			continue
		}
		l := utf8.RuneCountInString(e.compact)
		ratio := float64(n) / float64(max(1, l))
		if ratio < r.opts.PrefixMinRatio {
			continue
		}
		if ratio > bestRatio || (ratio == bestRatio && l < bestLen) {
			best, bestRatio, bestLen = i, ratio, l
		}
	}
	if best < 0 {
		return Resolution{}, false
	}
	return Resolution{Name: d.entries[best].word, Method: MethodPrefix, Score: bestRatio}, true
}

// edit accepts the closest entry within MaxDistance whose similarity ratio
// 1-d/maxLen reaches MinRatio.
func (r *Resolver) edit(norm string, d *Dictionary) (Resolution, bool) {
	n := utf8.RuneCountInString(norm)
	best := -1
	bestDist := r.opts.MaxDistance + 1
	bestRatio := 0.0
	for i, e := range d.entries {
		l := utf8.RuneCountInString(e.norm)
		if abs(l-n) > r.opts.MaxDistance {
			continue
		}
		dist := levenshtein.ComputeDistance(norm, e.norm)
		if dist > r.opts.MaxDistance {
			continue
		}
		ratio := 1 - float64(dist)/float64(max(l, n))
		if dist < bestDist || (dist == bestDist && ratio > bestRatio) {
			best, bestDist, bestRatio = i, dist, ratio
		}
	}
	if best < 0 || bestRatio < r.opts.MinRatio {
		return Resolution{}, false
	}
	return Resolution{Name: d.entries[best].word, Method: MethodLevenshtein, Score: bestRatio, Distance: bestDist}, true
}

// overlap is the last resort: the entry sharing the largest fraction of whole
// tokens, accepted only at or above MinRatio.
func (r *Resolver) overlap(norm string, d *Dictionary) (Resolution, bool) {
	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return Resolution{}, false
	}
	have := map[string]bool{}
	for _, t := range tokens {
		have[t] = true
	}
	best := -1
	bestRatio := 0.0
	for i, e := range d.entries {
		shared := 0
		used := map[string]bool{}
		for _, t := range e.tokens {
			if have[t] && !used[t] {
				used[t] = true
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		ratio := float64(shared) / float64(max(len(tokens), len(e.tokens)))
		if ratio > bestRatio {
			best, bestRatio = i, ratio
		}
	}
	if best < 0 || bestRatio < r.opts.MinRatio {
		return Resolution{}, false
	}
	return Resolution{Name: d.entries[best].word, Method: MethodOverlap, Score: bestRatio}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
