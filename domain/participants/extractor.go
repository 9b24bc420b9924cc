package participants

import (
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/layout"
	"github.com/soocke/duel-vision-go/domain/names"
	"github.com/soocke/duel-vision-go/domain/ocr"
	"github.com/soocke/duel-vision-go/domain/vision"
)

// Bank domains read by the extractor.
const (
	SigilBank  = "sigils"
	SchoolBank = "schools"
	PipBank    = "pips"
)

// Classifier scores frame regions against template banks.
type Classifier interface {
	Bank(domain string, bucket vision.Bucket) *vision.Bank
	Classify(img image.Image, region vision.Region, bank *vision.Bank, threshold float64) vision.Result
	ClassifyRect(img image.Image, rect image.Rectangle, bank *vision.Bank, threshold float64) vision.Result
}

// TextReader recognizes text in crops.
type TextReader interface {
	Read(img image.Image, f ocr.Field) string
	ReadBatch(reqs []ocr.Request) []string
}

// NameResolver corrects recognized names against dictionaries.
type NameResolver interface {
	Resolve(raw string, kinds []names.Kind) names.Resolution
}

// Dumper receives crops for offline inspection.
type Dumper interface {
	Dump(kind, key string, img image.Image) error
}

// Tick carries the per-frame inputs that are not part of the frame itself.
type Tick struct {
	Now    time.Time
	Bucket vision.Bucket
	// ForcePips bypasses the pip timer for every occupied slot.
	ForcePips bool
}

// Extractor produces the eight participant slots for a frame, reusing the
// previous tick's slots to decide which fields need a fresh read.
// Not safe for concurrent use.
type Extractor struct {
	cfg      *config.Config
	mode     names.MatchMode
	classify Classifier
	text     TextReader
	resolver NameResolver
	dumper   Dumper
	logger   *slog.Logger
}

// NewExtractor wires the extractor. text, resolver and dumper may be nil, in
// which case names and health are never read and nothing is dumped.
func NewExtractor(cfg *config.Config, classify Classifier, text TextReader, resolver NameResolver, dumper Dumper, logger *slog.Logger) *Extractor {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Extractor{
		cfg:      cfg,
		mode:     names.ParseMatchMode(cfg.MatchMode),
		classify: classify,
		text:     text,
		resolver: resolver,
		dumper:   dumper,
		logger:   logger,
	}
}

// plan is the per-slot work decided before any text is read.
type plan struct {
	slot      Slot
	prev      Slot
	box       vision.Region
	fields    layout.Fields
	name      RefreshPolicy
	health    RefreshPolicy
	school    RefreshPolicy
	pips      RefreshPolicy
	nameReq   int
	healthReq int
}

// Extract returns the slots for frame. prev is read but never modified.
func (e *Extractor) Extract(frame image.Image, prev Slots, tick Tick) Slots {
	var out Slots
	if frame == nil {
		return prev
	}
	profile := layout.For(tick.Bucket)
	sigils := e.classify.Bank(SigilBank, tick.Bucket)

	plans := make([]*plan, 0, combat.SlotCount)
	var reqs []ocr.Request
	for pos := range out {
		id := combat.SlotAt(pos)
		p := e.occupancy(frame, profile, sigils, id, prev[pos], tick)
		if !p.slot.Occupied {
			out[pos] = p.slot
			continue
		}
		p.nameReq, p.healthReq = -1, -1
		if p.name.Reads() && e.text != nil && e.resolver != nil {
			p.nameReq = len(reqs)
			reqs = append(reqs, ocr.Request{Image: e.crop(frame, p.box.Sub(p.fields.Name)), Field: ocr.FieldName})
		}
		if p.health.Reads() && e.text != nil {
			p.healthReq = len(reqs)
			reqs = append(reqs, ocr.Request{Image: e.crop(frame, p.box.Sub(p.fields.Health)), Field: ocr.FieldHealth})
		}
		plans = append(plans, p)
	}

	texts := e.readAll(reqs)

	refW := profile.ReferenceWidth(e.cfg.ReferenceWidth, e.cfg.ReferenceHeight)
	schools := e.classify.Bank(SchoolBank, tick.Bucket)
	pips := e.classify.Bank(PipBank, tick.Bucket)
	for _, p := range plans {
		s := &p.slot
		id := s.ID()
		if p.nameReq >= 0 {
			e.mergeName(s, texts[p.nameReq], id)
			e.dump("name", id, reqs[p.nameReq].Image)
		}
		if p.healthReq >= 0 {
			var fresh *Health
			if h, ok := ParseHealth(texts[p.healthReq]); ok {
				fresh = &h
			}
			s.Health = ResolveField(s.Health, fresh, p.health)
			e.dump("health", id, reqs[p.healthReq].Image)
		}
		if p.school.Reads() {
			res := e.classify.Classify(frame, p.box.Sub(p.fields.School), schools, e.cfg.SchoolThreshold)
			var fresh *string
			if res.OK {
				label := res.Label
				fresh = &label
				s.SchoolScore = res.Score
			}
			s.School = ResolveField(s.School, fresh, p.school)
		}
		if p.pips.Reads() {
			fresh := e.readPips(frame, p.box.Sub(p.fields.Pips), profile.Pips, refW, pips)
			s.Pips = ResolveField(s.Pips, fresh, p.pips)
			s.PipsCheckedAt = tick.Now
		}
		if p.name.Reads() || p.health.Reads() || p.school.Reads() || p.pips.Reads() {
			s.LastDetailsCheckedAt = tick.Now
		}
		if e.logger != nil {
			e.logger.Debug("participants.slot",
				"slot", id.String(),
				"sigil", s.Sigil,
				"name", deref(s.Name),
				"name_policy", p.name.String(),
				"health_policy", p.health.String(),
				"school_policy", p.school.String(),
				"pips_policy", p.pips.String(),
			)
		}
		out[id.Position()] = *s
	}
	return out
}

// occupancy decides whether the slot is occupied this tick and, for occupied
// slots, which fields to refresh.
func (e *Extractor) occupancy(frame image.Image, profile layout.Profile, sigils *vision.Bank, id combat.SlotID, prev Slot, tick Tick) *plan {
	box := profile.SlotBox(id)
	fields := profile.FieldsFor(id.Side)
	p := &plan{prev: prev, box: box, fields: fields}

	occupied, sigil, checkedAt := prev.Occupied, prev.Sigil, prev.SigilCheckedAt
	if checkedAt.IsZero() || tick.Now.Sub(checkedAt) >= e.cfg.SigilRecheck() {
		res := e.classify.Classify(frame, box.Sub(fields.Sigil), sigils, e.cfg.SigilThreshold)
		occupied, sigil, checkedAt = res.OK, res.Label, tick.Now
		if occupied {
			if side, known := combat.SigilSide(sigil); known && side != id.Side {
				occupied = false
			}
		}
	}
	if !occupied {
		p.slot = Empty(id.Side, id.Index, ReasonSigilNotDetected)
		p.slot.SigilCheckedAt = checkedAt
		return p
	}

	if !prev.Occupied {
		// Newly occupied: start from an empty slot and read everything.
		p.slot = Slot{Side: id.Side, Index: id.Index, Occupied: true, Sigil: sigil, SigilCheckedAt: checkedAt}
		p.name, p.health, p.school, p.pips = Force, Force, Force, Force
		return p
	}

	p.slot = prev
	p.slot.Sigil, p.slot.SigilCheckedAt, p.slot.EmptyReason = sigil, checkedAt, ""
	p.name, p.health, p.school, p.pips = e.policies(prev, tick)
	return p
}

// policies decides per-field refresh for a slot that stayed occupied.
func (e *Extractor) policies(prev Slot, tick Tick) (name, health, school, pips RefreshPolicy) {
	name = Refresh
	if e.cfg.LockResolvedNames && prev.NameLocked && prev.NameResolved {
		name = Skip
	}
	health = Refresh
	if e.cfg.HealthForcedOnly {
		health = Skip
	}
	school = Refresh
	if prev.School != nil && prev.SchoolScore > e.cfg.SchoolThreshold {
		school = Skip
	}
	switch {
	case tick.ForcePips:
		pips = Force
	case prev.PipsCheckedAt.IsZero() || tick.Now.Sub(prev.PipsCheckedAt) >= e.cfg.PipRefresh():
		pips = Refresh
	default:
		pips = Skip
	}
	return
}

// mergeName applies a recognized name. Accepted resolutions build the lock
// streak; unaccepted text only fills an unknown name.
func (e *Extractor) mergeName(s *Slot, text string, id combat.SlotID) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.NameRaw = text
	res := e.resolver.Resolve(text, names.KindsFor(e.mode, id.Side))
	if res.Accepted {
		if s.Name != nil && *s.Name == res.Name && s.NameResolved {
			s.NameStreak++
		} else {
			s.NameStreak = 1
		}
		name := res.Name
		s.Name = &name
		s.NameResolved = true
		s.NameLocked = s.NameStreak >= e.cfg.NameLockStreak
		return
	}
	if s.Name == nil && res.Name != "" {
		name := res.Name
		s.Name = &name
		s.NameResolved, s.NameLocked, s.NameStreak = false, false, 0
	}
}

// readPips classifies every pip sub-slot. Sub-slots below the presence
// threshold hold no pip; those between presence and match are "unknown".
func (e *Extractor) readPips(frame image.Image, region vision.Region, slicing vision.PipSlicing, refW int, bank *vision.Bank) *PipInventory {
	rects := vision.PipSlices(frame.Bounds(), region, slicing, refW)
	if len(rects) == 0 {
		return nil
	}
	var tokens []string
	for _, r := range rects {
		res := e.classify.ClassifyRect(frame, r, bank, e.cfg.PipPresenceThreshold)
		if !res.OK {
			continue
		}
		if res.Score < e.cfg.PipMatchThreshold {
			tokens = append(tokens, TokenUnknown)
			continue
		}
		tokens = append(tokens, PipToken(res.Label))
	}
	inv := NewPipInventory(tokens)
	return &inv
}

func (e *Extractor) readAll(reqs []ocr.Request) []string {
	if len(reqs) == 0 {
		return nil
	}
	if e.cfg.OCRBatch {
		return e.text.ReadBatch(reqs)
	}
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = e.text.Read(r.Image, r.Field)
	}
	return out
}

func (e *Extractor) crop(frame image.Image, region vision.Region) image.Image {
	r := region.Pixels(frame.Bounds())
	if r.Empty() {
		return nil
	}
	return imaging.Crop(frame, r)
}

func (e *Extractor) dump(kind string, id combat.SlotID, img image.Image) {
	if e.dumper == nil || img == nil {
		return
	}
	if err := e.dumper.Dump(kind, id.String(), img); err != nil && e.logger != nil {
		e.logger.Debug("participants.dump", "kind", kind, "slot", id.String(), "error", err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
