package battle

import (
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/domain/layout"
	"github.com/soocke/duel-vision-go/domain/ocr"
	"github.com/soocke/duel-vision-go/domain/participants"
	"github.com/soocke/duel-vision-go/domain/screen"
	"github.com/soocke/duel-vision-go/domain/vision"
)

// Bank domains read by the analyzer, relative to the assets directory.
const (
	ButtonBankPrefix = "buttons/"
	HandBank         = "hand"
)

// InitiativeBank returns the bank domain for a ring ("sun" or "dagger") in a
// given state ("on" or "off").
func InitiativeBank(ring, state string) string { return "initiative/" + ring + "/" + state }

// DigitReader reads the player HUD.
type DigitReader interface {
	Read(img image.Image, f ocr.Field) string
}

// Clearer drops accumulated debug output.
type Clearer interface {
	Clear() error
}

// Analyzer turns normalized frames into snapshots. It keeps the previous
// snapshot as its only history. Not safe for concurrent use.
type Analyzer struct {
	cfg       *config.Config
	classify  participants.Classifier
	hud       DigitReader
	extractor *participants.Extractor
	machine   *screen.Machine
	player    *PlayerTracker
	dumps     Clearer
	logger    *slog.Logger
	prev      Snapshot
}

// NewAnalyzer wires an analyzer. hud and dumps may be nil.
func NewAnalyzer(cfg *config.Config, classify participants.Classifier, hud DigitReader, extractor *participants.Extractor, dumps Clearer, logger *slog.Logger) *Analyzer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Analyzer{
		cfg:       cfg,
		classify:  classify,
		hud:       hud,
		extractor: extractor,
		machine:   screen.NewMachine(cfg.ModeConfirmFrames, logger),
		player:    NewPlayerTracker(cfg.PlayerLockStreak),
		dumps:     dumps,
		logger:    logger,
		prev:      NewSnapshot(),
	}
}

// Machine exposes the screen-mode machine so callers can register listeners.
func (a *Analyzer) Machine() *screen.Machine { return a.machine }

// Previous returns the last produced snapshot.
func (a *Analyzer) Previous() Snapshot { return a.prev }

// Reset forgets all history and returns to Loading.
func (a *Analyzer) Reset() {
	a.machine.Reset()
	a.player.Reset()
	a.prev = NewSnapshot()
}

// Process runs one synchronous perception pass over frame.
func (a *Analyzer) Process(frame image.Image, seq uint64, now time.Time) Snapshot {
	start := time.Now()
	b := frame.Bounds()
	bucket := vision.BucketFor(b.Dx(), b.Dy())
	profile := layout.For(bucket)

	presence := a.buttons(frame, profile, bucket)
	from := a.machine.Current()
	mode := a.machine.Update(presence)

	next := a.prev
	next.Mode = mode
	next.Bucket = bucket
	next.FrameSequence = seq
	next.UpdatedAt = now
	next.Buttons = make(map[string]bool, len(presence))
	for btn, ok := range presence {
		next.Buttons[string(btn)] = ok
	}

	if from.InBattle() && !mode.InBattle() {
		next = a.resetCombat(next)
	}

	if mode.InBattle() {
		if next.Initiative.Side == FirstUnknown {
			next.Initiative = a.initiative(frame, profile, bucket)
		}
		next.TurnOrder = TurnOrder(next.Initiative.Side)
	}

	enteringSelect := mode == screen.CardSelect && from != screen.CardSelect
	if enteringSelect && a.dumps != nil {
		if err := a.dumps.Clear(); err != nil && a.logger != nil {
			a.logger.Warn("analysis.dumps", "error", err)
		}
	}

	switch mode {
	case screen.Battle, screen.CardSelect:
		if a.extractor != nil {
			next.Participants = a.extractor.Extract(frame, a.prev.Participants, participants.Tick{
				Now:       now,
				Bucket:    bucket,
				ForcePips: enteringSelect,
			})
		}
	}

	if mode == screen.CardSelect {
		hp, ok := a.readHUD(frame, profile)
		next.PlayerWizard = a.player.Update(hp, ok, next.Participants)
		next.Hand = a.hand(frame, profile, bucket)
	}

	if a.logger != nil {
		a.logger.Debug("analysis.tick",
			"seq", seq,
			"mode", mode.String(),
			"bucket", string(bucket),
			"initiative", next.Initiative.Side.String(),
			"occupied", len(next.Occupied()),
			"elapsed", time.Since(start),
		)
	}
	a.prev = next
	return next.Clone()
}

func (a *Analyzer) resetCombat(s Snapshot) Snapshot {
	a.player.Reset()
	s.Participants = participants.EmptySlots()
	s.Initiative = Initiative{}
	s.TurnOrder = nil
	s.PlayerWizard = PlayerWizard{}
	s.Hand = Hand{}
	if a.logger != nil {
		a.logger.Info("analysis.reset", "mode", s.Mode.String())
	}
	return s
}

func (a *Analyzer) buttons(frame image.Image, profile layout.Profile, bucket vision.Bucket) screen.Presence {
	p := make(screen.Presence, len(screen.Buttons))
	for _, btn := range screen.Buttons {
		region, ok := profile.Buttons[string(btn)]
		if !ok {
			continue
		}
		bank := a.classify.Bank(ButtonBankPrefix+string(btn), bucket)
		p[btn] = a.classify.Classify(frame, region, bank, a.cfg.ButtonThreshold).OK
	}
	return p
}

func (a *Analyzer) ringScore(frame image.Image, region vision.Region, ring string, bucket vision.Bucket) float64 {
	on := a.classify.Classify(frame, region, a.classify.Bank(InitiativeBank(ring, "on"), bucket), 0)
	off := a.classify.Classify(frame, region, a.classify.Bank(InitiativeBank(ring, "off"), bucket), 0)
	return on.Score - off.Score
}

func (a *Analyzer) initiative(frame image.Image, profile layout.Profile, bucket vision.Bucket) Initiative {
	sun := a.ringScore(frame, profile.Rings.Sun(), "sun", bucket)
	dagger := a.ringScore(frame, profile.Rings.Dagger(), "dagger", bucket)
	side := DecideInitiative(sun, dagger, a.cfg.InitiativeMinScore, a.cfg.InitiativeMinDelta)
	if side != FirstUnknown && a.logger != nil {
		a.logger.Info("analysis.initiative", "side", side.String(), "sun", sun, "dagger", dagger)
	}
	return Initiative{Side: side, Sun: sun, Dagger: dagger}
}

func (a *Analyzer) readHUD(frame image.Image, profile layout.Profile) (int, bool) {
	if a.hud == nil {
		return 0, false
	}
	r := profile.PlayerHealth.Pixels(frame.Bounds())
	if r.Empty() {
		return 0, false
	}
	return parseHUD(a.hud.Read(imaging.Crop(frame, r), ocr.FieldDigits))
}

// parseHUD takes the first run of digits from a HUD reading.
func parseHUD(text string) (int, bool) {
	start := strings.IndexFunc(text, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(text) && isDigit(rune(text[end])) {
		end++
	}
	v, err := strconv.Atoi(text[start:end])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (a *Analyzer) hand(frame image.Image, profile layout.Profile, bucket vision.Bucket) Hand {
	res := a.classify.Classify(frame, profile.Hand.Slot, a.classify.Bank(HandBank, bucket), a.cfg.HandThreshold)
	if !res.OK {
		return Hand{Score: res.Score}
	}
	refW, refH := bucket.FitSize(a.cfg.ReferenceWidth, a.cfg.ReferenceHeight)
	b := frame.Bounds()
	c := res.Center()
	ref := image.Pt(
		(c.X-b.Min.X)*refW/max(1, b.Dx()),
		(c.Y-b.Min.Y)*refH/max(1, b.Dy()),
	)
	count, ok := HandCount(ref, profile.Hand.CentersByCount, a.cfg.HandMaxDistPx)
	return Hand{Count: count, Known: ok, Score: res.Score}
}
