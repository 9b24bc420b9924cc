package battle

import (
	"context"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/soocke/duel-vision-go/config"
	"github.com/soocke/duel-vision-go/domain/capture"
	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/participants"
	"github.com/soocke/duel-vision-go/domain/screen"
	"github.com/soocke/duel-vision-go/domain/vision"
)

func TestDecideInitiative(t *testing.T) {
	cases := []struct {
		sun, dagger float64
		want        FirstSide
	}{
		{0.6, 0.0, FirstAllies},
		{0.0, 0.6, FirstEnemies},
		{0.30, 0.29, FirstUnknown}, // delta below 0.02
		{0.04, 0.00, FirstUnknown}, // max below 0.05
		{0.06, 0.03, FirstAllies},
	}
	for _, c := range cases {
		if got := DecideInitiative(c.sun, c.dagger, 0.05, 0.02); got != c.want {
			t.Fatalf("DecideInitiative(%v,%v): expected %s, got %s", c.sun, c.dagger, c.want, got)
		}
	}
}

func TestTurnOrder(t *testing.T) {
	if got := strings.Join(TurnOrder(FirstAllies), " "); got != "sun eye star moon dagger key ruby spiral" {
		t.Fatalf("unexpected allies-first order %q", got)
	}
	if got := strings.Join(TurnOrder(FirstEnemies), " "); got != "dagger key ruby spiral sun eye star moon" {
		t.Fatalf("unexpected enemies-first order %q", got)
	}
	if TurnOrder(FirstUnknown) != nil {
		t.Fatalf("expected no order while unknown")
	}
}

func TestHandCount(t *testing.T) {
	centers := map[int]image.Point{0: {640, 300}, 1: {590, 300}, 2: {565, 300}}
	if n, ok := HandCount(image.Pt(588, 302), centers, 90); !ok || n != 1 {
		t.Fatalf("expected 1 card, got %d %v", n, ok)
	}
	// Far off vertically but aligned in x.
	if n, ok := HandCount(image.Pt(566, 500), centers, 90); !ok || n != 2 {
		t.Fatalf("expected x-only fallback to 2, got %d %v", n, ok)
	}
	if _, ok := HandCount(image.Pt(100, 100), centers, 90); ok {
		t.Fatalf("expected unknown when too far")
	}
	if _, ok := HandCount(image.Pt(640, 300), nil, 90); ok {
		t.Fatalf("expected unknown without calibration")
	}
}

func allyWithHealth(slots participants.Slots, index, hp int) participants.Slots {
	id := combat.SlotID{Side: combat.Ally, Index: index}
	slots[id.Position()] = participants.Slot{
		Side: combat.Ally, Index: index, Occupied: true,
		Health: &participants.Health{Current: hp, Max: hp},
	}
	return slots
}

func TestPlayerTracker_LocksAfterStreak(t *testing.T) {
	tr := NewPlayerTracker(3)
	slots := allyWithHealth(participants.EmptySlots(), 1, 1200)
	slots = allyWithHealth(slots, 2, 900)
	for i := 1; i <= 2; i++ {
		if st := tr.Update(1200, true, slots); st.Locked || st.Streak != i {
			t.Fatalf("update %d: expected unlocked streak %d, got %+v", i, i, st)
		}
	}
	st := tr.Update(1200, true, slots)
	if !st.Locked || st.Slot == nil || st.Slot.Index != 1 {
		t.Fatalf("expected lock on ally 1, got %+v", st)
	}
	// Locked identity survives a mismatching reading.
	if st := tr.Update(5, true, slots); !st.Locked || st.Slot.Index != 1 {
		t.Fatalf("expected lock to hold, got %+v", st)
	}
	slots[combat.SlotID{Side: combat.Ally, Index: 1}.Position()] = participants.Empty(combat.Ally, 1, participants.ReasonSigilNotDetected)
	if st := tr.Update(900, true, slots); st.Locked || st.Streak != 1 || st.Slot.Index != 2 {
		t.Fatalf("expected lock released and new candidate, got %+v", st)
	}
}

func TestPlayerTracker_AmbiguousMatch(t *testing.T) {
	tr := NewPlayerTracker(1)
	slots := allyWithHealth(participants.EmptySlots(), 0, 1000)
	slots = allyWithHealth(slots, 3, 1000)
	if st := tr.Update(1000, true, slots); st.Slot != nil || st.Locked {
		t.Fatalf("expected no candidate for duplicate health, got %+v", st)
	}
	if st := tr.Update(0, false, slots); st.Slot != nil {
		t.Fatalf("expected unreadable HUD to change nothing, got %+v", st)
	}
}

func TestParseHUD(t *testing.T) {
	if v, ok := parseHUD(" 1234/2000"); !ok || v != 1234 {
		t.Fatalf("expected 1234, got %d %v", v, ok)
	}
	if _, ok := parseHUD("abc"); ok {
		t.Fatalf("expected no digits")
	}
}

func TestMailbox_ReturnsCopies(t *testing.T) {
	m := NewMailbox()
	if _, ok := m.Latest(); ok {
		t.Fatalf("expected empty mailbox")
	}
	s := NewSnapshot()
	name := "Storm"
	s.Participants[0].Name = &name
	s.Buttons = map[string]bool{"pass": true}
	s.TurnOrder = []string{"sun"}
	m.Publish(s)

	name = "Changed"
	s.Buttons["pass"] = false
	s.TurnOrder[0] = "moon"

	got, ok := m.Latest()
	if !ok || *got.Participants[0].Name != "Storm" || !got.Buttons["pass"] || got.TurnOrder[0] != "sun" {
		t.Fatalf("expected published copy to be isolated, got %+v", got)
	}
	got.Buttons["pass"] = false
	again, _ := m.Latest()
	if !again.Buttons["pass"] {
		t.Fatalf("expected reader mutation not to leak")
	}
}

type fakeClassifier struct {
	buttons map[screen.Button]bool
	scores  map[string]float64
	hand    vision.Result
	sigils  bool
}

func (f *fakeClassifier) Bank(domain string, bucket vision.Bucket) *vision.Bank {
	return &vision.Bank{Dir: domain, Bucket: bucket}
}

func (f *fakeClassifier) Classify(img image.Image, region vision.Region, bank *vision.Bank, threshold float64) vision.Result {
	var r vision.Result
	switch {
	case strings.HasPrefix(bank.Dir, ButtonBankPrefix):
		if f.buttons[screen.Button(strings.TrimPrefix(bank.Dir, ButtonBankPrefix))] {
			r = vision.Result{Label: "on", Score: 0.95}
		}
	case bank.Dir == HandBank:
		r = f.hand
	case bank.Dir == participants.SigilBank:
		if f.sigils {
			r = vision.Result{Label: "sigil", Score: 0.9}
		}
	default:
		r = vision.Result{Label: bank.Dir, Score: f.scores[bank.Dir]}
	}
	r.OK = r.Score >= threshold && r.Label != ""
	if !r.OK {
		r.Label = ""
	}
	return r
}

func (f *fakeClassifier) ClassifyRect(img image.Image, rect image.Rectangle, bank *vision.Bank, threshold float64) vision.Result {
	return vision.Result{}
}

type fakeClearer struct{ n int }

func (f *fakeClearer) Clear() error { f.n++; return nil }

func pressed(buttons ...screen.Button) map[screen.Button]bool {
	out := map[screen.Button]bool{}
	for _, b := range buttons {
		out[b] = true
	}
	return out
}

func TestAnalyzer_BattleLifecycle(t *testing.T) {
	cfg := config.DefaultConfig()
	cls := &fakeClassifier{
		scores: map[string]float64{
			InitiativeBank("sun", "on"):     0.8,
			InitiativeBank("sun", "off"):    0.2,
			InitiativeBank("dagger", "on"):  0.3,
			InitiativeBank("dagger", "off"): 0.3,
		},
		hand:   vision.Result{Label: "slot", Score: 0.9, At: image.Pt(580, 290), Size: image.Pt(20, 20)},
		sigils: true,
	}
	dumps := &fakeClearer{}
	ex := participants.NewExtractor(cfg, cls, nil, nil, nil, nil)
	a := NewAnalyzer(cfg, cls, nil, ex, dumps, nil)
	var transitions []string
	a.Machine().AddListener(func(from, to screen.Mode) { transitions = append(transitions, from.String()+">"+to.String()) })

	frame := image.NewRGBA(image.Rect(0, 0, 1280, 720))
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cls.buttons = pressed(screen.Pass, screen.Flee)
	s := a.Process(frame, 1, t0)
	if s.Mode != screen.Battle || s.Bucket != vision.Bucket16x9 {
		t.Fatalf("expected battle at 16:9, got %s %s", s.Mode, s.Bucket)
	}
	if s.Initiative.Side != FirstAllies || s.TurnOrder[0] != "sun" {
		t.Fatalf("expected allies first, got %+v %v", s.Initiative, s.TurnOrder)
	}
	if len(s.Occupied()) != combat.SlotCount {
		t.Fatalf("expected all slots occupied, got %d", len(s.Occupied()))
	}
	if !s.Buttons["pass"] || s.Buttons["friends"] {
		t.Fatalf("unexpected buttons %v", s.Buttons)
	}

	cls.buttons = pressed(screen.Pass, screen.Flee, screen.CrownsShop, screen.Friends)
	s = a.Process(frame, 2, t0.Add(time.Second))
	if s.Mode != screen.CardSelect {
		t.Fatalf("expected card_select, got %s", s.Mode)
	}
	if dumps.n != 1 {
		t.Fatalf("expected dumps cleared on entering card select, got %d", dumps.n)
	}
	if !s.Hand.Known || s.Hand.Count != 1 {
		t.Fatalf("expected one card in hand, got %+v", s.Hand)
	}

	idle := pressed(screen.CrownsShop, screen.UpgradeNow, screen.Friends, screen.Social, screen.SpellBook)
	cls.buttons = idle
	s = a.Process(frame, 3, t0.Add(2*time.Second))
	if s.Mode != screen.CardSelect {
		t.Fatalf("expected exit to be debounced, got %s", s.Mode)
	}
	s = a.Process(frame, 4, t0.Add(3*time.Second))
	if s.Mode != screen.Idle {
		t.Fatalf("expected idle, got %s", s.Mode)
	}
	if len(s.Occupied()) != 0 || s.Initiative.Side != FirstUnknown || s.TurnOrder != nil || s.Hand.Known {
		t.Fatalf("expected combat state reset, got %+v", s)
	}
	want := []string{"loading>battle", "battle>card_select", "card_select>idle"}
	if strings.Join(transitions, ",") != strings.Join(want, ",") {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
}

func TestAnalyzer_RoundAnimationCarriesParticipants(t *testing.T) {
	cfg := config.DefaultConfig()
	cls := &fakeClassifier{sigils: true}
	a := NewAnalyzer(cfg, cls, nil, participants.NewExtractor(cfg, cls, nil, nil, nil, nil), nil, nil)
	frame := image.NewRGBA(image.Rect(0, 0, 1280, 720))
	t0 := time.Now()

	cls.buttons = pressed(screen.Pass, screen.Flee)
	a.Process(frame, 1, t0)
	cls.buttons = nil
	cls.sigils = false
	s := a.Process(frame, 2, t0.Add(time.Second))
	if s.Mode != screen.RoundAnimation {
		t.Fatalf("expected round_animation, got %s", s.Mode)
	}
	if len(s.Occupied()) != combat.SlotCount {
		t.Fatalf("expected participants carried through the animation, got %d", len(s.Occupied()))
	}
	if s.Initiative.Side != FirstUnknown {
		t.Fatalf("expected unknown initiative without ring scores, got %s", s.Initiative.Side)
	}
}

type fakeSource struct {
	snap    capture.FrameSnapshot
	stopped bool
}

func (f *fakeSource) LatestFrame() capture.FrameSnapshot { return f.snap }
func (f *fakeSource) Running() bool                      { return true }
func (f *fakeSource) Stop() error                        { f.stopped = true; return nil }

type countingProcessor struct {
	n    int
	seqs []uint64
	size image.Point
}

func (p *countingProcessor) Process(frame image.Image, seq uint64, now time.Time) Snapshot {
	p.n++
	p.seqs = append(p.seqs, seq)
	p.size = frame.Bounds().Size()
	s := NewSnapshot()
	s.FrameSequence = seq
	return s
}

func TestEngine_TickWithoutFrameIsNoop(t *testing.T) {
	src := &fakeSource{}
	proc := &countingProcessor{}
	e := NewEngine(nil, src, proc, nil, nil)
	if e.Tick(time.Now()) {
		t.Fatalf("expected no-op tick without a frame")
	}
	if _, ok := e.Mailbox().Latest(); ok || proc.n != 0 {
		t.Fatalf("expected nothing published")
	}
}

func TestEngine_TickPublishesNewFramesOnce(t *testing.T) {
	src := &fakeSource{snap: capture.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, 2560, 1440)), Sequence: 7}}
	proc := &countingProcessor{}
	e := NewEngine(config.DefaultConfig(), src, proc, nil, nil)
	if !e.Tick(time.Now()) {
		t.Fatalf("expected tick to process the frame")
	}
	if e.Tick(time.Now()) {
		t.Fatalf("expected unchanged sequence to be skipped")
	}
	got, ok := e.Mailbox().Latest()
	if !ok || got.FrameSequence != 7 || proc.n != 1 {
		t.Fatalf("expected one published snapshot for seq 7, got %+v (n=%d)", got, proc.n)
	}
	if proc.size != image.Pt(1280, 720) {
		t.Fatalf("expected normalized frame, got %v", proc.size)
	}
}

func TestEngine_StartStop(t *testing.T) {
	src := &fakeSource{snap: capture.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, 64, 36)), Sequence: 1}}
	proc := &countingProcessor{}
	cfg := config.DefaultConfig()
	cfg.AnalysisIntervalMs = 1
	e := NewEngine(cfg, src, proc, nil, nil)
	e.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := e.Mailbox().Latest(); ok {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
	if _, ok := e.Mailbox().Latest(); !ok {
		t.Fatalf("expected a snapshot to be published")
	}
	if !src.stopped {
		t.Fatalf("expected frame source to be stopped")
	}
}
