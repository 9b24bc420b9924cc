package layout

import (
	"testing"

	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/vision"
)

func TestProfiles_AllRegionsValid(t *testing.T) {
	for _, b := range vision.Buckets {
		p := For(b)
		if p.Bucket != b {
			t.Fatalf("expected profile for %s, got %s", b, p.Bucket)
		}
		for name, r := range p.Buttons {
			if !r.Valid() {
				t.Fatalf("%s: button %s region invalid: %+v", b, name, r)
			}
		}
		for pos := 0; pos < combat.SlotCount; pos++ {
			id := combat.SlotAt(pos)
			box := p.SlotBox(id)
			if !box.Valid() {
				t.Fatalf("%s: slot %s box invalid: %+v", b, id, box)
			}
			f := p.FieldsFor(id.Side)
			for _, sub := range []vision.Region{f.Sigil, f.School, f.Name, f.Health, f.Pips} {
				if !box.Sub(sub).Valid() {
					t.Fatalf("%s: slot %s field invalid: %+v", b, id, sub)
				}
			}
		}
		if !p.Rings.Sun().Valid() || !p.Rings.Dagger().Valid() {
			t.Fatalf("%s: ring regions invalid", b)
		}
		if !p.Hand.Slot.Valid() || !p.PlayerHealth.Valid() {
			t.Fatalf("%s: hand or HUD region invalid", b)
		}
	}
}

func TestSlotBox_AllyAnchorRightGrowsLeft(t *testing.T) {
	p := For(vision.Bucket43x18)
	first := p.SlotBox(combat.SlotID{Side: combat.Ally, Index: 0})
	second := p.SlotBox(combat.SlotID{Side: combat.Ally, Index: 1})
	if second.X1 >= first.X1 {
		t.Fatalf("expected second ally box left of the first, got %v >= %v", second.X1, first.X1)
	}
}

func TestReferenceWidth(t *testing.T) {
	if w := For(vision.Bucket4x3).ReferenceWidth(1280, 720); w != 960 {
		t.Fatalf("expected 960, got %d", w)
	}
	if w := For(vision.Bucket16x9).ReferenceWidth(1280, 720); w != 1280 {
		t.Fatalf("expected 1280, got %d", w)
	}
}
