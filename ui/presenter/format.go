package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/soocke/duel-vision-go/domain/battle"
	"github.com/soocke/duel-vision-go/domain/layout"
	"github.com/soocke/duel-vision-go/domain/participants"
	"github.com/soocke/duel-vision-go/ui/images"
)

// SlotLine renders one participant row for the text panel.
func SlotLine(s participants.Slot) string {
	id := s.ID().String()
	if !s.Occupied {
		if s.EmptyReason != "" {
			return fmt.Sprintf("%-8s empty (%s)", id, s.EmptyReason)
		}
		return fmt.Sprintf("%-8s empty", id)
	}
	name := "?"
	if s.Name != nil {
		name = *s.Name
		if !s.NameResolved {
			name += "*"
		}
		if s.NameLocked {
			name += " [locked]"
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s %-7s %s", id, s.Sigil, name)
	if s.Health != nil {
		fmt.Fprintf(&b, "  %d/%d", s.Health.Current, s.Health.Max)
	}
	if s.School != nil {
		fmt.Fprintf(&b, "  %s", *s.School)
	}
	if s.Pips != nil {
		fmt.Fprintf(&b, "  pips=%d [%s]", s.Pips.Total(), s.Pips.String())
	}
	return b.String()
}

// ParticipantLines renders every slot in position order.
func ParticipantLines(s battle.Snapshot) []string {
	out := make([]string, 0, len(s.Participants))
	for _, slot := range s.Participants {
		out = append(out, SlotLine(slot))
	}
	return out
}

// SummaryLines renders mode, initiative, player and hand.
func SummaryLines(s battle.Snapshot) []string {
	lines := []string{fmt.Sprintf("Mode: %s  (%s, frame %d)", s.Mode, s.Bucket, s.FrameSequence)}
	if !s.Mode.InBattle() {
		return lines
	}
	first := fmt.Sprintf("First: %s (sun %.2f, dagger %.2f)", s.Initiative.Side, s.Initiative.Sun, s.Initiative.Dagger)
	if len(s.TurnOrder) > 0 {
		first += "  " + strings.Join(s.TurnOrder, " > ")
	}
	lines = append(lines, first)
	if p := s.PlayerWizard; p.Slot != nil {
		state := "candidate"
		if p.Locked {
			state = "locked"
		}
		lines = append(lines, fmt.Sprintf("Player: %s (%s, hp %d)", p.Slot.String(), state, p.Health))
	}
	if s.Hand.Known {
		lines = append(lines, fmt.Sprintf("Hand: %d", s.Hand.Count))
	}
	return lines
}

// Annotations returns the overlay boxes for every slot, with short labels on
// occupied ones.
func Annotations(s battle.Snapshot) []images.Annotation {
	profile := layout.For(s.Bucket)
	out := make([]images.Annotation, 0, len(s.Participants))
	for _, slot := range s.Participants {
		a := images.Annotation{Region: profile.SlotBox(slot.ID()), Active: slot.Occupied}
		if slot.Occupied {
			label := slot.Sigil
			if slot.Name != nil {
				label += " " + *slot.Name
			}
			a.Lines = append(a.Lines, label)
			if slot.Health != nil {
				a.Lines = append(a.Lines, fmt.Sprintf("%d/%d", slot.Health.Current, slot.Health.Max))
			}
			if slot.Pips != nil && len(slot.Pips.Tokens) > 0 {
				a.Lines = append(a.Lines, slot.Pips.String())
			}
		}
		out = append(out, a)
	}
	return out
}

// FormatClock renders d as "prefix: mm:ss".
func FormatClock(prefix string, d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%s: %02d:%02d", prefix, secs/60, secs%60)
}
