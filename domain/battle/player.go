package battle

import (
	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/participants"
)

// PlayerTracker identifies the local player's slot by matching the HUD health
// value against ally slots. A candidate locks after lockStreak consecutive
// unique matches and stays locked until Reset or until its slot empties.
type PlayerTracker struct {
	lockStreak int
	state      PlayerWizard
}

// NewPlayerTracker returns a tracker requiring lockStreak matches.
func NewPlayerTracker(lockStreak int) *PlayerTracker {
	if lockStreak < 1 {
		lockStreak = 1
	}
	return &PlayerTracker{lockStreak: lockStreak}
}

// Reset forgets any candidate or lock.
func (t *PlayerTracker) Reset() { t.state = PlayerWizard{} }

// State returns the current identification.
func (t *PlayerTracker) State() PlayerWizard { return t.state }

// Update feeds one HUD reading. ok is false when the HUD could not be read.
func (t *PlayerTracker) Update(hud int, ok bool, slots participants.Slots) PlayerWizard {
	if t.state.Locked {
		id := *t.state.Slot
		if !slots[id.Position()].Occupied {
			t.Reset()
		} else {
			if ok {
				t.state.Health = hud
			}
			return t.state
		}
	}
	if !ok {
		return t.state
	}
	var match *combat.SlotID
	matches := 0
	for i := 0; i < combat.SlotsPerSide; i++ {
		id := combat.SlotID{Side: combat.Ally, Index: i}
		s := slots[id.Position()]
		if s.Occupied && s.Health != nil && s.Health.Current == hud {
			matches++
			match = &id
		}
	}
	if matches != 1 {
		t.state = PlayerWizard{Health: hud}
		return t.state
	}
	if t.state.Slot != nil && *t.state.Slot == *match {
		t.state.Streak++
	} else {
		t.state = PlayerWizard{Slot: match, Streak: 1}
	}
	t.state.Health = hud
	t.state.Locked = t.state.Streak >= t.lockStreak
	return t.state
}
