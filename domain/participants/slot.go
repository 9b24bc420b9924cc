// Package participants extracts per-slot combatant details (occupancy, name,
// health, school and pips) and decides which of them to refresh each tick.
package participants

import (
	"time"

	"github.com/soocke/duel-vision-go/domain/combat"
)

// ReasonSigilNotDetected is the empty reason for a slot without a sigil.
const ReasonSigilNotDetected = "sigil_not_detected"

// Health is a current/max health reading.
type Health struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Slot is the state of one combat position. Slots are values: a refresh
// produces a new Slot and never mutates the previous one.
type Slot struct {
	Side        combat.Side `json:"side"`
	Index       int         `json:"index"`
	Occupied    bool        `json:"occupied"`
	EmptyReason string      `json:"empty_reason,omitempty"`
	Sigil       string      `json:"sigil,omitempty"`

	Name         *string `json:"name,omitempty"`
	NameRaw      string  `json:"name_raw,omitempty"`
	NameResolved bool    `json:"name_resolved"`
	NameLocked   bool    `json:"name_locked"`
	NameStreak   int     `json:"-"`

	Health      *Health       `json:"health,omitempty"`
	School      *string       `json:"school,omitempty"`
	SchoolScore float64       `json:"school_score,omitempty"`
	Pips        *PipInventory `json:"pips,omitempty"`

	SigilCheckedAt       time.Time `json:"-"`
	PipsCheckedAt        time.Time `json:"-"`
	LastDetailsCheckedAt time.Time `json:"last_details_checked_at"`
}

// ID returns the slot identity.
func (s Slot) ID() combat.SlotID { return combat.SlotID{Side: s.Side, Index: s.Index} }

// Empty returns an unoccupied slot with every detail field unset.
func Empty(side combat.Side, index int, reason string) Slot {
	return Slot{Side: side, Index: index, EmptyReason: reason}
}

// Slots is the fixed set of eight positions, enemies first.
type Slots [combat.SlotCount]Slot

// EmptySlots returns all positions unoccupied and never checked.
func EmptySlots() Slots {
	var out Slots
	for pos := range out {
		id := combat.SlotAt(pos)
		out[pos] = Empty(id.Side, id.Index, "")
	}
	return out
}
