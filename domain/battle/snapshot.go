// Package battle assembles the per-frame perception results into one
// immutable Snapshot and runs the analysis loop that publishes it.
package battle

import (
	"time"

	"github.com/soocke/duel-vision-go/domain/combat"
	"github.com/soocke/duel-vision-go/domain/participants"
	"github.com/soocke/duel-vision-go/domain/screen"
	"github.com/soocke/duel-vision-go/domain/vision"
)

// FirstSide is the side that acts first this round.
type FirstSide int

const (
	FirstUnknown FirstSide = iota
	FirstAllies
	FirstEnemies
)

func (s FirstSide) String() string {
	switch s {
	case FirstAllies:
		return "allies"
	case FirstEnemies:
		return "enemies"
	default:
		return "unknown"
	}
}

// MarshalText encodes the side by name.
func (s FirstSide) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Initiative records the ring scores and the side derived from them.
type Initiative struct {
	Side   FirstSide `json:"side"`
	Sun    float64   `json:"sun"`
	Dagger float64   `json:"dagger"`
}

// PlayerWizard is the ally slot identified as the local player.
type PlayerWizard struct {
	Slot   *combat.SlotID `json:"slot,omitempty"`
	Health int            `json:"health,omitempty"`
	Streak int            `json:"streak"`
	Locked bool           `json:"locked"`
}

// Hand is the number of cards held, when known.
type Hand struct {
	Count int     `json:"count"`
	Known bool    `json:"known"`
	Score float64 `json:"score,omitempty"`
}

// Snapshot is the full perceived battle state for one frame. A Snapshot is
// never modified after publication.
type Snapshot struct {
	Mode          screen.Mode        `json:"mode"`
	Bucket        vision.Bucket      `json:"bucket"`
	Buttons       map[string]bool    `json:"buttons"`
	Initiative    Initiative         `json:"initiative"`
	TurnOrder     []string           `json:"turn_order"`
	Participants  participants.Slots `json:"participants"`
	PlayerWizard  PlayerWizard       `json:"player_wizard"`
	Hand          Hand               `json:"hand"`
	FrameSequence uint64             `json:"frame_sequence"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewSnapshot returns the state before any frame was processed.
func NewSnapshot() Snapshot {
	return Snapshot{Mode: screen.Loading, Participants: participants.EmptySlots()}
}

// Clone returns a deep copy sharing no mutable state with s.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Buttons != nil {
		out.Buttons = make(map[string]bool, len(s.Buttons))
		for k, v := range s.Buttons {
			out.Buttons[k] = v
		}
	}
	out.TurnOrder = append([]string(nil), s.TurnOrder...)
	if s.PlayerWizard.Slot != nil {
		id := *s.PlayerWizard.Slot
		out.PlayerWizard.Slot = &id
	}
	for i, slot := range s.Participants {
		out.Participants[i] = cloneSlot(slot)
	}
	return out
}

func cloneSlot(s participants.Slot) participants.Slot {
	if s.Name != nil {
		v := *s.Name
		s.Name = &v
	}
	if s.Health != nil {
		v := *s.Health
		s.Health = &v
	}
	if s.School != nil {
		v := *s.School
		s.School = &v
	}
	if s.Pips != nil {
		v := *s.Pips
		v.Tokens = append([]string(nil), v.Tokens...)
		s.Pips = &v
	}
	return s
}

// Occupied returns the occupied slots in turn order position.
func (s Snapshot) Occupied() []participants.Slot {
	var out []participants.Slot
	for _, slot := range s.Participants {
		if slot.Occupied {
			out = append(out, slot)
		}
	}
	return out
}
