// Package combat holds the small vocabulary shared by every perception stage:
// which side a slot belongs to, how slots are identified and which sigil marks
// each position.
package combat

import "fmt"

// Side distinguishes the two rows of combat slots.
type Side int

const (
	Enemy Side = iota
	Ally
)

func (s Side) String() string {
	switch s {
	case Enemy:
		return "enemy"
	case Ally:
		return "ally"
	default:
		return "unknown"
	}
}

// MarshalText renders the side as its name.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// SlotsPerSide is the number of fixed positions in each row.
const SlotsPerSide = 4

// SlotCount is the total number of combat positions.
const SlotCount = 2 * SlotsPerSide

// SlotID is the stable identity of a combat position across frames.
type SlotID struct {
	Side  Side
	Index int
}

func (id SlotID) String() string { return fmt.Sprintf("%s_%d", id.Side, id.Index) }

// Position maps an ID to its index in an 8-slot array: enemies first, then allies.
func (id SlotID) Position() int {
	if id.Side == Ally {
		return SlotsPerSide + id.Index
	}
	return id.Index
}

// SlotAt is the inverse of Position.
func SlotAt(pos int) SlotID {
	if pos >= SlotsPerSide {
		return SlotID{Side: Ally, Index: pos - SlotsPerSide}
	}
	return SlotID{Side: Enemy, Index: pos}
}

// Sigils in turn order for each side.
var (
	AllySigils  = []string{"sun", "eye", "star", "moon"}
	EnemySigils = []string{"dagger", "key", "ruby", "spiral"}
)

// SigilSide reports which side a sigil label belongs to.
func SigilSide(sigil string) (Side, bool) {
	for _, s := range AllySigils {
		if s == sigil {
			return Ally, true
		}
	}
	for _, s := range EnemySigils {
		if s == sigil {
			return Enemy, true
		}
	}
	return 0, false
}

// Schools are the magic school labels used for school icons and school pips.
var Schools = []string{"balance", "death", "fire", "ice", "life", "myth", "storm"}

// IsSchool reports whether label names a school.
func IsSchool(label string) bool {
	for _, s := range Schools {
		if s == label {
			return true
		}
	}
	return false
}
