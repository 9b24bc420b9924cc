package names

import "github.com/soocke/duel-vision-go/domain/combat"

// Kind selects a name dictionary.
type Kind int

const (
	Wizard Kind = iota
	Monster
	Minion
)

func (k Kind) String() string {
	switch k {
	case Wizard:
		return "wizard"
	case Monster:
		return "monster"
	case Minion:
		return "minion"
	default:
		return "unknown"
	}
}

// MatchMode is the combat flavour; it decides who can appear on each side.
type MatchMode int

const (
	PvE MatchMode = iota
	PvP
)

// ParseMatchMode maps a config string to a mode, defaulting to PvE.
func ParseMatchMode(s string) MatchMode {
	if s == "pvp" {
		return PvP
	}
	return PvE
}

// KindsFor returns the dictionaries to consult, in priority order, for a slot
// on side during a mode. Allies are always wizards or their minions; enemies
// are monsters except in player duels.
func KindsFor(mode MatchMode, side combat.Side) []Kind {
	if mode == PvP || side == combat.Ally {
		return []Kind{Wizard, Minion}
	}
	return []Kind{Monster, Minion}
}
