// Package screen classifies the whole game screen into a mode from the
// presence of a handful of UI buttons.
package screen

// Mode is the overall screen state.
type Mode int

const (
	Loading Mode = iota
	Idle
	Battle
	CardSelect
	RoundAnimation
)

func (m Mode) String() string {
	switch m {
	case Loading:
		return "loading"
	case Idle:
		return "idle"
	case Battle:
		return "battle"
	case CardSelect:
		return "card_select"
	case RoundAnimation:
		return "round_animation"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// InBattle reports whether m belongs to the battle superstate.
func (m Mode) InBattle() bool {
	return m == Battle || m == CardSelect || m == RoundAnimation
}

// Button names a UI button classified every tick.
type Button string

const (
	Pass       Button = "pass"
	Flee       Button = "flee" // also matches the concede art
	CrownsShop Button = "crownsShop"
	UpgradeNow Button = "upgradeNow"
	Friends    Button = "friends"
	Social     Button = "social"
	SpellBook  Button = "spellBook"
)

// Buttons lists every classified button in evaluation order.
var Buttons = []Button{Pass, Flee, CrownsShop, UpgradeNow, Friends, Social, SpellBook}

var (
	idleOnly          = []Button{CrownsShop, UpgradeNow, Friends, Social, SpellBook}
	battlePresent     = []Button{Pass, Flee}
	battleAbsent      = []Button{UpgradeNow, Social, SpellBook}
	cardSelectMarkers = []Button{Pass, Flee, CrownsShop, Friends}
	roundExclusive    = []Button{Pass, Flee}
)

const (
	idleQuorum       = 4
	cardSelectQuorum = 3
)

// Presence maps buttons to whether they were detected. Missing keys are absent.
type Presence map[Button]bool

func (p Presence) count(group []Button) int {
	n := 0
	for _, b := range group {
		if p[b] {
			n++
		}
	}
	return n
}

// Resolve returns the mode for presence p given the previous mode. It is a
// pure function of its inputs.
func Resolve(prev Mode, p Presence) Mode {
	if p.count(idleOnly) >= idleQuorum {
		return Idle
	}
	if p.count(Buttons) == 0 && (prev == Idle || prev == Loading) {
		return Loading
	}
	entering := p.count(battlePresent) >= 1 && p.count(battleAbsent) == 0
	if entering || prev.InBattle() {
		switch {
		case p.count(cardSelectMarkers) >= cardSelectQuorum:
			return CardSelect
		case prev == CardSelect && (p[Pass] || p[Flee]):
			return CardSelect
		case p.count(roundExclusive) == 0:
			return RoundAnimation
		default:
			return Battle
		}
	}
	return prev
}
