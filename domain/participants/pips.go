package participants

import (
	"strings"

	"github.com/soocke/duel-vision-go/domain/combat"
)

// Pip tokens.
const (
	TokenPip     = "pip"
	TokenPower   = "power"
	TokenUnknown = "unknown"
)

// PipInventory is the ordered pip row of a participant. Normal+Power+School
// always equals len(Tokens); Unknown is the subset of School that could not be
// identified.
type PipInventory struct {
	Tokens  []string `json:"tokens"`
	Normal  int      `json:"normal"`
	Power   int      `json:"power"`
	School  int      `json:"school"`
	Unknown int      `json:"unknown,omitempty"`
}

// NewPipInventory counts tokens. Tokens other than pip and power are school pips.
func NewPipInventory(tokens []string) PipInventory {
	inv := PipInventory{Tokens: append([]string(nil), tokens...)}
	for _, t := range tokens {
		switch t {
		case TokenPip:
			inv.Normal++
		case TokenPower:
			inv.Power++
		case TokenUnknown:
			inv.School++
			inv.Unknown++
		default:
			inv.School++
		}
	}
	return inv
}

// Total is the pip value: 1 per normal pip and 2 per power or school pip.
// Unidentified pips are worth nothing.
func (p PipInventory) Total() int {
	return p.Normal + 2*p.Power + 2*(p.School-p.Unknown)
}

// String renders the tokens compactly, e.g. "pip pip power fire".
func (p PipInventory) String() string {
	return strings.Join(p.Tokens, " ")
}

// PipToken maps a pip bank label to its token.
func PipToken(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "regular" || l == "normal" || l == TokenPip:
		return TokenPip
	case l == TokenPower:
		return TokenPower
	case combat.IsSchool(l):
		return l
	default:
		return TokenUnknown
	}
}
