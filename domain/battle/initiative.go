package battle

import (
	"math"

	"github.com/soocke/duel-vision-go/domain/combat"
)

// DecideInitiative picks the first side from the sun (allies) and dagger
// (enemies) ring scores. The result is unknown unless the stronger ring
// reaches minScore and leads by at least minDelta.
func DecideInitiative(sun, dagger, minScore, minDelta float64) FirstSide {
	if math.Abs(sun-dagger) < minDelta || math.Max(sun, dagger) < minScore {
		return FirstUnknown
	}
	if sun > dagger {
		return FirstAllies
	}
	return FirstEnemies
}

// TurnOrder lists the sigils in acting order, or nil while the side is unknown.
func TurnOrder(side FirstSide) []string {
	var first, second []string
	switch side {
	case FirstAllies:
		first, second = combat.AllySigils, combat.EnemySigils
	case FirstEnemies:
		first, second = combat.EnemySigils, combat.AllySigils
	default:
		return nil
	}
	out := make([]string, 0, len(first)+len(second))
	out = append(out, first...)
	return append(out, second...)
}
