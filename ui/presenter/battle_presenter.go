package presenter

import (
	"time"

	"github.com/soocke/duel-vision-go/ui/model"
)

// BattleStatsView displays battle timing.
type BattleStatsView interface {
	SetBattle(current, total time.Duration, count int)
}

// BattlePresenter feeds the battle model from the snapshot mode and pushes
// its values to the view.
type BattlePresenter struct {
	model    *model.BattleModel
	inBattle func() bool
	view     BattleStatsView
}

// NewBattlePresenter returns a new BattlePresenter.
func NewBattlePresenter(m *model.BattleModel, inBattle func() bool, view BattleStatsView) *BattlePresenter {
	return &BattlePresenter{model: m, inBattle: inBattle, view: view}
}

// Tick advances the model and updates the view.
func (p *BattlePresenter) Tick(now time.Time) {
	if p == nil || p.model == nil || p.inBattle == nil || p.view == nil {
		return
	}
	p.model.OnTick(p.inBattle(), now)
	p.view.SetBattle(p.model.Values())
}
