package model

import (
	"time"
)

// BattleModel tracks time spent in battle across the session. Presenters feed
// it the in-battle flag each tick and poll Values. The zero value is ready to use.
type BattleModel struct {
	active      bool
	battleStart time.Time
	lastBattle  time.Duration
	accumulated time.Duration
	battles     int
}

// NewBattleModel returns a pointer to a ready-to-use BattleModel.
func NewBattleModel() *BattleModel { return &BattleModel{} }

// OnTick updates the model using whether a battle is on screen at now.
func (m *BattleModel) OnTick(inBattle bool, now time.Time) {
	if m == nil {
		return
	}
	if inBattle {
		if !m.active { // battle started
			m.active = true
			m.battleStart = now
			m.lastBattle = 0
			m.battles++
		}
		m.lastBattle = now.Sub(m.battleStart)
	} else if m.active { // battle ended
		m.lastBattle = now.Sub(m.battleStart)
		m.accumulated += m.lastBattle
		m.active = false
	}
}

// Values returns the current (or last) battle duration, the total time in
// battle including the ongoing one, and the number of battles seen.
func (m *BattleModel) Values() (battle, total time.Duration, count int) {
	if m == nil {
		return 0, 0, 0
	}
	battle = m.lastBattle
	total = m.accumulated
	if m.active {
		total += battle
	}
	return battle, total, m.battles
}
