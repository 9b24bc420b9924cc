package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Battle   *BattlePresenter
	Mode     *ModePresenter
	Snapshot *SnapshotPresenter
	Schedule func()
}

func NewLoop(battle *BattlePresenter, mode *ModePresenter, snapshot *SnapshotPresenter, schedule func()) *Loop {
	return &Loop{Battle: battle, Mode: mode, Snapshot: snapshot, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Mode != nil {
		l.Mode.Tick(now)
	}
	if l.Battle != nil {
		l.Battle.Tick(now)
	}
	if l.Snapshot != nil {
		l.Snapshot.ProcessFrame()
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
