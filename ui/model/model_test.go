package model

import (
	"testing"
	"time"

	"github.com/soocke/duel-vision-go/domain/combat"
)

func TestBattleModel_Lifecycle(t *testing.T) {
	m := NewBattleModel()
	base := time.Unix(0, 0)

	m.OnTick(true, base)
	m.OnTick(true, base.Add(5*time.Second))
	battle, total, count := m.Values()
	if battle != 5*time.Second || total != 5*time.Second || count != 1 {
		t.Fatalf("expected 5s battle, got battle=%v total=%v count=%d", battle, total, count)
	}

	m.OnTick(false, base.Add(6*time.Second))
	m.OnTick(false, base.Add(9*time.Second))
	battle, total, _ = m.Values()
	if battle != 6*time.Second || total != 6*time.Second {
		t.Fatalf("expected idle ticks to keep 6s, got battle=%v total=%v", battle, total)
	}

	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(13*time.Second))
	battle, total, count = m.Values()
	if battle != 3*time.Second || total != 9*time.Second || count != 2 {
		t.Fatalf("expected second battle 3s of 9s total, got battle=%v total=%v count=%d", battle, total, count)
	}
}

func TestCaptureModel_CountsStarts(t *testing.T) {
	var m CaptureModel
	m.SetEnabled(true)
	m.SetEnabled(true)
	m.SetEnabled(false)
	m.SetEnabled(true)
	if !m.Enabled() || m.Starts() != 2 {
		t.Fatalf("expected enabled with 2 starts, got %v %d", m.Enabled(), m.Starts())
	}
}

func TestInspectModel_Select(t *testing.T) {
	m := NewInspectModel()
	if _, ok := m.Slot(); ok {
		t.Fatalf("expected no selection")
	}
	m.Select(combat.SlotID{Side: combat.Ally, Index: 2})
	if id, ok := m.Slot(); !ok || id.Index != 2 || id.Side != combat.Ally {
		t.Fatalf("expected ally 2, got %+v %v", id, ok)
	}
	m.Select(combat.SlotID{Side: combat.Enemy, Index: 9})
	if _, ok := m.Slot(); ok {
		t.Fatalf("expected invalid index to clear the selection")
	}
}
