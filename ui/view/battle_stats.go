package view

import (
	"fmt"
	"time"

	"github.com/soocke/duel-vision-go/ui/presenter"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// BattleStats shows the current battle duration, the total time in battle
// and the number of battles.
type BattleStats interface {
	SetBattle(current, total time.Duration, count int)
}

type battleStats struct {
	currentLbl *LabelWidget
	totalLbl   *LabelWidget
	countLbl   *LabelWidget
}

// NewBattleStats grids the three labels at row starting at startCol.
func NewBattleStats(row, startCol int) BattleStats {
	s := &battleStats{currentLbl: Label(Width(14)), totalLbl: Label(Width(14)), countLbl: Label(Width(10))}
	for i, l := range []*LabelWidget{s.currentLbl, s.totalLbl, s.countLbl} {
		Grid(l, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
	}
	s.SetBattle(0, 0, 0)
	return s
}

func (s *battleStats) SetBattle(current, total time.Duration, count int) {
	if s == nil || s.currentLbl == nil {
		return
	}
	s.currentLbl.Configure(Txt(presenter.FormatClock("Battle", current)))
	s.totalLbl.Configure(Txt(presenter.FormatClock("Total", total)))
	s.countLbl.Configure(Txt(fmt.Sprintf("Battles: %d", count)))
}
