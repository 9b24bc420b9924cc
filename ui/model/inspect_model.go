package model

import (
	"github.com/soocke/duel-vision-go/domain/combat"
)

// InspectModel holds the slot selected for the zoomed preview. The zero value
// has no selection. Updates happen on the UI thread.
type InspectModel struct {
	slot combat.SlotID
	set  bool
}

func NewInspectModel() *InspectModel { return &InspectModel{} }

// Select sets the inspected slot. An out-of-range index clears the selection.
func (m *InspectModel) Select(id combat.SlotID) {
	if m == nil {
		return
	}
	if id.Index < 0 || id.Index >= combat.SlotsPerSide {
		m.Clear()
		return
	}
	m.slot, m.set = id, true
}

// Clear drops the selection.
func (m *InspectModel) Clear() {
	if m == nil {
		return
	}
	m.slot, m.set = combat.SlotID{}, false
}

// Slot returns the selection, if any.
func (m *InspectModel) Slot() (combat.SlotID, bool) {
	if m == nil {
		return combat.SlotID{}, false
	}
	return m.slot, m.set
}
