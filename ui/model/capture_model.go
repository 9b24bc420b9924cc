package model

import (
	"sync/atomic"
)

// CaptureModel tracks whether capture and analysis are running. The zero
// value is disabled and usable. UI callbacks and presenter ticks may race.
type CaptureModel struct {
	enabled atomic.Bool
	starts  atomic.Uint64
}

// Enabled reports whether capture is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag and counts off -> on transitions.
func (m *CaptureModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	if m.enabled.Swap(b) != b && b {
		m.starts.Add(1)
	}
}

// Starts reports how many times capture was enabled.
func (m *CaptureModel) Starts() uint64 {
	if m == nil {
		return 0
	}
	return m.starts.Load()
}
