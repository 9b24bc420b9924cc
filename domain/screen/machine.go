package screen

import (
	"log/slog"
	"sync"
)

// Listener is invoked on every committed transition.
type Listener func(from, to Mode)

// Machine tracks the current mode across ticks. Candidates that leave the
// battle superstate must repeat on ConfirmFrames consecutive updates before
// they commit; every other transition commits immediately.
// It is safe for concurrent use.
type Machine struct {
	mu        sync.Mutex
	mode      Mode
	confirm   int
	pending   Mode
	streak    int
	logger    *slog.Logger
	listeners []Listener
}

// NewMachine returns a machine in Loading. confirmFrames <= 1 disables the
// exit debounce.
func NewMachine(confirmFrames int, logger *slog.Logger) *Machine {
	if confirmFrames < 1 {
		confirmFrames = 1
	}
	return &Machine{mode: Loading, confirm: confirmFrames, logger: logger}
}

// AddListener registers a transition listener.
func (m *Machine) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Current returns the committed mode.
func (m *Machine) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Update feeds one presence vector and returns the committed mode.
func (m *Machine) Update(p Presence) Mode {
	m.mu.Lock()
	prev := m.mode
	candidate := Resolve(prev, p)
	if candidate == prev {
		m.streak = 0
		m.mu.Unlock()
		return prev
	}
	if prev.InBattle() && !candidate.InBattle() && m.confirm > 1 {
		if m.pending == candidate && m.streak > 0 {
			m.streak++
		} else {
			m.pending, m.streak = candidate, 1
		}
		if m.streak < m.confirm {
			if m.logger != nil {
				m.logger.Debug("screen.pending", "from", prev.String(), "to", candidate.String(), "streak", m.streak)
			}
			m.mu.Unlock()
			return prev
		}
	}
	m.mode, m.streak = candidate, 0
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	m.notify(listeners, prev, candidate)
	return candidate
}

// Reset returns the machine to Loading, notifying listeners if that changes
// the mode.
func (m *Machine) Reset() {
	m.mu.Lock()
	prev := m.mode
	m.mode, m.streak = Loading, 0
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	if prev != Loading {
		m.notify(listeners, prev, Loading)
	}
}

func (m *Machine) notify(listeners []Listener, from, to Mode) {
	if m.logger != nil {
		m.logger.Info("screen.transition", "from", from.String(), "to", to.String())
	}
	for _, l := range listeners {
		l(from, to)
	}
}
