package battle

import "sync"

// Mailbox holds the latest published snapshot. Publishing replaces it
// wholesale and readers receive their own copy.
type Mailbox struct {
	mu   sync.RWMutex
	snap Snapshot
	ok   bool
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox { return &Mailbox{} }

// Publish stores a copy of s.
func (m *Mailbox) Publish(s Snapshot) {
	c := s.Clone()
	m.mu.Lock()
	m.snap, m.ok = c, true
	m.mu.Unlock()
}

// Latest returns a copy of the newest snapshot; ok is false before the first
// publish.
func (m *Mailbox) Latest() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ok {
		return Snapshot{}, false
	}
	return m.snap.Clone(), true
}
