package presenter

import (
	"sync"
	"time"

	"github.com/soocke/duel-vision-go/domain/screen"
)

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// ModePresenter receives screen-mode transitions from the analysis goroutine
// and reflects the latest one on the UI thread.
type ModePresenter struct {
	view    StateView
	latest  screen.Mode
	shown   bool
	mu      sync.Mutex
	pending []screen.Mode
}

func NewModePresenter(view StateView) *ModePresenter {
	return &ModePresenter{view: view}
}

// OnMode queues a transition. It matches screen.Listener and may be called
// from any goroutine.
func (p *ModePresenter) OnMode(from, to screen.Mode) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, to)
	p.mu.Unlock()
}

// Tick reflects the most recent queued mode and clears the queue.
func (p *ModePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	p.mu.Unlock()
	if !p.shown || last != p.latest {
		p.latest, p.shown = last, true
		p.view.SetStateLabel("Mode: " + last.String())
	}
}
