package presenter

import (
	"image"
	"log/slog"
	"sync"
	"time"
)

// WindowState is what the watcher last saw of the game window.
type WindowState struct {
	Found bool
	Rect  image.Rectangle
}

// WindowWatcher polls the game window rectangle while capture runs and
// reports changes (found, lost, moved or resized).
type WindowWatcher struct {
	Rect     func() (image.Rectangle, bool)
	OnChange func(prev, next WindowState)
	Logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	done    chan struct{}
	last    WindowState
	polled  bool
}

// NewWindowWatcher constructs a watcher polling every interval (250ms when zero).
func NewWindowWatcher(rect func() (image.Rectangle, bool), onChange func(prev, next WindowState), logger *slog.Logger, interval time.Duration) *WindowWatcher {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &WindowWatcher{Rect: rect, OnChange: onChange, Logger: logger, interval: interval}
}

// SetActive starts polling when active and stops it otherwise.
func (w *WindowWatcher) SetActive(active bool) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if active == w.running {
		return
	}
	w.running = active
	if !active {
		close(w.done)
		return
	}
	w.done = make(chan struct{})
	w.polled = false
	go w.loop(w.done)
}

// State returns the last observed window state.
func (w *WindowWatcher) State() WindowState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *WindowWatcher) loop(done chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.poll()
	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-done:
			return
		}
	}
}

func (w *WindowWatcher) poll() {
	if w.Rect == nil {
		return
	}
	r, ok := w.Rect()
	next := WindowState{Found: ok}
	if ok {
		next.Rect = r
	}
	w.mu.Lock()
	prev, first := w.last, !w.polled
	changed := first || prev != next
	w.last, w.polled = next, true
	w.mu.Unlock()
	if !changed {
		return
	}
	if w.Logger != nil {
		w.Logger.Info("ui.window", "found", next.Found, "rect", next.Rect.String())
	}
	if w.OnChange != nil {
		w.OnChange(prev, next)
	}
}
