package presenter

import (
	"image"
	"sync"
	"testing"
	"time"
)

type changes struct {
	mu   sync.Mutex
	seen []WindowState
}

func (c *changes) add(prev, next WindowState) {
	c.mu.Lock()
	c.seen = append(c.seen, next)
	c.mu.Unlock()
}

func (c *changes) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWindowWatcher_ReportsChangesOnly(t *testing.T) {
	var mu sync.Mutex
	rect, found := image.Rect(0, 0, 800, 600), true
	provider := func() (image.Rectangle, bool) {
		mu.Lock()
		defer mu.Unlock()
		return rect, found
	}
	c := &changes{}
	w := NewWindowWatcher(provider, c.add, nil, 10*time.Millisecond)
	w.SetActive(true)
	defer w.SetActive(false)

	waitFor(t, func() bool { return c.len() == 1 })
	time.Sleep(50 * time.Millisecond)
	if c.len() != 1 {
		t.Fatalf("expected no repeat for an unchanged window, got %d", c.len())
	}

	mu.Lock()
	found = false
	mu.Unlock()
	waitFor(t, func() bool { return c.len() == 2 })
	if st := w.State(); st.Found || !st.Rect.Empty() {
		t.Fatalf("expected lost window state, got %+v", st)
	}
}

func TestWindowWatcher_RestartReportsAgain(t *testing.T) {
	c := &changes{}
	w := NewWindowWatcher(func() (image.Rectangle, bool) { return image.Rect(0, 0, 10, 10), true }, c.add, nil, 10*time.Millisecond)
	w.SetActive(true)
	waitFor(t, func() bool { return c.len() == 1 })
	w.SetActive(false)
	w.SetActive(false)
	w.SetActive(true)
	waitFor(t, func() bool { return c.len() == 2 })
	w.SetActive(false)
}
