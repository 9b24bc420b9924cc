package presenter

import (
	"context"
	"errors"
	"testing"
)

type mockModel struct{ enabled bool }

func (m *mockModel) Enabled() bool     { return m.enabled }
func (m *mockModel) SetEnabled(b bool) { m.enabled = b }

type mockService struct{ started int }

func (s *mockService) Start()      { s.started++ }
func (s *mockService) Stop() error { return nil }

type mockEngine struct {
	started, stopped int
	stopErr          error
}

func (e *mockEngine) Start(ctx context.Context) { e.started++ }
func (e *mockEngine) Stop() error               { e.stopped++; return e.stopErr }

type mockResetter struct{ resets int }

func (r *mockResetter) Reset() { r.resets++ }

type mockView struct {
	reset, editableCalls int
	lastEditable         bool
}

func (v *mockView) PreviewReset()         { v.reset++ }
func (v *mockView) ConfigEditable(b bool) { v.editableCalls++; v.lastEditable = b }

func TestCapturePresenter_EnableDisable_Idempotent(t *testing.T) {
	m := &mockModel{}
	svc := &mockService{}
	eng := &mockEngine{}
	an := &mockResetter{}
	view := &mockView{}
	p := NewCapturePresenter(context.Background(), m, svc, eng, an, view, nil)

	p.Enable()
	if !m.Enabled() || svc.started != 1 || eng.started != 1 || view.lastEditable || view.editableCalls != 1 {
		t.Fatalf("enable failed: enabled=%v started=%d engine=%d editableCalls=%d", m.Enabled(), svc.started, eng.started, view.editableCalls)
	}
	p.Enable()
	if svc.started != 1 || eng.started != 1 {
		t.Fatalf("enable not idempotent: started=%d engine=%d", svc.started, eng.started)
	}

	p.Disable()
	if m.Enabled() || eng.stopped != 1 || an.resets != 1 || view.reset != 1 || !view.lastEditable {
		t.Fatalf("disable failed: enabled=%v stopped=%d resets=%d reset=%d", m.Enabled(), eng.stopped, an.resets, view.reset)
	}
	p.Disable()
	if eng.stopped != 1 || an.resets != 1 || view.reset != 1 {
		t.Fatalf("disable not idempotent: stopped=%d resets=%d reset=%d", eng.stopped, an.resets, view.reset)
	}
}

func TestCapturePresenter_StopTimeoutKeepsHistory(t *testing.T) {
	m := &mockModel{}
	eng := &mockEngine{stopErr: errors.New("timeout")}
	an := &mockResetter{}
	p := NewCapturePresenter(context.Background(), m, &mockService{}, eng, an, &mockView{}, nil)
	p.Toggle()
	p.Toggle()
	if m.Enabled() || eng.stopped != 1 {
		t.Fatalf("expected toggle to disable, got enabled=%v stopped=%d", m.Enabled(), eng.stopped)
	}
	if an.resets != 0 {
		t.Fatalf("expected no reset while the loop may still run, got %d", an.resets)
	}
}
