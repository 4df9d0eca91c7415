package hybrid

import (
	"errors"
	"testing"

	"github.com/actionsum/workwatch/pkg/window"
)

type stubDetector struct {
	name      string
	available bool
	win       *window.Window
	err       error
	process   string
	closed    bool
}

func (s *stubDetector) FocusedWindow() (*window.Window, error) { return s.win, s.err }
func (s *stubDetector) ProcessName(*window.Window) string { return s.process }
func (s *stubDetector) IsAvailable() bool { return s.available }
func (s *stubDetector) DisplayServer() string { return s.name }
func (s *stubDetector) Close() error { s.closed = true; return nil }

func TestNewDetectorSkipsUnavailable(t *testing.T) {
	off := &stubDetector{name: "wayland"}
	on := &stubDetector{name: "x11", available: true}

	d, err := NewDetector(off, nil, on)
	if err != nil {
		t.Fatalf("NewDetector() error: %v", err)
	}
	if len(d.detectors) != 1 || d.detectors[0] != on {
		t.Errorf("detectors = %v, want only x11", d.detectors)
	}
	if !off.closed {
		t.Error("unavailable detector was not closed")
	}
}

func TestNewDetectorNoneAvailable(t *testing.T) {
	if _, err := NewDetector(&stubDetector{}); err == nil {
		t.Error("NewDetector() error = nil, want error")
	}
}

func TestFallbackOrder(t *testing.T) {
	first := &stubDetector{name: "wayland", available: true, err: errors.New("Shell.Eval blocked")}
	second := &stubDetector{
		name:      "x11",
		available: true,
		win:       &window.Window{Handle: 9, Title: "Inbox"},
		process:   "chrome",
	}

	d, _ := NewDetector(first, second)

	w, err := d.FocusedWindow()
	if err != nil {
		t.Fatalf("FocusedWindow() error: %v", err)
	}
	if w == nil || w.Title != "Inbox" {
		t.Fatalf("FocusedWindow() = %+v", w)
	}
	if got := d.ProcessName(w); got != "chrome" {
		t.Errorf("ProcessName() = %s, want chrome", got)
	}
	if got := d.DisplayServer(); got != "x11" {
		t.Errorf("DisplayServer() = %s, want x11", got)
	}
}

func TestAllFail(t *testing.T) {
	d, _ := NewDetector(
		&stubDetector{name: "wayland", available: true, err: errors.New("a")},
		&stubDetector{name: "x11", available: true, err: errors.New("b")},
	)
	if _, err := d.FocusedWindow(); err == nil {
		t.Error("FocusedWindow() error = nil, want combined error")
	}
}

func TestNoFocusIsNotAnError(t *testing.T) {
	d, _ := NewDetector(
		&stubDetector{name: "wayland", available: true, err: errors.New("a")},
		&stubDetector{name: "x11", available: true},
	)
	w, err := d.FocusedWindow()
	if err != nil || w != nil {
		t.Errorf("FocusedWindow() = %+v, %v; want nil, nil", w, err)
	}
}

func TestClose(t *testing.T) {
	a := &stubDetector{name: "a", available: true}
	b := &stubDetector{name: "b", available: true}
	d, _ := NewDetector(a, b)
	if err := d.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("Close() did not close every detector")
	}
}

func TestDetectorInterface(t *testing.T) {
	var _ window.Detector = (*Detector)(nil)
}
