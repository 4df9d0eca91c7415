package tracker

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

func at(sec float64) time.Time {
	return t0.Add(time.Duration(sec * float64(time.Second)))
}

func focus(process, title string, sec float64) FocusSample {
	return FocusSample{ProcessName: process, WindowTitle: title, Resolved: true, Timestamp: at(sec)}
}

func unresolved(sec float64) FocusSample {
	return FocusSample{Timestamp: at(sec)}
}

func TestFinalizeThreshold(t *testing.T) {
	s := ActiveSession{ProcessName: "chrome", WindowTitle: "Inbox", StartedAt: t0}

	tests := []struct {
		name   string
		end    time.Time
		wantOK bool
	}{
		{"just under", t0.Add(4999 * time.Millisecond), false},
		{"exactly", t0.Add(5 * time.Second), true},
		{"over", t0.Add(6 * time.Second), true},
		{"clock went backwards", t0.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Finalize(s, tt.end, DefaultMinDuration)
			if ok != tt.wantOK {
				t.Fatalf("Finalize() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if rec.Duration != tt.end.Sub(t0) {
				t.Errorf("Duration = %v, want %v", rec.Duration, tt.end.Sub(t0))
			}
			if !rec.EndedAt.After(rec.StartedAt) {
				t.Errorf("EndedAt %v not after StartedAt %v", rec.EndedAt, rec.StartedAt)
			}
			if rec.ProcessName != "chrome" || rec.WindowTitle != "Inbox" {
				t.Errorf("record identity = %s/%s", rec.ProcessName, rec.WindowTitle)
			}
		})
	}
}

func TestFinalizeNonPositiveMinimum(t *testing.T) {
	s := ActiveSession{ProcessName: "chrome", WindowTitle: "Inbox", StartedAt: t0}

	for _, minimum := range []time.Duration{0, -time.Second} {
		if _, ok := Finalize(s, t0, minimum); ok {
			t.Errorf("Finalize(minimum=%v) accepted a zero-length session", minimum)
		}
		if rec, ok := Finalize(s, at(1), minimum); !ok || rec.Duration != time.Second {
			t.Errorf("Finalize(minimum=%v) = %+v, %v; want one 1s record", minimum, rec, ok)
		}
	}
}

func TestMachineExampleEndToEnd(t *testing.T) {
	m := NewMachine(DefaultMinDuration)

	for sec := 0; sec <= 5; sec++ {
		if _, ok := m.Observe(focus("chrome", "Inbox", float64(sec))); ok {
			t.Fatalf("record emitted at t=%d", sec)
		}
	}

	rec, ok := m.Observe(focus("code", "main.rs", 6))
	if !ok {
		t.Fatal("no record emitted at t=6")
	}
	if !rec.StartedAt.Equal(at(0)) || !rec.EndedAt.Equal(at(6)) || rec.Duration != 6*time.Second {
		t.Errorf("record = %+v", rec)
	}
	if rec.ProcessName != "chrome" || rec.WindowTitle != "Inbox" {
		t.Errorf("record identity = %s/%s", rec.ProcessName, rec.WindowTitle)
	}

	active, _ := m.Active()
	if active.ProcessName != "code" || !active.StartedAt.Equal(at(6)) {
		t.Errorf("active = %+v", active)
	}
}

func TestMachineIdenticalSamplesKeepStart(t *testing.T) {
	m := NewMachine(DefaultMinDuration)
	for sec := 0; sec < 5; sec++ {
		m.Observe(focus("A", "doc", float64(sec)))
	}

	active, ok := m.Active()
	if !ok {
		t.Fatal("no active session")
	}
	if !active.StartedAt.Equal(at(0)) {
		t.Errorf("StartedAt = %v, want first poll %v", active.StartedAt, at(0))
	}
}

func TestMachineShortSessionsDiscarded(t *testing.T) {
	m := NewMachine(DefaultMinDuration)
	m.Observe(focus("chrome", "a", 0))
	if _, ok := m.Observe(focus("code", "b", 2)); ok {
		t.Error("2s session recorded")
	}
	if _, ok := m.Observe(focus("chrome", "a", 4)); ok {
		t.Error("2s session recorded")
	}
	if _, ok := m.Observe(focus("code", "b", 8.5)); ok {
		t.Error("4.5s session recorded")
	}
	rec, ok := m.Observe(focus("term", "c", 13.5))
	if !ok || rec.Duration != 5*time.Second {
		t.Errorf("5s session = %+v, %v", rec, ok)
	}
}

func TestMachineTitleChangeIsNewSession(t *testing.T) {
	m := NewMachine(DefaultMinDuration)
	m.Observe(focus("chrome", "Inbox", 0))
	rec, ok := m.Observe(focus("chrome", "Calendar", 10))
	if !ok || rec.WindowTitle != "Inbox" {
		t.Errorf("record = %+v, %v", rec, ok)
	}
}

func TestMachineUnresolvedSamples(t *testing.T) {
	m := NewMachine(DefaultMinDuration)

	if _, ok := m.Observe(unresolved(0)); ok {
		t.Error("record from unresolved sample")
	}
	if _, ok := m.Observe(unresolved(1)); ok {
		t.Error("record from consecutive unresolved samples")
	}
	if _, ok := m.Active(); ok {
		t.Error("active session after unresolved samples")
	}

	m.Observe(focus("chrome", "Inbox", 2))
	rec, ok := m.Observe(unresolved(9))
	if !ok || rec.Duration != 7*time.Second {
		t.Errorf("record on losing focus = %+v, %v", rec, ok)
	}
	if _, ok := m.Active(); ok {
		t.Error("active session after focus lost")
	}

	m.Observe(focus("chrome", "Inbox", 10))
	active, _ := m.Active()
	if !active.StartedAt.Equal(at(10)) {
		t.Errorf("regained session StartedAt = %v, want %v", active.StartedAt, at(10))
	}
}

func TestMachineFlush(t *testing.T) {
	m := NewMachine(DefaultMinDuration)
	if _, ok := m.Flush(at(0)); ok {
		t.Error("Flush() with no session returned a record")
	}

	m.Observe(focus("chrome", "Inbox", 0))
	rec, ok := m.Flush(at(7))
	if !ok || !rec.EndedAt.Equal(at(7)) {
		t.Errorf("Flush() = %+v, %v", rec, ok)
	}
	if _, ok := m.Active(); ok {
		t.Error("active session after Flush()")
	}

	m.Observe(focus("chrome", "Inbox", 10))
	if _, ok := m.Flush(at(12)); ok {
		t.Error("Flush() of 2s session returned a record")
	}
}

// Records emitted equal the maximal same-identity runs lasting at least the
// threshold, including the run still open at flush.
func TestMachineRunCounting(t *testing.T) {
	type step struct {
		process string
		sec     float64
	}
	// Runs: a 0..6 (6s), b 6..8 (2s), unresolved 8..10, c 10..15 (5s), a 15..30 (open).
	seq := []step{
		{"a", 0}, {"a", 1}, {"a", 5},
		{"b", 6}, {"b", 7},
		{"", 8}, {"", 9},
		{"c", 10}, {"c", 14}, {"c", 15},
		{"a", 15},
	}

	m := NewMachine(DefaultMinDuration)
	var got []string
	for _, s := range seq {
		sample := unresolved(s.sec)
		if s.process != "" {
			sample = focus(s.process, "w", s.sec)
		}
		if rec, ok := m.Observe(sample); ok {
			got = append(got, rec.ProcessName)
		}
	}
	if rec, ok := m.Flush(at(30)); ok {
		got = append(got, rec.ProcessName)
	}

	want := []string{"a", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("records = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNewMachineDefaultsThreshold(t *testing.T) {
	m := NewMachine(0)
	if m.minDuration != DefaultMinDuration {
		t.Errorf("minDuration = %v, want %v", m.minDuration, DefaultMinDuration)
	}
}
