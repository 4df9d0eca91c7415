package tracker

import (
	"time"

	"github.com/actionsum/workwatch/internal/models"
)

// DefaultMinDuration is the shortest session worth recording. Shorter focus
// changes are alt-tab noise.
const DefaultMinDuration = 5 * time.Second

// FocusSample is one observation of the focused window. Resolved is false
// when no titled window could be determined this tick.
type FocusSample struct {
	WindowTitle string
	ProcessName string
	Resolved    bool
	Timestamp   time.Time
}

// ActiveSession is the focus target currently being timed.
type ActiveSession struct {
	WindowTitle string    `json:"window_title"`
	ProcessName string    `json:"process_name"`
	StartedAt   time.Time `json:"started_at"`
}

// Finalize closes s at now. ok is false when the session lasted less than
// minDuration; such sessions are discarded, not retried. minDuration must be
// positive; with a non-positive value a zero or negative span is still
// rejected so endedAt always follows startedAt.
func Finalize(s ActiveSession, now time.Time, minDuration time.Duration) (rec models.Session, ok bool) {
	d := now.Sub(s.StartedAt)
	if d < minDuration || d <= 0 {
		return models.Session{}, false
	}
	return models.Session{
		StartedAt:   s.StartedAt,
		EndedAt:     now,
		Duration:    d,
		ProcessName: s.ProcessName,
		WindowTitle: s.WindowTitle,
	}, true
}

// Machine segments a stream of samples into sessions. It has two states:
// no session, or exactly one ActiveSession. Not safe for concurrent use.
type Machine struct {
	minDuration time.Duration
	active      *ActiveSession
}

// NewMachine creates a machine in the no-session state.
func NewMachine(minDuration time.Duration) *Machine {
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}
	return &Machine{minDuration: minDuration}
}

// changed compares the sample's identity with the active session. An
// unresolved sample only equals the no-session state.
func (m *Machine) changed(s FocusSample) bool {
	if m.active == nil {
		return s.Resolved
	}
	if !s.Resolved {
		return true
	}
	return s.WindowTitle != m.active.WindowTitle || s.ProcessName != m.active.ProcessName
}

// Observe feeds one sample. When focus moved away from a session that
// lasted long enough, the finished record is returned.
func (m *Machine) Observe(s FocusSample) (rec models.Session, ok bool) {
	if !m.changed(s) {
		return models.Session{}, false
	}

	if m.active != nil {
		rec, ok = Finalize(*m.active, s.Timestamp, m.minDuration)
	}

	m.active = nil
	if s.Resolved {
		m.active = &ActiveSession{
			WindowTitle: s.WindowTitle,
			ProcessName: s.ProcessName,
			StartedAt:   s.Timestamp,
		}
	}
	return rec, ok
}

// Flush ends the active session at now as if focus had changed, and leaves
// the machine in the no-session state.
func (m *Machine) Flush(now time.Time) (rec models.Session, ok bool) {
	if m.active == nil {
		return models.Session{}, false
	}
	rec, ok = Finalize(*m.active, now, m.minDuration)
	m.active = nil
	return rec, ok
}

// Active returns a copy of the active session.
func (m *Machine) Active() (ActiveSession, bool) {
	if m.active == nil {
		return ActiveSession{}, false
	}
	return *m.active, true
}
