package window

// UnknownProcess is reported when the owning process of a window cannot be resolved.
const UnknownProcess = "Unknown"

// Window identifies the window that currently holds focus
type Window struct {
	Handle        uint64 // Platform window id, or the owning pid where no id exists
	PID           int    // Owning process id when the platform reports it, 0 otherwise
	Title         string
	Class         string // WM_CLASS or app id, used when the pid cannot be resolved
	DisplayServer string // "x11" or "wayland"
}

// Detector is the interface that all focus probes must satisfy
type Detector interface {
	// FocusedWindow returns the focused window, or nil if no titled window holds focus
	FocusedWindow() (*Window, error)

	// ProcessName returns the owning process name; UnknownProcess if it cannot be resolved
	ProcessName(w *Window) string

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// DisplayServer returns the display server type ("x11" or "wayland")
	DisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}
