package x11

import (
	"os"
	"sync"

	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/pkg/integrations/process"
	"github.com/actionsum/workwatch/pkg/window"
)

// Detector implements window.Detector over a native X11 connection
type Detector struct {
	mu       sync.Mutex
	client   *client
	resolver *process.Resolver
	dial     func() (*client, error)
}

// NewDetector creates a new X11 detector. The connection is opened on first use.
func NewDetector() *Detector {
	return &Detector{
		resolver: process.NewResolver(),
		dial:     newClient,
	}
}

// IsAvailable reports whether a DISPLAY is configured
func (d *Detector) IsAvailable() bool {
	return os.Getenv("DISPLAY") != ""
}

// DisplayServer returns "x11"
func (d *Detector) DisplayServer() string {
	return "x11"
}

// conn returns the cached connection, dialing if necessary. Callers hold d.mu.
func (d *Detector) conn() (*client, error) {
	if d.client != nil {
		return d.client, nil
	}
	c, err := d.dial()
	if err != nil {
		return nil, err
	}
	d.client = c
	return c, nil
}

// reset drops a connection that returned an error so the next call redials.
func (d *Detector) reset() {
	if d.client != nil {
		d.client.close()
		d.client = nil
	}
}

// FocusedWindow returns the active top-level window
func (d *Detector) FocusedWindow() (*window.Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, err := d.conn()
	if err != nil {
		return nil, err
	}

	id, err := c.activeWindow()
	if err == errNoActiveWindow {
		return nil, nil
	}
	if err != nil {
		d.reset()
		return nil, errors.Wrap(err, "failed to query active x11 window")
	}

	title := c.windowName(id)
	if title == "" {
		return nil, nil
	}
	_, class := c.windowClass(id)

	return &window.Window{
		Handle:        uint64(id),
		PID:           c.windowPID(id),
		Title:         title,
		Class:         class,
		DisplayServer: "x11",
	}, nil
}

// ProcessName resolves the owning process via _NET_WM_PID, falling back to
// the WM_CLASS class when the pid is missing or unreadable.
func (d *Detector) ProcessName(w *window.Window) string {
	if w == nil {
		return window.UnknownProcess
	}
	pid, class := w.PID, w.Class

	if pid == 0 {
		d.mu.Lock()
		if c, err := d.conn(); err == nil {
			id := xproto.Window(w.Handle)
			pid = c.windowPID(id)
			if class == "" {
				_, class = c.windowClass(id)
			}
		}
		d.mu.Unlock()
	}

	if name := d.resolver.NameForPID(pid); name != window.UnknownProcess {
		return name
	}
	if class != "" {
		return class
	}
	return window.UnknownProcess
}

// Close releases the X connection
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	return nil
}
