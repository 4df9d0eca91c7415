package hybrid

import (
	"log"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/pkg/window"
)

// Detector tries several detectors in order. The first one that reports a
// focused window wins, and ProcessName is routed back to that detector.
type Detector struct {
	detectors []window.Detector

	mu     sync.Mutex
	owners map[*window.Window]window.Detector
	last   string
}

// NewDetector builds a chain from the available detectors, preserving order.
func NewDetector(candidates ...window.Detector) (*Detector, error) {
	d := &Detector{owners: make(map[*window.Window]window.Detector)}
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if !c.IsAvailable() {
			c.Close()
			continue
		}
		d.detectors = append(d.detectors, c)
	}
	if len(d.detectors) == 0 {
		return nil, errors.New("no window detector available on this system")
	}
	return d, nil
}

// FocusedWindow asks each detector in turn
func (d *Detector) FocusedWindow() (*window.Window, error) {
	var errs []string
	for _, det := range d.detectors {
		w, err := det.FocusedWindow()
		if err != nil {
			errs = append(errs, det.DisplayServer()+": "+err.Error())
			continue
		}
		if w == nil {
			continue
		}

		d.mu.Lock()
		// Only the most recent window is needed for ProcessName routing.
		clear(d.owners)
		d.owners[w] = det
		if d.last != det.DisplayServer() {
			log.Printf("Focus detection using %s", det.DisplayServer())
			d.last = det.DisplayServer()
		}
		d.mu.Unlock()
		return w, nil
	}

	if len(errs) == len(d.detectors) {
		return nil, errors.Errorf("all window detectors failed: %s", strings.Join(errs, "; "))
	}
	return nil, nil
}

// ProcessName delegates to the detector that produced w
func (d *Detector) ProcessName(w *window.Window) string {
	if w == nil {
		return window.UnknownProcess
	}
	d.mu.Lock()
	det, ok := d.owners[w]
	d.mu.Unlock()
	if !ok {
		det = d.detectors[0]
	}
	return det.ProcessName(w)
}

// IsAvailable is true once construction succeeded
func (d *Detector) IsAvailable() bool {
	return len(d.detectors) > 0
}

// DisplayServer reports the detector that last produced a window, or the first in the chain
func (d *Detector) DisplayServer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last != "" {
		return d.last
	}
	return d.detectors[0].DisplayServer()
}

// Close closes every detector in the chain
func (d *Detector) Close() error {
	var first error
	for _, det := range d.detectors {
		if err := det.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
