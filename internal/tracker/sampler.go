package tracker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/internal/errlog"
	"github.com/actionsum/workwatch/internal/models"
	"github.com/actionsum/workwatch/internal/queue"
	"github.com/actionsum/workwatch/pkg/window"
)

// Sampler polls the detector, feeds the session machine and enqueues every
// finished session. The interval is measured from the end of one step to the
// start of the next, so a slow probe delays sampling instead of piling up.
type Sampler struct {
	detector window.Detector
	queue    *queue.Queue[models.Session]
	reporter errlog.Reporter
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	machine *Machine

	probeFailing bool
}

// NewSampler creates a sampler. A nil reporter discards failures.
func NewSampler(detector window.Detector, q *queue.Queue[models.Session], reporter errlog.Reporter, interval, minDuration time.Duration) *Sampler {
	if reporter == nil {
		reporter = errlog.Discard{}
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Sampler{
		detector: detector,
		queue:    q,
		reporter: reporter,
		interval: interval,
		now:      time.Now,
		machine:  NewMachine(minDuration),
	}
}

// Run samples until ctx is canceled, then flushes the open session into the
// queue. A panic in the loop is reported and returned as an error; the open
// session is still flushed.
func (s *Sampler) Run(ctx context.Context) (err error) {
	log.Printf("Sampler started with %v poll interval", s.interval)

	defer func() {
		if p := recover(); p != nil {
			err = errlog.Recovered("sampler", p)
			s.reporter.Report(err)
		}
		s.Flush()
		log.Println("Sampler stopped")
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		s.Step()

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Step takes one sample and advances the session machine.
func (s *Sampler) Step() {
	sample := s.Sample()

	s.mu.Lock()
	rec, ok := s.machine.Observe(sample)
	s.mu.Unlock()

	if ok {
		s.enqueue(rec)
	}
}

// Flush ends the open session now and enqueues it if it qualifies.
func (s *Sampler) Flush() {
	s.mu.Lock()
	rec, ok := s.machine.Flush(s.now())
	s.mu.Unlock()

	if ok {
		s.enqueue(rec)
	}
}

// Current returns a copy of the open session, or nil.
func (s *Sampler) Current() *ActiveSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, ok := s.machine.Active()
	if !ok {
		return nil
	}
	return &active
}

// Sample queries the detector once. Probe errors yield an unresolved sample;
// only the first error of a consecutive run is reported.
func (s *Sampler) Sample() FocusSample {
	w, err := s.detector.FocusedWindow()
	now := s.now()

	if err != nil {
		if !s.probeFailing {
			s.reporter.Report(errors.WithMessage(err, "focus probe failed"))
		}
		s.probeFailing = true
		return FocusSample{Timestamp: now}
	}
	s.probeFailing = false

	if w == nil || w.Title == "" {
		return FocusSample{Timestamp: now}
	}

	return FocusSample{
		WindowTitle: w.Title,
		ProcessName: s.processName(w),
		Resolved:    true,
		Timestamp:   now,
	}
}

// processName never fails: any panic or empty answer becomes UnknownProcess.
func (s *Sampler) processName(w *window.Window) (name string) {
	defer func() {
		if p := recover(); p != nil {
			name = window.UnknownProcess
		}
	}()

	name = s.detector.ProcessName(w)
	if name == "" {
		name = window.UnknownProcess
	}
	return name
}

func (s *Sampler) enqueue(rec models.Session) {
	if err := s.queue.Enqueue(rec); err != nil {
		s.reporter.Report(errors.Wrapf(err, "dropped session %s %q", rec.ProcessName, rec.WindowTitle))
		return
	}
	log.Printf("Session ended: %s %q (%v)", rec.ProcessName, rec.WindowTitle, rec.Duration)
}
