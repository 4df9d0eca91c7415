package tracker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/internal/config"
	"github.com/actionsum/workwatch/internal/errlog"
	"github.com/actionsum/workwatch/internal/logwriter"
	"github.com/actionsum/workwatch/internal/models"
	"github.com/actionsum/workwatch/internal/queue"
	"github.com/actionsum/workwatch/pkg/window"
)

const (
	drainPoll = 10 * time.Millisecond

	// writerJoin bounds the wait for the writer after the grace period. A
	// writer stuck in a sink is left behind.
	writerJoin = 250 * time.Millisecond
)

// Engine runs the sampler and the log writer as two goroutines joined by a
// queue. Console and daemon hosts both drive it through Start and Stop.
type Engine struct {
	queue    *queue.Queue[models.Session]
	sampler  *Sampler
	writer   *logwriter.Writer
	reporter errlog.Reporter
	grace    time.Duration

	mu            sync.Mutex
	running       bool
	cancelSampler context.CancelFunc
	cancelWriter  context.CancelFunc
	samplerDone   chan struct{}
	writerDone    chan struct{}
	samplerErr    error
	abandoned     int
}

// NewEngine wires a sampler over det to a writer over sinks.
func NewEngine(cfg *config.Config, det window.Detector, reporter errlog.Reporter, sinks ...logwriter.Sink) *Engine {
	if reporter == nil {
		reporter = errlog.Discard{}
	}

	q := queue.NewBounded[models.Session](cfg.Writer.QueueLimit)

	return &Engine{
		queue:    q,
		sampler:  NewSampler(det, q, reporter, cfg.Tracker.PollInterval, cfg.Tracker.MinDuration),
		writer:   logwriter.New(q, reporter, cfg.Writer.IdleInterval, sinks...),
		reporter: reporter,
		grace:    cfg.Writer.GracePeriod,
	}
}

// Start launches both loops and returns immediately. Canceling ctx stops
// the sampler the same way Stop does; the writer keeps draining until Stop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("engine is already running")
	}
	if e.samplerDone != nil {
		return fmt.Errorf("engine cannot be restarted")
	}
	e.running = true

	samplerCtx, cancelSampler := context.WithCancel(ctx)
	writerCtx, cancelWriter := context.WithCancel(context.WithoutCancel(ctx))
	e.cancelSampler = cancelSampler
	e.cancelWriter = cancelWriter
	e.samplerDone = make(chan struct{})
	e.writerDone = make(chan struct{})

	go func() {
		defer close(e.writerDone)
		e.writer.Run(writerCtx)
	}()

	go func() {
		defer close(e.samplerDone)
		err := e.sampler.Run(samplerCtx)
		e.mu.Lock()
		e.samplerErr = err
		e.mu.Unlock()
	}()

	return nil
}

// Stop halts the sampler, which flushes its open session, then gives the
// writer up to the grace period to empty the queue. Records still queued
// afterwards, plus one still being written by a stalled writer, are reported
// as abandoned. Stop returns the sampler's error.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.mu.Unlock()

	e.cancelSampler()
	<-e.samplerDone

	deadline := time.Now().Add(e.grace)
	for !e.drained() && time.Now().Before(deadline) {
		time.Sleep(drainPoll)
	}

	e.cancelWriter()

	n := 0
	select {
	case <-e.writerDone:
	case <-time.After(writerJoin):
		log.Printf("Log writer did not stop within %v, abandoning it", e.grace+writerJoin)
		if e.writer.Busy() {
			n++
		}
	}
	n += e.queue.Len()

	if n > 0 {
		e.mu.Lock()
		e.abandoned = n
		e.mu.Unlock()
		e.reporter.Report(errors.Errorf("%d session record(s) abandoned after %v grace period", n, e.grace))
	}

	log.Printf("Engine stopped (%d written, %d failed)", e.writer.Written(), e.writer.Failed())
	return e.Err()
}

// Done is closed once the sampler has exited, either because Stop was called,
// the start context was canceled, or the loop failed. It is nil before Start.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samplerDone
}

// Err returns the sampler's failure, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samplerErr
}

// Running reports whether Start was called without a matching Stop.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Current returns the session being timed, or nil.
func (e *Engine) Current() *ActiveSession {
	return e.sampler.Current()
}

// Pending returns the number of records waiting for the writer.
func (e *Engine) Pending() int {
	return e.queue.Len()
}

// Abandoned returns how many records the last Stop left in the queue.
func (e *Engine) Abandoned() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.abandoned
}

// Written returns the number of records persisted by every sink.
func (e *Engine) Written() int64 {
	return e.writer.Written()
}

func (e *Engine) drained() bool {
	return e.queue.Len() == 0 && !e.writer.Busy()
}
