package logwriter

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/internal/errlog"
	"github.com/actionsum/workwatch/internal/models"
	"github.com/actionsum/workwatch/internal/queue"
)

// Writer drains the session queue into its sinks. It polls: when the queue
// is empty it sleeps for the idle interval before looking again.
type Writer struct {
	queue    *queue.Queue[models.Session]
	sinks    []Sink
	reporter errlog.Reporter
	idle     time.Duration

	busy    atomic.Bool
	written atomic.Int64
	failed  atomic.Int64
}

// New creates a writer. A nil reporter discards failures.
func New(q *queue.Queue[models.Session], reporter errlog.Reporter, idle time.Duration, sinks ...Sink) *Writer {
	if reporter == nil {
		reporter = errlog.Discard{}
	}
	if idle <= 0 {
		idle = time.Second
	}
	return &Writer{queue: q, sinks: sinks, reporter: reporter, idle: idle}
}

// Run loops until ctx is canceled. A record already dequeued is always
// written before Run returns; records still queued are left in the queue.
func (w *Writer) Run(ctx context.Context) {
	log.Printf("Log writer started with %d sink(s)", len(w.sinks))
	defer log.Printf("Log writer stopped (%d written, %d failed)", w.written.Load(), w.failed.Load())

	for {
		if ctx.Err() != nil {
			return
		}

		if !w.Step() {
			timer := time.NewTimer(w.idle)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

// Step writes the head of the queue, if any, and reports whether it did.
func (w *Writer) Step() bool {
	w.busy.Store(true)
	defer w.busy.Store(false)

	rec, ok := w.queue.TryDequeue()
	if !ok {
		return false
	}
	w.persist(rec)
	return true
}

// Busy reports whether a record is being written right now.
func (w *Writer) Busy() bool {
	return w.busy.Load()
}

// Written returns the number of records every sink accepted.
func (w *Writer) Written() int64 {
	return w.written.Load()
}

// Failed returns the number of records at least one sink rejected.
func (w *Writer) Failed() int64 {
	return w.failed.Load()
}

// persist hands rec to each sink. A failing sink is reported and the record
// is not retried; the remaining sinks still receive it.
func (w *Writer) persist(rec models.Session) {
	ok := true
	for _, sink := range w.sinks {
		if err := w.appendOne(sink, rec); err != nil {
			ok = false
			w.reporter.Report(errors.WithMessagef(err, "dropped session %s %q started %s",
				rec.ProcessName, rec.WindowTitle, rec.StartedAt.Format(TimestampLayout)))
		}
	}
	if ok {
		w.written.Add(1)
	} else {
		w.failed.Add(1)
	}
}

func (w *Writer) appendOne(sink Sink, rec models.Session) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errlog.Recovered("log writer sink", p)
		}
	}()
	return sink.Append(rec)
}
