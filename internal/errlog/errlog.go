// Package errlog is the best-effort error side channel shared by the sampler
// and the log writer. Nothing in this package returns an error or panics.
package errlog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Reporter accepts failures from any goroutine.
type Reporter interface {
	Report(err error)
}

// Mirror receives a copy of every reported error, e.g. the database repository.
type Mirror interface {
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// FileReporter appends entries to a day-named text file:
//
//	<timestamp> - <kind>: <message>
//	<context>
//
// followed by a blank line. The file name is Prefix + yyyymmdd + ".txt".
type FileReporter struct {
	Dir    string
	Prefix string
	Mirror Mirror

	mu  sync.Mutex
	now func() time.Time
}

// NewFileReporter creates a reporter writing into dir.
func NewFileReporter(dir, prefix string) *FileReporter {
	if prefix == "" {
		prefix = "error_log_"
	}
	return &FileReporter{Dir: dir, Prefix: prefix, now: time.Now}
}

// Path returns the side log path for the day containing t.
func (r *FileReporter) Path(t time.Time) string {
	return filepath.Join(r.Dir, r.Prefix+t.Format("20060102")+".txt")
}

// Report records err. Failures while recording are swallowed.
func (r *FileReporter) Report(err error) {
	if err == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			log.Printf("Error reporter recovered from panic: %v (original error: %v)", p, err)
		}
	}()

	now := time.Now()
	if r.now != nil {
		now = r.now()
	}
	entry := Entry{Timestamp: now, Kind: Kind(err), Message: err.Error(), Context: Context(err)}

	r.mu.Lock()
	werr := appendFile(r.Path(now), entry.String())
	r.mu.Unlock()

	if werr != nil {
		log.Printf("Failed to write error log: %v (original error: %v)", werr, err)
	} else {
		log.Printf("Error logged: %v", err)
	}

	if r.Mirror != nil {
		row := &models.ErrorLog{
			Timestamp: now,
			Kind:      entry.Kind,
			ErrorMsg:  entry.Message,
			Context:   entry.Context,
		}
		if merr := r.Mirror.CreateErrorLog(row); merr != nil {
			log.Printf("Failed to store error in database: %v (original error: %v)", merr, err)
		}
	}
}

func appendFile(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Entry is one side log record.
type Entry struct {
	Timestamp time.Time
	Kind      string
	Message   string
	Context   string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s - %s: %s\n%s\n\n", e.Timestamp.Format(timestampLayout), e.Kind, e.Message, e.Context)
}

// Kind names the error by the Go type of its root cause.
func Kind(err error) string {
	if k, ok := errors.Cause(err).(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return fmt.Sprintf("%T", errors.Cause(err))
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Context renders the innermost stack trace recorded by pkg/errors, or the
// wrapped chain when no stack is available.
func Context(err error) string {
	var deepest stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			deepest = st
		}
	}
	if deepest != nil {
		return strings.TrimPrefix(fmt.Sprintf("%+v", deepest.StackTrace()), "\n")
	}
	return "(no stack trace)"
}

// Panic wraps a recovered panic value so it can be reported like any error.
type Panic struct {
	Value any
	Where string
}

func (p *Panic) Error() string {
	return fmt.Sprintf("panic in %s: %v", p.Where, p.Value)
}

func (p *Panic) Kind() string {
	return "panic"
}

// Recovered converts a recover() value into an error with a stack, or nil.
func Recovered(where string, v any) error {
	if v == nil {
		return nil
	}
	return errors.WithStack(&Panic{Value: v, Where: where})
}

// Discard drops every report.
type Discard struct{}

func (Discard) Report(error) {}
