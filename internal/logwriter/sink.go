package logwriter

import (
	"github.com/actionsum/workwatch/internal/models"
)

// Sink persists one session. Append is only called from the writer goroutine.
type Sink interface {
	Append(s models.Session) error
}

// SessionStore is satisfied by database.Repository.
type SessionStore interface {
	CreateSession(s models.Session) error
}

// StoreSink mirrors sessions into a SessionStore.
type StoreSink struct {
	Store SessionStore
}

func (s StoreSink) Append(rec models.Session) error {
	return s.Store.CreateSession(rec)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(models.Session) error

func (f SinkFunc) Append(s models.Session) error {
	return f(s)
}
