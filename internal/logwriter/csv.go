package logwriter

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/internal/models"
	"github.com/actionsum/workwatch/pkg/utils"
)

const (
	// Header is written once when the activity log is created.
	Header = "StartTimestamp,EndTimestamp,Duration,ProcessName,WindowTitle"

	// TimestampLayout is yyyy-MM-dd HH:mm:ss in local time.
	TimestampLayout = "2006-01-02 15:04:05"
)

// FormatRecord renders s as one CSV line without the trailing newline.
func FormatRecord(s models.Session) string {
	return s.StartedAt.Local().Format(TimestampLayout) + "," +
		s.EndedAt.Local().Format(TimestampLayout) + "," +
		utils.FormatClock(s.Duration) + "," +
		EscapeField(s.ProcessName) + "," +
		EscapeField(s.WindowTitle)
}

// EscapeField quotes f when it contains a comma, a double quote or a newline,
// doubling any embedded quotes. Other fields are written verbatim.
func EscapeField(f string) string {
	if !strings.ContainsAny(f, ",\"\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

// CSVFile appends sessions to a single CSV file. It is used by one writer
// goroutine; the mutex only guards against misuse.
type CSVFile struct {
	path string
	mu   sync.Mutex
}

// NewCSVFile returns a sink for path. The file is created on first use.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// Path returns the file being appended to.
func (c *CSVFile) Path() string {
	return c.path
}

// Init creates the parent directory and the file with its header if missing.
func (c *CSVFile) Init() error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", dir)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.open()
	if err != nil {
		return err
	}
	return errors.Wrap(f.Close(), "failed to close activity log")
}

// Append writes one newline-terminated record.
func (c *CSVFile) Append(s models.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.open()
	if err != nil {
		return err
	}

	if _, err := f.WriteString(FormatRecord(s) + "\n"); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to append to %s", c.path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", c.path)
	}
	return nil
}

// open opens the file for appending, creating it with the header when it
// does not exist yet.
func (c *CSVFile) open() (*os.File, error) {
	f, err := os.OpenFile(c.path, os.O_WRONLY|os.O_APPEND, 0)
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "failed to open %s", c.path)
	}

	f, err = os.OpenFile(c.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, 0644)
	if os.IsExist(err) {
		return c.open()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", c.path)
	}

	if _, err := f.WriteString(Header + "\n"); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to write header to %s", c.path)
	}
	return f, nil
}
