package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Tracker configuration
	Tracker TrackerConfig

	// Log writer and queue configuration
	Writer WriterConfig

	// Output file configuration
	Log LogConfig

	// Database mirror configuration
	Database DatabaseConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Web server configuration
	Web WebConfig
}

// TrackerConfig holds sampling behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration // Pause between the end of one sample and the next
	MinPollInterval time.Duration
	MaxPollInterval time.Duration
	MinDuration     time.Duration // Sessions shorter than this are discarded
}

// WriterConfig holds log writer configuration
type WriterConfig struct {
	IdleInterval time.Duration // Sleep when the queue is empty
	GracePeriod  time.Duration // Time allowed to drain the queue at shutdown
	QueueLimit   int           // 0 means unbounded
}

// LogConfig holds paths for the activity log and the error side log
type LogConfig struct {
	ActivityFile string
	ErrorDir     string
	ErrorPrefix  string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Enabled bool   // Mirror sessions and errors into SQLite
	Path    string // Path to SQLite database file
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file for daemon management
	LogFile string // Where daemon mode sends log output
}

// WebConfig holds web server configuration
type WebConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Tracker: TrackerConfig{
			PollInterval:    1 * time.Second,
			MinPollInterval: 100 * time.Millisecond,
			MaxPollInterval: 60 * time.Second,
			MinDuration:     5 * time.Second,
		},
		Writer: WriterConfig{
			IdleInterval: 1 * time.Second,
			GracePeriod:  2 * time.Second,
			QueueLimit:   0,
		},
		Log: LogConfig{
			ActivityFile: "activity_log.csv",
			ErrorDir:     ".",
			ErrorPrefix:  "error_log_",
		},
		Database: DatabaseConfig{
			Enabled: true,
			Path:    "", // Empty means use default ~/.config/workwatch/workwatch.db
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/workwatch-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/workwatch-%d.log", os.Getuid()),
		},
		Web: WebConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    10000 + os.Getuid(),
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.MinDuration <= 0 {
		return fmt.Errorf("minimum session duration must be positive, got %v", c.Tracker.MinDuration)
	}

	if c.Writer.IdleInterval <= 0 {
		return fmt.Errorf("writer idle interval must be positive, got %v", c.Writer.IdleInterval)
	}

	if c.Writer.GracePeriod < 0 {
		return fmt.Errorf("grace period cannot be negative")
	}

	if c.Writer.QueueLimit < 0 {
		return fmt.Errorf("queue limit cannot be negative, got %d", c.Writer.QueueLimit)
	}

	if c.Log.ActivityFile == "" {
		return fmt.Errorf("activity log file path cannot be empty")
	}

	if c.Web.Enabled {
		if c.Web.Port < 1 || c.Web.Port > 65535 {
			return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
		}
		if c.Web.Host == "" {
			return fmt.Errorf("web host cannot be empty")
		}
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Tracker:
    Poll Interval: %v
    Min Duration: %v
  Writer:
    Idle Interval: %v
    Grace Period: %v
    Queue Limit: %d
  Log:
    Activity File: %s
    Error Dir: %s
  Database:
    Enabled: %v
    Path: %s
  Daemon:
    PID File: %s
    Log File: %s
  Web:
    Enabled: %v
    Address: %s:%d`,
		c.Tracker.PollInterval,
		c.Tracker.MinDuration,
		c.Writer.IdleInterval,
		c.Writer.GracePeriod,
		c.Writer.QueueLimit,
		c.Log.ActivityFile,
		c.Log.ErrorDir,
		c.Database.Enabled,
		c.Database.Path,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Web.Enabled,
		c.Web.Host,
		c.Web.Port,
	)
}
