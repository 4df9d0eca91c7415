package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default and file values
func LoadFromEnv(cfg *Config) {
	// Tracker configuration
	if v := os.Getenv("WORKWATCH_POLL_INTERVAL"); v != "" {
		if d, ok := parseDuration(v); ok {
			if d >= cfg.Tracker.MinPollInterval && d <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = d
			}
		}
	}

	if v := os.Getenv("WORKWATCH_MIN_DURATION"); v != "" {
		if d, ok := parseDuration(v); ok && d > 0 {
			cfg.Tracker.MinDuration = d
		}
	}

	// Writer configuration
	if v := os.Getenv("WORKWATCH_WRITER_IDLE"); v != "" {
		if d, ok := parseDuration(v); ok && d > 0 {
			cfg.Writer.IdleInterval = d
		}
	}

	if v := os.Getenv("WORKWATCH_GRACE_PERIOD"); v != "" {
		if d, ok := parseDuration(v); ok && d >= 0 {
			cfg.Writer.GracePeriod = d
		}
	}

	if v := os.Getenv("WORKWATCH_QUEUE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Writer.QueueLimit = n
		}
	}

	// Log configuration
	if v := os.Getenv("WORKWATCH_ACTIVITY_FILE"); v != "" {
		cfg.Log.ActivityFile = v
	}

	if v := os.Getenv("WORKWATCH_ERROR_DIR"); v != "" {
		cfg.Log.ErrorDir = v
	}

	// Database configuration
	if v := os.Getenv("WORKWATCH_DB_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.Enabled = b
		}
	}

	if v := os.Getenv("WORKWATCH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Daemon configuration
	if v := os.Getenv("WORKWATCH_PID_FILE"); v != "" {
		cfg.Daemon.PIDFile = v
	}

	if v := os.Getenv("WORKWATCH_LOG_FILE"); v != "" {
		cfg.Daemon.LogFile = v
	}

	// Web configuration
	if v := os.Getenv("WORKWATCH_WEB_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Web.Enabled = b
		}
	}

	if v := os.Getenv("WORKWATCH_WEB_HOST"); v != "" {
		cfg.Web.Host = v
	}

	if v := os.Getenv("WORKWATCH_WEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}
}

// parseDuration accepts Go duration syntax ("1500ms") or a bare number of seconds.
func parseDuration(v string) (time.Duration, bool) {
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second, true
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

// New creates a Config from defaults, the config file, and the environment, in that order.
func New() *Config {
	cfg := Default()
	if err := LoadFile(cfg, FilePath()); err != nil {
		log.Printf("Ignoring config file: %v", err)
	}
	LoadFromEnv(cfg)
	return cfg
}
