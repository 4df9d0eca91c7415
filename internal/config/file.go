package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig mirrors the TOML config file. Pointer fields distinguish
// "unset" from zero values so only present keys override defaults.
type FileConfig struct {
	Tracker struct {
		PollInterval *string `toml:"poll-interval"`
		MinDuration  *string `toml:"min-duration"`
	} `toml:"tracker"`
	Writer struct {
		IdleInterval *string `toml:"idle-interval"`
		GracePeriod  *string `toml:"grace-period"`
		QueueLimit   *int    `toml:"queue-limit"`
	} `toml:"writer"`
	Log struct {
		ActivityFile *string `toml:"activity-file"`
		ErrorDir     *string `toml:"error-dir"`
		ErrorPrefix  *string `toml:"error-prefix"`
	} `toml:"log"`
	Database struct {
		Enabled *bool   `toml:"enabled"`
		Path    *string `toml:"path"`
	} `toml:"database"`
	Daemon struct {
		PIDFile *string `toml:"pid-file"`
		LogFile *string `toml:"log-file"`
	} `toml:"daemon"`
	Web struct {
		Enabled *bool   `toml:"enabled"`
		Host    *string `toml:"host"`
		Port    *int    `toml:"port"`
	} `toml:"web"`
}

// FilePath returns WORKWATCH_CONFIG or the XDG default location.
func FilePath() string {
	if v := os.Getenv("WORKWATCH_CONFIG"); v != "" {
		return v
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return "workwatch.toml"
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "workwatch", "config.toml")
}

// LoadFile applies the TOML file at path onto cfg. A missing file is not an error.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat config: %w", err)
	}

	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) error {
	durations := []struct {
		key string
		src *string
		dst *time.Duration
	}{
		{"tracker.poll-interval", fc.Tracker.PollInterval, &cfg.Tracker.PollInterval},
		{"tracker.min-duration", fc.Tracker.MinDuration, &cfg.Tracker.MinDuration},
		{"writer.idle-interval", fc.Writer.IdleInterval, &cfg.Writer.IdleInterval},
		{"writer.grace-period", fc.Writer.GracePeriod, &cfg.Writer.GracePeriod},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, ok := parseDuration(*d.src)
		if !ok {
			return fmt.Errorf("invalid duration for %s: %q", d.key, *d.src)
		}
		*d.dst = v
	}

	setInt(&cfg.Writer.QueueLimit, fc.Writer.QueueLimit)
	setString(&cfg.Log.ActivityFile, fc.Log.ActivityFile)
	setString(&cfg.Log.ErrorDir, fc.Log.ErrorDir)
	setString(&cfg.Log.ErrorPrefix, fc.Log.ErrorPrefix)
	setBool(&cfg.Database.Enabled, fc.Database.Enabled)
	setString(&cfg.Database.Path, fc.Database.Path)
	setString(&cfg.Daemon.PIDFile, fc.Daemon.PIDFile)
	setString(&cfg.Daemon.LogFile, fc.Daemon.LogFile)
	setBool(&cfg.Web.Enabled, fc.Web.Enabled)
	setString(&cfg.Web.Host, fc.Web.Host)
	setInt(&cfg.Web.Port, fc.Web.Port)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
