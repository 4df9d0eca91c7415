// Package process resolves process names from pids through /proc.
package process

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/actionsum/workwatch/pkg/window"
)

// Resolver maps pids to process names. Root is the procfs mount point.
type Resolver struct {
	Root string
}

// NewResolver returns a resolver reading from /proc.
func NewResolver() *Resolver {
	return &Resolver{Root: "/proc"}
}

// IsAvailable checks that procfs is mounted
func (r *Resolver) IsAvailable() bool {
	_, err := os.Stat(r.Root)
	return err == nil
}

// NameForPID returns the short process name, falling back to the executable
// basename from cmdline, and window.UnknownProcess when neither can be read.
func (r *Resolver) NameForPID(pid int) string {
	if pid <= 0 {
		return window.UnknownProcess
	}
	dir := filepath.Join(r.Root, strconv.Itoa(pid))

	if data, err := os.ReadFile(filepath.Join(dir, "comm")); err == nil {
		if name := strings.TrimSpace(string(data)); name != "" {
			return name
		}
	}

	if data, err := os.ReadFile(filepath.Join(dir, "cmdline")); err == nil {
		if name := parseCmdline(data); name != "" {
			return name
		}
	}

	return window.UnknownProcess
}

// parseCmdline extracts the executable basename from a NUL separated cmdline.
func parseCmdline(data []byte) string {
	arg0, _, _ := strings.Cut(string(data), "\x00")
	arg0 = strings.TrimSpace(arg0)
	if arg0 == "" {
		return ""
	}
	return filepath.Base(arg0)
}

// NameForPIDString is NameForPID for pids read from tool output.
func (r *Resolver) NameForPIDString(pid string) string {
	n, err := strconv.Atoi(strings.TrimSpace(pid))
	if err != nil {
		return window.UnknownProcess
	}
	return r.NameForPID(n)
}
