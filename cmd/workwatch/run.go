package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/workwatch/internal/config"
	"github.com/actionsum/workwatch/internal/daemon"
)

type runOptions struct {
	interval     time.Duration
	activityFile string
	web          bool
	port         int
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().DurationVarP(&o.interval, "interval", "i", 0, "Pause between samples (overrides config)")
	cmd.Flags().StringVarP(&o.activityFile, "output", "o", "", "Activity CSV file (overrides config)")
	cmd.Flags().BoolVar(&o.web, "web", false, "Serve the JSON API while tracking")
	cmd.Flags().IntVar(&o.port, "port", 0, "Web API port (overrides config)")
}

func (o *runOptions) apply(cfg *config.Config) error {
	if o.interval > 0 {
		if err := cfg.SetPollInterval(o.interval); err != nil {
			return err
		}
	}
	if o.activityFile != "" {
		cfg.Log.ActivityFile = o.activityFile
	}
	if o.web {
		cfg.Web.Enabled = true
	}
	if o.port > 0 {
		if err := cfg.SetWebPort(o.port); err != nil {
			return err
		}
	}
	return nil
}

func runCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Track in the foreground until Ctrl+C or q+Enter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cfg); err != nil {
				return err
			}
			return runConsole(cfg)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runConsole(cfg *config.Config) error {
	p, err := openPipeline(cfg)
	if err != nil {
		fmt.Printf("%s failed to start: %v\n", appName, err)
		return err
	}
	defer p.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go watchStdin(stop)

	fmt.Printf("%s is tracking. Press q and Enter or Ctrl+C to stop.\n", appName)

	if err := p.run(ctx); err != nil {
		fmt.Printf("%s stopped after a fatal error: %v\n", appName, err)
		return err
	}

	fmt.Printf("%s stopped.\n", appName)
	return nil
}

// watchStdin calls stop when the user types q. EOF on stdin is ignored so
// the tracker keeps running when detached from a terminal.
func watchStdin(stop func()) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "q") {
			stop()
			return
		}
	}
}

func startCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start tracking as a background daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cfg); err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			if os.Getenv(childEnv) == "1" {
				return runDaemon(cfg, dm)
			}

			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}
			if running {
				return fmt.Errorf("daemon is already running (PID: %d)", pid)
			}
			return daemonize(cfg)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon) error {
	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	if err := dm.Acquire(); err != nil {
		log.Printf("Failed to write PID file: %v", err)
		return err
	}
	defer dm.RemovePID()

	p, err := openPipeline(cfg)
	if err != nil {
		log.Printf("Failed to start: %v", err)
		return err
	}
	defer p.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting %s daemon...", appName)
	log.Printf("Configuration:\n%s", cfg.String())

	if err := p.run(ctx); err != nil {
		log.Printf("Tracker error: %v", err)
		return err
	}

	log.Println("Daemon stopped successfully")
	return nil
}

// daemonize re-executes the binary detached from the terminal.
func daemonize(cfg *config.Config) error {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	procAttr := &os.ProcAttr{
		Env:   append(os.Environ(), childEnv+"=1"),
		Files: []*os.File{nil, nil, nil},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	process, err := os.StartProcess(exe, os.Args, procAttr)
	if err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	fmt.Printf("Daemon started successfully (PID: %d)\n", process.Pid)
	if cfg.Web.Enabled {
		fmt.Printf("Web API available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	fmt.Printf("Activity log: %s\n", cfg.Log.ActivityFile)
	fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
	return process.Release()
}
