package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/workwatch/internal/daemon"
	"github.com/actionsum/workwatch/internal/database"
	"github.com/actionsum/workwatch/pkg/detector"
	"github.com/actionsum/workwatch/pkg/utils"
)

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background daemon and wait for it to drain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}
			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
			timeout := cfg.Writer.GracePeriod + cfg.Tracker.PollInterval + 5*time.Second
			if err := dm.Stop(timeout); err != nil {
				if errors.Is(err, daemon.ErrNotRunning) {
					fmt.Println("Daemon is not running")
					return nil
				}
				return fmt.Errorf("failed to stop daemon: %w", err)
			}

			fmt.Println("Daemon stopped successfully")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the latest recorded session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dm := daemon.New(cfg.Daemon.PIDFile)
			running, pid, err := dm.IsRunning()
			if err != nil {
				return fmt.Errorf("failed to check daemon status: %w", err)
			}

			if running {
				fmt.Printf("Status: Running (PID: %d)\n", pid)
			} else {
				fmt.Println("Status: Not running")
			}
			fmt.Printf("Poll Interval: %v\n", cfg.Tracker.PollInterval)
			fmt.Printf("Activity Log: %s\n", cfg.Log.ActivityFile)

			if !cfg.Database.Enabled {
				return nil
			}

			db, err := database.Connect(cfg.Database.Path)
			if err != nil {
				fmt.Printf("\nDatabase unavailable: %v\n", err)
				return nil
			}
			defer db.Close()

			latest, err := database.NewRepository(db).GetLatest()
			if err != nil || latest == nil {
				return nil
			}

			fmt.Printf("\nLatest Session:\n")
			fmt.Printf("  Process:  %s\n", latest.ProcessName)
			fmt.Printf("  Title:    %s\n", latest.WindowTitle)
			fmt.Printf("  Ended:    %s\n", latest.EndedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("  Duration: %s\n", utils.FormatClock(latest.Duration))
			return nil
		},
	}
}

func probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Print the currently focused window once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Display server: %s\n", detector.DetectDisplayServer())

			det, err := detector.New()
			if err != nil {
				return fmt.Errorf("could not create window detector: %w", err)
			}
			defer det.Close()

			w, err := det.FocusedWindow()
			if err != nil {
				return fmt.Errorf("could not detect focused window: %w", err)
			}
			if w == nil {
				fmt.Println("No titled window has focus")
				return nil
			}

			fmt.Printf("Detector: %s\n", det.DisplayServer())
			fmt.Printf("  Process: %s\n", det.ProcessName(w))
			fmt.Printf("  Title:   %s\n", w.Title)
			if w.Class != "" {
				fmt.Printf("  Class:   %s\n", w.Class)
			}
			if w.PID > 0 {
				fmt.Printf("  PID:     %d\n", w.PID)
			}
			return nil
		},
	}
}
