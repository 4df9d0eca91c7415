package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/actionsum/workwatch/internal/database"
	"github.com/actionsum/workwatch/internal/reporter"
)

func openRepository() (*database.Repository, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return database.NewRepository(db), func() { db.Close() }, nil
}

func reportCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:       "report [day|week|month]",
		Short:     "Show time per process for a period",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "today", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType := "day"
			if len(args) > 0 {
				periodType = args[0]
			}

			repo, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			report, err := reporter.New(repo).GenerateReport(periodType)
			if err != nil {
				return err
			}

			if jsonOutput {
				out, err := reporter.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}
			fmt.Print(reporter.FormatReportText(report))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

func errorsCmd() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "errors",
		Short: "List errors mirrored to the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			logs, err := repo.GetErrorLogsSince(time.Now().Add(-since))
			if err != nil {
				return err
			}
			if len(logs) == 0 {
				fmt.Printf("No errors in the last %v\n", since)
				return nil
			}

			for _, l := range logs {
				fmt.Printf("%s - %s: %s\n", l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.Kind, l.ErrorMsg)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "How far back to look")
	return cmd
}

func clearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all sessions from the database (the CSV log is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Print("This will delete all stored sessions. Are you sure? (yes/no): ")
				var response string
				fmt.Scanln(&response)
				response = strings.ToLower(strings.TrimSpace(response))
				if response != "yes" && response != "y" {
					fmt.Println("Operation cancelled")
					return nil
				}
			}

			repo, closeDB, err := openRepository()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.Clear(); err != nil {
				return err
			}
			fmt.Println("Database cleared successfully")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
