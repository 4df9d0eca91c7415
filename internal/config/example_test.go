package config_test

import (
	"fmt"
	"time"

	"github.com/actionsum/workwatch/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Poll Interval:", cfg.Tracker.PollInterval)
	fmt.Println("Min Duration:", cfg.Tracker.MinDuration)
	fmt.Println("Grace Period:", cfg.Writer.GracePeriod)
	// Output:
	// Poll Interval: 1s
	// Min Duration: 5s
	// Grace Period: 2s
}

// Example of setting poll interval with validation
func ExampleConfig_SetPollInterval() {
	cfg := config.Default()

	if err := cfg.SetPollInterval(2 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Poll interval set to:", cfg.Tracker.PollInterval)
	}

	if err := cfg.SetPollInterval(10 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Poll interval set to: 2s
	// Error: poll interval cannot be less than 100ms
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}
