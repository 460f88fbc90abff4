// Package smoke exercises a running items service end to end.
package smoke

import (
	"time"

	"github.com/okian/items/pkg/logger"
)

// Config holds configuration for the smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	NumItems int           // Number of items to create
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Keep     bool          // Leave created items in place
	LogFile  string        // Log file for test output
	Verbose  bool          // Enable verbose logging

	Logger logger.Logger
}

// Stats holds run statistics.
type Stats struct {
	ItemsGenerated int
	ItemsCreated   int
	ItemsFailed    int
	ItemsListed    int
	ItemsDeleted   int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

func (c *Config) log() logger.Logger {
	if c.Logger == nil {
		return logger.Nop()
	}
	return c.Logger
}
