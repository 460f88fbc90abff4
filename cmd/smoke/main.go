package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/items/internal/smoke"
	"github.com/okian/items/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumItems    = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:5000", "Base URL of the service")
		numItems = flag.Int("items", defaultNumItems, "Number of items to create")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		keep     = flag.Bool("keep", false, "Leave the created items in place")
		logFile  = flag.String("log", "", "Log file for test output (default: smoke_log_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	path, err := smoke.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:  *baseURL,
		NumItems: *numItems,
		Workers:  *workers,
		Timeout:  *timeout,
		Keep:     *keep,
		LogFile:  path,
		Verbose:  *verbose,
		Logger:   logger.Named("smoke"),
	}

	if _, err := smoke.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "smoke test failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
