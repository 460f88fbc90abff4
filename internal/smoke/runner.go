package smoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/items/pkg/logger"
)

// ErrCreateFailed is returned when some items could not be created.
var ErrCreateFailed = errors.New("item creation failed")

// Run executes the complete smoke test and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}
	log := config.log()
	if config.Workers < 1 {
		config.Workers = 1
	}

	log.Info(ctx, "starting items smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("items", config.NumItems),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("keep", config.Keep))

	client := NewHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Create items concurrently
	inputs := generateItems(config.NumItems, stats)
	created := createItems(ctx, config, client, inputs, stats)
	if stats.ItemsFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrCreateFailed, stats.ItemsFailed, len(inputs))
	}

	// Step 3: List and verify
	listed, err := client.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list failed: %w", err)
	}
	stats.ItemsListed = len(listed)
	if err := verifyCreated(ctx, config, inputs, created, listed); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 4: Delete and verify
	if !config.Keep {
		if err := deleteItems(ctx, config, client, created, stats); err != nil {
			return stats, fmt.Errorf("delete failed: %w", err)
		}
		listed, err := client.List(ctx)
		if err != nil {
			return stats, fmt.Errorf("list after delete failed: %w", err)
		}
		if err := verifyDeleted(created, listed); err != nil {
			return stats, fmt.Errorf("delete verification failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	log.Info(ctx, "smoke test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config, client *HTTPClient) error {
	config.log().Info(ctx, "checking service health")

	h, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if h.Status != "OK" {
		return fmt.Errorf("service reported status %q", h.Status)
	}

	config.log().Info(ctx, "service is healthy", logger.String("message", h.Message))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, itemsPerSecond float64

	if stats.ItemsGenerated > 0 {
		successRate = float64(stats.ItemsCreated) / float64(stats.ItemsGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		itemsPerSecond = float64(stats.ItemsCreated) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("itemsGenerated", stats.ItemsGenerated),
		logger.Int("itemsCreated", stats.ItemsCreated),
		logger.Int("itemsFailed", stats.ItemsFailed),
		logger.Int("itemsListed", stats.ItemsListed),
		logger.Int("itemsDeleted", stats.ItemsDeleted),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("itemsPerSecond", itemsPerSecond))
}
