package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/items/internal/domain/model"
	"github.com/okian/items/pkg/logger"
)

// Client errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client with timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON response into out when the status
// matches want.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, want int) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrUnexpectedStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Health is the payload of GET /api/health.
type Health struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Health calls GET /api/health.
func (c *HTTPClient) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h, http.StatusOK)
	return h, err
}

// List calls GET /api/items.
func (c *HTTPClient) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := c.do(ctx, http.MethodGet, "/api/items", nil, &items, http.StatusOK)
	return items, err
}

// Create calls POST /api/items.
func (c *HTTPClient) Create(ctx context.Context, in model.NewItem) (model.Item, error) {
	var item model.Item
	err := c.do(ctx, http.MethodPost, "/api/items", in, &item, http.StatusCreated)
	return item, err
}

// Delete calls DELETE /api/items/{id}.
func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+id, nil, nil, http.StatusOK)
}

// createItems submits items concurrently using a worker pool. The result is
// indexed like items; failed slots hold the zero Item.
func createItems(ctx context.Context, config *Config, client *HTTPClient, items []model.NewItem, stats *Stats) []model.Item {
	log := config.log()
	log.Info(ctx, "creating items", logger.Int("items", len(items)), logger.Int("workers", config.Workers))

	var (
		created   int64
		failed    int64
		submitted int64
	)
	results := make([]model.Item, len(items))

	var lastReport atomic.Int64
	jobs := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				item, err := client.Create(ctx, items[i])
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "create failed", logger.Int("index", i), logger.Error(err))
					continue
				}
				results[i] = item
				atomic.AddInt64(&created, 1)

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if config.Verbose && now-last >= int64(ProgressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int64("submitted", atomic.LoadInt64(&submitted)),
						logger.Int("total", len(items)),
						logger.Int64("failed", atomic.LoadInt64(&failed)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range items {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()

	stats.ItemsCreated = int(atomic.LoadInt64(&created))
	stats.ItemsFailed = int(atomic.LoadInt64(&failed))

	log.Info(ctx, "item creation completed",
		logger.Int("created", stats.ItemsCreated),
		logger.Int("failed", stats.ItemsFailed))
	return results
}

// deleteItems removes the created items concurrently.
func deleteItems(ctx context.Context, config *Config, client *HTTPClient, created []model.Item, stats *Stats) error {
	var (
		deleted  int64
		firstErr error
		errOnce  sync.Once
	)
	jobs := make(chan string, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := client.Delete(ctx, id); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				atomic.AddInt64(&deleted, 1)
			}
		}()
	}

	for _, item := range created {
		if item.ID == "" {
			continue
		}
		jobs <- item.ID
	}
	close(jobs)
	wg.Wait()

	stats.ItemsDeleted = int(atomic.LoadInt64(&deleted))
	config.log().Info(ctx, "item deletion completed", logger.Int("deleted", stats.ItemsDeleted))
	return firstErr
}
