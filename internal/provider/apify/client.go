// Package apify talks to the Apify platform: it starts actor runs, polls
// them to completion, and fetches the resulting dataset items.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"jobradar/internal/config"
	"jobradar/internal/logging"
	"jobradar/internal/logging/types"
	"jobradar/pkg/utils"
)

// Record is one dataset item as returned by an actor. Every actor returns a
// different shape, so items stay untyped until a source adapter maps them.
type Record map[string]interface{}

// Runner starts an actor and returns its dataset once the run finishes.
// Source adapters depend on this interface so tests can stub the platform.
type Runner interface {
	RunActor(ctx context.Context, actorID string, input interface{}) ([]Record, error)
}

// Client is the HTTP client for the Apify v2 API.
type Client struct {
	config     *config.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     types.Logger
}

// runResponse is the envelope around a newly started actor run.
type runResponse struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

// NewClient creates an Apify client from configuration.
func NewClient(cfg *config.Config) *Client {
	logger := logging.GetGlobalLogger()

	// Submissions are rate limited per minute to stay under the platform's
	// actor concurrency quota
	perMinute := cfg.Apify.RateLimit
	if perMinute <= 0 {
		perMinute = 30
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Apify.RequestTimeout,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// RunActor starts the actor with the given input, polls the run until it
// reaches a terminal state, and returns the dataset items. The poll budget is
// PollInterval x MaxPollAttempts; exhausting it is a timeout error.
func (c *Client) RunActor(ctx context.Context, actorID string, input interface{}) ([]Record, error) {
	if c.config.Apify.Token == "" {
		return nil, utils.NewConfigError("APIFY_TOKEN is not set")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	startTime := time.Now()

	runID, err := c.startRun(ctx, actorID, input)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Actor run started", map[string]interface{}{
		"actor_id": actorID,
		"run_id":   runID,
	})

	status, err := c.waitForRun(ctx, actorID, runID)
	if err != nil {
		return nil, err
	}

	if status != "SUCCEEDED" {
		return nil, utils.NewProviderStatusError(
			fmt.Sprintf("actor %s run %s finished with status %s", actorID, runID, status))
	}

	items, err := c.fetchDataset(ctx, runID)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Actor run completed", map[string]interface{}{
		"actor_id":        actorID,
		"run_id":          runID,
		"items":           len(items),
		"processing_time": time.Since(startTime).String(),
	})

	return items, nil
}

// startRun submits the actor run and returns the platform run id.
func (c *Client) startRun(ctx context.Context, actorID string, input interface{}) (string, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal actor input: %w", err)
	}

	apiURL := fmt.Sprintf("%s/acts/%s/runs?token=%s",
		c.config.Apify.BaseURL, actorID, c.config.Apify.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to start actor %s: %w", actorID, err)
	}

	var run runResponse
	if err := json.Unmarshal(body, &run); err != nil {
		return "", fmt.Errorf("failed to parse run response: %w", err)
	}
	if run.Data.ID == "" {
		return "", fmt.Errorf("actor %s run response had no run id", actorID)
	}

	return run.Data.ID, nil
}

// waitForRun polls the run until it leaves RUNNING/READY or the attempt
// budget is spent, and returns the terminal status.
func (c *Client) waitForRun(ctx context.Context, actorID, runID string) (string, error) {
	ticker := time.NewTicker(c.config.Apify.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.config.Apify.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		status, err := c.runStatus(ctx, runID)
		if err != nil {
			return "", err
		}

		if status != "RUNNING" && status != "READY" {
			return status, nil
		}

		if attempt%12 == 0 {
			c.logger.Debug("Actor run still in progress", map[string]interface{}{
				"actor_id": actorID,
				"run_id":   runID,
				"attempt":  attempt,
			})
		}
	}

	return "", utils.NewProviderTimeoutError(
		fmt.Sprintf("actor %s run %s did not finish within %d poll attempts", actorID, runID, c.config.Apify.MaxPollAttempts))
}

// runStatus fetches the current status string of a run.
func (c *Client) runStatus(ctx context.Context, runID string) (string, error) {
	apiURL := fmt.Sprintf("%s/actor-runs/%s?token=%s",
		c.config.Apify.BaseURL, runID, c.config.Apify.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create status request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to poll run %s: %w", runID, err)
	}

	var run runResponse
	if err := json.Unmarshal(body, &run); err != nil {
		return "", fmt.Errorf("failed to parse run status: %w", err)
	}

	return run.Data.Status, nil
}

// fetchDataset downloads the dataset items of a finished run.
func (c *Client) fetchDataset(ctx context.Context, runID string) ([]Record, error) {
	apiURL := fmt.Sprintf("%s/actor-runs/%s/dataset/items?token=%s",
		c.config.Apify.BaseURL, runID, c.config.Apify.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset for run %s: %w", runID, err)
	}

	var items []Record
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to parse dataset items: %w", err)
	}

	return items, nil
}

// do executes the request and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("apify API returned status %d: %s", resp.StatusCode, utils.Truncate(string(body), 200))
	}

	return body, nil
}

// IsHealthy reports whether the client has the configuration it needs.
func (c *Client) IsHealthy() bool {
	return c.config.Apify.Token != "" && c.config.Apify.BaseURL != ""
}

// Cleanup releases idle connections.
func (c *Client) Cleanup() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}
