// Package client is the device-side HTTP client used by the session runner.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// Client talks to the RepCoach server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// New creates an HTTP client for the RepCoach server.
func New(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchActiveRoutine retrieves the athlete's active assigned routine.
func (c *Client) FetchActiveRoutine(ctx context.Context, athleteID string) (*models.AssignedRoutine, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/athletes/%s/routine", c.serverURL, athleteID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching routine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("routine request failed (status %d): %s", resp.StatusCode, body)
	}

	routine := &models.AssignedRoutine{}
	if err := json.NewDecoder(resp.Body).Decode(routine); err != nil {
		return nil, fmt.Errorf("decoding routine: %w", err)
	}
	return routine, nil
}

// Submit POSTs a finalized TrainingLog to the server. Retries up to 3 times
// with exponential backoff; the session id makes retried submits idempotent
// server-side.
func (c *Client) Submit(ctx context.Context, log *models.TrainingLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshaling log: %w", err)
	}
	return c.SubmitRaw(ctx, data)
}

// SubmitRaw sends an already-serialized finalize payload. Used when flushing
// the offline retry queue.
func (c *Client) SubmitRaw(ctx context.Context, payload []byte) error {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.serverURL+"/api/v1/logs/", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			return nil
		}
		lastErr = fmt.Errorf("log submit failed (status %d): %s", resp.StatusCode, body)
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}
