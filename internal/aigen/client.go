// Package aigen calls the external routine-text generator. The output is
// opaque structured data: only its shape is checked here, at the boundary,
// never its semantic correctness.
package aigen

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

// Client talks to the text-generation service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a generator client. Returns nil when baseURL is empty,
// which disables generation.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// DraftRequest describes the routine the coach wants generated.
type DraftRequest struct {
	Goal         string `json:"goal"`
	DaysPerWeek  int    `json:"days_per_week"`
	Experience   string `json:"experience,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// draftResponse mirrors the generator's wire shape.
type draftResponse struct {
	Name string               `json:"name"`
	Type models.RoutineType   `json:"type"`
	Days []models.ScheduleDay `json:"days"`
}

// GenerateDraft requests a routine draft and validates its shape: a name and
// 1-7 days. Nothing deeper is inspected.
func (c *Client) GenerateDraft(ctx context.Context, req DraftRequest) (*models.RoutineTemplate, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling draft request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/routine-drafts", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building draft request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generator failed (status %d): %s", resp.StatusCode, body)
	}

	var draft draftResponse
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}

	if draft.Name == "" {
		return nil, fmt.Errorf("generator returned a draft with no name")
	}
	if len(draft.Days) < 1 || len(draft.Days) > 7 {
		return nil, fmt.Errorf("generator returned %d days, want 1-7", len(draft.Days))
	}
	if draft.Type == "" {
		if len(draft.Days) == 1 {
			draft.Type = models.RoutineDaily
		} else {
			draft.Type = models.RoutineWeekly
		}
	}

	return &models.RoutineTemplate{
		Name: draft.Name,
		Type: draft.Type,
		Days: draft.Days,
	}, nil
}
