// Package client is an HTTP client for the expdeck API, used by the CLI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/expdeck/expdeck/internal/evaluation"
	"github.com/expdeck/expdeck/internal/snapshot"
	"github.com/expdeck/expdeck/internal/store"
)

// Client is an HTTP client for the expdeck API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type snapshotResponse struct {
	ETag        string                             `json:"etag"`
	Experiments map[string]snapshot.ExperimentView `json:"experiments"`
}

type evaluateResponse struct {
	Results []evaluation.Result `json:"results"`
	ETag    string              `json:"etag"`
}

// CreateExperiment creates or updates an experiment.
func (c *Client) CreateExperiment(ctx context.Context, params store.UpsertParams) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/experiments", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}
	return nil
}

// DeleteExperiment removes an experiment by key.
func (c *Client) DeleteExperiment(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/v1/experiments/"+key, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// ListExperiments retrieves all experiments in the server's snapshot.
func (c *Client) ListExperiments(ctx context.Context) ([]snapshot.ExperimentView, error) {
	snap, err := c.fetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	experiments := make([]snapshot.ExperimentView, 0, len(snap.Experiments))
	for _, exp := range snap.Experiments {
		experiments = append(experiments, exp)
	}
	return experiments, nil
}

// GetExperiment retrieves a single experiment by key.
func (c *Client) GetExperiment(ctx context.Context, key string) (*snapshot.ExperimentView, error) {
	snap, err := c.fetchSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	exp, ok := snap.Experiments[key]
	if !ok {
		return nil, fmt.Errorf("experiment not found: %s", key)
	}
	return &exp, nil
}

// Evaluate evaluates experiments for a subject on the server.
func (c *Client) Evaluate(ctx context.Context, subject evaluation.Context, keys []string) ([]evaluation.Result, error) {
	payload := struct {
		Subject evaluation.Context `json:"subject"`
		Keys    []string           `json:"keys,omitempty"`
	}{Subject: subject, Keys: keys}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/evaluate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var result evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Results, nil
}

func (c *Client) fetchSnapshot(ctx context.Context) (*snapshotResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/experiments/snapshot", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var snap snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &snap, nil
}

func apiError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(bodyBytes))
}
