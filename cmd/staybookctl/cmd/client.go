package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avelkov/staybook/internal/destination"
)

// apiClient talks to the staybook server. It satisfies the search input's
// Resolver and SelectionNotifier interfaces.
type apiClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{baseURL: baseURL, token: token, client: &http.Client{Timeout: 30 * time.Second}}
}

type autocompleteResponse struct {
	Destinations []destination.Projection `json:"destinations"`
}

// Resolve calls the autocomplete endpoint.
func (c *apiClient) Resolve(ctx context.Context, query string) ([]destination.Projection, error) {
	endpoint := c.baseURL + "/api/v1/destinations/autocomplete?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating autocomplete request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET autocomplete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("autocomplete returned status %d", resp.StatusCode)
	}

	var body autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding autocomplete response: %w", err)
	}

	return body.Destinations, nil
}

// NotifySelection posts a selection event to the analytics endpoint.
func (c *apiClient) NotifySelection(ctx context.Context, destinationID string) error {
	payload, err := json.Marshal(map[string]string{
		"destinationId": destinationID,
		"action":        "select",
	})
	if err != nil {
		return fmt.Errorf("marshaling selection event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/destinations/analytics", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST analytics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analytics returned status %d", resp.StatusCode)
	}

	return nil
}

type seedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Seed triggers a seeding run for the given country code.
func (c *apiClient) Seed(ctx context.Context, countryCode string) (seedResponse, error) {
	payload, err := json.Marshal(map[string]string{"countryCode": countryCode})
	if err != nil {
		return seedResponse{}, fmt.Errorf("marshaling seed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/destinations/seed", bytes.NewReader(payload))
	if err != nil {
		return seedResponse{}, fmt.Errorf("creating seed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return seedResponse{}, fmt.Errorf("POST seed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return seedResponse{}, fmt.Errorf("seed returned status %d", resp.StatusCode)
	}

	var body seedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return seedResponse{}, fmt.Errorf("decoding seed response: %w", err)
	}

	return body, nil
}
