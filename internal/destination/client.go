package destination

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const httpTimeout = 30 * time.Second

// ErrSupplierLookup marks any supplier lookup failure: network error,
// non-2xx status, or a payload without the success flag. The underlying
// cause is wrapped alongside it. The client never retries.
var ErrSupplierLookup = errors.New("supplier lookup failed")

const supplierDefaultURL = "http://uat-apiv2.giinfotech.ae/api/v2/hotel"

// SupplierClient calls the supplier's destination and country lookup
// endpoints. Pure request/response, no state beyond configuration.
type SupplierClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewSupplierClient constructs a SupplierClient against the production supplier URL.
func NewSupplierClient(apiKey string) *SupplierClient {
	return &SupplierClient{apiKey: apiKey, baseURL: supplierDefaultURL, client: &http.Client{Timeout: httpTimeout}}
}

// NewSupplierClientWithURL constructs a SupplierClient pointing at a custom base URL (for tests).
func NewSupplierClientWithURL(baseURL, apiKey string) *SupplierClient {
	return &SupplierClient{apiKey: apiKey, baseURL: baseURL, client: &http.Client{Timeout: httpTimeout}}
}

// envelope is the supplier's response wrapper shared by all endpoints.
type envelope struct {
	IsSuccess        bool            `json:"isSuccess"`
	StatusCode       int             `json:"statusCode"`
	ExceptionMessage string          `json:"exceptionMessage"`
	Data             json.RawMessage `json:"data"`
}

// destinationInfoRequest is the typed request for /destination-info.
type destinationInfoRequest struct {
	Destination string `json:"destination"`
}

// countryInfoRequest is the typed request for /country-info.
type countryInfoRequest struct {
	CountryCode string `json:"countryCode"`
}

// CityEntry is one row of a country-info response: the destination id and
// the city name. Country name is not returned by this call; it is resolved
// from the static code table instead.
type CityEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// doPost sends a JSON POST and decodes the envelope's data field into dst.
func (c *SupplierClient) doPost(ctx context.Context, path string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("POST %s returned status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}

	if !env.IsSuccess {
		return fmt.Errorf("%s rejected: status %d: %s", path, env.StatusCode, env.ExceptionMessage)
	}

	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decoding data from %s: %w", path, err)
	}

	return nil
}

// DestinationInfo looks up destinations matching the given free text.
func (c *SupplierClient) DestinationInfo(ctx context.Context, text string) ([]Projection, error) {
	var results []Projection
	if err := c.doPost(ctx, "/destination-info", destinationInfoRequest{Destination: text}, &results); err != nil {
		return nil, fmt.Errorf("destination lookup for %q: %w: %w", text, ErrSupplierLookup, err)
	}
	return results, nil
}

// CountryInfo lists all known cities for the given ISO-2 country code.
func (c *SupplierClient) CountryInfo(ctx context.Context, countryCode string) ([]CityEntry, error) {
	var results []CityEntry
	if err := c.doPost(ctx, "/country-info", countryInfoRequest{CountryCode: countryCode}, &results); err != nil {
		return nil, fmt.Errorf("country lookup for %q: %w: %w", countryCode, ErrSupplierLookup, err)
	}
	return results, nil
}
