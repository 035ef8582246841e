// Package geocode implements a thin best-effort client for the Google
// Geocoding API, used to enrich customer-provided addresses. No retry or
// circuit breaker: a failure here degrades gracefully to an unenriched address.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultTimeout = 5 * time.Second
)

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Client geocodes free-text addresses via the Google Geocoding API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New builds a Client. An empty apiKey disables geocoding entirely.
func New(apiKey string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve geocodes a free-text address, returning the first match.
// Returns (nil, nil) when geocoding is disabled or yields no match.
func (c *Client) Resolve(ctx context.Context, address string) (*Coordinates, error) {
	if c.apiKey == "" || address == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s?address=%s&key=%s", c.baseURL, url.QueryEscape(address), c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed geocodeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != "OK" || len(parsed.Results) == 0 {
		return nil, nil
	}

	loc := parsed.Results[0].Geometry.Location
	return &Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
