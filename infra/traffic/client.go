// Package traffic implements the external driving distance/duration lookup
// consumed by the station scorer. Failures are expected: callers degrade to
// a neutral score rather than surfacing them.
package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/NJ2612/ev-charge-optimizer/core/model"
	"github.com/NJ2612/ev-charge-optimizer/core/scoring"
)

// Config defines the connection parameters for the traffic service.
type Config struct {
	BaseURL        string `json:"base_url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 5
	}
}

// Client queries a distance-matrix style endpoint over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type matrixResponse struct {
	DistanceMeters           float64 `json:"distance_meters"`
	DurationInTrafficSeconds float64 `json:"duration_in_traffic_seconds"`
}

// NewClient creates a Client from the configuration.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// DistanceDuration fetches driving distance and in-traffic duration between
// the two coordinates.
func (c *Client) DistanceDuration(ctx context.Context, origin, destination model.Coord) (scoring.DistanceDuration, error) {
	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	q.Set("departure_time", "now")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return scoring.DistanceDuration{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return scoring.DistanceDuration{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return scoring.DistanceDuration{}, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return scoring.DistanceDuration{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return scoring.DistanceDuration{
		DistanceMeters:  mr.DistanceMeters,
		DurationSeconds: mr.DurationInTrafficSeconds,
	}, nil
}
