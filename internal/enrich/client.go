// Package enrich fetches read-time weather and distance data for events
// from a third-party HTTP API. Both lookups are single-attempt: any
// failure yields a fixed sentinel value instead of an error, so a broken
// or slow upstream degrades listings without failing them.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

// Sentinel fallbacks substituted when a lookup fails.
const (
	UnknownWeather  = "Unknown"
	UnknownDistance = float64(-1)
)

// Config holds the upstream endpoint and its per-route access codes,
// read from environment variables.
type Config struct {
	BaseURL      string
	WeatherCode  string
	DistanceCode string
}

// ConfigFromEnv reads enrichment config from well-known environment
// variables, falling back to the assignment's public endpoint.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:      getEnv("ENRICHMENT_BASE_URL", "https://gg-backend-assignment.azurewebsites.net/api"),
		WeatherCode:  getEnv("WEATHER_API_CODE", "KfQnTWHJbg1giyB_Q9Ih3Xu3L9QOBDTuU5zwqVikZepCAzFut3rqsg=="),
		DistanceCode: getEnv("DISTANCE_API_CODE", "IAKvV2EvJa6Z6dEIUqqd7yGAu7IZ8gaH-a0QO6btjRc1AzFu8Y3IcQ=="),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Client issues weather and distance lookups.
type Client struct {
	http *http.Client
	cfg  Config
}

// NewClient constructs a Client. A nil httpClient uses http.DefaultClient;
// no timeout is imposed beyond the client's own.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, cfg: cfg}
}

// Weather returns the weather for a city on a given date, or
// UnknownWeather if the lookup fails for any reason.
func (c *Client) Weather(ctx context.Context, city, date string) string {
	params := url.Values{}
	params.Set("code", c.cfg.WeatherCode)
	params.Set("city", city)
	params.Set("date", date)

	var payload struct {
		Weather string `json:"weather"`
	}
	if err := c.getJSON(ctx, "/Weather", params, &payload); err != nil {
		slog.Warn("weather lookup failed", "city", city, "date", date, "error", err)
		return UnknownWeather
	}
	if payload.Weather == "" {
		return UnknownWeather
	}
	return payload.Weather
}

// Distance returns the distance between two coordinate pairs, or
// UnknownDistance if the lookup fails for any reason.
func (c *Client) Distance(ctx context.Context, lat1, lon1, lat2, lon2 float64) float64 {
	params := url.Values{}
	params.Set("code", c.cfg.DistanceCode)
	params.Set("latitude1", formatFloat(lat1))
	params.Set("longitude1", formatFloat(lon1))
	params.Set("latitude2", formatFloat(lat2))
	params.Set("longitude2", formatFloat(lon2))

	var payload struct {
		Distance float64 `json:"distance"`
	}
	if err := c.getJSON(ctx, "/Distance", params, &payload); err != nil {
		slog.Warn("distance lookup failed", "error", err)
		return UnknownDistance
	}
	return payload.Distance
}

// getJSON issues one GET and decodes the JSON body into dst.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
