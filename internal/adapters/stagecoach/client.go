package stagecoach

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/calummacrae/buswatch/internal/core/domain"
)

// DefaultBaseURL is the public Stagecoach vehicle-tracking endpoint.
const DefaultBaseURL = "https://api.stagecoach-technology.net/vehicle-tracking/v1/vehicles"

// clientVersion identifies us to the tracking API the same way the
// official app does; the endpoint rejects requests without it.
const clientVersion = "UKBUS_APP"

// Config holds the feed endpoint and the fixed query area.
type Config struct {
	BaseURL      string
	Lat          float64
	Lng          float64
	RadiusMeters int
	Timeout      time.Duration
}

// Client fetches live vehicle positions from the Stagecoach tracking API.
type Client struct {
	baseURL    string
	lat        float64
	lng        float64
	radius     int
	httpClient *http.Client
}

// NewClient creates a new Client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		lat:        cfg.Lat,
		lng:        cfg.Lng,
		radius:     cfg.RadiusMeters,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Wire types. Coordinates arrive string-encoded.
type serviceEntry struct {
	ServiceNumber      string `json:"serviceNumber"`
	ServiceDescription string `json:"serviceDescription"`
	Latitude           string `json:"latitude"`
	Longitude          string `json:"longitude"`
}

type vehiclesResponse struct {
	Services []serviceEntry `json:"services"`
}

// Fetch returns every vehicle the API currently reports inside the
// configured area. A missing services field means no vehicles, not an
// error. Entries whose coordinates do not parse are skipped; missing
// service fields fall back to placeholder text.
func (c *Client) Fetch(ctx context.Context) ([]domain.Vehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, c.baseURL)
	}

	var payload vehiclesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	vehicles := make([]domain.Vehicle, 0, len(payload.Services))
	for _, s := range payload.Services {
		lat, latErr := strconv.ParseFloat(s.Latitude, 64)
		lng, lngErr := strconv.ParseFloat(s.Longitude, 64)
		if latErr != nil || lngErr != nil {
			slog.Debug("skipping vehicle with unparseable coordinates",
				"service", s.ServiceNumber,
				"latitude", s.Latitude,
				"longitude", s.Longitude)
			continue
		}

		number := s.ServiceNumber
		if number == "" {
			number = "Unknown"
		}
		description := s.ServiceDescription
		if description == "" {
			description = "No description"
		}

		vehicles = append(vehicles, domain.Vehicle{
			ServiceNumber:      number,
			ServiceDescription: description,
			Location:           domain.GeoPoint{Lat: lat, Lon: lng},
		})
	}

	return vehicles, nil
}

func (c *Client) feedURL() string {
	q := url.Values{}
	q.Set("client_version", clientVersion)
	q.Set("descriptive_fields", "1")
	q.Set("lat", strconv.FormatFloat(c.lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(c.lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(c.radius))

	return c.baseURL + "?" + q.Encode()
}
