package weather

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Link reports whether the network link is usable. The client fails fast
// with ErrNotConnected before any I/O when it is not.
type Link interface {
	Connected() bool
}

// ClientConfig bundles the endpoints and transport policy for the two-stage
// fetch.
type ClientConfig struct {
	GeocodeBaseURL  string
	ForecastBaseURL string
	UserAgent       string
	Timeout         time.Duration

	// InsecureTLS disables certificate verification, matching the device
	// firmware's transport. A known weakness, not an accident.
	InsecureTLS bool
}

// Client resolves a place name to coordinates and fetches current conditions
// for them. Two sequential calls per Fetch, no retries; the caller tries
// again next interval.
type Client struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
	userAgent   string
	link        Link
}

func NewClient(cfg ClientConfig, link Link) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		geocodeURL:  cfg.GeocodeBaseURL,
		forecastURL: cfg.ForecastBaseURL,
		userAgent:   cfg.UserAgent,
		link:        link,
	}
}

// Fetch geocodes place and fetches current conditions for the coordinates.
// Any failure leaves the caller's previous snapshot untouched.
func (c *Client) Fetch(ctx context.Context, place string) (Snapshot, error) {
	if c.link != nil && !c.link.Connected() {
		return Snapshot{}, ErrNotConnected
	}

	lat, lon, err := c.geocode(ctx, place)
	if err != nil {
		return Snapshot{}, err
	}

	snap, err := c.current(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, err
	}

	snap.CityLabel = FoldLabel(place)
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}

// geocode resolves place to coordinates. Latitude and longitude come back as
// the geocoder's own decimal strings and are forwarded verbatim; a round
// trip through float64 would shift the precision the forecast call sees.
func (c *Client) geocode(ctx context.Context, place string) (lat, lon string, err error) {
	u := fmt.Sprintf("%s?q=%s&format=json&limit=1", c.geocodeURL, encodePlace(place))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("geocode: status %d: %w", resp.StatusCode, ErrNoResult)
	}

	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return "", "", fmt.Errorf("geocode: %v: %w", err, ErrParse)
	}
	if len(hits) == 0 {
		return "", "", fmt.Errorf("geocode: empty result for %q: %w", place, ErrNoResult)
	}
	if hits[0].Lat == "" || hits[0].Lon == "" {
		return "", "", fmt.Errorf("geocode: missing coordinates: %w", ErrParse)
	}
	return hits[0].Lat, hits[0].Lon, nil
}

// current fetches the four dashboard fields for the given coordinates.
func (c *Client) current(ctx context.Context, lat, lon string) (Snapshot, error) {
	values := url.Values{}
	values.Set("latitude", lat)
	values.Set("longitude", lon)
	values.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")

	u := fmt.Sprintf("%s?%s", c.forecastURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("forecast: status %d: %w", resp.StatusCode, ErrNoResult)
	}

	var payload struct {
		Current *struct {
			Temperature float64 `json:"temperature_2m"`
			Humidity    int     `json:"relative_humidity_2m"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, fmt.Errorf("forecast: %v: %w", err, ErrParse)
	}
	if payload.Current == nil {
		return Snapshot{}, fmt.Errorf("forecast: missing current block: %w", ErrParse)
	}

	return Snapshot{
		TemperatureC: payload.Current.Temperature,
		HumidityPct:  payload.Current.Humidity,
		WindKph:      payload.Current.WindSpeed,
		Code:         payload.Current.WeatherCode,
		Condition:    ConditionLabel(payload.Current.WeatherCode),
	}, nil
}
