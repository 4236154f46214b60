package openmeteo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/observability"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	endpointSearch  = "search"
	endpointReverse = "reverse"
	endpointWeather = "weather"

	// observedAtLayout is Open-Meteo's default iso8601 form (GMT, minute precision).
	observedAtLayout = "2006-01-02T15:04"
)

// Options configures a Client.
type Options struct {
	GeocodeURL string
	WeatherURL string
	Language   string        // locale for name lookups
	Timeout    time.Duration // 0 leaves the platform default in place
	RateLimit  float64       // requests per second; <= 0 disables limiting
	RateBurst  int
}

// Client implements domain.Geocoder and domain.WeatherSource using the
// Open-Meteo geocoding and forecast APIs. Each call is a single attempt.
type Client struct {
	httpClient *http.Client
	geocodeURL string
	weatherURL string
	language   string
	limiter    *rate.Limiter
	breakers   map[string]*gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		geocodeURL: opts.GeocodeURL,
		weatherURL: opts.WeatherURL,
		language:   opts.Language,
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    metrics,
		logger:     logger,
	}
	c.breakers = map[string]*gobreaker.CircuitBreaker{
		endpointSearch:  c.newBreaker(endpointSearch),
		endpointReverse: c.newBreaker(endpointReverse),
		endpointWeather: c.newBreaker(endpointWeather),
	}
	return c
}

// Search looks up places by free-text name. Zero matches is not an error.
func (c *Client) Search(ctx context.Context, name string, count int) ([]domain.PlaceCandidate, error) {
	params := url.Values{
		"name":  {name},
		"count": {strconv.Itoa(count)},
	}
	if c.language != "" {
		params.Set("language", c.language)
	}

	var resp geocodeResponse
	if err := c.getJSON(ctx, endpointSearch, c.geocodeURL+"?"+params.Encode(), &resp); err != nil {
		c.logger.Warn("geocode search failed", "query", name, "error", err)
		return nil, err
	}
	return c.candidates(endpointSearch, resp), nil
}

// Reverse looks up places at the given coordinates.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) ([]domain.PlaceCandidate, error) {
	params := url.Values{
		"latitude":  {domain.FormatNumber(lat)},
		"longitude": {domain.FormatNumber(lon)},
		"count":     {"1"},
	}

	var resp geocodeResponse
	if err := c.getJSON(ctx, endpointReverse, c.geocodeURL+"?"+params.Encode(), &resp); err != nil {
		c.logger.Warn("reverse geocode failed", "lat", lat, "lon", lon, "error", err)
		return nil, err
	}
	return c.candidates(endpointReverse, resp), nil
}

// Current fetches current conditions. A response without a current_weather
// object, or one missing any reading, fails with domain.ErrEmptyData.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"latitude":        {domain.FormatNumber(lat)},
		"longitude":       {domain.FormatNumber(lon)},
		"current_weather": {"true"},
	}

	var resp forecastResponse
	if err := c.getJSON(ctx, endpointWeather, c.weatherURL+"?"+params.Encode(), &resp); err != nil {
		c.logger.Warn("weather fetch failed", "lat", lat, "lon", lon, "error", err)
		return domain.WeatherSnapshot{}, err
	}

	cw := resp.CurrentWeather
	if !cw.complete() {
		c.metrics.UpstreamRequests.WithLabelValues(endpointWeather, "empty").Inc()
		return domain.WeatherSnapshot{}, fmt.Errorf("%w: response has no current_weather readings", domain.ErrEmptyData)
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpointWeather, "success").Inc()

	observed, err := time.Parse(observedAtLayout, cw.Time)
	if err != nil {
		observed = domain.Now()
	}
	return domain.WeatherSnapshot{
		TemperatureC:  *cw.Temperature,
		WindSpeedKmh:  *cw.WindSpeed,
		ConditionCode: *cw.WeatherCode,
		ObservedAt:    observed.UTC(),
	}, nil
}

func (c *Client) candidates(endpoint string, resp geocodeResponse) []domain.PlaceCandidate {
	if len(resp.Results) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "empty").Inc()
		return nil
	}
	c.metrics.UpstreamRequests.WithLabelValues(endpoint, "success").Inc()

	out := make([]domain.PlaceCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, domain.PlaceCandidate{
			Name:      r.Name,
			Admin1:    r.Admin1,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		})
	}
	return out
}

// getJSON performs one rate-limited, circuit-broken GET and decodes the body
// into out. Every failure wraps domain.ErrTransport.
func (c *Client) getJSON(ctx context.Context, endpoint, fullURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%w: %s rate limit wait: %w", domain.ErrTransport, endpoint, err)
	}

	start := time.Now()
	_, err := c.breakers[endpoint].Execute(func() (any, error) {
		return nil, c.do(ctx, fullURL, out)
	})
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s circuit open: %w", domain.ErrTransport, endpoint, err)
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrTransport, endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CheckReadiness fails while any endpoint's circuit breaker is open.
func (c *Client) CheckReadiness(_ context.Context) error {
	var open []string
	for _, endpoint := range []string{endpointSearch, endpointReverse, endpointWeather} {
		if c.breakers[endpoint].State() == gobreaker.StateOpen {
			open = append(open, endpoint)
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("circuit open: %s", strings.Join(open, ", "))
	}
	return nil
}

func (c *Client) newBreaker(endpoint string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo-" + endpoint,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Superseded lookups are cancelled by the caller; they say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.BreakerState.WithLabelValues(endpoint).Set(float64(to))
			c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Open-Meteo API response types.

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
}

type geocodeResult struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type forecastResponse struct {
	CurrentWeather *currentWeather `json:"current_weather"`
}

type currentWeather struct {
	Temperature *float64 `json:"temperature"`
	WindSpeed   *float64 `json:"windspeed"`
	WeatherCode *int     `json:"weathercode"`
	Time        string   `json:"time"`
}

func (cw *currentWeather) complete() bool {
	return cw != nil && cw.Temperature != nil && cw.WindSpeed != nil && cw.WeatherCode != nil
}
