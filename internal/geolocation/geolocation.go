// Package geolocation provides device location sources for the "use my
// location" flow.
package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/observability"
)

// Position is a device-reported coordinate pair.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Locator reports the device position. Implementations honour ctx deadlines.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// Fixed always reports the same position.
type Fixed struct {
	pos Position
}

// NewFixed creates a locator pinned to lat, lon.
func NewFixed(lat, lon float64) *Fixed {
	return &Fixed{pos: Position{Latitude: lat, Longitude: lon}}
}

func (f *Fixed) Locate(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return f.pos, nil
}

// Disabled reports that no location source exists.
type Disabled struct{}

func (Disabled) Locate(context.Context) (Position, error) {
	return Position{}, domain.ErrGeolocationUnavailable
}

// IPLocator approximates the device position from its public IP address
// using an ip-api.com compatible endpoint.
type IPLocator struct {
	httpClient *http.Client
	endpoint   string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewIPLocator creates an IP-based locator for endpoint.
func NewIPLocator(endpoint string, metrics *observability.Metrics, logger *slog.Logger) *IPLocator {
	return &IPLocator{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		metrics:    metrics,
		logger:     logger,
	}
}

func (l *IPLocator) Locate(ctx context.Context) (Position, error) {
	u := l.endpoint + "?" + url.Values{"fields": {"status,message,lat,lon"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Position{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		l.metrics.UpstreamRequests.WithLabelValues("geolocation", "error").Inc()
		return Position{}, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		l.metrics.UpstreamRequests.WithLabelValues("geolocation", "error").Inc()
		return Position{}, fmt.Errorf("%w: ip lookup status %d", domain.ErrGeolocationDenied, resp.StatusCode)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		l.metrics.UpstreamRequests.WithLabelValues("geolocation", "error").Inc()
		return Position{}, fmt.Errorf("%w: decode ip lookup: %w", domain.ErrGeolocationDenied, err)
	}
	if body.Status != "success" {
		l.metrics.UpstreamRequests.WithLabelValues("geolocation", "empty").Inc()
		l.logger.Warn("ip lookup refused", "status", body.Status, "message", body.Message)
		return Position{}, fmt.Errorf("%w: %s", domain.ErrGeolocationDenied, body.Message)
	}

	l.metrics.UpstreamRequests.WithLabelValues("geolocation", "success").Inc()
	return Position{Latitude: body.Lat, Longitude: body.Lon}, nil
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
