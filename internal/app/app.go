// Package app assembles the widget's collaborators from configuration.
package app

import (
	"fmt"
	"log/slog"

	httpadapter "github.com/couchcryptid/weather-lookup/internal/adapter/http"
	"github.com/couchcryptid/weather-lookup/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-lookup/internal/adapter/sqlite"
	"github.com/couchcryptid/weather-lookup/internal/config"
	"github.com/couchcryptid/weather-lookup/internal/domain"
	"github.com/couchcryptid/weather-lookup/internal/geolocation"
	"github.com/couchcryptid/weather-lookup/internal/history"
	"github.com/couchcryptid/weather-lookup/internal/observability"
	"github.com/couchcryptid/weather-lookup/internal/resolver"
	"github.com/couchcryptid/weather-lookup/internal/search"
	"github.com/couchcryptid/weather-lookup/internal/suggest"
)

// App holds the long-lived components shared by the widget and the lookup command.
type App struct {
	Store    *sqlite.Store
	Client   *openmeteo.Client
	Geocoder domain.Geocoder
	Resolver *resolver.Resolver
	History  *history.Store
	Themes   *history.ThemeStore
	Locator  geolocation.Locator

	cfg     *config.Config
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New opens storage and builds the upstream clients.
func New(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*App, error) {
	store, err := sqlite.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open storage %s: %w", cfg.StoragePath, err)
	}

	client := openmeteo.NewClient(openmeteo.Options{
		GeocodeURL: cfg.GeocodeURL,
		WeatherURL: cfg.WeatherURL,
		Language:   cfg.GeocodeLanguage,
		Timeout:    cfg.UpstreamTimeout,
		RateLimit:  cfg.UpstreamRate,
		RateBurst:  cfg.UpstreamBurst,
	}, metrics, logger)

	var geocoder domain.Geocoder = client
	if cfg.GeocodeCacheSize > 0 {
		geocoder = openmeteo.NewCachedGeocoder(client, cfg.GeocodeCacheSize, metrics)
		logger.Info("geocode cache enabled", "cache_size", cfg.GeocodeCacheSize)
	} else {
		logger.Info("geocode cache disabled")
	}

	return &App{
		Store:    store,
		Client:   client,
		Geocoder: geocoder,
		Resolver: resolver.New(geocoder, logger),
		History:  history.NewStore(store, logger),
		Themes:   history.NewThemeStore(store, logger),
		Locator:  NewLocator(cfg, metrics, logger),
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// NewLocator picks the device location source for cfg.GeolocationMode.
func NewLocator(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) geolocation.Locator {
	switch cfg.GeolocationMode {
	case config.GeolocationFixed:
		return geolocation.NewFixed(cfg.GeolocationLat, cfg.GeolocationLon)
	case config.GeolocationOff:
		return geolocation.Disabled{}
	default:
		return geolocation.NewIPLocator(cfg.GeolocationURL, metrics, logger)
	}
}

// NewSuggester creates a suggestion provider reporting to sink.
func (a *App) NewSuggester(sink suggest.Sink) *suggest.Provider {
	return suggest.New(a.Geocoder, sink, a.metrics, a.logger, suggest.WithDebounce(a.cfg.SuggestDebounce))
}

// NewOrchestrator creates a search orchestrator rendering to r.
func (a *App) NewOrchestrator(r search.Renderer) *search.Orchestrator {
	return search.New(a.Resolver, a.Client, a.Locator, a.History, r, a.logger, a.metrics,
		search.WithGeolocationTimeout(a.cfg.GeolocationTimeout))
}

// Checks lists the readiness dependencies for the ops server.
func (a *App) Checks() []httpadapter.Check {
	return []httpadapter.Check{
		{Name: "storage", Checker: a.Store},
		{Name: "upstream", Checker: a.Client},
	}
}

// Close releases storage.
func (a *App) Close() error {
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
