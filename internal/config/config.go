package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Geolocation modes.
const (
	GeolocationIP    = "ip"
	GeolocationFixed = "fixed"
	GeolocationOff   = "off"
)

// Config holds all widget settings, populated from environment variables.
type Config struct {
	// Upstream endpoints.
	GeocodeURL      string        `env:"GEOCODE_URL" validate:"required,url"`
	WeatherURL      string        `env:"WEATHER_URL" validate:"required,url"`
	GeocodeLanguage string        `env:"GEOCODE_LANGUAGE"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT"`
	UpstreamRate    float64       `env:"UPSTREAM_RATE_LIMIT" validate:"gt=0"`
	UpstreamBurst   int           `env:"UPSTREAM_RATE_BURST" validate:"gt=0"`

	GeocodeCacheSize int           `env:"GEOCODE_CACHE_SIZE" validate:"gte=0"`
	SuggestDebounce  time.Duration `env:"SUGGEST_DEBOUNCE" validate:"gt=0"`

	StoragePath string `env:"STORAGE_PATH" validate:"required"`

	// Device location source.
	GeolocationMode    string        `env:"GEOLOCATION_MODE" validate:"oneof=ip fixed off"`
	GeolocationURL     string        `env:"GEOLOCATION_URL" validate:"required_if=GeolocationMode ip,omitempty,url"`
	GeolocationLat     float64       `env:"GEOLOCATION_LAT" validate:"gte=-90,lte=90"`
	GeolocationLon     float64       `env:"GEOLOCATION_LON" validate:"gte=-180,lte=180"`
	GeolocationTimeout time.Duration `env:"GEOLOCATION_TIMEOUT" validate:"gt=0"`

	HTTPAddr        string        `env:"HTTP_ADDR"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	LogFile         string        `env:"LOG_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

var validate = newValidator()

// newValidator reports struct fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("env")
	})
	return v
}

// Validate checks the loaded values, naming the offending variables.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("invalid %s: %q fails %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present; it never
// overrides variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parseDuration("UPSTREAM_TIMEOUT", "0s", true)
	if err != nil {
		return nil, err
	}
	debounce, err := parseDuration("SUGGEST_DEBOUNCE", "250ms", false)
	if err != nil {
		return nil, err
	}
	geoTimeout, err := parseDuration("GEOLOCATION_TIMEOUT", "10s", false)
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("UPSTREAM_RATE_LIMIT", "10"), 64)
	if err != nil {
		return nil, errors.New("invalid UPSTREAM_RATE_LIMIT")
	}
	burst, err := parseNonNegativeInt("UPSTREAM_RATE_BURST", "5")
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseNonNegativeInt("GEOCODE_CACHE_SIZE", "256")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		GeocodeURL:      sharedcfg.EnvOrDefault("GEOCODE_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		WeatherURL:      sharedcfg.EnvOrDefault("WEATHER_URL", "https://api.open-meteo.com/v1/forecast"),
		GeocodeLanguage: sharedcfg.EnvOrDefault("GEOCODE_LANGUAGE", "id"),
		UpstreamTimeout: upstreamTimeout,
		UpstreamRate:    rateLimit,
		UpstreamBurst:   burst,

		GeocodeCacheSize: cacheSize,
		SuggestDebounce:  debounce,

		StoragePath: sharedcfg.EnvOrDefault("STORAGE_PATH", defaultStoragePath()),

		GeolocationMode:    sharedcfg.EnvOrDefault("GEOLOCATION_MODE", GeolocationIP),
		GeolocationURL:     sharedcfg.EnvOrDefault("GEOLOCATION_URL", "http://ip-api.com/json/"),
		GeolocationTimeout: geoTimeout,

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.GeolocationMode == GeolocationFixed {
		if cfg.GeolocationLat, cfg.GeolocationLon, err = parseFixedPosition(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseFixedPosition() (float64, float64, error) {
	lat, err := strconv.ParseFloat(os.Getenv("GEOLOCATION_LAT"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, errors.New("GEOLOCATION_LAT must be set to a latitude in fixed mode")
	}
	lon, err := strconv.ParseFloat(os.Getenv("GEOLOCATION_LON"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, errors.New("GEOLOCATION_LON must be set to a longitude in fixed mode")
	}
	return lat, lon, nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "weather-lookup.db"
	}
	return filepath.Join(home, ".weather-lookup", "state.db")
}
