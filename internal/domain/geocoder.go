package domain

import "context"

// Geocoder translates place names to candidates and coordinates back to places.
type Geocoder interface {
	// Search returns up to count candidates for a free-text name, in upstream
	// ranking order. Zero candidates is a valid, non-error result.
	Search(ctx context.Context, name string, count int) ([]PlaceCandidate, error)

	// Reverse returns candidates near the given coordinates.
	Reverse(ctx context.Context, lat, lon float64) ([]PlaceCandidate, error)
}

// WeatherSource retrieves current conditions for a coordinate pair.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}
