// Package resolver turns free-text queries and device coordinates into
// canonical locations.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/weather-lookup/internal/domain"
)

// Resolver resolves names by forward geocoding and coordinates by reverse geocoding.
type Resolver struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// New creates a Resolver.
func New(geocoder domain.Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{geocoder: geocoder, logger: logger}
}

// ResolveByName returns the best match for query. It fails with
// domain.ErrNotFound when nothing matches and domain.ErrTransport when the
// lookup itself fails.
func (r *Resolver) ResolveByName(ctx context.Context, query string) (domain.ResolvedLocation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ResolvedLocation{}, fmt.Errorf("%w: empty query", domain.ErrNotFound)
	}

	candidates, err := r.geocoder.Search(ctx, query, 1)
	if err != nil {
		if !errors.Is(err, domain.ErrTransport) {
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return domain.ResolvedLocation{}, err
	}
	if len(candidates) == 0 {
		return domain.ResolvedLocation{}, fmt.Errorf("%w: %q", domain.ErrNotFound, query)
	}
	return candidates[0].Resolve(), nil
}

// ResolveByCoordinates labels lat, lon with the nearest place name. It never
// fails: when the reverse lookup errors or finds nothing, the label falls back
// to "<lat>, <lon>".
func (r *Resolver) ResolveByCoordinates(ctx context.Context, lat, lon float64) domain.ResolvedLocation {
	candidates, err := r.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		r.logger.Warn("reverse geocoding failed, using coordinate label",
			"lat", lat,
			"lon", lon,
			"error", err,
		)
		return domain.NewResolvedLocation("", lat, lon)
	}
	if len(candidates) == 0 {
		return domain.NewResolvedLocation("", lat, lon)
	}
	return domain.NewResolvedLocation(candidates[0].ShortLabel(), lat, lon)
}
