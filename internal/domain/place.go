package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceCandidate is a single geocoding match.
type PlaceCandidate struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Label composes "name[, admin1][, country]".
func (p PlaceCandidate) Label() string {
	return joinNonEmpty(p.Name, p.Admin1, p.Country)
}

// ShortLabel composes "name[, country]", the form used for reverse lookups.
func (p PlaceCandidate) ShortLabel() string {
	return joinNonEmpty(p.Name, p.Country)
}

// Resolve converts the candidate into a ResolvedLocation using its full label.
func (p PlaceCandidate) Resolve() ResolvedLocation {
	return NewResolvedLocation(p.Label(), p.Latitude, p.Longitude)
}

// ResolvedLocation is the canonical result of location resolution.
type ResolvedLocation struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewResolvedLocation builds a ResolvedLocation, falling back to the
// coordinate label when label is blank.
func NewResolvedLocation(label string, lat, lon float64) ResolvedLocation {
	label = strings.TrimSpace(label)
	if label == "" {
		label = CoordinateLabel(lat, lon)
	}
	return ResolvedLocation{Label: label, Latitude: lat, Longitude: lon}
}

// CoordinateLabel formats "<lat>, <lon>" with the shortest exact decimal form.
func CoordinateLabel(lat, lon float64) string {
	return FormatNumber(lat) + ", " + FormatNumber(lon)
}

// MapURL links to a map preview centred on the location.
func (l ResolvedLocation) MapURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s&z=12", FormatNumber(l.Latitude), FormatNumber(l.Longitude))
}

// FormatNumber renders v without trailing zeros, e.g. 30.1 -> "30.1", 12 -> "12".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
