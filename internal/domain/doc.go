// Package domain models place lookup and current-conditions weather data as
// served by the Open-Meteo geocoding and forecast APIs.
//
// # Places
//
// A geocoding lookup yields [PlaceCandidate] values. Their display label is
// composed as
//
//	name[, admin1][, country]
//
// omitting empty parts, e.g. "Jakarta, DKI Jakarta, Indonesia". Reverse
// lookups use the shorter "name[, country]" form.
//
// A [ResolvedLocation] is the canonical outcome of resolution. Its label is
// never empty: when no name is known it falls back to the raw coordinate pair
// "<lat>, <lon>" using the shortest decimal form of each value
// ("-6.2, 106.8").
//
// # Current Weather
//
// A [WeatherSnapshot] carries temperature (°C), wind speed (km/h) and a WMO
// weather interpretation code. Codes are grouped into families:
//
//	0        clear
//	1-3      cloudy (mainly clear, partly cloudy, overcast)
//	45, 48   fog
//	51-55    drizzle
//	56-57    freezing drizzle (freezing rain family)
//	61-65    rain
//	66-67    freezing rain
//	71-77    snow
//	80-86    showers (rain and snow showers)
//	95-99    thunderstorm
//
// [Condition] is total: any code outside the table maps to [UnknownCondition].
//
// # Errors
//
// Failures are classified with sentinel errors ([ErrNotFound], [ErrTransport],
// [ErrEmptyData] and the geolocation errors) that adapters wrap with detail.
// Callers match them with errors.Is.
package domain
