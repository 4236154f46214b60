package domain

import "time"

// WeatherSnapshot is a single current-conditions reading.
type WeatherSnapshot struct {
	TemperatureC  float64   `json:"temperature_c"`
	WindSpeedKmh  float64   `json:"wind_speed_kmh"`
	ConditionCode int       `json:"condition_code"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Temperature renders the temperature as "<value>°C".
func (w WeatherSnapshot) Temperature() string {
	return FormatNumber(w.TemperatureC) + "°C"
}

// Wind renders the wind speed as "<value> km/h".
func (w WeatherSnapshot) Wind() string {
	return FormatNumber(w.WindSpeedKmh) + " km/h"
}

// Condition returns the display category for the snapshot's condition code.
func (w WeatherSnapshot) Condition() ConditionCategory {
	return Condition(w.ConditionCode)
}

// ConditionFamily groups related weather codes.
type ConditionFamily string

const (
	FamilyClear        ConditionFamily = "clear"
	FamilyCloudy       ConditionFamily = "cloudy"
	FamilyFog          ConditionFamily = "fog"
	FamilyDrizzle      ConditionFamily = "drizzle"
	FamilyRain         ConditionFamily = "rain"
	FamilyFreezingRain ConditionFamily = "freezing_rain"
	FamilySnow         ConditionFamily = "snow"
	FamilyShowers      ConditionFamily = "showers"
	FamilyThunderstorm ConditionFamily = "thunderstorm"
	FamilyUnknown      ConditionFamily = "unknown"
)

// ConditionCategory is the display form of a weather code.
type ConditionCategory struct {
	Glyph  string
	Label  string
	Family ConditionFamily
}

// UnknownCondition is returned for codes outside the table.
var UnknownCondition = ConditionCategory{Glyph: "🌤️", Label: "Unknown", Family: FamilyUnknown}

var conditions = map[int]ConditionCategory{
	0:  {Glyph: "☀️", Label: "Clear sky", Family: FamilyClear},
	1:  {Glyph: "🌤️", Label: "Mainly clear", Family: FamilyCloudy},
	2:  {Glyph: "⛅", Label: "Partly cloudy", Family: FamilyCloudy},
	3:  {Glyph: "☁️", Label: "Overcast", Family: FamilyCloudy},
	45: {Glyph: "🌫️", Label: "Fog", Family: FamilyFog},
	48: {Glyph: "🌫️", Label: "Depositing rime fog", Family: FamilyFog},
	51: {Glyph: "🌦️", Label: "Light drizzle", Family: FamilyDrizzle},
	53: {Glyph: "🌧️", Label: "Moderate drizzle", Family: FamilyDrizzle},
	55: {Glyph: "🌧️", Label: "Dense drizzle", Family: FamilyDrizzle},
	56: {Glyph: "🌧️", Label: "Light freezing drizzle", Family: FamilyFreezingRain},
	57: {Glyph: "🌧️", Label: "Dense freezing drizzle", Family: FamilyFreezingRain},
	61: {Glyph: "🌧️", Label: "Slight rain", Family: FamilyRain},
	63: {Glyph: "🌧️", Label: "Moderate rain", Family: FamilyRain},
	65: {Glyph: "🌧️", Label: "Heavy rain", Family: FamilyRain},
	66: {Glyph: "🌧️", Label: "Light freezing rain", Family: FamilyFreezingRain},
	67: {Glyph: "🌧️", Label: "Heavy freezing rain", Family: FamilyFreezingRain},
	71: {Glyph: "❄️", Label: "Slight snowfall", Family: FamilySnow},
	73: {Glyph: "❄️", Label: "Moderate snowfall", Family: FamilySnow},
	75: {Glyph: "❄️", Label: "Heavy snowfall", Family: FamilySnow},
	77: {Glyph: "❄️", Label: "Snow grains", Family: FamilySnow},
	80: {Glyph: "🌧️", Label: "Slight rain showers", Family: FamilyShowers},
	81: {Glyph: "🌧️", Label: "Moderate rain showers", Family: FamilyShowers},
	82: {Glyph: "⛈️", Label: "Violent rain showers", Family: FamilyShowers},
	85: {Glyph: "❄️", Label: "Slight snow showers", Family: FamilyShowers},
	86: {Glyph: "❄️", Label: "Heavy snow showers", Family: FamilyShowers},
	95: {Glyph: "⛈️", Label: "Thunderstorm", Family: FamilyThunderstorm},
	96: {Glyph: "⛈️", Label: "Thunderstorm with slight hail", Family: FamilyThunderstorm},
	99: {Glyph: "⛈️", Label: "Thunderstorm with heavy hail", Family: FamilyThunderstorm},
}

// Condition maps a WMO weather code to its display category.
func Condition(code int) ConditionCategory {
	if c, ok := conditions[code]; ok {
		return c
	}
	return UnknownCondition
}

// KnownConditionCodes lists every code with a dedicated category, ascending.
func KnownConditionCodes() []int {
	return []int{0, 1, 2, 3, 45, 48, 51, 53, 55, 56, 57, 61, 63, 65, 66, 67, 71, 73, 75, 77, 80, 81, 82, 85, 86, 95, 96, 99}
}
