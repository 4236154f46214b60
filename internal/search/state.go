package search

import (
	"github.com/couchcryptid/weather-lookup/internal/domain"
)

// State is a step of a search cycle. A cycle moves
// Idle -> Resolving -> Fetching -> Success | Failed and then back to Idle.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateFetching
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateFetching:
		return "fetching"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry names how a search cycle was started.
type Entry string

const (
	// EntryName searches by free text.
	EntryName Entry = "name"
	// EntryPlace searches a location whose coordinates are already known.
	EntryPlace Entry = "place"
	// EntryDevice searches the device position.
	EntryDevice Entry = "device"
)

// User-facing messages. Raw errors never reach the render boundary.
const (
	MsgEmptyQuery        = "Enter a city name."
	MsgNotFound          = "Location not found."
	MsgLocationFailed    = "Failed to fetch location data."
	MsgWeatherFailed     = "Failed to fetch weather data."
	MsgGeolocationFailed = "Failed to detect location."
	MsgNoGeolocation     = "Geolocation is not supported."

	MsgSearching = "Searching location..."
	MsgFetching  = "Fetching weather..."
	MsgDetecting = "Detecting location..."
)

// Progress reports that the current cycle entered a new in-flight state.
type Progress struct {
	Seq     uint64
	Entry   Entry
	State   State
	Message string
}

// Outcome is the terminal result of one search cycle.
type Outcome struct {
	Seq      uint64
	Entry    Entry
	State    State // StateSuccess or StateFailed
	Location domain.ResolvedLocation
	Weather  domain.WeatherSnapshot
	Category domain.ConditionCategory
	Message  string
	Err      error

	// Superseded is set when a newer cycle started before this one finished.
	// Superseded outcomes are never rendered and never touch history.
	Superseded bool
}

// OK reports whether the cycle produced weather.
func (o Outcome) OK() bool { return o.State == StateSuccess }

// Renderer is the presentation side of the orchestrator. Calls arrive in
// cycle order and must not call back into the Orchestrator.
type Renderer interface {
	OnSearchProgress(Progress)
	OnSearchResult(Outcome)
	OnHistoryChanged(entries []string)
}
